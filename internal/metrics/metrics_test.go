package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestUpstreamRequestsCounter(t *testing.T) {
	c := UpstreamRequests.WithLabelValues("metrics_test", OutcomeOK)
	before := testutil.ToFloat64(c)
	c.Inc()
	require.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestHandlerExposesCollectors(t *testing.T) {
	StreamResolutions.WithLabelValues("dramabox", "cdn_ladder").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "dramahub_stream_resolutions_total"))
}
