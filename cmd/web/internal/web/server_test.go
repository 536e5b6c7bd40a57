package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"thirdcoast.systems/dramahub/cmd/web/handlers/api/proxy_api"
	"thirdcoast.systems/dramahub/internal/aggregator"
)

func newTestServer(t *testing.T) *Webserver {
	t.Helper()
	agg := aggregator.New(aggregator.FetcherFunc(func(context.Context, string) any { return nil }), aggregator.Options{})
	s, err := NewWebserver(context.Background(), agg, proxy_api.NewProxy(proxy_api.Options{}))
	require.NoError(t, err)
	return s
}

func do(s *Webserver, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(newTestServer(t), "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestHomeNegotiatesLanguage(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, "/", map[string]string{"Accept-Language": "id-ID,id;q=0.9,en;q=0.5"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `<html lang="id">`)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = do(s, "/", map[string]string{"Accept-Language": "fr-FR"})
	require.Contains(t, rec.Body.String(), `<html lang="en">`)
}

func TestStreamUnavailable(t *testing.T) {
	rec := do(newTestServer(t), "/api/stream/dramabox/42?ep=1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}

func TestBadPlatform(t *testing.T) {
	rec := do(newTestServer(t), "/watch/vimeo/1", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(s, "/healthz", nil)

	rec := do(s, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `dramahub_http_requests_total{method="GET",path="/healthz",status="200"}`)
}

func TestStaticAssets(t *testing.T) {
	rec := do(newTestServer(t), "/static/dist/main.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestProxyRejectsMissingURL(t *testing.T) {
	rec := do(newTestServer(t), "/api/proxy/image", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
