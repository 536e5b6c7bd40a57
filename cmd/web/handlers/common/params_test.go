package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"thirdcoast.systems/dramahub/cmd/web/ctxkeys"
	"thirdcoast.systems/dramahub/internal/catalog"
)

func newContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestRequirePlatformParam(t *testing.T) {
	c := newContext("/")
	c.SetParamNames("platform")
	c.SetParamValues(" NetShort ")
	p, err := RequirePlatformParam(c, "platform")
	require.NoError(t, err)
	require.Equal(t, catalog.PlatformNetshort, p)

	c.SetParamValues("youtube")
	_, err = RequirePlatformParam(c, "platform")
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestRequireIDParam(t *testing.T) {
	c := newContext("/")
	c.SetParamNames("id")
	c.SetParamValues("41")
	id, err := RequireIDParam(c, "id")
	require.NoError(t, err)
	require.Equal(t, "41", id)

	for _, bad := range []string{"", "undefined", "null"} {
		c.SetParamValues(bad)
		_, err = RequireIDParam(c, "id")
		require.Error(t, err, bad)
	}
}

func TestPageParam(t *testing.T) {
	require.Equal(t, 1, PageParam(newContext("/")))
	require.Equal(t, 3, PageParam(newContext("/?page=3")))
	require.Equal(t, 1, PageParam(newContext("/?page=0")))
	require.Equal(t, 1, PageParam(newContext("/?page=abc")))
	require.Equal(t, MaxPage, PageParam(newContext("/?page=576460752303423489")))
	require.Equal(t, 1, PageParam(newContext("/?page=99999999999999999999999")))
}

func TestWithSearchQuery(t *testing.T) {
	c := newContext("/search?q=ceo")
	WithSearchQuery(c, "ceo")
	require.Equal(t, "ceo", c.Request().Context().Value(ctxkeys.SearchQuery))
}
