package static

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestNewStaticCache_BuildsEntries(t *testing.T) {
	cache, err := NewStaticCache()
	require.NoError(t, err)
	require.NotNil(t, cache)
	require.NotEmpty(t, cache.entries)

	ci, ok := cache.entries["dist/main.css"]
	require.True(t, ok, "expected dist/main.css to be embedded")

	require.NotEmpty(t, ci.ETag)
	require.True(t, regexp.MustCompile(`^\"[0-9a-f]{64}\"$`).MatchString(ci.ETag))
	require.True(t, ci.Size > 0)
	require.False(t, ci.LastModified.IsZero())
	require.Contains(t, ci.ContentType, "text/css")
}

func serve(t *testing.T, cache *StaticCache, target string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	err := cache.ServeStaticFile("/static/")(e.NewContext(req, rec))
	if err != nil {
		e.HTTPErrorHandler(err, e.NewContext(req, rec))
	}
	return rec
}

func TestServeStaticFile(t *testing.T) {
	cache, err := NewStaticCacheFS(fstest.MapFS{
		"dist/main.js":   {Data: []byte("console.log(1)")},
		"img/poster.png": {Data: []byte("png")},
	})
	require.NoError(t, err)

	rec := serve(t, cache, "/static/dist/main.js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "console.log(1)", rec.Body.String())
	require.Equal(t, "no-cache, must-revalidate", rec.Header().Get("Cache-Control"))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec = serve(t, cache, "/static/dist/main.js", map[string]string{"If-None-Match": etag})
	require.Equal(t, http.StatusNotModified, rec.Code)

	rec = serve(t, cache, "/static/img/poster.png", nil)
	require.Equal(t, "public, max-age=31536000, stale-while-revalidate=86400", rec.Header().Get("Cache-Control"))

	rec = serve(t, cache, "/static/missing.css", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
