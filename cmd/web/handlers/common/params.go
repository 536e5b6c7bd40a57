package common

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/dramahub/internal/catalog"
)

// RequirePlatformParam extracts a known platform route parameter or returns a
// 400 error.
func RequirePlatformParam(c echo.Context, param string) (catalog.Platform, error) {
	p := catalog.ParsePlatform(c.Param(param))
	if !p.Known() {
		return "", ErrBadRequest("invalid " + param)
	}
	return p, nil
}

// RequireIDParam extracts a present id route parameter or returns a 400
// error. Sentinel strings such as "undefined" count as absent.
func RequireIDParam(c echo.Context, param string) (string, error) {
	id := catalog.PresentString(c.Param(param))
	if id == "" {
		return "", ErrBadRequest("invalid " + param)
	}
	return id, nil
}

// MaxPage is the largest page number PageParam returns.
const MaxPage = 1000

// PageParam reads the 1-based "page" query parameter. Missing or invalid
// values yield 1; values above MaxPage are clamped.
func PageParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, MaxPage)
}
