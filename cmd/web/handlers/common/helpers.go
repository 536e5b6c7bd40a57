package common

import (
	"context"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/dramahub/cmd/web/ctxkeys"
)

// WithSearchQuery stores the current search query in the request context so
// the layout can echo it in the nav search box.
func WithSearchQuery(c echo.Context, q string) {
	ctx := context.WithValue(c.Request().Context(), ctxkeys.SearchQuery, q)
	c.SetRequest(c.Request().WithContext(ctx))
}
