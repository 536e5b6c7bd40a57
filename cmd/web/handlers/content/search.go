package content

import (
	"strings"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/dramahub/cmd/web/handlers/common"
	"thirdcoast.systems/dramahub/cmd/web/templates"
	"thirdcoast.systems/dramahub/internal/aggregator"
	"thirdcoast.systems/dramahub/internal/catalog"
)

const maxQueryLen = 100

func HandleSearchPage(agg *aggregator.Aggregator) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := strings.TrimSpace(c.QueryParam("q"))
		if len(q) > maxQueryLen {
			return common.ErrBadRequest("query too long")
		}
		common.WithSearchQuery(c, q)

		var items []catalog.CatalogItem
		if q != "" {
			items = agg.Search(c.Request().Context(), q)
		}
		return templates.Search(q, items).Render(c.Request().Context(), c.Response())
	}
}
