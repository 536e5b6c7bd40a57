package content

import (
	"github.com/labstack/echo/v4"
	"thirdcoast.systems/dramahub/cmd/web/handlers/common"
	"thirdcoast.systems/dramahub/cmd/web/templates"
	"thirdcoast.systems/dramahub/internal/aggregator"
)

func HandleCategoryPage(agg *aggregator.Aggregator) echo.HandlerFunc {
	return func(c echo.Context) error {
		slug := c.Param("slug")
		if aggregator.NormalizeSlug(slug) == "" {
			return common.ErrNotFound("category not found")
		}
		p := agg.Category(c.Request().Context(), slug, common.PageParam(c))
		return templates.Category(p).Render(c.Request().Context(), c.Response())
	}
}
