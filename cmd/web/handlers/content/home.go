package content

import (
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"thirdcoast.systems/dramahub/cmd/web/templates"
	"thirdcoast.systems/dramahub/internal/aggregator"
)

func HandleHomePage() echo.HandlerFunc {
	stubs := lo.Map(aggregator.SectionIDs(), func(id string, _ int) templates.SectionStub {
		return templates.SectionStub{ID: id, Title: aggregator.SectionTitle(id)}
	})
	return func(c echo.Context) error {
		// Render a fast shell; sections are loaded asynchronously via Datastar SSE
		// from /api/catalog/sections.
		return templates.Home(stubs).Render(c.Request().Context(), c.Response())
	}
}
