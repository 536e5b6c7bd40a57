package content

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/dramahub/cmd/web/handlers/common"
	"thirdcoast.systems/dramahub/cmd/web/templates"
	"thirdcoast.systems/dramahub/internal/aggregator"
)

func HandleWatchPage(agg *aggregator.Aggregator) echo.HandlerFunc {
	return func(c echo.Context) error {
		platform, err := common.RequirePlatformParam(c, "platform")
		if err != nil {
			return err
		}
		id, err := common.RequireIDParam(c, "id")
		if err != nil {
			return err
		}

		ctx := c.Request().Context()
		d := agg.Detail(ctx, platform, id)
		if d == nil {
			c.Response().WriteHeader(http.StatusNotFound)
			return templates.NotFound("This drama is not available right now.").Render(ctx, c.Response())
		}
		return templates.Watch(d).Render(ctx, c.Response())
	}
}
