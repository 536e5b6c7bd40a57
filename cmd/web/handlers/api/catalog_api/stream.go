package catalog_api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/dramahub/cmd/web/handlers/common"
	"thirdcoast.systems/dramahub/cmd/web/viewtypes"
	"thirdcoast.systems/dramahub/internal/aggregator"
	"thirdcoast.systems/dramahub/internal/catalog"
)

type streamResponse struct {
	catalog.EpisodeStream
	// ProxyURL plays the stream through the local video proxy.
	ProxyURL string `json:"proxyUrl"`
}

// HandleStream resolves one episode's playable URL. The episode is picked by
// the "ep" query parameter; without it the first episode plays.
func HandleStream(agg *aggregator.Aggregator) echo.HandlerFunc {
	return func(c echo.Context) error {
		platform, err := common.RequirePlatformParam(c, "platform")
		if err != nil {
			return err
		}
		id, err := common.RequireIDParam(c, "id")
		if err != nil {
			return err
		}

		res := agg.Stream(c.Request().Context(), platform, id, c.QueryParam("ep"))
		if res == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, streamResponse{
			EpisodeStream: *res,
			ProxyURL:      viewtypes.StreamProxyURL(res.URL),
		})
	}
}
