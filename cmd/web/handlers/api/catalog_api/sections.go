package catalog_api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/starfederation/datastar-go/datastar"
	"golang.org/x/sync/errgroup"
	"thirdcoast.systems/dramahub/cmd/web/handlers/common"
	"thirdcoast.systems/dramahub/cmd/web/templates"
	"thirdcoast.systems/dramahub/cmd/web/viewtypes"
	"thirdcoast.systems/dramahub/internal/aggregator"
	"thirdcoast.systems/dramahub/internal/catalog"
)

// HandleSections streams the home sections as Datastar patches. Each section
// replaces its skeleton as soon as it is assembled; the hero follows once all
// sections are known.
func HandleSections(agg *aggregator.Aggregator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		ids := aggregator.SectionIDs()

		var (
			pick    *catalog.CatalogItem
			popular []catalog.CatalogItem
			g       errgroup.Group
		)
		// Buffered so producers never block if the client goes away.
		ready := make(chan aggregator.Section, len(ids))
		for _, id := range ids {
			g.Go(func() error {
				sec, _ := agg.Section(ctx, id)
				ready <- sec
				return nil
			})
		}
		g.Go(func() error {
			pick, popular = agg.Extras(ctx)
			return nil
		})
		go func() {
			_ = g.Wait()
			close(ready)
		}()

		common.SetSSEHeaders(c)
		sse := datastar.NewSSE(c.Response().Writer, c.Request())

		byID := make(map[string]aggregator.Section, len(ids))
		for sec := range ready {
			byID[sec.Path] = sec
			if sse.IsClosed() {
				return nil
			}
			slotID := viewtypes.SectionDOMID(sec.Path)
			if err := sse.PatchElementTempl(templates.Section(sec), datastar.WithSelectorID(slotID), datastar.WithModeReplace()); err != nil {
				slog.Error("failed to send section SSE patch", "error", err, "slot_id", slotID)
				return err
			}
		}

		ordered := make([]aggregator.Section, 0, len(ids))
		for _, id := range ids {
			ordered = append(ordered, byID[id])
		}
		home := aggregator.Home{
			Sections:        ordered,
			Highlight:       aggregator.Highlight(ordered),
			RandomPick:      pick,
			PopularSearches: popular,
		}
		if err := sse.PatchElementTempl(templates.Hero(home), datastar.WithSelectorID(templates.HeroID), datastar.WithModeReplace()); err != nil {
			slog.Error("failed to send hero SSE patch", "error", err)
			return err
		}
		return nil
	}
}
