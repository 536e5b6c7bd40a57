// Package aggregator assembles catalog sections, category pages, search
// results, drama details and episode streams from the per-platform upstream
// endpoints. Fetches run concurrently with settle-all semantics: a failing
// platform contributes nothing and never aborts the others.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"thirdcoast.systems/dramahub/internal/catalog"
)

// Fetcher returns decoded JSON for an endpoint key, or nil on any failure.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) any
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, endpoint string) any

func (f FetcherFunc) Fetch(ctx context.Context, endpoint string) any {
	return f(ctx, endpoint)
}

const (
	DefaultSectionLimit     = 10
	DefaultPageSize         = 24
	DefaultPatchConcurrency = 4
)

type Options struct {
	// SectionLimit caps the items of each home section.
	SectionLimit int
	// PageSize is the item count of locally paginated category pages.
	PageSize int
	// PatchConcurrency bounds the episode-count lookups per list.
	PatchConcurrency int
	Mapper           catalog.Mapper
	Resolver         catalog.Resolver
}

type Aggregator struct {
	fetch Fetcher
	opts  Options
}

func New(fetch Fetcher, opts Options) *Aggregator {
	if opts.SectionLimit <= 0 {
		opts.SectionLimit = DefaultSectionLimit
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PatchConcurrency <= 0 {
		opts.PatchConcurrency = DefaultPatchConcurrency
	}
	if opts.Resolver.PreferredQuality <= 0 {
		opts.Resolver.PreferredQuality = catalog.DefaultPreferredQuality
	}
	return &Aggregator{fetch: fetch, opts: opts}
}

// source is one upstream list endpoint and the platform it serves.
type source struct {
	endpoint string
	platform catalog.Platform
}

func src(p catalog.Platform, format string, args ...any) source {
	return source{endpoint: fmt.Sprintf(format, args...), platform: p}
}

func q(s string) string {
	return url.QueryEscape(s)
}

// fetchAll fetches every source concurrently and returns the mapped items of
// each, in source order. Failed sources yield nil.
func (a *Aggregator) fetchAll(ctx context.Context, sources []source) [][]catalog.CatalogItem {
	out := make([][]catalog.CatalogItem, len(sources))
	var g errgroup.Group
	for i, s := range sources {
		g.Go(func() error {
			out[i] = a.fetchList(ctx, s)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (a *Aggregator) fetchList(ctx context.Context, s source) (items []catalog.CatalogItem) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("catalog source panicked", "endpoint", s.endpoint, "panic", r)
			items = nil
		}
	}()

	raw := a.fetch.Fetch(ctx, s.endpoint)
	if raw == nil {
		return nil
	}
	items = a.mapAll(catalog.ExtractList(raw), s.platform)
	if s.platform == catalog.PlatformNetshort {
		a.patchEpisodeCounts(ctx, items)
	}
	return items
}

// mapAll maps records and drops items that cannot be shown.
func (a *Aggregator) mapAll(records []catalog.Record, p catalog.Platform) []catalog.CatalogItem {
	items := lo.Map(records, func(r catalog.Record, _ int) catalog.CatalogItem {
		return a.opts.Mapper.Map(r, p)
	})
	return lo.Filter(items, func(it catalog.CatalogItem, _ int) bool {
		return it.Valid()
	})
}

// patchEpisodeCounts fills unknown Netshort episode counts from the episode
// list endpoint. Items are updated in place.
func (a *Aggregator) patchEpisodeCounts(ctx context.Context, items []catalog.CatalogItem) {
	var g errgroup.Group
	g.SetLimit(a.opts.PatchConcurrency)
	for i := range items {
		if items[i].EpisodeCount > 0 || items[i].ID == "" {
			continue
		}
		g.Go(func() error {
			res := a.fetch.Fetch(ctx, "netshort/allepisode?shortPlayId="+q(items[i].ID))
			if n := totalEpisodes(res); n > 0 {
				items[i].EpisodeCount = n
			}
			return nil
		})
	}
	_ = g.Wait()
}

func totalEpisodes(res any) int {
	root, ok := res.(map[string]any)
	if !ok {
		return 0
	}
	if data, ok := root["data"].(map[string]any); ok {
		if n := catalog.IntField(data, "totalEpisode"); n > 0 {
			return n
		}
	}
	return catalog.IntField(root, "totalEpisode")
}

// merge interleaves groups round-robin, drops duplicates by composite key
// and caps the result at limit. limit <= 0 means no cap.
func merge(groups [][]catalog.CatalogItem, limit int) []catalog.CatalogItem {
	items := lo.UniqBy(Interleave(groups), func(it catalog.CatalogItem) string {
		return it.Key().String()
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// Interleave takes one element from each group in turn until all are
// exhausted, so no group dominates the front of the result.
func Interleave[T any](groups [][]T) []T {
	total := 0
	longest := 0
	for _, g := range groups {
		total += len(g)
		longest = max(longest, len(g))
	}
	out := make([]T, 0, total)
	for i := 0; i < longest; i++ {
		for _, g := range groups {
			if i < len(g) {
				out = append(out, g[i])
			}
		}
	}
	return out
}
