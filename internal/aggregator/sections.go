package aggregator

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"thirdcoast.systems/dramahub/internal/catalog"
	"thirdcoast.systems/dramahub/internal/metrics"
)

// Section ids double as category slugs for the "see all" links.
const (
	SectionTrending = "trending"
	SectionLatest   = "latest"
	SectionForYou   = "foryou"
	SectionDubbed   = "dubbed"
)

const (
	forYouMaxPage         = 50
	flickreelsMaxPage     = 2
	meloloPageOffset      = 20
	meloloMaxOffset       = 100
	meloloSearchLimit     = 15
	maxCategoryPage       = 10000
	dubbedDefaultClassify = "terpopuler"
)

// Section is one titled, ordered list of items. Sections are built fresh per
// request and never mutated after return.
type Section struct {
	Title string                `json:"title"`
	Path  string                `json:"path"`
	Items []catalog.CatalogItem `json:"items"`
}

type sectionDef struct {
	id      string
	title   string
	sources func() []source
}

var sectionDefs = []sectionDef{
	{
		id:    SectionTrending,
		title: "Trending Now",
		sources: func() []source {
			return []source{
				src(catalog.PlatformDramabox, "dramabox/trending"),
				src(catalog.PlatformMelolo, "melolo/trending"),
				src(catalog.PlatformReelshort, "reelshort/homepage"),
				src(catalog.PlatformNetshort, "netshort/theaters"),
				src(catalog.PlatformFlickreels, "flickreels/hotrank"),
			}
		},
	},
	{
		id:    SectionLatest,
		title: "New Releases",
		sources: func() []source {
			return []source{
				src(catalog.PlatformDramabox, "dramabox/latest"),
				src(catalog.PlatformMelolo, "melolo/latest"),
			}
		},
	},
	{
		id:    SectionForYou,
		title: "For You",
		sources: func() []source {
			return []source{
				src(catalog.PlatformDramabox, "dramabox/foryou"),
				src(catalog.PlatformMelolo, "melolo/foryou"),
				src(catalog.PlatformFlickreels, "flickreels/foryou"),
				src(catalog.PlatformReelshort, "reelshort/foryou"),
				src(catalog.PlatformNetshort, "netshort/foryou"),
			}
		},
	},
	{
		id:    SectionDubbed,
		title: "Dubbed",
		sources: func() []source {
			return []source{
				src(catalog.PlatformDramabox, "dramabox/dubindo?classify=%s&page=1", dubbedDefaultClassify),
			}
		},
	},
}

// slugAliases maps legacy and localized slugs onto section ids.
var slugAliases = map[string]string{
	"trending-sekarang": SectionTrending,
	"trending-now":      SectionTrending,
	"baru-dirilis":      SectionLatest,
	"terbaru":           SectionLatest,
	"new-releases":      SectionLatest,
	"pilihan-untukmu":   SectionForYou,
	"rekomendasi":       SectionForYou,
	"for-you":           SectionForYou,
	"dubbing-indonesia": SectionDubbed,
	"dubindo":           SectionDubbed,
}

// SectionIDs lists the home section ids in display order.
func SectionIDs() []string {
	return lo.Map(sectionDefs, func(d sectionDef, _ int) string { return d.id })
}

// SectionTitle is the display title of a home section, or "" when unknown.
func SectionTitle(id string) string {
	def, _ := findSection(id)
	return def.title
}

func findSection(id string) (sectionDef, bool) {
	return lo.Find(sectionDefs, func(d sectionDef) bool { return d.id == id })
}

// Section assembles one home section: sources fetched concurrently,
// interleaved across platforms, deduplicated and capped.
func (a *Aggregator) Section(ctx context.Context, id string) (Section, bool) {
	def, ok := findSection(id)
	if !ok {
		return Section{}, false
	}
	items := merge(a.fetchAll(ctx, def.sources()), a.opts.SectionLimit)
	metrics.SectionItems.WithLabelValues(def.id).Observe(float64(len(items)))
	slog.Debug("section assembled", "section", def.id, "items", len(items))
	return Section{Title: def.title, Path: def.id, Items: items}, true
}

// Sections assembles every home section concurrently. Empty sections are
// kept so pages can render their syncing state.
func (a *Aggregator) Sections(ctx context.Context) []Section {
	out := make([]Section, len(sectionDefs))
	var g errgroup.Group
	for i, def := range sectionDefs {
		g.Go(func() error {
			out[i], _ = a.Section(ctx, def.id)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Home is everything the landing page shows.
type Home struct {
	Sections []Section `json:"sections"`
	// Highlight is the first item of the first non-empty section.
	Highlight *catalog.CatalogItem `json:"highlight,omitempty"`
	// RandomPick is a single upstream-chosen random drama.
	RandomPick      *catalog.CatalogItem  `json:"randomPick,omitempty"`
	PopularSearches []catalog.CatalogItem `json:"popularSearches"`
}

func (a *Aggregator) Home(ctx context.Context) Home {
	var home Home
	var g errgroup.Group
	g.Go(func() error {
		home.Sections = a.Sections(ctx)
		return nil
	})
	g.Go(func() error {
		home.RandomPick, home.PopularSearches = a.Extras(ctx)
		return nil
	})
	_ = g.Wait()
	home.Highlight = Highlight(home.Sections)
	return home
}

// Extras fetches the random pick and the popular searches shown beside the
// home sections.
func (a *Aggregator) Extras(ctx context.Context) (*catalog.CatalogItem, []catalog.CatalogItem) {
	extra := a.fetchAll(ctx, []source{
		src(catalog.PlatformDramabox, "dramabox/randomdrama"),
		src(catalog.PlatformDramabox, "dramabox/populersearch"),
	})
	var pick *catalog.CatalogItem
	if len(extra[0]) > 0 {
		it := extra[0][0]
		pick = &it
	}
	return pick, merge(extra[1:2], a.opts.SectionLimit)
}

// Highlight is the first item of the first non-empty section.
func Highlight(sections []Section) *catalog.CatalogItem {
	for _, s := range sections {
		if len(s.Items) > 0 {
			hl := s.Items[0]
			return &hl
		}
	}
	return nil
}

// Page is one page of a category listing.
type Page struct {
	Slug    string                `json:"slug"`
	Title   string                `json:"title"`
	Page    int                   `json:"page"`
	HasNext bool                  `json:"hasNext"`
	Items   []catalog.CatalogItem `json:"items"`
}

// NormalizeSlug lower-cases slug and resolves legacy aliases.
func NormalizeSlug(slug string) string {
	s := strings.ToLower(strings.TrimSpace(slug))
	if id, ok := slugAliases[s]; ok {
		return id
	}
	return s
}

// Category returns one page of a category. Known section slugs page through
// the upstream feeds; any other slug is treated as a genre filter over the
// pooled home feeds.
func (a *Aggregator) Category(ctx context.Context, slug string, page int) Page {
	page = min(max(page, 1), maxCategoryPage)
	slug = NormalizeSlug(slug)

	switch slug {
	case SectionForYou:
		items := merge(a.fetchAll(ctx, forYouSources(page)), 0)
		return Page{Slug: slug, Title: "For You", Page: page, Items: items, HasNext: len(items) > 0 && page < forYouMaxPage}

	case SectionDubbed:
		items := merge(a.fetchAll(ctx, []source{
			src(catalog.PlatformDramabox, "dramabox/dubindo?classify=terpopuler&page=%d", page),
			src(catalog.PlatformDramabox, "dramabox/dubindo?classify=terbaru&page=%d", page),
		}), 0)
		return Page{Slug: slug, Title: "Dubbed", Page: page, Items: items, HasNext: len(items) > 0}

	case SectionTrending, SectionLatest:
		def, _ := findSection(slug)
		items := merge(a.fetchAll(ctx, def.sources()), 0)
		return a.paginate(Page{Slug: slug, Title: def.title, Page: page}, items)
	}

	return a.genrePage(ctx, slug, page)
}

func forYouSources(page int) []source {
	var out []source
	if page <= forYouMaxPage {
		out = append(out,
			src(catalog.PlatformDramabox, "dramabox/foryou?page=%d", page),
			src(catalog.PlatformReelshort, "reelshort/foryou?page=%d", page),
			src(catalog.PlatformNetshort, "netshort/foryou?page=%d", page),
		)
	}
	if page <= flickreelsMaxPage {
		out = append(out, src(catalog.PlatformFlickreels, "flickreels/foryou?page=%d", page))
	}
	if offset := page * meloloPageOffset; offset <= meloloMaxOffset {
		out = append(out, src(catalog.PlatformMelolo, "melolo/foryou?offset=%d", offset))
	}
	return out
}

// genrePage filters the pooled trending, latest and first for-you feeds by
// genre tag, tags or title.
func (a *Aggregator) genrePage(ctx context.Context, slug string, page int) Page {
	term := strings.TrimSpace(strings.ReplaceAll(slug, "-", " "))
	title := cases.Title(language.Und).String(term)
	if term == "" {
		return Page{Slug: slug, Title: title, Page: page, Items: []catalog.CatalogItem{}}
	}

	var sources []source
	for _, id := range []string{SectionTrending, SectionLatest} {
		def, _ := findSection(id)
		sources = append(sources, def.sources()...)
	}
	sources = append(sources, forYouSources(1)...)

	pooled := merge(a.fetchAll(ctx, sources), 0)
	matches := lo.Filter(pooled, func(it catalog.CatalogItem, _ int) bool {
		return matchesGenre(it, term)
	})
	return a.paginate(Page{Slug: slug, Title: title, Page: page}, matches)
}

func matchesGenre(it catalog.CatalogItem, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(it.GenreTag), term) || strings.Contains(strings.ToLower(it.Title), term) {
		return true
	}
	return lo.ContainsBy(it.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), term)
	})
}

func (a *Aggregator) paginate(p Page, items []catalog.CatalogItem) Page {
	start := (p.Page - 1) * a.opts.PageSize
	if start < 0 || start >= len(items) {
		p.Items = []catalog.CatalogItem{}
		return p
	}
	end := min(start+a.opts.PageSize, len(items))
	p.Items = items[start:end]
	p.HasNext = end < len(items)
	return p
}

// Search queries every platform concurrently and merges the hits.
func (a *Aggregator) Search(ctx context.Context, query string) []catalog.CatalogItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return []catalog.CatalogItem{}
	}
	qq := q(query)
	items := merge(a.fetchAll(ctx, []source{
		src(catalog.PlatformDramabox, "dramabox/search?query=%s", qq),
		src(catalog.PlatformMelolo, "melolo/search?query=%s&limit=%s&offset=0", qq, strconv.Itoa(meloloSearchLimit)),
		src(catalog.PlatformReelshort, "reelshort/search?query=%s", qq),
		src(catalog.PlatformNetshort, "netshort/search?query=%s", qq),
		src(catalog.PlatformFlickreels, "flickreels/search?query=%s", qq),
	}), 0)
	slog.Debug("search merged", "query", query, "items", len(items))
	return items
}
