// Package templates renders the site's pages and SSE fragments. Each page is
// exposed as a templ.Component so handlers render pages and datastar patches
// the same way.
package templates

import (
	"context"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
	"thirdcoast.systems/dramahub/cmd/web/ctxkeys"
	"thirdcoast.systems/dramahub/cmd/web/viewtypes"
	"thirdcoast.systems/dramahub/internal/aggregator"
	"thirdcoast.systems/dramahub/internal/catalog"
	"thirdcoast.systems/dramahub/pkg/utils/format"
)

//go:embed html/*.html
var files embed.FS

// PlaceholderImage is shown when a cover fails to load.
var PlaceholderImage = catalog.DefaultPlaceholderImage

// SiteURL is the public base URL used for canonical links. Empty disables
// them.
var SiteURL string

const (
	// HeroID is the element the home highlight is patched into.
	HeroID = "home-hero"
	// skeletonCards is how many placeholder cards a loading section shows.
	skeletonCards = 6
)

var funcs = template.FuncMap{
	"cover": func(it catalog.CatalogItem) string {
		return viewtypes.ProxyImageURL(it.Cover, it.Platform)
	},
	"rating":      viewtypes.DisplayRating,
	"watchURL":    viewtypes.WatchURL,
	"sectionID":   viewtypes.SectionDOMID,
	"genreClass":  viewtypes.GenreBadgeClass,
	"class":       func(name string) string { return viewtypes.Classes[name] },
	"episodes":    format.Episodes,
	"views":       format.ViewCount,
	"truncate":    format.Truncate,
	"placeholder": func() string { return PlaceholderImage },
	"skeletons":   func() []int { return make([]int, skeletonCards) },
	"label":       func(p catalog.Platform) string { return p.Label() },
	"add":         func(a, b int) int { return a + b },
}

// partials holds the layout and the shared fragments. Every page template is
// parsed on a clone so each can define its own "content".
var partials = template.Must(template.New("").Funcs(funcs).ParseFS(files, "html/layout.html", "html/partials.html"))

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"home", "category", "search", "watch", "notfound"} {
		t := template.Must(partials.Clone())
		pages[name] = template.Must(t.ParseFS(files, "html/"+name+".html"))
	}
}

// layoutData is what every full page receives.
type layoutData struct {
	Lang      string
	Query     string
	Title     string
	Canonical string
	Data      any
}

func page(name, title string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pages[name].ExecuteTemplate(w, "layout", layoutData{
			Lang:  ctxString(ctx, ctxkeys.Language, "en"),
			Query: ctxString(ctx, ctxkeys.SearchQuery, ""),
			Title:     title,
			Canonical: canonicalURL(ctxString(ctx, ctxkeys.RequestURI, "")),
			Data:      data,
		})
	})
}

func canonicalURL(requestURI string) string {
	if SiteURL == "" || requestURI == "" {
		return ""
	}
	return strings.TrimRight(SiteURL, "/") + requestURI
}

func fragment(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return partials.ExecuteTemplate(w, name, data)
	})
}

func ctxString(ctx context.Context, key ctxkeys.Key, fallback string) string {
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v
	}
	return fallback
}

// SectionStub is a home section before its items arrive.
type SectionStub struct {
	ID    string
	Title string
}

// Home renders the landing page shell. Sections and the hero start as
// skeletons and are patched in over SSE from /api/catalog/sections.
func Home(stubs []SectionStub) templ.Component {
	return page("home", "Home", stubs)
}

// Hero renders the highlight, random pick and popular searches block.
func Hero(home aggregator.Home) templ.Component {
	return fragment("hero", home)
}

// Section renders one populated (or empty) home section.
func Section(sec aggregator.Section) templ.Component {
	return fragment("section", sec)
}

// Category renders one page of a category listing.
func Category(p aggregator.Page) templ.Component {
	return page("category", p.Title, p)
}

type searchData struct {
	Query string
	Items []catalog.CatalogItem
}

// Search renders search results for query.
func Search(query string, items []catalog.CatalogItem) templ.Component {
	title := "Search"
	if q := strings.TrimSpace(query); q != "" {
		title = "Search: " + q
	}
	return page("search", title, searchData{Query: query, Items: items})
}

// Watch renders the player page of a drama.
func Watch(d *aggregator.Drama) templ.Component {
	return page("watch", d.Title, d)
}

// NotFound renders the not-found page with msg.
func NotFound(msg string) templ.Component {
	return page("notfound", "Not found", msg)
}
