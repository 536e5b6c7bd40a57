package viewtypes

import "strings"

// ============================================================================
// SHARED CSS CLASS CONSTANTS
// Class strings from static/dist/main.css used across multiple templates.
// Templates read them through the "class" template func.
// ============================================================================

// SectionLabel is the standard label style for section headings.
var SectionLabel = "label mono upper"

// GhostButtonSm is a small ghost-style button (outlined, no fill).
var GhostButtonSm = "btn btn-ghost btn-sm"

// PageHeading is the main h1 heading style for top-level pages.
var PageHeading = "heading heading-xl"

// SubHeading is for secondary headings (h2 level) within pages.
var SubHeading = "heading heading-md"

// CardGrid is the responsive poster grid.
var CardGrid = "grid-cards"

// InputClass is the standard text input styling.
var InputClass = "input mono"

// Classes maps class constant names for template lookup.
var Classes = map[string]string{
	"SectionLabel":  SectionLabel,
	"GhostButtonSm": GhostButtonSm,
	"PageHeading":   PageHeading,
	"SubHeading":    SubHeading,
	"CardGrid":      CardGrid,
	"InputClass":    InputClass,
}

// GenreBadgeClass picks the badge colour for a genre tag.
func GenreBadgeClass(genre string) string {
	g := strings.ToUpper(genre)
	switch {
	case strings.Contains(g, "CEO"):
		return "badge badge-amber"
	case strings.Contains(g, "ROMAN"):
		return "badge badge-pink"
	case strings.Contains(g, "REVENGE"), strings.Contains(g, "DENDAM"):
		return "badge badge-purple"
	case strings.Contains(g, "MARRIAGE"), strings.Contains(g, "NIKAH"):
		return "badge badge-emerald"
	case strings.Contains(g, "REINCARNATION"):
		return "badge badge-blue"
	}
	return "badge badge-red"
}
