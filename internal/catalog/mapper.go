package catalog

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultTitle    = "UNTITLED"
	DefaultSynopsis = "Synopsis not available."

	// genreTagMax is the longest genre tag kept verbatim; longer tags are cut
	// to genreTagKeep runes plus an ellipsis.
	genreTagMax  = 15
	genreTagKeep = 12
)

// detailWrappers are keys under which some endpoints nest the real item.
var detailWrappers = []string{"drama", "video_data"}

// tagNameKeys are tried on object-valued tag entries.
var tagNameKeys = []string{"tag_name", "name"}

var stripTags = bluemonday.StrictPolicy()

// CatalogItem is the normalized record every platform maps into.
type CatalogItem struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Cover           string   `json:"cover"`
	HorizontalCover string   `json:"horizontalCover,omitempty"`
	Synopsis        string   `json:"synopsis"`
	Rating          string   `json:"rating"`
	GenreTag        string   `json:"genreTag"`
	ViewCount       string   `json:"viewCount"`
	EpisodeCount    int      `json:"episodeCount"`
	Platform        Platform `json:"platform"`
	Tags            []string `json:"tags"`
}

// Valid reports whether the item can be shown: it needs an id and a title.
func (it CatalogItem) Valid() bool {
	return it.ID != "" && it.Title != ""
}

// Mapper maps raw records into CatalogItems.
type Mapper struct {
	// Placeholder replaces missing covers. Empty means DefaultPlaceholderImage.
	Placeholder string
}

var defaultMapper = Mapper{}

// MapItem maps raw with the default placeholder image.
func MapItem(raw Record, override Platform) CatalogItem {
	return defaultMapper.Map(raw, override)
}

// Map normalizes one raw record. override, when non-empty, skips platform
// detection. Map never fails; absent fields take their defaults.
func (m Mapper) Map(raw Record, override Platform) CatalogItem {
	item := unwrapDetail(raw)
	platform := DetectPlatform(item, override)
	prof := ProfileFor(platform)

	title := cleanTitle(firstString(item, prof.Keys(FieldTitle)))
	if title == "" {
		title = DefaultTitle
	}

	synopsis := firstString(item, prof.Keys(FieldSynopsis))
	if synopsis == "" {
		synopsis = DefaultSynopsis
	}

	tags := extractTags(item, prof.Keys(FieldTags))
	genre := ClassifyGenre(title, synopsis)
	if len(tags) > 0 {
		genre = tags[0]
	}
	genre = upper(truncateGenre(genre))
	if len(tags) == 0 {
		tags = []string{genre}
	}

	horizontal := firstString(item, prof.Keys(FieldHorizontalCover))
	if horizontal != "" {
		horizontal = NormalizeCover(horizontal, platform, m.Placeholder)
	}

	rating := firstString(item, prof.Keys(FieldRating))
	if rating == "" {
		rating = prof.DefaultRating
	}
	views := firstString(item, prof.Keys(FieldViewCount))
	if views == "" {
		views = defaultViewCount
	}

	return CatalogItem{
		ID:              firstString(item, prof.Keys(FieldID)),
		Title:           title,
		Cover:           NormalizeCover(firstString(item, prof.Keys(FieldCover)), platform, m.Placeholder),
		HorizontalCover: horizontal,
		Synopsis:        synopsis,
		Rating:          rating,
		GenreTag:        genre,
		ViewCount:       views,
		EpisodeCount:    episodeCount(item, prof.Keys(FieldEpisodeCount)),
		Platform:        platform,
		Tags:            tags,
	}
}

func unwrapDetail(raw Record) Record {
	if raw == nil {
		return Record{}
	}
	for _, k := range detailWrappers {
		if inner, ok := asRecord(raw[k]); ok {
			return inner
		}
	}
	return raw
}

// cleanTitle strips markup, unescapes entities and upper-cases.
func cleanTitle(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(stripTags.Sanitize(s))
	return upper(strings.TrimSpace(s))
}

// upper uses a fresh Caser per call; Casers are not safe for concurrent use.
func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

func truncateGenre(s string) string {
	if utf8.RuneCountInString(s) <= genreTagMax {
		return s
	}
	return string([]rune(s)[:genreTagKeep]) + "..."
}

// extractTags returns the tags of the first alias that yields any. Object
// entries contribute their name sub-field.
func extractTags(r Record, keys []string) []string {
	for _, k := range keys {
		list, ok := asList(r[k])
		if !ok {
			continue
		}
		var tags []string
		for _, el := range list {
			var tag string
			if obj, ok := asRecord(el); ok {
				tag = firstString(obj, tagNameKeys)
			} else {
				tag = PresentString(stringify(el))
			}
			if tag != "" {
				tags = append(tags, tag)
			}
		}
		if len(tags) > 0 {
			return tags
		}
	}
	return nil
}

func episodeCount(r Record, keys []string) int {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || !IsPresent(v) {
			continue
		}
		if n, ok := toInt(v); ok && n > 0 {
			return n
		}
	}
	return 0
}
