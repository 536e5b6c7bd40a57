package catalog

import (
	"strings"
)

// Platform identifies the upstream platform an item came from. Unknown names
// pass through unchanged.
type Platform string

const (
	PlatformDramabox   Platform = "dramabox"
	PlatformMelolo     Platform = "melolo"
	PlatformReelshort  Platform = "reelshort"
	PlatformNetshort   Platform = "netshort"
	PlatformFlickreels Platform = "flickreels"

	// PlatformAuto tags stream results resolved from the generic main URL
	// field, which several platforms share.
	PlatformAuto Platform = "auto"
)

// Platforms lists the known platforms in aggregation order.
var Platforms = []Platform{
	PlatformDramabox,
	PlatformMelolo,
	PlatformReelshort,
	PlatformNetshort,
	PlatformFlickreels,
}

// ParsePlatform normalizes a user-supplied platform name.
func ParsePlatform(s string) Platform {
	return Platform(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether p has a profile.
func (p Platform) Known() bool {
	_, ok := profiles[p]
	return ok
}

// Label is the display name of p.
func (p Platform) Label() string {
	if prof, ok := profiles[p]; ok {
		return prof.Label
	}
	if p == PlatformAuto {
		return "Auto"
	}
	return strings.ToUpper(string(p))
}

// Field names one canonical CatalogItem field.
type Field int

const (
	FieldID Field = iota
	FieldTitle
	FieldSynopsis
	FieldTags
	FieldCover
	FieldHorizontalCover
	FieldRating
	FieldViewCount
	FieldEpisodeCount
)

// commonAliases is the cross-platform fallback order for each field.
var commonAliases = map[Field][]string{
	FieldID: {
		"book_id", "playlet_id", "short_play_id", "shortPlayId", "series_id",
		"series_id_str", "bookId", "chapterId", "id",
	},
	FieldTitle: {
		"book_title", "title", "bookName", "shortPlayName", "short_play_name",
		"playlet_name", "series_title", "book_name", "name",
	},
	FieldSynopsis: {
		"special_desc", "description", "introduction", "introduce", "shotIntroduce",
		"abstract", "desc", "intro", "series_intro",
	},
	FieldTags: {
		"playlet_tag_name", "tag_name", "labelArray", "tag_list", "tags",
	},
	FieldCover: {
		"book_pic", "cover", "shortPlayCover", "short_play_cover", "coverWap",
		"playlet_cover", "series_cover", "thumb_url", "cover_url", "chapterImg",
		"bookCover", "vertical_cover", "groupShortPlayCover",
	},
	FieldHorizontalCover: {
		"coverWap", "horizontalCover", "playlet_horizontal_cover",
	},
	FieldRating: {
		"score", "heatScoreShow",
	},
	FieldViewCount: {
		"playCount", "heatScoreShow", "hot_num",
	},
	FieldEpisodeCount: {
		"totalEpisodes", "chapter_count", "chapterCount", "serial_count",
		"episode_count", "upload_num", "totalEpisode", "episode_cnt",
	},
}

// Profile is the per-platform data the mapper needs. Adding a platform means
// adding a profile and, if it has a unique key, a fingerprint.
type Profile struct {
	Label string
	// CDNBase is prepended to relative cover paths.
	CDNBase string
	// DefaultRating is used when no rating alias is present.
	DefaultRating string
	// Aliases are tried before commonAliases for the same field.
	Aliases map[Field][]string
}

// Keys returns the ordered alias list for f: the platform's own keys first,
// then the common ones, without duplicates.
func (p Profile) Keys(f Field) []string {
	own := p.Aliases[f]
	if len(own) == 0 {
		return commonAliases[f]
	}
	seen := make(map[string]struct{}, len(own)+len(commonAliases[f]))
	keys := make([]string, 0, len(own)+len(commonAliases[f]))
	for _, list := range [][]string{own, commonAliases[f]} {
		for _, k := range list {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

const (
	defaultRating    = "9.5"
	defaultViewCount = "1.2M"
)

var profiles = map[Platform]Profile{
	PlatformDramabox: {
		Label:         "Dramabox",
		CDNBase:       "https://cdn.dramabox.com",
		DefaultRating: defaultRating,
		Aliases: map[Field][]string{
			FieldID:    {"bookId"},
			FieldTitle: {"bookName"},
			FieldCover: {"coverWap", "cover"},
			FieldTags:  {"tags"},
		},
	},
	PlatformMelolo: {
		Label:         "Melolo",
		CDNBase:       "https://image.melolo.com",
		DefaultRating: "9.8",
		Aliases: map[Field][]string{
			FieldID:           {"series_id_str", "book_id", "series_id"},
			FieldTitle:        {"series_title", "book_name"},
			FieldSynopsis:     {"series_intro", "abstract"},
			FieldCover:        {"series_cover", "thumb_url"},
			FieldEpisodeCount: {"episode_cnt", "serial_count"},
		},
	},
	PlatformReelshort: {
		Label:         "Reelshort",
		CDNBase:       "https://v-mps.crazymaplestudios.com",
		DefaultRating: defaultRating,
		Aliases: map[Field][]string{
			FieldTitle: {"book_title"},
			FieldCover: {"book_pic"},
		},
	},
	PlatformNetshort: {
		Label:         "Netshort",
		CDNBase:       "https://v-image.netshort.tv",
		DefaultRating: defaultRating,
		Aliases: map[Field][]string{
			FieldID:           {"shortPlayId", "short_play_id"},
			FieldTitle:        {"shortPlayName", "short_play_name"},
			FieldCover:        {"shortPlayCover", "short_play_cover"},
			FieldTags:         {"labelArray"},
			FieldEpisodeCount: {"totalEpisode"},
		},
	},
	PlatformFlickreels: {
		Label:         "Flickreels",
		CDNBase:       "https://zshipubcdn.farsunpteltd.com",
		DefaultRating: defaultRating,
		Aliases: map[Field][]string{
			FieldID:           {"playlet_id"},
			FieldTitle:        {"playlet_name"},
			FieldSynopsis:     {"introduce"},
			FieldCover:        {"playlet_cover"},
			FieldTags:         {"playlet_tag_name", "tag_list"},
			FieldEpisodeCount: {"upload_num"},
		},
	},
}

// ProfileFor returns the profile for p. Unknown platforms get the Dramabox
// CDN and default rating with only the common aliases.
func ProfileFor(p Platform) Profile {
	if prof, ok := profiles[p]; ok {
		return prof
	}
	return Profile{
		Label:         p.Label(),
		CDNBase:       profiles[PlatformDramabox].CDNBase,
		DefaultRating: defaultRating,
	}
}

// fingerprint pairs a shape predicate with the platform it implies.
type fingerprint struct {
	platform Platform
	match    func(Record) bool
}

func hasAny(keys ...string) func(Record) bool {
	return func(r Record) bool {
		_, ok := firstValue(r, keys)
		return ok
	}
}

// fingerprints are evaluated in order; the first match wins. A bare bookId
// is shared by Dramabox and Reelshort, so it is checked after the Dramabox
// specific keys.
var fingerprints = []fingerprint{
	{PlatformMelolo, hasAny("book_id", "series_id")},
	{PlatformNetshort, hasAny("short_play_id", "shortPlayId")},
	{PlatformFlickreels, hasAny("playlet_id", "playlet_name")},
	{PlatformReelshort, hasAny("book_title", "totalEpisodes")},
	{PlatformDramabox, hasAny("chapterId", "chapterName", "cdnList", "bookName")},
	{PlatformReelshort, hasAny("bookId")},
}

// DetectPlatform infers the platform of r from its field fingerprint.
// A non-empty override always wins. Records matching nothing are Dramabox.
func DetectPlatform(r Record, override Platform) Platform {
	if override != "" {
		return override
	}
	for _, fp := range fingerprints {
		if fp.match(r) {
			return fp.platform
		}
	}
	return PlatformDramabox
}
