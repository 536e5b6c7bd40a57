package catalog

import (
	"encoding/base64"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MediaType is how a player should open a stream URL.
type MediaType string

const (
	MediaHLS MediaType = "hls"
	MediaMP4 MediaType = "mp4"
)

// DefaultPreferredQuality is the vertical resolution picked from quality
// ladders when present.
const DefaultPreferredQuality = 720

// EpisodeStream is a resolved playable URL. A nil *EpisodeStream means the
// episode is currently unplayable.
type EpisodeStream struct {
	URL            string    `json:"url"`
	MediaType      MediaType `json:"mediaType"`
	SourcePlatform Platform  `json:"sourcePlatform"`
	// Strategy names the extraction strategy that produced URL.
	Strategy string `json:"strategy"`
}

// Strategy names, in evaluation order.
const (
	StrategyCDNLadder    = "cdn_ladder"
	StrategyQualityList  = "quality_list"
	StrategyVoucher      = "voucher"
	StrategyDirectURL    = "direct_url"
	StrategyEncodedModel = "encoded_model"
	StrategyMainURL      = "main_url"
)

// episodeIDKeys are compared against the target id when the payload is a
// bare list of episodes.
var episodeIDKeys = []string{"chapterId", "episodeId", "id", "vid"}

// dataEpisodeIDKeys are compared when the episodes sit under "data".
var dataEpisodeIDKeys = []string{"episodeId", "id", "chapterId", "vid"}

// directURLPaths are checked in order by the direct URL strategy.
var directURLPaths = [][]string{
	{"videoUrl"},
	{"playlet_info", "video_url"},
	{"raw", "videoUrl"},
	{"video_url"},
}

var videoSlotRe = regexp.MustCompile(`^video_(\d+)$`)

// Resolver extracts playable URLs from episode payloads.
type Resolver struct {
	PreferredQuality int
}

var defaultResolver = Resolver{PreferredQuality: DefaultPreferredQuality}

// ResolveStream resolves payload with the default preferred quality.
func ResolveStream(payload any, episodeID string) *EpisodeStream {
	return defaultResolver.Resolve(payload, episodeID)
}

// Resolve selects the episode matching episodeID (or the first one) and runs
// each extraction strategy in order, most specific shape first, returning the
// first URL found. It returns nil when no strategy yields a URL.
func (rv Resolver) Resolve(payload any, episodeID string) *EpisodeStream {
	if payload == nil {
		return nil
	}
	if rv.PreferredQuality <= 0 {
		rv.PreferredQuality = DefaultPreferredQuality
	}
	episodeID = strings.TrimSpace(episodeID)

	envelope, _ := asRecord(payload)
	core := selectCore(payload, envelope, episodeID)
	if core == nil {
		return nil
	}

	strategies := []func() *EpisodeStream{
		func() *EpisodeStream { return rv.fromCDNLadder(core) },
		func() *EpisodeStream { return rv.fromQualityList(core) },
		func() *EpisodeStream { return fromVoucher(core) },
		func() *EpisodeStream { return fromDirectURL(core) },
		func() *EpisodeStream { return fromEncodedModel(core, envelope) },
		func() *EpisodeStream { return fromMainURL(core, envelope) },
	}
	for _, s := range strategies {
		if res := s(); res != nil {
			return res
		}
	}
	return nil
}

// selectCore finds the episode record inside payload.
func selectCore(payload any, envelope Record, episodeID string) Record {
	if list, ok := asList(payload); ok {
		return pickEpisode(records(list), episodeID, episodeIDKeys)
	}
	if envelope == nil {
		return nil
	}
	switch data := envelope["data"].(type) {
	case []any:
		if eps := records(data); len(eps) > 0 {
			return pickEpisode(eps, episodeID, dataEpisodeIDKeys)
		}
	case map[string]any:
		return data
	}
	return envelope
}

// pickEpisode returns the episode whose first present id key equals target,
// or the first episode.
func pickEpisode(eps []Record, target string, keys []string) Record {
	if len(eps) == 0 {
		return nil
	}
	if target != "" {
		for _, ep := range eps {
			if v, ok := firstValue(ep, keys); ok && equalID(v, target) {
				return ep
			}
		}
	}
	return eps[0]
}

func (rv Resolver) fromCDNLadder(core Record) *EpisodeStream {
	cdns := records(listOf(core["cdnList"]))
	if len(cdns) == 0 {
		return nil
	}
	cdn := firstWhere(cdns, isDefault)
	if cdn == nil {
		cdn = cdns[0]
	}

	ladder := records(listOf(cdn["videoPathList"]))
	if len(ladder) > 0 {
		entry := firstWhere(ladder, rv.hasQuality)
		if entry == nil {
			entry = firstWhere(ladder, isDefault)
		}
		if entry == nil {
			entry = ladder[0]
		}
		if u := PresentString(stringify(entry["videoPath"])); u != "" {
			return &EpisodeStream{URL: u, MediaType: MediaMP4, SourcePlatform: PlatformDramabox, Strategy: StrategyCDNLadder}
		}
		return nil
	}

	if u := PresentString(stringify(cdn["url"])); u != "" {
		return &EpisodeStream{URL: u, MediaType: MediaMP4, SourcePlatform: PlatformDramabox, Strategy: StrategyCDNLadder}
	}
	return nil
}

func (rv Resolver) fromQualityList(core Record) *EpisodeStream {
	list := records(listOf(core["videoList"]))
	if len(list) == 0 {
		return nil
	}
	entry := firstWhere(list, rv.hasQuality)
	if entry == nil {
		entry = list[0]
	}
	if u := PresentString(stringify(entry["url"])); u != "" {
		return &EpisodeStream{URL: u, MediaType: MediaHLS, SourcePlatform: PlatformReelshort, Strategy: StrategyQualityList}
	}
	return nil
}

func fromVoucher(core Record) *EpisodeStream {
	if u := PresentString(stringify(core["playVoucher"])); u != "" {
		return &EpisodeStream{URL: u, MediaType: MediaMP4, SourcePlatform: PlatformNetshort, Strategy: StrategyVoucher}
	}
	return nil
}

func fromDirectURL(core Record) *EpisodeStream {
	for _, p := range directURLPaths {
		v, ok := nested(core, p...)
		if !ok {
			continue
		}
		if u := PresentString(stringify(v)); u != "" {
			return &EpisodeStream{URL: u, MediaType: MediaMP4, SourcePlatform: PlatformFlickreels, Strategy: StrategyDirectURL}
		}
	}
	return nil
}

// fromEncodedModel reads the Melolo video model: an object, or a JSON string
// holding one, whose video_list has named quality slots (video_1, video_4,
// ...) each carrying a base64 main_url. Slots are tried highest first until
// one decodes. A parse or decode failure falls back to the plain main_url
// fields, then gives up.
func fromEncodedModel(core, envelope Record) *EpisodeStream {
	raw, ok := videoModel(core, envelope)
	if !ok {
		return nil
	}

	model, ok := parseVideoModel(raw)
	if !ok {
		return nil
	}

	u := ""
	for _, slot := range videoSlots(model) {
		if u = decodeStreamURL(stringify(slot["main_url"])); u != "" {
			break
		}
	}
	if u == "" {
		u = PresentString(stringify(core["main_url"]))
	}
	if u == "" && envelope != nil {
		u = PresentString(stringify(envelope["main_url"]))
	}
	if u == "" {
		return nil
	}
	return &EpisodeStream{URL: u, MediaType: MediaMP4, SourcePlatform: PlatformMelolo, Strategy: StrategyEncodedModel}
}

func fromMainURL(core, envelope Record) *EpisodeStream {
	u := PresentString(stringify(core["main_url"]))
	if u == "" && envelope != nil {
		u = PresentString(stringify(envelope["main_url"]))
	}
	if u == "" {
		return nil
	}
	return &EpisodeStream{URL: u, MediaType: MediaMP4, SourcePlatform: PlatformAuto, Strategy: StrategyMainURL}
}

func videoModel(core, envelope Record) (any, bool) {
	candidates := []Record{core, envelope}
	if envelope != nil {
		if data, ok := asRecord(envelope["data"]); ok {
			candidates = append(candidates, data)
		}
	}
	for _, r := range candidates {
		if r == nil {
			continue
		}
		if v, ok := r["video_model"]; ok && IsPresent(v) {
			return v, true
		}
	}
	return nil, false
}

// parseVideoModel is the first decode stage: a JSON string becomes an object.
func parseVideoModel(raw any) (Record, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case string:
		var out Record
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, false
		}
		return out, out != nil
	}
	return nil, false
}

// videoSlots returns the video_N slots that have a main_url, largest N
// first.
func videoSlots(model Record) []Record {
	list, ok := asRecord(model["video_list"])
	if !ok {
		return nil
	}
	type numbered struct {
		n    int
		slot Record
	}
	var found []numbered
	for k, v := range list {
		m := videoSlotRe.FindStringSubmatch(k)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slot, ok := asRecord(v)
		if !ok || !IsPresent(slot["main_url"]) {
			continue
		}
		found = append(found, numbered{n, slot})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n > found[j].n })
	out := make([]Record, len(found))
	for i, f := range found {
		out[i] = f.slot
	}
	return out
}

// decodeStreamURL is the second decode stage. It accepts standard and URL
// alphabets, padded or not, and only returns results that look like URLs.
func decodeStreamURL(s string) string {
	s = PresentString(s)
	if s == "" {
		return ""
	}
	if looksLikeURL(s) {
		return s
	}
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err != nil || !utf8.Valid(b) {
			continue
		}
		if out := strings.TrimSpace(string(b)); looksLikeURL(out) {
			return out
		}
	}
	return ""
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "//")
}

func (rv Resolver) hasQuality(r Record) bool {
	v := r["quality"]
	if s, ok := v.(string); ok {
		v = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "p")
	}
	q, ok := toInt(v)
	return ok && q == rv.PreferredQuality
}

func isDefault(r Record) bool {
	n, ok := toInt(r["isDefault"])
	if ok {
		return n == 1
	}
	b, ok := r["isDefault"].(bool)
	return ok && b
}

func listOf(v any) []any {
	l, _ := asList(v)
	return l
}

func firstWhere(rs []Record, pred func(Record) bool) Record {
	for _, r := range rs {
		if pred(r) {
			return r
		}
	}
	return nil
}
