package aggregator

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"thirdcoast.systems/dramahub/internal/catalog"
	"thirdcoast.systems/dramahub/internal/metrics"
)

// Episode is one playable chapter of a drama.
type Episode struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Index  int    `json:"index"`
	Locked bool   `json:"locked"`
	// URL is set when the episode list already embeds a playable URL.
	URL string `json:"url,omitempty"`
}

// Drama is a catalog item with its ordered episode list.
type Drama struct {
	catalog.CatalogItem
	Episodes []Episode `json:"episodes"`
}

var (
	episodeIDFields    = []string{"chapterId", "episodeId", "id", "vid"}
	episodeTitleFields = []string{"chapterName", "title", "episodeName", "name"}
	episodeIndexFields = []string{"vid_index", "chapterIndex", "episodeNo", "serialNo"}
	episodeLockFields  = []string{"isLocked", "isLock", "is_lock"}
	episodeListFields  = []string{"episodes", "shortPlayEpisodeInfos", "episodeList", "chapterList", "video_list"}
)

// Detail loads a drama and its episodes. It returns nil when neither the
// detail nor the episode list could be fetched.
func (a *Aggregator) Detail(ctx context.Context, platform catalog.Platform, id string) *Drama {
	id = catalog.PresentString(id)
	if id == "" {
		return nil
	}
	platform = catalog.ParsePlatform(string(platform))
	if platform == "" {
		platform = catalog.PlatformDramabox
	}

	info, eps := a.detailPayload(ctx, platform, id)
	if info == nil && len(eps) == 0 {
		return nil
	}
	if info == nil {
		info = catalog.Record{}
	}

	item := a.opts.Mapper.Map(info, platform)
	item.ID = id
	if len(eps) > 0 {
		item.EpisodeCount = len(eps)
	}

	d := &Drama{CatalogItem: item, Episodes: make([]Episode, 0, len(eps))}
	for i, ep := range eps {
		d.Episodes = append(d.Episodes, a.mapEpisode(ep, i))
	}
	slog.Debug("drama detail loaded", "platform", platform, "id", id, "episodes", len(d.Episodes))
	return d
}

// detailPayload returns the info record and raw episode list for a drama.
func (a *Aggregator) detailPayload(ctx context.Context, p catalog.Platform, id string) (catalog.Record, []catalog.Record) {
	qid := q(id)
	switch p {
	case catalog.PlatformMelolo:
		res := asRecord(a.fetch.Fetch(ctx, "melolo/detail?bookId="+qid))
		if res == nil {
			return nil, nil
		}
		v := unwrapData(res)
		if inner, ok := catalog.RecordField(v, "video_data"); ok {
			v = inner
		}
		eps, _ := catalog.ListField(v, "video_list")
		return v, eps

	case catalog.PlatformFlickreels:
		res := asRecord(a.fetch.Fetch(ctx, "flickreels/detailAndAllEpisode?id="+qid))
		if res == nil {
			return nil, nil
		}
		root := res
		if _, ok := catalog.RecordField(root, "drama"); !ok {
			root = unwrapData(res)
		}
		info, _ := catalog.RecordField(root, "drama")
		return info, episodeList(root)

	case catalog.PlatformNetshort:
		res := asRecord(a.fetch.Fetch(ctx, "netshort/allepisode?shortPlayId="+qid))
		if res == nil {
			return nil, nil
		}
		info := unwrapData(res)
		return info, episodeList(info)

	case catalog.PlatformReelshort:
		var detail, episodes catalog.Record
		var g errgroup.Group
		g.Go(func() error {
			detail = asRecord(a.fetch.Fetch(ctx, "reelshort/detail?bookId="+qid))
			return nil
		})
		g.Go(func() error {
			episodes = asRecord(a.fetch.Fetch(ctx, "reelshort/allepisode?bookId="+qid))
			return nil
		})
		_ = g.Wait()
		if detail == nil && episodes == nil {
			return nil, nil
		}
		info := catalog.Record{}
		for k, v := range unwrapData(detail) {
			info[k] = v
		}
		for k, v := range unwrapData(episodes) {
			if _, isList := v.([]any); isList {
				continue
			}
			if _, taken := info[k]; !taken {
				info[k] = v
			}
		}
		return info, episodeList(unwrapData(episodes))
	}

	var detail, episodes any
	var g errgroup.Group
	g.Go(func() error {
		detail = a.fetch.Fetch(ctx, string(p)+"/detail?bookId="+qid)
		return nil
	})
	g.Go(func() error {
		episodes = a.fetch.Fetch(ctx, string(p)+"/allepisode?bookId="+qid)
		return nil
	})
	_ = g.Wait()

	var info catalog.Record
	if r := asRecord(detail); r != nil {
		info = unwrapData(r)
	}
	return info, catalog.ExtractList(episodes)
}

func (a *Aggregator) mapEpisode(ep catalog.Record, idx int) Episode {
	out := Episode{
		ID:    catalog.StringField(ep, episodeIDFields...),
		Title: catalog.StringField(ep, episodeTitleFields...),
		Index: idx + 1,
	}
	if out.ID == "" {
		out.ID = strconv.Itoa(idx)
	}
	if n := firstInt(ep, episodeIndexFields); n > 0 {
		out.Index = n
	}
	if out.Title == "" {
		out.Title = "Episode " + strconv.Itoa(out.Index)
	}
	out.Locked = catalog.IntField(ep, "isCharge") == 1 || lo.SomeBy(episodeLockFields, func(k string) bool {
		return catalog.Truthy(ep, k)
	})
	if res := a.opts.Resolver.Resolve(preferH264(ep), ""); res != nil {
		out.URL = res.URL
	}
	return out
}

// streamEndpoint is the payload source for a platform's episodes. Platforms
// with per-episode stream endpoints are keyed by episode id, the rest by
// drama id.
func streamEndpoint(p catalog.Platform, dramaID, episodeID string) string {
	switch p {
	case catalog.PlatformDramabox:
		return "dramabox/allepisode?bookId=" + q(dramaID)
	case catalog.PlatformReelshort:
		return "reelshort/allepisode?bookId=" + q(dramaID)
	case catalog.PlatformNetshort:
		return "netshort/allepisode?shortPlayId=" + q(dramaID)
	case catalog.PlatformFlickreels:
		return "flickreels/detailAndAllEpisode?id=" + q(dramaID)
	case catalog.PlatformMelolo:
		return "melolo/stream?videoId=" + q(episodeID)
	}
	return string(p) + "/stream?videoId=" + q(episodeID)
}

// Stream resolves the playable URL of one episode. episodeID selects the
// episode inside list payloads; when that yields nothing the first episode
// is tried. A nil result means the episode is currently unplayable.
func (a *Aggregator) Stream(ctx context.Context, platform catalog.Platform, dramaID, episodeID string) *catalog.EpisodeStream {
	platform = catalog.ParsePlatform(string(platform))
	if platform == "" {
		platform = catalog.PlatformDramabox
	}
	dramaID = catalog.PresentString(dramaID)
	episodeID = catalog.PresentString(episodeID)
	if dramaID == "" && episodeID == "" {
		return nil
	}
	if dramaID == "" {
		dramaID = episodeID
	}

	res := a.fetch.Fetch(ctx, streamEndpoint(platform, dramaID, episodeID))
	payload := streamPayload(res)

	out := a.opts.Resolver.Resolve(payload, episodeID)
	if out == nil && episodeID != "" {
		out = a.opts.Resolver.Resolve(payload, "")
	}

	strategy := "none"
	if out != nil {
		strategy = out.Strategy
	}
	metrics.StreamResolutions.WithLabelValues(string(platform), strategy).Inc()
	if out == nil {
		slog.Info("episode unplayable", "platform", platform, "drama_id", dramaID, "episode_id", episodeID)
	}
	return out
}

// streamPayload unwraps data and, when the payload carries a named episode
// list, returns that list with each episode's quality list narrowed to H264.
func streamPayload(res any) any {
	if res == nil {
		return nil
	}
	if list, ok := res.([]any); ok {
		return preferH264List(list)
	}
	root := asRecord(res)
	if root == nil {
		return res
	}
	var data any = root
	if d, ok := root["data"]; ok && catalog.IsPresent(d) {
		data = d
	}
	switch v := data.(type) {
	case []any:
		return preferH264List(v)
	case map[string]any:
		for _, k := range episodeListFields[:4] {
			if list, ok := v[k].([]any); ok && len(list) > 0 {
				return preferH264List(list)
			}
		}
		return preferH264(v)
	}
	return data
}

func preferH264List(list []any) []any {
	out := make([]any, len(list))
	for i, el := range list {
		if r, ok := el.(map[string]any); ok {
			out[i] = preferH264(r)
			continue
		}
		out[i] = el
	}
	return out
}

// preferH264 narrows a videoList to its H264 entries when any exist. The
// record is copied, never modified.
func preferH264(ep catalog.Record) catalog.Record {
	list, ok := catalog.ListField(ep, "videoList")
	if !ok || len(list) == 0 {
		return ep
	}
	h264 := lo.Filter(list, func(v catalog.Record, _ int) bool {
		return strings.EqualFold(catalog.StringField(v, "encode"), "H264")
	})
	if len(h264) == 0 || len(h264) == len(list) {
		return ep
	}
	out := make(catalog.Record, len(ep))
	for k, v := range ep {
		out[k] = v
	}
	narrowed := make([]any, len(h264))
	for i, r := range h264 {
		narrowed[i] = r
	}
	out["videoList"] = narrowed
	return out
}

func episodeList(r catalog.Record) []catalog.Record {
	for _, k := range episodeListFields {
		if eps, ok := catalog.ListField(r, k); ok && len(eps) > 0 {
			return eps
		}
	}
	return nil
}

func unwrapData(r catalog.Record) catalog.Record {
	if r == nil {
		return nil
	}
	if d, ok := catalog.RecordField(r, "data"); ok {
		return d
	}
	return r
}

func asRecord(v any) catalog.Record {
	r, _ := v.(map[string]any)
	return r
}

func firstInt(r catalog.Record, keys []string) int {
	for _, k := range keys {
		if n := catalog.IntField(r, k); n > 0 {
			return n
		}
	}
	return 0
}
