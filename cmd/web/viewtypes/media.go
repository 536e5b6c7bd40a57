package viewtypes

import (
	"net/url"
	"strconv"
	"strings"

	"thirdcoast.systems/dramahub/internal/catalog"
)

const (
	ImageProxyPath  = "/api/proxy/image"
	StreamProxyPath = "/api/proxy/stream"
)

// ProxyImageURL routes covers from hot-link protected hosts through the
// local image proxy. Other URLs and already proxied URLs pass through.
func ProxyImageURL(cover string, platform catalog.Platform) string {
	cover = strings.TrimSpace(cover)
	if cover == "" || strings.HasPrefix(cover, ImageProxyPath+"?") {
		return cover
	}
	if !catalog.NeedsImageProxy(cover, platform) {
		return cover
	}
	return ImageProxyPath + "?url=" + url.QueryEscape(cover)
}

// StreamProxyURL routes a resolved stream URL through the local video proxy.
func StreamProxyURL(streamURL string) string {
	streamURL = strings.TrimSpace(streamURL)
	if streamURL == "" || strings.HasPrefix(streamURL, StreamProxyPath+"?") {
		return streamURL
	}
	return StreamProxyPath + "?url=" + url.QueryEscape(streamURL)
}

// DisplayRating formats a rating for display. Values that are not decimals
// in (0, 10] yield "" and the badge is hidden.
func DisplayRating(raw string) string {
	raw = strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 || f > 10 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// SectionDOMID is the element id a home section is patched into.
func SectionDOMID(sectionID string) string {
	return "section-" + sectionID
}

// WatchURL links to the watch page of an item.
func WatchURL(it catalog.CatalogItem) string {
	return "/watch/" + url.PathEscape(string(it.Platform)) + "/" + url.PathEscape(it.ID)
}
