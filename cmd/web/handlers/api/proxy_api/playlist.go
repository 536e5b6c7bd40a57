package proxy_api

import (
	"bufio"
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/grafov/m3u8"
	"thirdcoast.systems/dramahub/cmd/web/viewtypes"
)

const playlistContentType = "application/vnd.apple.mpegurl"

var uriAttrRe = regexp.MustCompile(`URI="([^"]*)"`)

// RewritePlaylist routes every URI in an HLS playlist back through the
// stream proxy. Relative URIs are resolved against playlistURL. Playlists the
// strict decoder rejects are rewritten line by line.
func RewritePlaylist(body []byte, playlistURL string) ([]byte, error) {
	base, err := url.Parse(playlistURL)
	if err != nil {
		return nil, fmt.Errorf("parse playlist url: %w", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("#EXTM3U")) {
		return nil, fmt.Errorf("not an m3u8 playlist")
	}
	proxify := proxifier(base)

	pl, listType, err := m3u8.DecodeFrom(bufio.NewReader(bytes.NewReader(body)), true)
	if err != nil {
		return rewriteLines(body, proxify), nil
	}

	switch listType {
	case m3u8.MASTER:
		master := pl.(*m3u8.MasterPlaylist)
		for _, v := range master.Variants {
			if v == nil {
				continue
			}
			v.URI = proxify(v.URI)
			for _, alt := range v.Alternatives {
				if alt != nil && alt.URI != "" {
					alt.URI = proxify(alt.URI)
				}
			}
		}
	case m3u8.MEDIA:
		media := pl.(*m3u8.MediaPlaylist)
		if media.Key != nil && media.Key.URI != "" {
			media.Key.URI = proxify(media.Key.URI)
		}
		if media.Map != nil && media.Map.URI != "" {
			media.Map.URI = proxify(media.Map.URI)
		}
		for _, seg := range media.Segments {
			if seg == nil {
				continue
			}
			seg.URI = proxify(seg.URI)
			if seg.Key != nil && seg.Key.URI != "" {
				seg.Key.URI = proxify(seg.Key.URI)
			}
			if seg.Map != nil && seg.Map.URI != "" {
				seg.Map.URI = proxify(seg.Map.URI)
			}
		}
	}
	return pl.Encode().Bytes(), nil
}

// proxifier resolves a URI against base and wraps http(s) results in the
// stream proxy. Already proxied and non-http URIs are left alone, so shared
// keys and renditions are safe to visit twice.
func proxifier(base *url.URL) func(string) string {
	return func(uri string) string {
		uri = strings.TrimSpace(uri)
		if uri == "" || strings.HasPrefix(uri, viewtypes.StreamProxyPath+"?") {
			return uri
		}
		ref, err := url.Parse(uri)
		if err != nil {
			return uri
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return uri
		}
		return viewtypes.StreamProxyURL(abs.String())
	}
}

func rewriteLines(body []byte, proxify func(string) string) []byte {
	lines := strings.Split(string(body), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.TrimSpace(line) == "":
		case strings.HasPrefix(line, "#"):
			line = uriAttrRe.ReplaceAllStringFunc(line, func(m string) string {
				return `URI="` + proxify(uriAttrRe.FindStringSubmatch(m)[1]) + `"`
			})
		default:
			line = proxify(line)
		}
		lines[i] = line
	}
	return []byte(strings.Join(lines, "\n"))
}
