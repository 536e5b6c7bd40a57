package proxy_api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/dramahub/cmd/web/handlers/common"
	"thirdcoast.systems/dramahub/internal/metrics"
	"thirdcoast.systems/dramahub/internal/upstream"
)

// HandleStream relays a video URL with Range support. HLS playlists are
// rewritten so every variant, segment and key is fetched through this proxy
// as well.
func (p *Proxy) HandleStream() echo.HandlerFunc {
	return func(c echo.Context) error {
		target, err := requireTargetParam(c)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, target.String(), nil)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid url")
		}
		req.Header.Set("User-Agent", upstream.BrowserUserAgent)
		req.Header.Set("Accept", "*/*")
		if r := c.Request().Header.Get("Range"); r != "" {
			req.Header.Set("Range", r)
		}
		referer, origin := refererFor(target.String())
		if referer != "" {
			req.Header.Set("Referer", referer)
		}
		if origin != "" {
			req.Header.Set("Origin", origin)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			slog.Warn("stream proxy fetch failed", "url", target.String(), "error", err)
			metrics.ProxyRequests.WithLabelValues("stream", "error").Inc()
			return common.ErrInternal("proxy failed")
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
			metrics.ProxyRequests.WithLabelValues("stream", "status").Inc()
			return c.String(resp.StatusCode, fmt.Sprintf("platform error: %d", resp.StatusCode))
		}

		h := c.Response().Header()
		h.Set(echo.HeaderAccessControlAllowOrigin, "*")
		h.Set(echo.HeaderCacheControl, "no-cache")

		contentType := resp.Header.Get(echo.HeaderContentType)
		if resp.StatusCode == http.StatusOK && isPlaylist(target.Path, contentType) {
			return p.relayPlaylist(c, resp, target)
		}

		if contentType == "" {
			contentType = "video/mp4"
		}
		h.Set("Accept-Ranges", "bytes")
		if v := resp.Header.Get("Content-Range"); v != "" {
			h.Set("Content-Range", v)
		}
		if v := resp.Header.Get(echo.HeaderContentLength); v != "" {
			h.Set(echo.HeaderContentLength, v)
		}
		metrics.ProxyRequests.WithLabelValues("stream", "ok").Inc()
		return c.Stream(resp.StatusCode, contentType, resp.Body)
	}
}

func (p *Proxy) relayPlaylist(c echo.Context, resp *http.Response, target fmt.Stringer) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistBytes+1))
	if err != nil {
		metrics.ProxyRequests.WithLabelValues("playlist", "error").Inc()
		return echo.NewHTTPError(http.StatusBadGateway, "proxy failed")
	}
	if len(body) > maxPlaylistBytes {
		metrics.ProxyRequests.WithLabelValues("playlist", "too_large").Inc()
		return echo.NewHTTPError(http.StatusBadGateway, "playlist too large")
	}

	out, err := RewritePlaylist(body, target.String())
	if err != nil {
		slog.Warn("playlist rewrite failed", "url", target.String(), "error", err)
		metrics.ProxyRequests.WithLabelValues("playlist", "error").Inc()
		return echo.NewHTTPError(http.StatusBadGateway, "invalid playlist")
	}
	metrics.ProxyRequests.WithLabelValues("playlist", "ok").Inc()
	return c.Blob(http.StatusOK, playlistContentType, out)
}

func isPlaylist(path, contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "mpegurl") || strings.HasSuffix(strings.ToLower(path), ".m3u8")
}
