package proxy_api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/dramahub/internal/metrics"
	"thirdcoast.systems/dramahub/internal/upstream"
)

// HandleImage fetches a cover with the referer its CDN expects. Covers that
// cannot be fetched are redirected to the fallback resizing service.
func (p *Proxy) HandleImage() echo.HandlerFunc {
	return func(c echo.Context) error {
		target, err := requireTargetParam(c)
		if err != nil {
			return err
		}
		clean := stripImageSuffix(target.String())

		body, contentType, err := p.fetchImage(c.Request().Context(), clean)
		if err != nil {
			slog.Warn("image proxy fetch failed, redirecting to fallback", "url", clean, "error", err)
			metrics.ProxyRequests.WithLabelValues("image", "fallback").Inc()
			return c.Redirect(http.StatusFound, p.fallbackURL(clean))
		}

		metrics.ProxyRequests.WithLabelValues("image", "ok").Inc()
		h := c.Response().Header()
		h.Set(echo.HeaderCacheControl, "public, max-age=31536000, immutable")
		h.Set(echo.HeaderAccessControlAllowOrigin, "*")
		return c.Blob(http.StatusOK, contentType, body)
	}
}

func (p *Proxy) fetchImage(ctx context.Context, target string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.imageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", upstream.BrowserUserAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Referer", imageReferer)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	if resp.ContentLength > p.maxImage {
		return nil, "", fmt.Errorf("image too large: %d bytes", resp.ContentLength)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxImage+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > p.maxImage {
		return nil, "", fmt.Errorf("image exceeds %d bytes", p.maxImage)
	}
	contentType := resp.Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "image/jpeg"
	}
	return body, contentType, nil
}

// fallbackURL points the resizing service at target without its query.
func (p *Proxy) fallbackURL(target string) string {
	src, _, _ := strings.Cut(target, "?")
	u, err := url.Parse(p.fallback)
	if err != nil {
		u, _ = url.Parse(DefaultImageFallbackURL)
	}
	q := url.Values{}
	q.Set("url", src)
	q.Set("output", "jpg")
	q.Set("n", "-1")
	u.RawQuery = q.Encode()
	return u.String()
}

// stripImageSuffix drops the "~tplv..." processing suffix some CDNs append.
func stripImageSuffix(s string) string {
	before, _, _ := strings.Cut(s, "~")
	return before
}
