// Package proxy_api relays cover images and video streams from platform CDNs
// that reject hot-linked requests.
package proxy_api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/dramahub/cmd/web/handlers/common"
)

const (
	DefaultImageTimeout     = 8 * time.Second
	DefaultImageFallbackURL = "https://wsrv.nl/"
	DefaultMaxImageBytes    = 10 << 20

	// maxPlaylistBytes caps HLS playlists read into memory for rewriting.
	maxPlaylistBytes = 4 << 20

	imageReferer = "https://www.netshort.com/"
)

type Options struct {
	// ImageFallbackURL is the external resizing service covers are
	// redirected to when the direct fetch fails.
	ImageFallbackURL string
	ImageTimeout     time.Duration
	// MaxImageBytes caps covers buffered in memory. Larger images go to the
	// fallback service.
	MaxImageBytes int64
	// HTTPClient is used for upstream media requests. Stream requests carry
	// no client timeout so long videos can play through.
	HTTPClient *http.Client
}

type Proxy struct {
	client       *http.Client
	imageTimeout time.Duration
	maxImage     int64
	fallback     string
}

func NewProxy(opts Options) *Proxy {
	if opts.ImageFallbackURL == "" {
		opts.ImageFallbackURL = DefaultImageFallbackURL
	}
	if opts.ImageTimeout <= 0 {
		opts.ImageTimeout = DefaultImageTimeout
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &Proxy{
		client:       opts.HTTPClient,
		imageTimeout: opts.ImageTimeout,
		maxImage:     opts.MaxImageBytes,
		fallback:     opts.ImageFallbackURL,
	}
}

// requireTargetParam reads the "url" query parameter as an absolute http(s)
// URL. Protocol-relative values are upgraded to https.
func requireTargetParam(c echo.Context) (*url.URL, error) {
	raw := strings.TrimSpace(c.QueryParam("url"))
	if raw == "" {
		return nil, common.ErrBadRequest("missing url")
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, common.ErrBadRequest("invalid url")
	}
	return u, nil
}

// refererFor returns the Referer and Origin a CDN expects for target. Empty
// values mean the header is left unset.
func refererFor(target string) (referer, origin string) {
	t := strings.ToLower(target)
	switch {
	case strings.Contains(t, "melolo"), strings.Contains(t, "mll"):
		return "https://www.melolo.com/", "https://www.melolo.com"
	case strings.Contains(t, "dramabox"):
		return "https://www.dramaboxdb.com/", ""
	case strings.Contains(t, "reelshort"):
		return "https://www.reelshort.com/", ""
	}
	return "", ""
}
