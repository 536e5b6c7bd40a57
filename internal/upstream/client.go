// Package upstream talks to the short-drama catalog API. Every failure is
// logged and reported to callers as "no data"; nothing here panics or leaks
// upstream error detail to end users.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"thirdcoast.systems/dramahub/internal/metrics"
)

const (
	DefaultBaseURL   = "https://api.sansekai.my.id/api"
	DefaultTimeout   = 8 * time.Second
	DefaultRateLimit = 20
	DefaultMaxBody   = 8 << 20

	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

var (
	// ErrBlankID is returned for endpoints whose id query parameter is empty.
	ErrBlankID = errors.New("upstream: endpoint has an empty id parameter")
	// ErrTooLarge is returned when a response exceeds the body cap.
	ErrTooLarge = errors.New("upstream: response body too large")
	// ErrEmptyBody is returned for 2xx responses without content.
	ErrEmptyBody = errors.New("upstream: empty response body")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: unexpected status %d: %s", e.Code, e.Body)
}

// blankIDParams are query parameters that must not be sent without a value.
var blankIDParams = []string{"bookId=", "shortPlayId=", "id=", "videoId="}

// Options configures a Client. Zero values take the package defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is the sustained requests per second; bursts up to the same
	// count are allowed.
	RateLimit float64
	MaxBody   int64
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	maxBody int64
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limit := opts.RateLimit
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	maxBody := opts.MaxBody
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if hc.Timeout == 0 {
		c := *hc
		c.Timeout = timeout
		hc = &c
	}

	return &Client{
		baseURL: baseURL,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(limit), max(1, int(limit))),
		maxBody: maxBody,
	}
}

// BaseURL returns the normalized API base.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch returns the decoded JSON for endpoint, or nil on any failure. JSON
// numbers are kept as json.Number so long identifiers survive intact.
func (c *Client) Fetch(ctx context.Context, endpoint string) any {
	out, err := c.FetchJSON(ctx, endpoint)
	if err != nil {
		if !errors.Is(err, ErrBlankID) {
			slog.Warn("upstream fetch failed", "endpoint", endpoint, "error", err)
		}
		return nil
	}
	return out
}

// FetchJSON is Fetch with the failure cause.
func (c *Client) FetchJSON(ctx context.Context, endpoint string) (any, error) {
	endpoint = strings.TrimLeft(strings.TrimSpace(endpoint), "/")
	platform := platformOf(endpoint)

	if HasBlankID(endpoint) {
		metrics.UpstreamRequests.WithLabelValues(platform, metrics.OutcomeBlankID).Inc()
		return nil, ErrBlankID
	}

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.UpstreamRequests.WithLabelValues(platform, metrics.OutcomeRateLimited).Inc()
		return nil, fmt.Errorf("upstream: rate limiter: %w", err)
	}

	start := time.Now()
	out, outcome, err := c.do(ctx, endpoint)
	metrics.UpstreamDuration.WithLabelValues(platform).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequests.WithLabelValues(platform, outcome).Inc()
	return out, err
}

func (c *Client) do(ctx context.Context, endpoint string) (any, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint, nil)
	if err != nil {
		return nil, metrics.OutcomeTransport, err
	}
	req.Header.Set("User-Agent", BrowserUserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, metrics.OutcomeTransport, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, metrics.OutcomeStatus, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, metrics.OutcomeTransport, err
	}
	if int64(len(body)) > c.maxBody {
		return nil, metrics.OutcomeTooLarge, ErrTooLarge
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, metrics.OutcomeEmpty, ErrEmptyBody
	}

	var out any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, metrics.OutcomeDecode, fmt.Errorf("upstream: decode: %w", err)
	}
	if out == nil {
		return nil, metrics.OutcomeEmpty, ErrEmptyBody
	}
	return out, metrics.OutcomeOK, nil
}

// HasBlankID reports whether endpoint carries an id parameter with no value,
// either followed by another parameter or at the end of the string.
func HasBlankID(endpoint string) bool {
	for _, p := range blankIDParams {
		if strings.Contains(endpoint, p+"&") || strings.HasSuffix(endpoint, p) {
			return true
		}
	}
	return false
}

// platformOf is the first path segment of endpoint, used as a metric label.
func platformOf(endpoint string) string {
	seg, _, _ := strings.Cut(endpoint, "/")
	seg, _, _ = strings.Cut(seg, "?")
	if seg == "" {
		return "unknown"
	}
	return strings.ToLower(seg)
}
