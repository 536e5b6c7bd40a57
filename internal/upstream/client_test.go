package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL + "/api/"
	if opts.RateLimit == 0 {
		opts.RateLimit = 1000
	}
	return NewClient(opts)
}

func TestFetch_DecodesJSONWithNumbers(t *testing.T) {
	var gotPath, gotQuery, gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"shortPlayId":1990001234567890123}}`))
	}, Options{})

	out := c.Fetch(context.Background(), "/netshort/allepisode?shortPlayId=42")
	require.NotNil(t, out)
	require.Equal(t, "/api/netshort/allepisode", gotPath)
	require.Equal(t, "shortPlayId=42", gotQuery)
	require.Contains(t, gotUA, "Mozilla/5.0")

	data := out.(map[string]any)["data"].(map[string]any)
	require.Equal(t, json.Number("1990001234567890123"), data["shortPlayId"])
}

func TestFetch_FailuresBecomeNil(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "non-2xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>maintenance</html>`))
			},
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			want: ErrEmptyBody,
		},
		{
			name: "json null",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`null`))
			},
			want: ErrEmptyBody,
		},
		{
			name: "too large",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"data":"` + strings.Repeat("x", 256) + `"}`))
			},
			want: ErrTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, tt.handler, Options{MaxBody: 128})

			require.Nil(t, c.Fetch(context.Background(), "dramabox/trending"))

			_, err := c.FetchJSON(context.Background(), "dramabox/trending")
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestFetch_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}, Options{})

	_, err := c.FetchJSON(context.Background(), "melolo/detail?bookId=1")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusNotFound, se.Code)
}

func TestFetch_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}, Options{Timeout: 50 * time.Millisecond})

	start := time.Now()
	require.Nil(t, c.Fetch(context.Background(), "reelshort/homepage"))
	require.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestFetch_BlankIDSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}, Options{})

	for _, ep := range []string{
		"dramabox/detail?bookId=",
		"netshort/allepisode?shortPlayId=&lang=id",
		"flickreels/detailAndAllEpisode?id=",
		"melolo/stream?videoId=",
	} {
		_, err := c.FetchJSON(context.Background(), ep)
		require.ErrorIs(t, err, ErrBlankID, ep)
	}
	require.Equal(t, int32(0), calls.Load())

	require.NotNil(t, c.Fetch(context.Background(), "dramabox/detail?bookId=7"))
	require.Equal(t, int32(1), calls.Load())
}

func TestFetch_CanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Nil(t, c.Fetch(ctx, "dramabox/latest"))
}

func TestHasBlankID(t *testing.T) {
	require.True(t, HasBlankID("x?bookId="))
	require.True(t, HasBlankID("x?bookId=&page=1"))
	require.False(t, HasBlankID("x?bookId=1"))
	require.False(t, HasBlankID("x?query=id"))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Options{})
	require.Equal(t, DefaultBaseURL, c.BaseURL())
	require.Equal(t, DefaultTimeout, c.http.Timeout)
	require.Equal(t, int64(DefaultMaxBody), c.maxBody)

	c = NewClient(Options{BaseURL: "https://example.com/api///"})
	require.Equal(t, "https://example.com/api", c.BaseURL())
}

func TestPlatformOf(t *testing.T) {
	require.Equal(t, "dramabox", platformOf("dramabox/trending"))
	require.Equal(t, "melolo", platformOf("Melolo?x=1"))
	require.Equal(t, "unknown", platformOf(""))
}
