package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCover(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		platform Platform
		want     string
	}{
		{name: "empty", raw: "", platform: PlatformDramabox, want: DefaultPlaceholderImage},
		{name: "undefined", raw: "undefined", platform: PlatformDramabox, want: DefaultPlaceholderImage},
		{name: "null", raw: " null ", platform: PlatformMelolo, want: DefaultPlaceholderImage},
		{name: "protocol relative", raw: "//img.example.com/a.jpg", platform: PlatformDramabox, want: "https://img.example.com/a.jpg"},
		{name: "absolute", raw: "https://img.example.com/a.jpg", platform: PlatformDramabox, want: "https://img.example.com/a.jpg"},
		{name: "relative with slash", raw: "/a.jpg", platform: PlatformMelolo, want: "https://image.melolo.com/a.jpg"},
		{name: "relative bare", raw: "a.jpg", platform: PlatformNetshort, want: "https://v-image.netshort.tv/a.jpg"},
		{name: "unknown platform", raw: "x/a.jpg", platform: "other", want: "https://cdn.dramabox.com/x/a.jpg"},
		{name: "doubled url", raw: "https://proxy.example.com/https://img.example.com/a.jpg", platform: PlatformDramabox, want: "https://img.example.com/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCover(tt.raw, tt.platform, "")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeCover(got, tt.platform, ""), "not stable under reapplication")
		})
	}
}

func TestNormalizeCover_CustomPlaceholder(t *testing.T) {
	require.Equal(t, "/static/ph.png", NormalizeCover("", PlatformDramabox, "/static/ph.png"))
}

func TestNeedsImageProxy(t *testing.T) {
	require.True(t, NeedsImageProxy("https://cdn.dramabox.com/a.jpg", PlatformMelolo))
	require.True(t, NeedsImageProxy("https://p16-novel.ibyteimg.com/a.jpg~tplv.webp", PlatformDramabox))
	require.True(t, NeedsImageProxy("https://zshipubcdn.farsunpteltd.com/a.jpg", PlatformFlickreels))
	require.True(t, NeedsImageProxy("https://awscover.netshort.com/a.jpg", PlatformNetshort))
	require.False(t, NeedsImageProxy("https://cdn.dramabox.com/a.jpg", PlatformDramabox))
	require.False(t, NeedsImageProxy("", PlatformReelshort))
}
