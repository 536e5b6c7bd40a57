package catalog

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultPlaceholderImage replaces covers that are missing upstream.
const DefaultPlaceholderImage = "https://images.unsplash.com/photo-1598897349489-bc4746421e5a?q=80&w=1000&auto=format&fit=crop"

var (
	embeddedSchemeRe = regexp.MustCompile(`https?://`)
	absoluteURLRe    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
)

// proxyHosts are image hosts that reject hot-linked requests. Matching is by
// substring on the lower-cased hostname.
var proxyHosts = []string{
	"fizzopic.org",
	"ibyteimg.com",
	"byteimg.com",
	"netshort.com",
	"farsunpteltd.com",
	"flickreels.com",
}

// proxyPlatforms always need proxying regardless of host.
var proxyPlatforms = map[Platform]struct{}{
	PlatformMelolo: {},
}

// NormalizeCover turns a raw cover value into an absolute URL. Missing
// values yield placeholder. The result is stable under repeated application.
func NormalizeCover(raw string, platform Platform, placeholder string) string {
	if placeholder == "" {
		placeholder = DefaultPlaceholderImage
	}
	s := PresentString(raw)
	if s == "" {
		return placeholder
	}

	// Some upstream fields concatenate two URLs; the last one is the image.
	if locs := embeddedSchemeRe.FindAllStringIndex(s, -1); len(locs) > 1 {
		s = s[locs[len(locs)-1][0]:]
	}

	if strings.HasPrefix(s, "//") {
		return "https:" + s
	}
	if absoluteURLRe.MatchString(s) {
		return s
	}

	base := strings.TrimRight(ProfileFor(platform).CDNBase, "/")
	return base + "/" + strings.TrimLeft(s, "/")
}

// NeedsImageProxy reports whether cover must be fetched through the image
// proxy rather than hot-linked. Wrapping is the rendering layer's job.
func NeedsImageProxy(cover string, platform Platform) bool {
	if _, ok := proxyPlatforms[platform]; ok {
		return true
	}
	host := coverHost(cover)
	if host == "" {
		return false
	}
	for _, h := range proxyHosts {
		if strings.Contains(host, h) {
			return true
		}
	}
	return false
}

func coverHost(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
