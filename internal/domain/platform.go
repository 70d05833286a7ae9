package domain

import (
	"net/url"
	"strings"
)

// Platform represents the video-hosting service a URL belongs to
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter" // X/Twitter
	PlatformVimeo     Platform = "vimeo"
)

// supportedDomains maps host substrings to platforms. Order matters: the
// first entry contained in the host wins.
var supportedDomains = []struct {
	domain   string
	platform Platform
}{
	{"youtube.com", PlatformYouTube},
	{"youtu.be", PlatformYouTube},
	{"tiktok.com", PlatformTikTok},
	{"instagram.com", PlatformInstagram},
	{"facebook.com", PlatformFacebook},
	{"fb.watch", PlatformFacebook},
	{"twitter.com", PlatformTwitter},
	{"x.com", PlatformTwitter},
	{"vimeo.com", PlatformVimeo},
}

// ParsedURL is the result of a successful classification
type ParsedURL struct {
	Platform Platform `json:"platform"`
	RawURL   string   `json:"url"`
	Domain   string   `json:"domain"`
	Path     string   `json:"path"`
}

// ParseURL classifies a URL by its host. Unparsable URLs and hosts that
// match no supported platform both return false.
func ParseURL(raw string) (*ParsedURL, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return nil, false
	}

	for _, entry := range supportedDomains {
		if strings.Contains(host, entry.domain) {
			return &ParsedURL{
				Platform: entry.platform,
				RawURL:   raw,
				Domain:   host,
				Path:     parsed.Path,
			}, true
		}
	}

	return nil, false
}

// IsSupportedURL reports whether ParseURL accepts the URL
func IsSupportedURL(raw string) bool {
	_, ok := ParseURL(raw)
	return ok
}

// DetectPlatform returns the platform for a URL, or "" if unsupported
func DetectPlatform(raw string) Platform {
	parsed, ok := ParseURL(raw)
	if !ok {
		return ""
	}
	return parsed.Platform
}

// SupportedPlatforms lists every platform once, in table order
func SupportedPlatforms() []Platform {
	seen := make(map[Platform]bool)
	platforms := make([]Platform, 0, len(supportedDomains))
	for _, entry := range supportedDomains {
		if seen[entry.platform] {
			continue
		}
		seen[entry.platform] = true
		platforms = append(platforms, entry.platform)
	}
	return platforms
}

