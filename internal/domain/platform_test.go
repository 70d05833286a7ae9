package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://www.youtube.com/watch?v=abc", PlatformYouTube},
		{"https://youtu.be/abc", PlatformYouTube},
		{"https://m.youtube.com/watch?v=abc", PlatformYouTube},
		{"https://www.tiktok.com/@user/video/1", PlatformTikTok},
		{"https://instagram.com/p/xyz", PlatformInstagram},
		{"https://www.facebook.com/watch/?v=1", PlatformFacebook},
		{"https://fb.watch/abc", PlatformFacebook},
		{"https://twitter.com/user/status/123", PlatformTwitter},
		{"https://x.com/user/status/123", PlatformTwitter},
		{"https://vimeo.com/12345", PlatformVimeo},
		{"HTTPS://WWW.YOUTUBE.COM/watch?v=abc", PlatformYouTube},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			parsed, ok := ParseURL(tt.url)
			require.True(t, ok)
			assert.Equal(t, tt.expected, parsed.Platform)
			assert.Equal(t, tt.url, parsed.RawURL)
		})
	}
}

func TestParseURL_Fields(t *testing.T) {
	parsed, ok := ParseURL("https://www.youtube.com/watch?v=abc")
	require.True(t, ok)

	assert.Equal(t, "youtube.com", parsed.Domain)
	assert.Equal(t, "/watch", parsed.Path)
}

func TestParseURL_Rejects(t *testing.T) {
	urls := []string{
		"",
		"https://example.com/video",
		"https://example.com/x",
		"not a url",
		"youtube.com/watch?v=abc", // no scheme, so no host
		"http://%zz",
		"://missing-scheme",
	}

	for _, raw := range urls {
		t.Run(raw, func(t *testing.T) {
			parsed, ok := ParseURL(raw)
			assert.False(t, ok)
			assert.Nil(t, parsed)
		})
	}
}

func TestIsSupportedURL_MatchesParseURL(t *testing.T) {
	urls := []string{
		"",
		"https://www.youtube.com/watch?v=abc",
		"https://example.com/video",
		"http://%zz",
		"https://vimeo.com/1",
	}

	for _, raw := range urls {
		_, ok := ParseURL(raw)
		assert.Equal(t, ok, IsSupportedURL(raw), raw)
	}
}

func TestDetectPlatform(t *testing.T) {
	assert.Equal(t, PlatformTwitter, DetectPlatform("https://x.com/user/status/1"))
	assert.Equal(t, Platform(""), DetectPlatform("https://example.com"))
}

func TestSupportedPlatforms(t *testing.T) {
	assert.Equal(t, []Platform{
		PlatformYouTube,
		PlatformTikTok,
		PlatformInstagram,
		PlatformFacebook,
		PlatformTwitter,
		PlatformVimeo,
	}, SupportedPlatforms())
}
