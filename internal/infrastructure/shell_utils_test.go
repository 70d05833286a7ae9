package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", "''"},
		{"plain flag", "--newline", "--newline"},
		{"plain path", "/tmp/downloads", "/tmp/downloads"},
		{"url with query", "https://www.youtube.com/watch?v=abc", "'https://www.youtube.com/watch?v=abc'"},
		{"format expression", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best", "'bestvideo[ext=mp4]+bestaudio[ext=m4a]/best'"},
		{"output template", "downloads/%(title)s.%(ext)s", "'downloads/%(title)s.%(ext)s'"},
		{"spaces", "/tmp/my videos", "'/tmp/my videos'"},
		{"single quote", "it's", `'it'"'"'s'`},
		{"dollar", "$HOME", "'$HOME'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellEscape(tt.input))
		})
	}
}

func TestShellEscapeCommand(t *testing.T) {
	got := ShellEscapeCommand("yt-dlp", "-f", "best[ext=mp4]", "-o", "out dir/%(title)s.%(ext)s", "--", "https://vimeo.com/1")

	assert.Equal(t, "yt-dlp -f 'best[ext=mp4]' -o 'out dir/%(title)s.%(ext)s' -- https://vimeo.com/1", got)
}
