package app

import (
	"fmt"

	"github.com/yourusername/vidfetch-go/internal/domain"
)

// FormatExpression builds the yt-dlp format expression for a request.
// Container mode prefers the best video in the container merged with the
// best audio, then a single-file in the container, then anything. Format-id
// mode passes the id through unchanged.
func FormatExpression(req domain.DownloadRequest, config *domain.DownloadConfig) string {
	if req.Mode == domain.SelectorFormatID && req.Format != "" {
		return req.Format
	}

	container := req.Format
	audio := "m4a"
	if config != nil {
		if container == "" {
			container = config.DefaultFormat
		}
		if config.AudioExt != "" {
			audio = config.AudioExt
		}
	}
	if container == "" {
		container = "mp4"
	}

	return fmt.Sprintf("bestvideo[ext=%s]+bestaudio[ext=%s]/best[ext=%s]/best", container, audio, container)
}
