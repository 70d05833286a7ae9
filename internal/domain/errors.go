package domain

import "errors"

var (
	// ErrUnsupportedURL is returned when the classifier rejects a URL
	ErrUnsupportedURL = errors.New("unsupported URL")

	// ErrNotFound is returned when a stored file does not exist
	ErrNotFound = errors.New("file not found")

	// ErrEngineNotFound is returned when the engine binary is missing
	ErrEngineNotFound = errors.New("yt-dlp not found in PATH")
)

// EngineError wraps any failure reported by the external engine.
// Extraction and transfer failures are not distinguished.
type EngineError struct {
	Op      string // "download" or "formats"
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Message
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
