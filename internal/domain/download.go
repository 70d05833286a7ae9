package domain

import "fmt"

// SelectorMode tells the orchestrator how to read DownloadRequest.Format
type SelectorMode string

const (
	SelectorContainer SelectorMode = "container" // generic container name, e.g. "mp4"
	SelectorFormatID  SelectorMode = "format_id" // engine-native format identifier
)

// DownloadRequest represents one download asked for by a front end.
// Construct it only after the URL has passed ParseURL.
type DownloadRequest struct {
	URL    string       `json:"url"`
	Format string       `json:"format"`
	Mode   SelectorMode `json:"mode"`
}

// NewContainerRequest builds a request for the HTTP path
func NewContainerRequest(url, container string) DownloadRequest {
	return DownloadRequest{URL: url, Format: container, Mode: SelectorContainer}
}

// NewFormatIDRequest builds a request for an exact engine format
func NewFormatIDRequest(url, formatID string) DownloadRequest {
	return DownloadRequest{URL: url, Format: formatID, Mode: SelectorFormatID}
}

// ValidateMode checks if a selector mode is valid
func ValidateMode(mode SelectorMode) bool {
	return mode == SelectorContainer || mode == SelectorFormatID
}

// DownloadResult is the terminal outcome of a download: either a file path
// or an error message, never both.
type DownloadResult struct {
	FilePath string `json:"file_path,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Succeeded returns the success variant
func Succeeded(filePath string) DownloadResult {
	return DownloadResult{FilePath: filePath}
}

// Failed returns the failure variant
func Failed(message string) DownloadResult {
	if message == "" {
		message = "download failed"
	}
	return DownloadResult{Error: message}
}

// OK reports whether the download succeeded
func (r DownloadResult) OK() bool {
	return r.Error == ""
}

// Err returns the failure as an *EngineError, or nil on success
func (r DownloadResult) Err() error {
	if r.OK() {
		return nil
	}
	return &EngineError{Op: "download", Message: r.Error}
}

// ProgressSample is one point-in-time snapshot of an active transfer.
// Optional fields are nil when the engine did not report them.
type ProgressSample struct {
	DownloadedBytes int64    `json:"downloaded_bytes"`
	TotalBytes      *int64   `json:"total_bytes,omitempty"`
	Speed           *float64 `json:"speed,omitempty"` // bytes per second
	ETA             *int64   `json:"eta,omitempty"`   // seconds
}

// ProgressFunc receives progress samples during a download
type ProgressFunc func(ProgressSample)

// FormatDescriptor describes one downloadable format reported by the engine
type FormatDescriptor struct {
	Resolution string `json:"resolution"`
	Note       string `json:"note"`
	Extension  string `json:"ext"`
	FormatID   string `json:"format_id"`
}

// Label renders the descriptor the way the format picker shows it
func (f FormatDescriptor) Label() string {
	return fmt.Sprintf("%s - %s (%s) [%s]", f.Resolution, f.Note, f.Extension, f.FormatID)
}
