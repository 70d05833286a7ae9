package domain

import "context"

// Engine is the external media-download engine. Implementations own
// extraction, format negotiation and transfer.
type Engine interface {
	// Download runs a transfer to completion and returns the saved file path.
	// The format expression is passed to the engine unchanged. onProgress may
	// be nil.
	Download(ctx context.Context, url, formatExpr string, onProgress ProgressFunc) (string, error)

	// Formats lists every format the engine reports for url, in engine order,
	// without downloading anything.
	Formats(ctx context.Context, url string) ([]EngineFormat, error)
}

// EngineFormat is a raw format entry as reported by the engine
type EngineFormat struct {
	FormatID   string `json:"format_id"`
	Extension  string `json:"ext"`
	Resolution string `json:"resolution"`
	FormatNote string `json:"format_note"`
	VideoCodec string `json:"vcodec"`
	AudioCodec string `json:"acodec"`
}

// IsAudioOnly reports whether the engine marked the format as having no video
func (f EngineFormat) IsAudioOnly() bool {
	return f.VideoCodec == "none"
}

// Descriptor converts the raw entry into a FormatDescriptor
func (f EngineFormat) Descriptor() FormatDescriptor {
	return FormatDescriptor{
		Resolution: f.Resolution,
		Note:       f.FormatNote,
		Extension:  f.Extension,
		FormatID:   f.FormatID,
	}
}
