// Package progress turns raw engine progress samples into the strings a
// front end displays.
package progress

import (
	"fmt"

	"github.com/yourusername/vidfetch-go/internal/domain"
)

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

// FormatSpeed renders a transfer rate in B/s, KB/s or MB/s
func FormatSpeed(bytesPerSec float64) string {
	switch {
	case bytesPerSec <= 0:
		return "- B/s"
	case bytesPerSec < kib:
		return fmt.Sprintf("%.1f B/s", bytesPerSec)
	case bytesPerSec < mib:
		return fmt.Sprintf("%.1f KB/s", bytesPerSec/kib)
	default:
		return fmt.Sprintf("%.1f MB/s", bytesPerSec/mib)
	}
}

// FormatETA renders remaining seconds, omitting zero-valued leading units
func FormatETA(seconds int64) string {
	if seconds <= 0 {
		return "-"
	}

	minutes, secs := seconds/60, seconds%60
	hours, minutes := minutes/60, minutes%60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// FormatBytes renders a size in B, KB, MB or GB
func FormatBytes(n int64) string {
	switch {
	case n <= 0:
		return "0 B"
	case n < kib:
		return fmt.Sprintf("%d B", n)
	case n < mib:
		return fmt.Sprintf("%.1f KB", float64(n)/kib)
	case n < gib:
		return fmt.Sprintf("%.1f MB", float64(n)/mib)
	default:
		return fmt.Sprintf("%.1f GB", float64(n)/gib)
	}
}

// PercentComplete returns done/total as a percentage, or 0 when the total
// is unknown.
func PercentComplete(done, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// Snapshot is a ProgressSample rendered for display
type Snapshot struct {
	Percent    float64 `json:"percent"`
	Speed      string  `json:"speed"`
	ETA        string  `json:"eta"`
	Downloaded string  `json:"downloaded"`
	Total      string  `json:"total"`
}

// Describe folds a sample into a Snapshot. Absent fields render the same
// way as zero.
func Describe(sample domain.ProgressSample) Snapshot {
	var total, eta int64
	var speed float64
	if sample.TotalBytes != nil {
		total = *sample.TotalBytes
	}
	if sample.Speed != nil {
		speed = *sample.Speed
	}
	if sample.ETA != nil {
		eta = *sample.ETA
	}

	return Snapshot{
		Percent:    PercentComplete(sample.DownloadedBytes, total),
		Speed:      FormatSpeed(speed),
		ETA:        FormatETA(eta),
		Downloaded: FormatBytes(sample.DownloadedBytes),
		Total:      FormatBytes(total),
	}
}

// Fraction returns Percent scaled to 0..1, clamped, for progress bars
func (s Snapshot) Fraction() float64 {
	f := s.Percent / 100
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
