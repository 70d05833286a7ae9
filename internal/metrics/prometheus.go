// Package metrics exposes Prometheus collectors for downloads and format
// listings.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// PrometheusMetrics records download and format-listing outcomes
type PrometheusMetrics struct {
	namespace string

	downloadsTotal   *prometheus.CounterVec
	downloadDuration *prometheus.HistogramVec
	inProgress       *prometheus.GaugeVec
	formatsTotal     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg means
// prometheus.DefaultRegisterer. Registration panics on duplicate names.
func New(namespace string, reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PrometheusMetrics{namespace: namespace}

	m.downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Finished downloads by platform and status",
		},
		[]string{"platform", "status"},
	)

	// downloads range from seconds to tens of minutes
	m.downloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "download_duration_seconds",
			Help:      "Download duration by platform",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"platform"},
	)

	m.inProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "downloads_in_progress",
			Help:      "Downloads currently running",
		},
		[]string{"platform"},
	)

	m.formatsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "format_listings_total",
			Help:      fmt.Sprintf("Format listings served by %s", namespace),
		},
		[]string{"platform", "status"},
	)

	reg.MustRegister(m.downloadsTotal, m.downloadDuration, m.inProgress, m.formatsTotal)

	return m
}

// DownloadStarted marks one download as in progress
func (m *PrometheusMetrics) DownloadStarted(platform string) {
	m.inProgress.WithLabelValues(label(platform)).Inc()
}

// DownloadFinished records the outcome and duration of one download
func (m *PrometheusMetrics) DownloadFinished(platform string, ok bool, elapsed time.Duration) {
	platform = label(platform)
	m.inProgress.WithLabelValues(platform).Dec()
	m.downloadsTotal.WithLabelValues(platform, status(ok)).Inc()
	m.downloadDuration.WithLabelValues(platform).Observe(elapsed.Seconds())
}

// FormatsListed records one format listing
func (m *PrometheusMetrics) FormatsListed(platform string, ok bool) {
	m.formatsTotal.WithLabelValues(label(platform), status(ok)).Inc()
}

func status(ok bool) string {
	if ok {
		return statusSuccess
	}
	return statusError
}

func label(platform string) string {
	if platform == "" {
		return "unknown"
	}
	return platform
}
