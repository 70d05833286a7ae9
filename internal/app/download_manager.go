package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/vidfetch-go/internal/domain"
	"github.com/yourusername/vidfetch-go/pkg/logger"
)

// Recorder receives download and format-listing outcomes for metrics
type Recorder interface {
	DownloadStarted(platform string)
	DownloadFinished(platform string, ok bool, elapsed time.Duration)
	FormatsListed(platform string, ok bool)
}

// Notifier announces finished downloads outside the process
type Notifier interface {
	NotifyDownloadCompleted(url string, platform domain.Platform, filePath string)
	NotifyDownloadFailed(url string, platform domain.Platform, reason string)
}

type nopRecorder struct{}

func (nopRecorder) DownloadStarted(string)                      {}
func (nopRecorder) DownloadFinished(string, bool, time.Duration) {}
func (nopRecorder) FormatsListed(string, bool)                  {}

type nopNotifier struct{}

func (nopNotifier) NotifyDownloadCompleted(string, domain.Platform, string) {}
func (nopNotifier) NotifyDownloadFailed(string, domain.Platform, string)    {}

// DownloadManager runs downloads and format listings against the engine.
// It never validates URLs; callers classify them first.
type DownloadManager struct {
	engine   domain.Engine
	config   *domain.DownloadConfig
	notifier Notifier
	metrics  Recorder
	events   *logger.MultiLogger
	logger   *zap.Logger
}

// NewDownloadManager creates a new download manager. notifier, metrics and
// events may be nil.
func NewDownloadManager(
	engine domain.Engine,
	config *domain.DownloadConfig,
	notifier Notifier,
	metrics Recorder,
	events *logger.MultiLogger,
	log *zap.Logger,
) *DownloadManager {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &DownloadManager{
		engine:   engine,
		config:   config,
		notifier: notifier,
		metrics:  metrics,
		events:   events,
		logger:   log,
	}
}

// Download runs one request to completion. Every engine failure, including
// a panic, comes back as a failed DownloadResult; there are no retries.
func (dm *DownloadManager) Download(ctx context.Context, req domain.DownloadRequest, onProgress domain.ProgressFunc) domain.DownloadResult {
	if !domain.ValidateMode(req.Mode) {
		dm.logger.Warn("Rejected download request", zap.String("url", req.URL), zap.String("mode", string(req.Mode)))
		return domain.Failed(fmt.Sprintf("invalid selector mode %q", req.Mode))
	}

	platform := domain.DetectPlatform(req.URL)
	expr := FormatExpression(req, dm.config)

	fields := []zap.Field{
		zap.String("url", req.URL),
		zap.String("platform", string(platform)),
		zap.String("mode", string(req.Mode)),
		zap.String("format", expr),
	}

	dm.logger.Info("Starting download", fields...)
	dm.logEvent("download_started", fields...)
	dm.metrics.DownloadStarted(string(platform))
	started := time.Now()

	path, err := dm.runDownload(ctx, req.URL, expr, onProgress)
	if err == nil && path == "" {
		err = &domain.EngineError{Op: "download", Message: "engine reported no output file"}
	}

	elapsed := time.Since(started)
	dm.metrics.DownloadFinished(string(platform), err == nil, elapsed)

	if err != nil {
		message := errorMessage(err)
		fields = append(fields, zap.Duration("elapsed", elapsed), zap.String("error", message))

		dm.logger.Error("Download failed", fields...)
		dm.logEvent("download_failed", fields...)
		dm.logAppError("download failed", append(fields, zap.Error(err))...)
		dm.notifier.NotifyDownloadFailed(req.URL, platform, message)

		return domain.Failed(message)
	}

	fields = append(fields, zap.Duration("elapsed", elapsed), zap.String("file", path))
	dm.logger.Info("Download completed", fields...)
	dm.logEvent("download_completed", fields...)
	dm.notifier.NotifyDownloadCompleted(req.URL, platform, path)

	return domain.Succeeded(path)
}

// ListFormats returns the video-bearing formats for url in engine order.
// On failure the error is an *domain.EngineError and no partial list is
// returned.
func (dm *DownloadManager) ListFormats(ctx context.Context, url string) ([]domain.FormatDescriptor, error) {
	platform := domain.DetectPlatform(url)

	raw, err := dm.runFormats(ctx, url)
	dm.metrics.FormatsListed(string(platform), err == nil)
	if err != nil {
		dm.logger.Warn("Format listing failed",
			zap.String("url", url),
			zap.Error(err))
		dm.logAppError("format listing failed", zap.String("url", url), zap.Error(err))

		var engineErr *domain.EngineError
		if errors.As(err, &engineErr) {
			return nil, err
		}
		return nil, &domain.EngineError{Op: "formats", Err: err}
	}

	formats := make([]domain.FormatDescriptor, 0, len(raw))
	for _, f := range raw {
		if f.IsAudioOnly() {
			continue
		}
		formats = append(formats, f.Descriptor())
	}

	dm.logEvent("formats_listed",
		zap.String("url", url),
		zap.String("platform", string(platform)),
		zap.Int("reported", len(raw)),
		zap.Int("video", len(formats)))

	return formats, nil
}

func (dm *DownloadManager) runDownload(ctx context.Context, url, expr string, onProgress domain.ProgressFunc) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.EngineError{Op: "download", Message: fmt.Sprintf("engine panic: %v", r)}
		}
	}()
	return dm.engine.Download(ctx, url, expr, onProgress)
}

func (dm *DownloadManager) runFormats(ctx context.Context, url string) (formats []domain.EngineFormat, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.EngineError{Op: "formats", Message: fmt.Sprintf("engine panic: %v", r)}
		}
	}()
	return dm.engine.Formats(ctx, url)
}

func (dm *DownloadManager) logEvent(event string, fields ...zap.Field) {
	if dm.events != nil {
		dm.events.LogDownloadEvent(event, fields...)
	}
}

func (dm *DownloadManager) logAppError(msg string, fields ...zap.Field) {
	if dm.events != nil {
		dm.events.LogAppError(msg, fields...)
	}
}

// errorMessage returns the engine's own message when there is one
func errorMessage(err error) string {
	var engineErr *domain.EngineError
	if errors.As(err, &engineErr) && engineErr.Message != "" {
		return engineErr.Message
	}
	return err.Error()
}
