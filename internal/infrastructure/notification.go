package infrastructure

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/vidfetch-go/internal/domain"
)

const notifyTimeout = 5 * time.Second

// commandRunner runs an external notifier command
type commandRunner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// NotificationService sends desktop notifications about finished downloads
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    commandRunner
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		config: config,
		logger: logger,
		run:    runCommand,
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if n == nil || n.config == nil || !n.config.Enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	var err error
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification %q with title %q`, message, title)
		err = n.run(ctx, "osascript", "-e", script)
	case "notify-send":
		err = n.run(ctx, "notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// NotifyDownloadCompleted announces the saved file
func (n *NotificationService) NotifyDownloadCompleted(url string, platform domain.Platform, filePath string) {
	message := fmt.Sprintf("Saved %s (%s)", filepath.Base(filePath), platformName(platform))
	n.Send("Download Completed", message)
}

// NotifyDownloadFailed announces a failed download
func (n *NotificationService) NotifyDownloadFailed(url string, platform domain.Platform, reason string) {
	message := fmt.Sprintf("Failed: %s (%s): %s", truncateString(url, 30), platformName(platform), truncateString(reason, 80))
	n.Send("Download Failed", message)
}

func platformName(p domain.Platform) string {
	if p == "" {
		return "unknown"
	}
	return string(p)
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= maxLen {
		return string(runes)
	}
	return string(runes[:maxLen]) + "..."
}
