package infrastructure

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vidfetch-go/internal/domain"
)

type recordedCommand struct {
	name string
	args []string
}

func newTestNotifier(method string, enabled bool, runErr error) (*NotificationService, *[]recordedCommand) {
	calls := &[]recordedCommand{}
	n := NewNotificationService(&domain.NotificationConfig{Enabled: enabled, Method: method}, nil)
	n.run = func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, recordedCommand{name: name, args: args})
		return runErr
	}
	return n, calls
}

func TestNotificationService_Disabled(t *testing.T) {
	n, calls := newTestNotifier("notify-send", false, nil)

	require.NoError(t, n.Send("title", "message"))
	assert.Empty(t, *calls)
}

func TestNotificationService_NotifySend(t *testing.T) {
	n, calls := newTestNotifier("notify-send", true, nil)

	n.NotifyDownloadCompleted("https://youtu.be/abc", domain.PlatformYouTube, "/tmp/downloads/My Video.mp4")

	require.Len(t, *calls, 1)
	assert.Equal(t, "notify-send", (*calls)[0].name)
	assert.Equal(t, []string{"Download Completed", "Saved My Video.mp4 (youtube)"}, (*calls)[0].args)
}

func TestNotificationService_OSAScriptQuotes(t *testing.T) {
	n, calls := newTestNotifier("osascript", true, nil)

	require.NoError(t, n.Send(`say "hi"`, "done"))

	require.Len(t, *calls, 1)
	assert.Equal(t, "osascript", (*calls)[0].name)
	assert.Equal(t, `display notification "done" with title "say \"hi\""`, (*calls)[0].args[1])
}

func TestNotificationService_RunError(t *testing.T) {
	n, _ := newTestNotifier("notify-send", true, errors.New("not installed"))

	assert.Error(t, n.Send("t", "m"))
}

func TestNotificationService_UnknownMethod(t *testing.T) {
	n, calls := newTestNotifier("carrier-pigeon", true, nil)

	assert.NoError(t, n.Send("t", "m"))
	assert.Empty(t, *calls)
}

func TestNotificationService_NilSafe(t *testing.T) {
	var n *NotificationService

	assert.NoError(t, n.Send("t", "m"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcde...", truncateString("abcdefghij", 5))
	assert.Equal(t, "ошибк...", truncateString("ошибка загрузки", 5))
	assert.Equal(t, "日本語", truncateString("  日本語  ", 3))
}
