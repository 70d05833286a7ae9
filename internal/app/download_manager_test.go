package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vidfetch-go/internal/domain"
	"github.com/yourusername/vidfetch-go/pkg/logger"
)

// mockEngine implements domain.Engine for testing
type mockEngine struct {
	mu sync.Mutex

	path     string
	err      error
	panicVal any
	samples  []domain.ProgressSample
	formats  []domain.EngineFormat

	gotURL  string
	gotExpr string
	calls   int
}

func (m *mockEngine) Download(_ context.Context, url, formatExpr string, onProgress domain.ProgressFunc) (string, error) {
	m.mu.Lock()
	m.calls++
	m.gotURL = url
	m.gotExpr = formatExpr
	m.mu.Unlock()

	if m.panicVal != nil {
		panic(m.panicVal)
	}
	for _, s := range m.samples {
		if onProgress != nil {
			onProgress(s)
		}
	}
	return m.path, m.err
}

func (m *mockEngine) Formats(_ context.Context, url string) ([]domain.EngineFormat, error) {
	m.mu.Lock()
	m.calls++
	m.gotURL = url
	m.mu.Unlock()

	if m.panicVal != nil {
		panic(m.panicVal)
	}
	return m.formats, m.err
}

type mockRecorder struct {
	started  []string
	finished []bool
	listed   []bool
}

func (r *mockRecorder) DownloadStarted(platform string) { r.started = append(r.started, platform) }
func (r *mockRecorder) DownloadFinished(_ string, ok bool, _ time.Duration) {
	r.finished = append(r.finished, ok)
}
func (r *mockRecorder) FormatsListed(_ string, ok bool) { r.listed = append(r.listed, ok) }

type mockNotifier struct {
	completed []string
	failed    []string
}

func (n *mockNotifier) NotifyDownloadCompleted(_ string, _ domain.Platform, filePath string) {
	n.completed = append(n.completed, filePath)
}

func (n *mockNotifier) NotifyDownloadFailed(_ string, _ domain.Platform, reason string) {
	n.failed = append(n.failed, reason)
}

func testDownloadConfig() *domain.DownloadConfig {
	return &domain.DownloadConfig{OutputDir: "downloads", DefaultFormat: "mp4", AudioExt: "m4a"}
}

func TestDownload_Success(t *testing.T) {
	engine := &mockEngine{path: "downloads/title.mp4"}
	recorder := &mockRecorder{}
	notifier := &mockNotifier{}
	dm := NewDownloadManager(engine, testDownloadConfig(), notifier, recorder, nil, nil)

	result := dm.Download(context.Background(),
		domain.NewContainerRequest("https://www.youtube.com/watch?v=abc", "mp4"), nil)

	assert.True(t, result.OK())
	assert.Equal(t, "downloads/title.mp4", result.FilePath)
	assert.Equal(t, "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best", engine.gotExpr)
	assert.Equal(t, []string{"youtube"}, recorder.started)
	assert.Equal(t, []bool{true}, recorder.finished)
	assert.Equal(t, []string{"downloads/title.mp4"}, notifier.completed)
}

func TestDownload_FormatIDPassthrough(t *testing.T) {
	engine := &mockEngine{path: "downloads/title.webm"}
	dm := NewDownloadManager(engine, testDownloadConfig(), nil, nil, nil, nil)

	result := dm.Download(context.Background(),
		domain.NewFormatIDRequest("https://vimeo.com/1", "303+251"), nil)

	require.True(t, result.OK())
	assert.Equal(t, "303+251", engine.gotExpr)
}

func TestDownload_RejectsUnknownMode(t *testing.T) {
	engine := &mockEngine{path: "downloads/title.mp4"}
	recorder := &mockRecorder{}
	dm := NewDownloadManager(engine, testDownloadConfig(), nil, recorder, nil, nil)

	req := domain.DownloadRequest{URL: "https://vimeo.com/1", Format: "mp4", Mode: "playlist"}
	result := dm.Download(context.Background(), req, nil)

	assert.False(t, result.OK())
	assert.Equal(t, `invalid selector mode "playlist"`, result.Error)
	assert.Zero(t, engine.calls)
	assert.Empty(t, recorder.started)
}

func TestDownload_ForwardsProgress(t *testing.T) {
	total := int64(100)
	engine := &mockEngine{
		path: "downloads/a.mp4",
		samples: []domain.ProgressSample{
			{DownloadedBytes: 10, TotalBytes: &total},
			{DownloadedBytes: 100, TotalBytes: &total},
		},
	}
	dm := NewDownloadManager(engine, testDownloadConfig(), nil, nil, nil, nil)

	var got []int64
	result := dm.Download(context.Background(),
		domain.NewContainerRequest("https://vimeo.com/1", "mp4"),
		func(s domain.ProgressSample) { got = append(got, s.DownloadedBytes) })

	require.True(t, result.OK())
	assert.Equal(t, []int64{10, 100}, got)
}

func TestDownload_EngineError(t *testing.T) {
	engine := &mockEngine{err: &domain.EngineError{Op: "download", Message: "ERROR: Video unavailable"}}
	recorder := &mockRecorder{}
	notifier := &mockNotifier{}
	dm := NewDownloadManager(engine, testDownloadConfig(), notifier, recorder, nil, nil)

	result := dm.Download(context.Background(),
		domain.NewContainerRequest("https://www.youtube.com/watch?v=gone", "mp4"), nil)

	assert.False(t, result.OK())
	assert.Empty(t, result.FilePath)
	assert.Equal(t, "ERROR: Video unavailable", result.Error)
	assert.Equal(t, []bool{false}, recorder.finished)
	assert.Equal(t, []string{"ERROR: Video unavailable"}, notifier.failed)
	assert.Equal(t, 1, engine.calls)
}

func TestDownload_PlainError(t *testing.T) {
	engine := &mockEngine{err: errors.New("exit status 1")}
	dm := NewDownloadManager(engine, testDownloadConfig(), nil, nil, nil, nil)

	result := dm.Download(context.Background(),
		domain.NewContainerRequest("https://vimeo.com/1", "mp4"), nil)

	assert.False(t, result.OK())
	assert.Equal(t, "exit status 1", result.Error)
}

func TestDownload_EnginePanicBecomesFailure(t *testing.T) {
	engine := &mockEngine{panicVal: "boom"}
	dm := NewDownloadManager(engine, testDownloadConfig(), nil, nil, nil, nil)

	var result domain.DownloadResult
	require.NotPanics(t, func() {
		result = dm.Download(context.Background(),
			domain.NewContainerRequest("https://vimeo.com/1", "mp4"), nil)
	})

	assert.False(t, result.OK())
	assert.Contains(t, result.Error, "boom")
}

func TestDownload_EmptyPathIsFailure(t *testing.T) {
	engine := &mockEngine{}
	dm := NewDownloadManager(engine, testDownloadConfig(), nil, nil, nil, nil)

	result := dm.Download(context.Background(),
		domain.NewContainerRequest("https://vimeo.com/1", "mp4"), nil)

	assert.False(t, result.OK())
	assert.Equal(t, "engine reported no output file", result.Error)
}

func TestDownload_WritesEvents(t *testing.T) {
	dir := t.TempDir()
	events, err := logger.NewMultiLogger(logger.MultiLoggerConfig{Level: "info", LogsDir: dir})
	require.NoError(t, err)

	engine := &mockEngine{path: "downloads/title.mp4"}
	dm := NewDownloadManager(engine, testDownloadConfig(), nil, nil, events, nil)

	dm.Download(context.Background(), domain.NewContainerRequest("https://youtu.be/abc", "mp4"), nil)
	require.NoError(t, events.Close())

	entries, err := logger.NewLogReader(dir).ReadLogs(logger.CategoryDownload, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "download_started", entries[0].Message)
	assert.Equal(t, "download_completed", entries[1].Message)
	assert.Equal(t, "downloads/title.mp4", entries[1].Fields["file"])
}

func TestListFormats_DropsAudioOnly(t *testing.T) {
	engine := &mockEngine{formats: []domain.EngineFormat{
		{FormatID: "140", Extension: "m4a", Resolution: "audio only", FormatNote: "medium", VideoCodec: "none"},
		{FormatID: "18", Extension: "mp4", Resolution: "640x360", FormatNote: "360p", VideoCodec: "avc1"},
		{FormatID: "hls-1", Extension: "mp4", Resolution: "1280x720", FormatNote: ""},
		{FormatID: "137", Extension: "mp4", Resolution: "1920x1080", FormatNote: "1080p", VideoCodec: "avc1"},
	}}
	recorder := &mockRecorder{}
	dm := NewDownloadManager(engine, testDownloadConfig(), nil, recorder, nil, nil)

	formats, err := dm.ListFormats(context.Background(), "https://www.youtube.com/watch?v=abc")
	require.NoError(t, err)

	require.Len(t, formats, 3)
	assert.Equal(t, "18", formats[0].FormatID)
	assert.Equal(t, "hls-1", formats[1].FormatID)
	assert.Equal(t, "137", formats[2].FormatID)
	assert.Equal(t, "640x360 - 360p (mp4) [18]", formats[0].Label())
	assert.Equal(t, []bool{true}, recorder.listed)
}

func TestListFormats_Error(t *testing.T) {
	engine := &mockEngine{
		formats: []domain.EngineFormat{{FormatID: "18", VideoCodec: "avc1"}},
		err:     errors.New("exit status 1"),
	}
	dm := NewDownloadManager(engine, testDownloadConfig(), nil, nil, nil, nil)

	formats, err := dm.ListFormats(context.Background(), "https://vimeo.com/1")

	assert.Nil(t, formats)
	var engineErr *domain.EngineError
	require.True(t, errors.As(err, &engineErr))
	assert.Equal(t, "formats", engineErr.Op)
}

func TestListFormats_Panic(t *testing.T) {
	engine := &mockEngine{panicVal: errors.New("nil map")}
	dm := NewDownloadManager(engine, testDownloadConfig(), nil, nil, nil, nil)

	formats, err := dm.ListFormats(context.Background(), "https://vimeo.com/1")

	assert.Nil(t, formats)
	assert.ErrorContains(t, err, "nil map")
}

func TestFormatExpression(t *testing.T) {
	cfg := testDownloadConfig()

	tests := []struct {
		name     string
		req      domain.DownloadRequest
		config   *domain.DownloadConfig
		expected string
	}{
		{
			name:     "container",
			req:      domain.NewContainerRequest("u", "webm"),
			config:   cfg,
			expected: "bestvideo[ext=webm]+bestaudio[ext=m4a]/best[ext=webm]/best",
		},
		{
			name:     "empty container uses default",
			req:      domain.NewContainerRequest("u", ""),
			config:   &domain.DownloadConfig{DefaultFormat: "mkv", AudioExt: "opus"},
			expected: "bestvideo[ext=mkv]+bestaudio[ext=opus]/best[ext=mkv]/best",
		},
		{
			name:     "nil config",
			req:      domain.NewContainerRequest("u", ""),
			expected: "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		},
		{
			name:     "format id",
			req:      domain.NewFormatIDRequest("u", "22"),
			config:   cfg,
			expected: "22",
		},
		{
			name:     "empty format id falls back to container",
			req:      domain.NewFormatIDRequest("u", ""),
			config:   cfg,
			expected: "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatExpression(tt.req, tt.config))
		})
	}
}
