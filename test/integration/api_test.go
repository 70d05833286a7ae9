//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/vidfetch-go/api"
	"github.com/yourusername/vidfetch-go/internal/app"
	"github.com/yourusername/vidfetch-go/internal/domain"
	"github.com/yourusername/vidfetch-go/internal/infrastructure"
	"github.com/yourusername/vidfetch-go/internal/metrics"
	"github.com/yourusername/vidfetch-go/pkg/logger"
)

// These tests run the real yt-dlp against a real video. Set
// VIDFETCH_INTEGRATION_URL to a short public video to enable them.
func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	videoURL := os.Getenv("VIDFETCH_INTEGRATION_URL")
	if videoURL == "" {
		t.Skip("VIDFETCH_INTEGRATION_URL not set")
	}
	if _, err := exec.LookPath("yt-dlp"); err != nil {
		t.Skip("yt-dlp not installed")
	}

	config := domain.DefaultConfig()
	config.Download.OutputDir = t.TempDir()
	config.Download.LogsDir = filepath.Join(config.Download.OutputDir, ".logs")

	log := zap.NewNop()
	events, err := logger.NewMultiLogger(logger.MultiLoggerConfig{Level: "debug", LogsDir: config.Download.LogsDir})
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	engine, err := infrastructure.NewYTDLPEngine(&config.Engine, &config.Download, events, log)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	manager := app.NewDownloadManager(engine, &config.Download, nil, metrics.New("vidfetch", registry), events, log)

	router := api.SetupRouter(api.RouterConfig{
		DownloadMgr: manager,
		Download:    &config.Download,
		Engine:      engine,
		Gatherer:    registry,
		Events:      events,
		Logger:      log,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, videoURL
}

func TestAPI_Ready(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_ListFormats(t *testing.T) {
	srv, videoURL := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/formats?url=" + url.QueryEscape(videoURL))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count   int `json:"count"`
		Formats []struct {
			FormatID string `json:"format_id"`
		} `json:"formats"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Positive(t, body.Count)
	assert.Len(t, body.Formats, body.Count)
}

func TestAPI_DownloadAndFetch(t *testing.T) {
	srv, videoURL := setupTestServer(t)

	payload, _ := json.Marshal(map[string]string{"url": videoURL, "format": "mp4"})
	resp, err := http.Post(srv.URL+"/download/", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Status   string `json:"status"`
		FilePath string `json:"file_path"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "success", result.Status)
	require.FileExists(t, result.FilePath)

	video, err := http.Get(srv.URL + "/video/" + url.PathEscape(filepath.Base(result.FilePath)))
	require.NoError(t, err)
	defer video.Body.Close()
	assert.Equal(t, http.StatusOK, video.StatusCode)
}
