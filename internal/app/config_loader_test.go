package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vidfetch-go/internal/domain"
)

func TestLoadConfig_File(t *testing.T) {
	chdir(t, t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `server:
  port: 9090
download:
  output_dir: /tmp/vidfetch-test
  default_format: webm
engine:
  extra_args: ["--no-playlist"]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "/tmp/vidfetch-test", config.Download.OutputDir)
	assert.Equal(t, "webm", config.Download.DefaultFormat)
	assert.Equal(t, "m4a", config.Download.AudioExt)
	assert.Equal(t, []string{"--no-playlist"}, config.Engine.ExtraArgs)
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8000, config.Server.Port)
	assert.Equal(t, "./downloads", config.Download.OutputDir)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VIDFETCH_SERVER_PORT", "8123")
	t.Setenv("VIDFETCH_DOWNLOAD_OUTPUT_DIR", "/srv/videos")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8123, config.Server.Port)
	assert.Equal(t, "/srv/videos", config.Download.OutputDir)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VIDFETCH_SERVER_PORT=8200\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("VIDFETCH_DOWNLOAD_DEFAULT_FORMAT=mkv\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv("VIDFETCH_SERVER_PORT")
		os.Unsetenv("VIDFETCH_DOWNLOAD_DEFAULT_FORMAT")
	})

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8200, config.Server.Port)
	assert.Equal(t, "mkv", config.Download.DefaultFormat)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	chdir(t, t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 70000\n"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "invalid server port")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "videos"), expandPath("~/videos"))
	assert.Equal(t, home+"/videos", expandPath("$HOME/videos"))
	assert.Equal(t, "relative/dir", expandPath("relative/dir"))
}

func TestValidateConfig(t *testing.T) {
	config := domain.DefaultConfig()
	config.Download.LogsDir = ""
	require.NoError(t, validateConfig(config))
	assert.Equal(t, filepath.Join("./downloads", ".logs"), config.Download.LogsDir)

	config = domain.DefaultConfig()
	config.Download.OutputDir = ""
	assert.Error(t, validateConfig(config))

	config = domain.DefaultConfig()
	config.Engine.YTDLPBinary = ""
	assert.Error(t, validateConfig(config))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	chdir(t, t.TempDir())

	config := domain.DefaultConfig()
	config.Server.Port = 8555
	config.Download.OutputDir = "/data/videos"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8555, loaded.Server.Port)
	assert.Equal(t, "/data/videos", loaded.Download.OutputDir)
}
