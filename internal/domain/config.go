package domain

import "path/filepath"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Download     DownloadConfig     `mapstructure:"download"`
	Engine       EngineConfig       `mapstructure:"engine"`
	Notification NotificationConfig `mapstructure:"notification"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	OutputDir     string `mapstructure:"output_dir"`
	LogsDir       string `mapstructure:"logs_dir"`
	DefaultFormat string `mapstructure:"default_format"` // container used when a request names none
	AudioExt      string `mapstructure:"audio_ext"`      // audio container paired with bestvideo
}

// OutputTemplate returns the engine output template inside OutputDir
func (c DownloadConfig) OutputTemplate() string {
	return filepath.Join(c.OutputDir, "%(title)s.%(ext)s")
}

// EngineConfig contains yt-dlp specific configuration
type EngineConfig struct {
	YTDLPBinary       string   `mapstructure:"ytdlp_binary"`
	CookieFile        string   `mapstructure:"cookie_file"`
	RestrictFilenames bool     `mapstructure:"restrict_filenames"`
	ExtraArgs         []string `mapstructure:"extra_args"`
}

// NotificationConfig contains desktop notification configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// MetricsConfig contains Prometheus configuration
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Download: DownloadConfig{
			OutputDir:     "./downloads",
			LogsDir:       "./downloads/.logs",
			DefaultFormat: "mp4",
			AudioExt:      "m4a",
		},
		Engine: EngineConfig{
			YTDLPBinary:       "yt-dlp",
			RestrictFilenames: false,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "vidfetch",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
