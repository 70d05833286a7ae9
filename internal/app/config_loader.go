package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yourusername/vidfetch-go/internal/domain"
)

// LoadConfig loads configuration from .env files, a config file and the
// environment, in increasing order of precedence.
func LoadConfig(configPath string) (*domain.Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.vidfetch")
		v.AddConfigPath("/etc/vidfetch")
	}

	v.SetEnvPrefix("VIDFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about
	setDefaults(v, config)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadEnvFiles loads .env, .env.{VIDFETCH_ENV} and .env.local when present.
// Only the last two override variables already set in the environment.
func loadEnvFiles() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if env := os.Getenv("VIDFETCH_ENV"); env != "" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Overload(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	if _, err := os.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			return fmt.Errorf("failed to load .env.local: %w", err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper, config *domain.Config) {
	for key, value := range configKeys(config) {
		v.SetDefault(key, value)
	}
}

// configKeys flattens config into viper's dotted key space
func configKeys(config *domain.Config) map[string]any {
	return map[string]any{
		"server.host": config.Server.Host,
		"server.port": config.Server.Port,

		"download.output_dir":     config.Download.OutputDir,
		"download.logs_dir":       config.Download.LogsDir,
		"download.default_format": config.Download.DefaultFormat,
		"download.audio_ext":      config.Download.AudioExt,

		"engine.ytdlp_binary":       config.Engine.YTDLPBinary,
		"engine.cookie_file":        config.Engine.CookieFile,
		"engine.restrict_filenames": config.Engine.RestrictFilenames,
		"engine.extra_args":         config.Engine.ExtraArgs,

		"notification.enabled": config.Notification.Enabled,
		"notification.method":  config.Notification.Method,

		"metrics.enabled":   config.Metrics.Enabled,
		"metrics.namespace": config.Metrics.Namespace,

		"logging.level":       config.Logging.Level,
		"logging.format":      config.Logging.Format,
		"logging.output_path": config.Logging.OutputPath,
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.OutputDir = expandPath(config.Download.OutputDir)
	config.Download.LogsDir = expandPath(config.Download.LogsDir)
	config.Engine.CookieFile = expandPath(config.Engine.CookieFile)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	if strings.Contains(path, "$HOME") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Download.OutputDir == "" {
		return fmt.Errorf("download output directory not configured")
	}

	if config.Download.LogsDir == "" {
		config.Download.LogsDir = filepath.Join(config.Download.OutputDir, ".logs")
	}

	if config.Download.DefaultFormat == "" {
		config.Download.DefaultFormat = "mp4"
	}

	if config.Engine.YTDLPBinary == "" {
		return fmt.Errorf("engine binary not configured")
	}

	if config.Metrics.Enabled && config.Metrics.Namespace == "" {
		return fmt.Errorf("metrics namespace cannot be empty when metrics are enabled")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range configKeys(config) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
