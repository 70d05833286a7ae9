package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yourusername/vidfetch-go/internal/app"
	"github.com/yourusername/vidfetch-go/internal/infrastructure"
	"github.com/yourusername/vidfetch-go/internal/tui"
	"github.com/yourusername/vidfetch-go/pkg/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [url]",
	Short: "Pick a format and download interactively, without the server",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		config, err := app.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := os.MkdirAll(config.Download.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		// the screen belongs to the UI, so logs go to a file
		log, err := logger.NewFile(filepath.Join(config.Download.LogsDir, "tui.log"), config.Logging.Level)
		if err != nil {
			return err
		}
		defer log.Sync()

		events, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
			Level:   config.Logging.Level,
			LogsDir: config.Download.LogsDir,
		})
		if err != nil {
			return err
		}
		defer events.Close()

		engine, err := infrastructure.NewYTDLPEngine(&config.Engine, &config.Download, events, log)
		if err != nil {
			return err
		}

		notifier := infrastructure.NewNotificationService(&config.Notification, log)
		manager := app.NewDownloadManager(engine, &config.Download, notifier, nil, events, log)

		opts := tui.Options{OutputDir: config.Download.OutputDir, Logger: log}
		if len(args) == 1 {
			opts.InitialURL = args[0]
		}
		return tui.Run(manager, opts)
	},
}

func init() {
	tuiCmd.Flags().StringP("config", "c", "", "Path to config file")
}
