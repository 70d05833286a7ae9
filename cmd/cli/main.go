package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/vidfetch-go/internal/domain"
	"github.com/yourusername/vidfetch-go/internal/progress"
)

var (
	serverURL   string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:          "vidfetch",
		Short:        "vidfetch CLI - download videos from YouTube, TikTok, Instagram, Facebook, Twitter/X and Vimeo",
		Long:         `A command-line client for the vidfetch server, plus a local interactive downloader.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(configCmd)

	downloadCmd.Flags().StringP("format", "f", "", "Container format (defaults to the server's default_format)")
	fetchCmd.Flags().StringP("output", "o", "", "Output file (defaults to the video name)")
	logsCmd.Flags().StringP("date", "d", "", "Day to read, YYYY-MM-DD (defaults to today)")
	logsCmd.Flags().StringP("query", "q", "", "Only show entries matching this text")
	logsCmd.Flags().IntP("limit", "n", 0, "Maximum number of entries")
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// checkURL rejects unsupported URLs before anything is sent to the server
func checkURL(raw string) error {
	if !domain.IsSupportedURL(raw) {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedURL, raw)
	}
	return nil
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Download a video through the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkURL(args[0]); err != nil {
			return err
		}
		ensureServer()

		format, _ := cmd.Flags().GetString("format")

		fmt.Println("Downloading...")
		start := time.Now()
		result, err := newAPIClient(serverURL).download(args[0], format)
		if err != nil {
			return err
		}

		fmt.Printf("Download completed in %s\n", time.Since(start).Round(time.Second))
		fmt.Printf("File: %s\n", result.FilePath)
		fmt.Printf("Fetch it with: vidfetch fetch %q\n", filepath.Base(result.FilePath))
		return nil
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats [url]",
	Short: "List downloadable video formats",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkURL(args[0]); err != nil {
			return err
		}
		ensureServer()

		result, err := newAPIClient(serverURL).formats(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%d formats (%s)\n", result.Count, result.Platform)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tRESOLUTION\tNOTE\tEXT")
		for _, f := range result.Formats {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.FormatID, f.Resolution, f.Note, f.Extension)
		}
		return w.Flush()
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [video_name]",
	Short: "Fetch a downloaded video from the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		name := args[0]
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = filepath.Base(name)
		}

		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}

		n, err := newAPIClient(serverURL).fetchVideo(name, file)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(output)
			return err
		}

		fmt.Printf("Saved %s (%s)\n", output, progress.FormatBytes(n))
		return nil
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs [category]",
	Short: "Show server event logs (download, error)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		date, _ := cmd.Flags().GetString("date")
		query, _ := cmd.Flags().GetString("query")
		limit, _ := cmd.Flags().GetInt("limit")

		result, err := newAPIClient(serverURL).logs(args[0], date, query, limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tLEVEL\tMESSAGE\tURL")
		for _, e := range result.Entries {
			url, _ := e.Fields["url"].(string)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp, e.Level, e.Message, truncate(url, 50))
		}
		return w.Flush()
	},
}

// truncate shortens s to maxLen characters, counting runes
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
