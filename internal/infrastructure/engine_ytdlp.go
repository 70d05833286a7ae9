package infrastructure

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/vidfetch-go/internal/domain"
	"github.com/yourusername/vidfetch-go/pkg/logger"
)

// Markers yt-dlp prints through our templates so progress and the final
// path can be told apart from its ordinary output.
const (
	progressPrefix = "vidfetch-progress|"
	filePrefix     = "vidfetch-file:"
	errorPrefix    = "ERROR:"

	progressTemplate = "download:" + progressPrefix +
		"%(progress.downloaded_bytes)s|%(progress.total_bytes)s|%(progress.total_bytes_estimate)s|" +
		"%(progress.speed)s|%(progress.eta)s"
	filepathTemplate = "after_move:" + filePrefix + "%(filepath)s"
)

// YTDLPEngine implements domain.Engine by running the yt-dlp CLI
type YTDLPEngine struct {
	config      *domain.EngineConfig
	outputDir   string
	template    string
	logsDir     string
	eventLogger *logger.MultiLogger // For LogAppError only; raw output goes to the engine log file
	logger      *zap.Logger
}

// NewYTDLPEngine creates the engine, checking that the binary is on PATH
// and that the output directory exists.
func NewYTDLPEngine(config *domain.EngineConfig, download *domain.DownloadConfig, eventLogger *logger.MultiLogger, log *zap.Logger) (*YTDLPEngine, error) {
	if _, err := exec.LookPath(config.YTDLPBinary); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEngineNotFound, config.YTDLPBinary)
	}

	if err := os.MkdirAll(download.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &YTDLPEngine{
		config:      config,
		outputDir:   download.OutputDir,
		template:    download.OutputTemplate(),
		logsDir:     download.LogsDir,
		eventLogger: eventLogger,
		logger:      log,
	}, nil
}

// Download runs yt-dlp for url and returns the final file path
func (e *YTDLPEngine) Download(ctx context.Context, url, formatExpr string, onProgress domain.ProgressFunc) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", &domain.EngineError{Op: "download", Message: "failed to create output directory", Err: err}
	}

	args := e.downloadArgs(url, formatExpr)

	runLog, err := e.openLogFile()
	if err != nil {
		return "", &domain.EngineError{Op: "download", Message: "failed to open engine log", Err: err}
	}
	defer runLog.Close()

	var logMu sync.Mutex
	writeLog := func(line string) {
		logMu.Lock()
		defer logMu.Unlock()
		io.WriteString(runLog, line+"\n")
	}

	runID := uuid.NewString()
	e.writeLogHeader(runLog, runID, ShellEscapeCommand(e.config.YTDLPBinary, args...))

	cmd := exec.CommandContext(ctx, e.config.YTDLPBinary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", &domain.EngineError{Op: "download", Message: "failed to create stdout pipe", Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", &domain.EngineError{Op: "download", Message: "failed to create stderr pipe", Err: err}
	}

	if err := cmd.Start(); err != nil {
		e.writeLogFooter(runLog, false, fmt.Sprintf("failed to start: %v", err))
		if errors.Is(err, exec.ErrNotFound) {
			err = domain.ErrEngineNotFound
		}
		return "", &domain.EngineError{Op: "download", Err: err}
	}

	var (
		mu        sync.Mutex
		finalPath string
		lastError string
	)
	handle := func(line string) {
		writeLog(line)

		mu.Lock()
		defer mu.Unlock()
		switch {
		case strings.HasPrefix(line, progressPrefix):
			if sample, ok := ParseProgressLine(line); ok && onProgress != nil {
				onProgress(sample)
			}
		case strings.HasPrefix(line, filePrefix):
			finalPath = strings.TrimSpace(strings.TrimPrefix(line, filePrefix))
		case strings.HasPrefix(line, errorPrefix):
			lastError = strings.TrimSpace(line)
		}
	}

	var g errgroup.Group
	g.Go(func() error { return scanLines(stdout, handle) })
	g.Go(func() error { return scanLines(stderr, handle) })
	scanErr := g.Wait()

	waitErr := cmd.Wait()
	if waitErr == nil && scanErr != nil {
		waitErr = scanErr
	}

	if waitErr != nil {
		message := lastError
		if ctx.Err() != nil {
			message = "download cancelled"
		} else if message == "" {
			message = fmt.Sprintf("yt-dlp failed: %v", waitErr)
		}
		e.writeLogFooter(runLog, false, message)
		e.logger.Debug("yt-dlp exited with error",
			zap.String("run_id", runID),
			zap.String("url", url),
			zap.Error(waitErr))
		return "", &domain.EngineError{Op: "download", Message: message, Err: waitErr}
	}

	if finalPath == "" {
		e.writeLogFooter(runLog, false, "no output file reported")
		return "", &domain.EngineError{Op: "download", Message: "engine reported no output file"}
	}

	e.writeLogFooter(runLog, true, fmt.Sprintf("Downloaded: %s", finalPath))
	return finalPath, nil
}

// Formats asks yt-dlp for the info JSON of url without downloading
func (e *YTDLPEngine) Formats(ctx context.Context, url string) ([]domain.EngineFormat, error) {
	args := e.formatArgs(url)

	cmd := exec.CommandContext(ctx, e.config.YTDLPBinary, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &domain.EngineError{Op: "formats", Message: engineErrorLine(string(exitErr.Stderr)), Err: err}
		}
		if errors.Is(err, exec.ErrNotFound) {
			err = domain.ErrEngineNotFound
		}
		return nil, &domain.EngineError{Op: "formats", Err: err}
	}

	formats, err := ParseFormats(output)
	if err != nil {
		if e.eventLogger != nil {
			e.eventLogger.LogAppError("Failed to parse yt-dlp info JSON", zap.String("url", url), zap.Error(err))
		}
		return nil, &domain.EngineError{Op: "formats", Message: "failed to parse engine output", Err: err}
	}

	return formats, nil
}

// Version returns the output of yt-dlp --version
func (e *YTDLPEngine) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, e.config.YTDLPBinary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to query yt-dlp version: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (e *YTDLPEngine) commonArgs() []string {
	var args []string
	if e.config.CookieFile != "" && fileExists(e.config.CookieFile) {
		args = append(args, "--cookies", e.config.CookieFile)
	}
	if e.config.RestrictFilenames {
		args = append(args, "--restrict-filenames")
	}
	return append(args, e.config.ExtraArgs...)
}

func (e *YTDLPEngine) downloadArgs(url, formatExpr string) []string {
	// exec.Command passes args directly to the process, no shell quoting needed
	args := []string{
		"-f", formatExpr,
		"-o", e.template,
		"--newline",
		"--progress",
		"--progress-template", progressTemplate,
		"--print", filepathTemplate,
	}
	args = append(args, e.commonArgs()...)
	return append(args, "--", url)
}

func (e *YTDLPEngine) formatArgs(url string) []string {
	args := []string{"-J", "--no-warnings", "--skip-download", "--no-playlist"}
	args = append(args, e.commonArgs()...)
	return append(args, "--", url)
}

// openLogFile opens today's engine log. Every run appends its raw output.
func (e *YTDLPEngine) openLogFile() (*os.File, error) {
	if err := os.MkdirAll(e.logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	dateStr := time.Now().Format("20060102")
	path := filepath.Join(e.logsDir, "engine-"+dateStr+".log")
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func (e *YTDLPEngine) writeLogHeader(file *os.File, runID, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(file, "\n=== [%s] Run: %s ===\n", timestamp, runID)
	fmt.Fprintf(file, "$ %s\n", cmdLine)
}

func (e *YTDLPEngine) writeLogFooter(file *os.File, success bool, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	fmt.Fprintf(file, "[%s] %s: %s\n", timestamp, status, message)
	io.WriteString(file, "=== END ===\n\n")
}

// maxLineLength caps what handle sees of a single output line
const maxLineLength = 1024 * 1024

// scanLines calls handle for every line of r. Longer lines are cut at
// maxLineLength but still read to the end, so yt-dlp never blocks on a
// full pipe.
func scanLines(r io.Reader, handle func(string)) error {
	reader := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	for {
		chunk, isPrefix, err := reader.ReadLine()
		if room := maxLineLength - len(line); room > 0 {
			line = append(line, chunk[:min(len(chunk), room)]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			io.Copy(io.Discard, reader)
			return err
		}
		if isPrefix {
			continue
		}
		handle(strings.TrimRight(string(line), "\r"))
		line = line[:0]
	}
}

// ParseProgressLine decodes one line printed through progressTemplate.
// yt-dlp prints "NA" for unknown fields; those become nil. total_bytes
// falls back to total_bytes_estimate.
func ParseProgressLine(line string) (domain.ProgressSample, bool) {
	if !strings.HasPrefix(line, progressPrefix) {
		return domain.ProgressSample{}, false
	}

	fields := strings.Split(strings.TrimPrefix(line, progressPrefix), "|")
	if len(fields) != 5 {
		return domain.ProgressSample{}, false
	}

	var sample domain.ProgressSample
	if v, ok := parseNumber(fields[0]); ok {
		sample.DownloadedBytes = int64(v)
	}

	if v, ok := parseNumber(fields[1]); ok {
		total := int64(v)
		sample.TotalBytes = &total
	} else if v, ok := parseNumber(fields[2]); ok {
		total := int64(v)
		sample.TotalBytes = &total
	}

	if v, ok := parseNumber(fields[3]); ok {
		sample.Speed = &v
	}

	if v, ok := parseNumber(fields[4]); ok {
		eta := int64(v)
		sample.ETA = &eta
	}

	return sample, true
}

// parseNumber reads a yt-dlp template value. "NA", "None" and negatives
// count as absent.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "NA" || s == "None" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// ParseFormats extracts the formats array from yt-dlp -J output
func ParseFormats(data []byte) ([]domain.EngineFormat, error) {
	var info struct {
		Formats []domain.EngineFormat `json:"formats"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	if info.Formats == nil {
		return []domain.EngineFormat{}, nil
	}
	return info.Formats, nil
}

// engineErrorLine returns the last "ERROR:" line of stderr, or the last
// non-empty line when there is none.
func engineErrorLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); strings.HasPrefix(line, errorPrefix) {
			return line
		}
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
