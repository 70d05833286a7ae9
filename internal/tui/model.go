// Package tui provides the interactive terminal front end: a URL field, a
// format picker and a live progress bar.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/vidfetch-go/internal/domain"
	prog "github.com/yourusername/vidfetch-go/internal/progress"
)

// Service is what the UI needs from the orchestrator;
// *app.DownloadManager implements it.
type Service interface {
	Download(ctx context.Context, req domain.DownloadRequest, onProgress domain.ProgressFunc) domain.DownloadResult
	ListFormats(ctx context.Context, url string) ([]domain.FormatDescriptor, error)
}

// State is the session state
type State int

const (
	StateIdle State = iota
	StateFetchingFormats
	StateFormatsReady
	StateDownloading
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetchingFormats:
		return "fetching_formats"
	case StateFormatsReady:
		return "formats_ready"
	case StateDownloading:
		return "downloading"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

type focus int

const (
	focusURL focus = iota
	focusFormats
)

const visibleFormats = 8

// Message types
type (
	// FormatsMsg carries the result of a format fetch
	FormatsMsg struct {
		URL     string
		Formats []domain.FormatDescriptor
		Err     error
	}

	// ProgressMsg carries one progress sample from the running download
	ProgressMsg struct {
		Sample domain.ProgressSample
	}

	// DownloadDoneMsg carries the terminal result of the running download
	DownloadDoneMsg struct {
		Result domain.DownloadResult
	}
)

// notice is the blocking notification box. While one is shown only
// enter and esc do anything.
type notice struct {
	title   string
	body    string
	isError bool
}

// Options configures a Model
type Options struct {
	InitialURL string
	OutputDir  string
	Logger     *zap.Logger
}

// Model is the Bubble Tea model for the TUI
type Model struct {
	service Service
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *zap.Logger

	state     State
	focus     focus
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model

	formatsURL string
	formats    []domain.FormatDescriptor
	selected   int

	sessionID string
	events    <-chan tea.Msg
	snapshot  prog.Snapshot
	lastPath  string
	notice    *notice
	outputDir string

	width int
}

// NewModel creates a new TUI model
func NewModel(service Service, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.youtube.com/watch?v=..."
	ti.CharLimit = 2048
	ti.Width = 60
	ti.SetValue(opts.InitialURL)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = infoStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 50

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		service:   service,
		ctx:       ctx,
		cancel:    cancel,
		logger:    log,
		state:     StateIdle,
		focus:     focusURL,
		textInput: ti,
		spinner:   sp,
		progress:  bar,
		outputDir: opts.OutputDir,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// State returns the current session state
func (m Model) State() State {
	return m.state
}

func (m Model) busy() bool {
	return m.state == StateFetchingFormats || m.state == StateDownloading
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		m.textInput.Width = min(max(msg.Width-10, 20), 100)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		model, cmd := m.progress.Update(msg)
		m.progress = model.(progress.Model)
		return m, cmd

	case FormatsMsg:
		return m.handleFormats(msg), nil

	case ProgressMsg:
		m.snapshot = prog.Describe(msg.Sample)
		return m, tea.Batch(m.progress.SetPercent(m.snapshot.Fraction()), waitForEvent(m.events))

	case DownloadDoneMsg:
		return m.handleDone(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	if m.notice != nil {
		if key == "enter" || key == "esc" {
			m.dismissNotice()
		}
		return m, nil
	}

	if m.busy() {
		return m, nil
	}

	switch key {
	case "esc":
		m.cancel()
		return m, tea.Quit

	case "tab", "shift+tab":
		if len(m.formats) > 0 {
			m.toggleFocus()
		}
		return m, nil

	case "enter":
		if m.focus == focusURL {
			return m.fetchFormats()
		}
		return m.startDownload()

	case "up", "k":
		if m.focus == focusFormats {
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		}

	case "down", "j":
		if m.focus == focusFormats {
			if m.selected < len(m.formats)-1 {
				m.selected++
			}
			return m, nil
		}
	}

	if m.focus == focusURL {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		if len(m.formats) > 0 && strings.TrimSpace(m.textInput.Value()) != m.formatsURL {
			m.clearFormats()
		}
		return m, cmd
	}
	return m, nil
}

// clearFormats drops a list that no longer belongs to the URL field
func (m *Model) clearFormats() {
	m.formats = nil
	m.formatsURL = ""
	m.selected = 0
	m.state = StateIdle
}

func (m *Model) toggleFocus() {
	if m.focus == focusURL {
		m.focus = focusFormats
		m.textInput.Blur()
		return
	}
	m.focus = focusURL
	m.textInput.Focus()
}

func (m *Model) showNotice(title, body string, isError bool) {
	m.notice = &notice{title: title, body: body, isError: isError}
}

// dismissNotice closes the box. Terminal states fall back to the state
// the form was in before the action.
func (m *Model) dismissNotice() {
	m.notice = nil
	if m.state == StateCompleted || m.state == StateFailed {
		if len(m.formats) > 0 {
			m.state = StateFormatsReady
		} else {
			m.state = StateIdle
		}
	}
}

// currentURL returns the trimmed URL field, or a notice explaining why it
// cannot be used.
func (m *Model) currentURL() (string, bool) {
	url := strings.TrimSpace(m.textInput.Value())
	if url == "" {
		m.showNotice("Error", "Please enter a URL", true)
		return "", false
	}
	if !domain.IsSupportedURL(url) {
		m.showNotice("Error", fmt.Sprintf("Unsupported URL: %s\nSupported: %s", url, supportedList()), true)
		return "", false
	}
	return url, true
}

func (m Model) fetchFormats() (tea.Model, tea.Cmd) {
	url, ok := m.currentURL()
	if !ok {
		return m, nil
	}

	// the current list stays until the new one arrives
	m.state = StateFetchingFormats
	m.logger.Info("Fetching formats", zap.String("url", url))

	service, ctx := m.service, m.ctx
	fetch := func() tea.Msg {
		formats, err := service.ListFormats(ctx, url)
		return FormatsMsg{URL: url, Formats: formats, Err: err}
	}
	return m, tea.Batch(fetch, m.spinner.Tick)
}

func (m Model) handleFormats(msg FormatsMsg) Model {
	if msg.Err != nil {
		m.logger.Warn("Format fetch failed", zap.String("url", msg.URL), zap.Error(msg.Err))
		m.state = StateFailed
		m.showNotice("Error", fmt.Sprintf("Could not get formats: %v", msg.Err), true)
		return m
	}
	if len(msg.Formats) == 0 {
		m.state = StateFailed
		m.showNotice("Error", "No downloadable video formats were found", true)
		return m
	}

	m.formatsURL = msg.URL
	m.formats = msg.Formats
	m.selected = 0
	m.state = StateFormatsReady
	m.focus = focusFormats
	m.textInput.Blur()
	return m
}

// startDownload downloads the URL the format list was fetched for, never
// whatever the field holds now.
func (m Model) startDownload() (tea.Model, tea.Cmd) {
	if len(m.formats) == 0 || m.selected < 0 || m.selected >= len(m.formats) {
		m.showNotice("Error", "Please select a format", true)
		return m, nil
	}

	req := domain.NewFormatIDRequest(m.formatsURL, m.formats[m.selected].FormatID)

	m.state = StateDownloading
	m.snapshot = prog.Describe(domain.ProgressSample{})
	m.lastPath = ""
	m.sessionID = uuid.NewString()
	m.logger.Info("Starting download",
		zap.String("session", m.sessionID),
		zap.String("url", req.URL),
		zap.String("format_id", req.Format))

	events := make(chan tea.Msg, 64)
	m.events = events

	service, ctx := m.service, m.ctx
	go func() {
		defer close(events)
		result := service.Download(ctx, req, func(s domain.ProgressSample) {
			select {
			case events <- ProgressMsg{Sample: s}:
			default:
				// a newer sample will follow
			}
		})
		events <- DownloadDoneMsg{Result: result}
	}()

	return m, tea.Batch(m.progress.SetPercent(0), waitForEvent(events), m.spinner.Tick)
}

func (m Model) handleDone(msg DownloadDoneMsg) (tea.Model, tea.Cmd) {
	m.events = nil
	result := msg.Result

	if !result.OK() {
		m.logger.Warn("Download failed", zap.String("session", m.sessionID), zap.Error(result.Err()))
		m.state = StateFailed
		m.showNotice("Download failed", result.Error, true)
		return m, nil
	}

	m.logger.Info("Download completed", zap.String("session", m.sessionID), zap.String("file", result.FilePath))
	m.state = StateCompleted
	m.lastPath = result.FilePath
	m.snapshot.Percent = 100
	m.showNotice("Download complete", "Video saved to:\n"+result.FilePath, false)
	return m, m.progress.SetPercent(1)
}

// waitForEvent delivers the next message of a running download. It returns
// nil once the channel is drained.
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func supportedList() string {
	platforms := domain.SupportedPlatforms()
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// Run starts the TUI and blocks until the user quits
func Run(service Service, opts Options) error {
	m := NewModel(service, opts)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
