// Package tui provides a Bubble Tea terminal user interface for modrinth-downloader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/modrinth-downloader/internal/config"
	"github.com/handiism/modrinth-downloader/internal/download"
	"github.com/handiism/modrinth-downloader/internal/model"
	"github.com/handiism/modrinth-downloader/internal/modrinth"
	"github.com/handiism/modrinth-downloader/internal/report"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1BD96A")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	focusedLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#1BD96A"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// Mode is the operation started from the input screen.
type Mode int

const (
	ModeLinks Mode = iota
	ModeBundle
)

// Focus targets, in tab order.
const (
	focusLinks = iota
	focusGameVersion
	focusLoader
	focusChannel
	focusCount
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	mode     Mode
	links    textarea.Model
	inputs   []textinput.Model // game version, loader, channel
	focus    int
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logger   *zap.Logger
	logs     []LogEntry

	// Where the last used criteria are saved; empty disables saving
	configPath string
	err        error

	// Results of the last run
	output      string
	bundle      *model.BundleResult
	archivePath string

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan<- download.ProgressEvent

	// Bundle progress
	current download.Progress
	verbose bool
	width   int
	height  int
}

// NewModel creates a new TUI model. Manager progress events are pushed to
// events; Run forwards them to the program. events may be nil.
func NewModel(settings *config.Settings, logger *zap.Logger, events chan<- download.ProgressEvent) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "https://modrinth.com/mod/sodium — rendering\nhttps://modrinth.com/mod/lithium"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(70)
	ta.SetHeight(8)
	ta.Focus()

	defaults := []struct {
		placeholder string
		value       string
	}{
		{"1.21.8", settings.GameVersion},
		{"fabric", settings.Loader},
		{"release", settings.Channel},
	}
	inputs := make([]textinput.Model, len(defaults))
	for i, d := range defaults {
		ti := textinput.New()
		ti.Placeholder = d.placeholder
		ti.SetValue(d.value)
		ti.CharLimit = 64
		ti.Width = 20
		inputs[i] = ti
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#1BD96A"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateInput,
		links:    ta,
		inputs:   inputs,
		spinner:  sp,
		progress: prog,
		settings: settings,
		logger:   logger,
		logs:     make([]LogEntry, 0),
		ctx:      ctx,
		cancel:   cancel,
		events:   events,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when bundle progress updates.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// LinksDoneMsg is sent when link mode completes.
	LinksDoneMsg struct {
		Links []model.LinkResult
		Err   error
	}

	// BundleDoneMsg is sent when a bundle run completes.
	BundleDoneMsg struct {
		Result *model.BundleResult
		Path   string
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		if msg.Width > 10 {
			m.links.SetWidth(min(msg.Width-4, 100))
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			return m, nil

		case "tab", "shift+tab":
			if m.state == StateInput {
				if msg.String() == "tab" {
					m.focus = (m.focus + 1) % focusCount
				} else {
					m.focus = (m.focus + focusCount - 1) % focusCount
				}
				return m, m.applyFocus()
			}

		case "ctrl+l":
			if m.state == StateInput {
				return m.start(ModeLinks)
			}

		case "ctrl+b":
			if m.state == StateInput {
				return m.start(ModeBundle)
			}

		case "ctrl+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Keep the text so a failed batch can be edited and rerun
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.output = ""
				m.bundle = nil
				m.archivePath = ""
				m.current = download.Progress{}
				m.manager = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				return m, m.applyFocus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			return m, nil
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}

	case LinksDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.state = StateComplete
		m.output = report.NewRenderer(report.FormatText, true).RenderLinks(msg.Links)

	case BundleDoneMsg:
		m.bundle = msg.Result
		m.archivePath = msg.Path
		if m.manager != nil {
			m.current = m.manager.GetProgress()
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		case msg.Result != nil && msg.Result.State == model.StateFailed:
			m.state = StateError
			m.err = msg.Result.Err
		default:
			m.state = StateComplete
		}
		if msg.Result != nil {
			m.output = report.NewRenderer(report.FormatText, true).RenderOutcomes(msg.Result.Lines)
		}
		cmds = append(cmds, m.progress.SetPercent(1))

	case TickMsg:
		// Update progress from manager
		if m.manager != nil && m.state == StateRunning {
			m.current = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(percent(m.current)), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		cmds = append(cmds, m.updateFocused(msg))
	}

	return m, tea.Batch(cmds...)
}

// updateFocused forwards msg to the focused field.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.focus == focusLinks {
		m.links, cmd = m.links.Update(msg)
		return cmd
	}
	i := m.focus - focusGameVersion
	m.inputs[i], cmd = m.inputs[i].Update(msg)
	return cmd
}

func (m *Model) applyFocus() tea.Cmd {
	m.links.Blur()
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	if m.focus == focusLinks {
		return m.links.Focus()
	}
	return m.inputs[m.focus-focusGameVersion].Focus()
}

// criteria reads the selection fields.
func (m Model) criteria() model.Criteria {
	return model.Criteria{
		GameVersion: strings.TrimSpace(m.inputs[0].Value()),
		Loader:      strings.TrimSpace(m.inputs[1].Value()),
		Channel:     strings.TrimSpace(m.inputs[2].Value()),
	}
}

// start validates the form and launches the selected mode.
func (m Model) start(mode Mode) (tea.Model, tea.Cmd) {
	lines := modrinth.ParseInput(m.links.Value())
	if len(lines) == 0 {
		m.logs = []LogEntry{{Message: "Paste at least one link.", Level: download.LevelWarning}}
		return m, nil
	}
	crit := m.criteria()
	if err := crit.Validate(); err != nil {
		m.logs = []LogEntry{{Message: err.Error(), Level: download.LevelWarning}}
		return m, nil
	}

	m.mode = mode
	m.logs = nil
	m.rememberCriteria(crit)
	m.manager = download.NewManager(m.settings, m.forward, download.WithLogger(m.logger))

	if mode == ModeLinks {
		manager := m.manager
		return m, func() tea.Msg {
			links, err := manager.BuildLinks(lines, crit)
			return LinksDoneMsg{Links: links, Err: err}
		}
	}

	m.state = StateRunning
	return m, tea.Batch(m.runBundle(lines, crit), m.spinner.Tick, m.tickProgress())
}

// rememberCriteria stores crit as the new defaults in the config file.
func (m Model) rememberCriteria(crit model.Criteria) {
	if m.settings.Criteria() == crit {
		return
	}
	m.settings.GameVersion = crit.GameVersion
	m.settings.Loader = crit.Loader
	m.settings.Channel = crit.Channel
	if m.configPath == "" {
		return
	}
	if err := m.settings.Save(m.configPath); err != nil {
		m.logger.Warn("saving config", zap.String("path", m.configPath), zap.Error(err))
		return
	}
	m.logger.Debug("criteria saved", zap.String("path", m.configPath))
}

// forward pushes a manager event to the pump without blocking the run.
func (m Model) forward(event download.ProgressEvent) {
	if m.events == nil {
		return
	}
	select {
	case m.events <- event:
	case <-m.ctx.Done():
	}
}

// runBundle builds the archive and writes it into the output directory.
func (m Model) runBundle(lines []model.InputLine, crit model.Criteria) tea.Cmd {
	ctx, manager := m.ctx, m.manager
	return func() tea.Msg {
		result, err := manager.Bundle(ctx, lines, crit)
		if err != nil || result.State != model.StateReady {
			return BundleDoneMsg{Result: result, Err: err}
		}
		path, err := manager.SaveBundle(ctx, result)
		return BundleDoneMsg{Result: result, Path: path, Err: err}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

func percent(p download.Progress) float64 {
	switch {
	case p.State == model.StateCompressing || p.State.Terminal():
		return 1
	case p.Total > 0:
		done := float64(p.Added + p.Failed)
		if p.State == model.StateDownloadingFiles && p.BytesTotal > 0 {
			done += min(float64(p.BytesWritten)/float64(p.BytesTotal), 1)
		}
		return min(done/float64(p.Total), 1)
	}
	return 0
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("Modrinth Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Resolve mod links for one game version and loader"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(m.label(focusLinks, "Mod links (one per line, optional comment after ' — '):"))
	b.WriteString("\n")
	b.WriteString(m.links.View())
	b.WriteString("\n\n")

	labels := []string{"Game version", "Loader", "Channel"}
	for i, in := range m.inputs {
		b.WriteString(m.label(focusGameVersion+i, fmt.Sprintf("%-13s", labels[i]+":")))
		b.WriteString(" ")
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+v)\n\n", verboseCheck))
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output: %s (%s)", m.settings.OutputDir, m.settings.ArchiveFormat)))
	b.WriteString("\n")

	if len(m.logs) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderLogs())
	}

	return b.String()
}

func (m Model) label(focus int, text string) string {
	if m.focus == focus {
		return focusedLabelStyle.Render(text)
	}
	return subtitleStyle.Render(text)
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(capitalize(m.current.State.String()) + "..."))
	b.WriteString("\n\n")

	// Progress bar
	b.WriteString(m.progress.ViewAs(percent(m.current)))
	b.WriteString("\n")

	if m.current.State == model.StateDownloadingFiles {
		line := fmt.Sprintf("%d/%d – %s", m.current.Index, m.current.Total, m.current.FileName)
		if m.current.BytesWritten > 0 {
			line += " " + humanize.Bytes(uint64(m.current.BytesWritten))
			if m.current.BytesTotal > 0 {
				line += " / " + humanize.Bytes(uint64(m.current.BytesTotal))
			}
		}
		b.WriteString(infoStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	b.WriteString(m.output)

	if m.mode == ModeBundle && m.bundle != nil {
		b.WriteString("\n")
		box := boxStyle.Render(fmt.Sprintf(
			"Archive ready\n\n"+
				"Path: %s\n"+
				"Files: %d\n"+
				"Failed: %d\n"+
				"Size: %s",
			m.archivePath,
			len(m.bundle.Added),
			len(m.bundle.Failures),
			humanize.Bytes(uint64(m.bundle.Size())),
		))
		b.WriteString(box)
		b.WriteString("\n")
		for _, f := range m.bundle.Failures {
			b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %s", f.FileName, f.Message)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	if m.output != "" {
		b.WriteString(m.output)
		b.WriteString("\n")
	}

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
		b.WriteString("\n")
	}
	if m.bundle != nil {
		for _, f := range m.bundle.Failures {
			b.WriteString(errorStyle.Render(fmt.Sprintf("  ✗ %s: %s", f.FileName, f.Message)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "ctrl+l: links • ctrl+b: bundle • tab: next field • ctrl+v: verbose • esc: quit"
	case StateRunning:
		return "ctrl+c: quit"
	case StateComplete, StateError:
		return "r: edit and rerun • q: quit"
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Run starts the TUI application.
//
// The program and the progress pump run under one errgroup; quitting the
// program stops the pump.
//
// Criteria used for a run become the new defaults and are written to
// configPath unless it is empty.
func Run(settings *config.Settings, configPath string, logger *zap.Logger) error {
	events := make(chan download.ProgressEvent, 64)
	initial := NewModel(settings, logger, events)
	initial.configPath = configPath
	p := tea.NewProgram(initial, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case event := <-events:
				p.Send(ProgressMsg{Event: event})
			}
		}
	})

	return g.Wait()
}
