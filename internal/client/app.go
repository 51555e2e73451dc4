package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fenggwsx/SlashSQL/internal/config"
)

// App implements the bubbletea tea.Model interface for the terminal client.
type App struct {
	cfg          config.ClientConfig
	session      *Session
	serverAddr   string
	statusOnline bool
	pending      bool

	input    textinput.Model
	viewport viewport.Model
	helper   help.Model
	styles   styleSet
	commands []commandSpec

	view    viewMode
	history []exchange
	logLine logEntry
	hints   string
	width   int
	height  int
}

type viewMode int

const (
	viewHome viewMode = iota
	viewResults
	viewHelp
)

func (v viewMode) String() string {
	switch v {
	case viewResults:
		return "results"
	case viewHelp:
		return "help"
	default:
		return "home"
	}
}

// exchange is one command sent to the server and the reply it produced.
type exchange struct {
	command string
	reply   string
	failed  bool
	elapsed time.Duration
}

type logLevel int

const (
	logLevelInfo logLevel = iota
	logLevelError
)

type logEntry struct {
	level logLevel
	label string
	body  string
}

type styleSet struct {
	brand    lipgloss.Style
	online   lipgloss.Style
	offline  lipgloss.Style
	busy     lipgloss.Style
	segment  lipgloss.Style
	prompt   lipgloss.Style
	command  lipgloss.Style
	meta     lipgloss.Style
	failed   lipgloss.Style
	logInfo  lipgloss.Style
	logError lipgloss.Style
	hints    lipgloss.Style
}

type commandSpec struct {
	trigger     string
	usage       string
	description string
}

type connectResultMsg struct {
	session *Session
	address string
	err     error
}

type executeResultMsg struct {
	session *Session
	command string
	reply   string
	elapsed time.Duration
	err     error
}

// NewApp returns a Bubble Tea model pre-populated with defaults.
func NewApp(cfg config.ClientConfig) *App {
	input := textinput.New()
	input.Prompt = "sql> "
	input.Placeholder = "SELECT * FROM users  (or /help)"
	input.Focus()

	app := &App{
		cfg:        cfg,
		serverAddr: cfg.ServerAddr,
		input:      input,
		viewport:   viewport.New(0, 0),
		helper:     help.New(),
		styles:     buildStyles(),
		commands:   defaultCommands(),
		view:       viewHome,
	}
	app.input.PromptStyle = app.styles.prompt
	app.logf("Use /connect to reach %s", cfg.ServerAddr)
	app.updateViewportContent()
	return app
}

// Init is part of the tea.Model interface.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles user input and internal events.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.height = m.Height
		a.layout()
		a.updateViewportContent()
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(m)
	case connectResultMsg:
		a.handleConnectResult(m)
		return a, nil
	case executeResultMsg:
		a.handleExecuteResult(m)
		return a, nil
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return a, a.quit()
	case tea.KeyTab:
		a.handleTabCompletion()
		a.layout()
		return a, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(a.input.Value())
		a.input.Reset()
		a.layout()
		if value == "" {
			return a, nil
		}
		cmd := a.handleSubmit(value)
		a.updateViewportContent()
		return a, cmd
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.layout()
	return a, cmd
}

func (a *App) handleConnectResult(msg connectResultMsg) {
	if msg.session != a.session {
		return
	}
	if msg.err != nil {
		a.statusOnline = false
		a.logErrorf("Connection to %s failed: %v", msg.address, msg.err)
		return
	}
	a.statusOnline = true
	a.logf("Connected to %s", msg.address)
}

func (a *App) handleExecuteResult(msg executeResultMsg) {
	if msg.session != a.session {
		return
	}
	a.pending = false

	entry := exchange{command: msg.command, reply: msg.reply, elapsed: msg.elapsed}
	if msg.err != nil {
		entry.failed = true
		entry.reply = msg.err.Error()
		a.logErrorf("Command failed: %v", msg.err)
	} else if strings.HasPrefix(msg.reply, "Error: ") {
		entry.failed = true
		a.logErrorf("Server rejected the command")
	} else {
		a.logf("Reply received in %s", msg.elapsed.Round(time.Millisecond))
	}
	a.history = append(a.history, entry)

	if !a.session.Connected() {
		a.statusOnline = false
		a.logErrorf("Connection to %s lost: %v", a.serverAddr, msg.err)
	}

	a.view = viewResults
	a.updateViewportContent()
}

func (a *App) isConnected() bool {
	return a.session != nil && a.statusOnline
}

func (a *App) quit() tea.Cmd {
	if a.session != nil {
		_ = a.session.Close()
		a.session = nil
	}
	a.statusOnline = false
	return tea.Quit
}

func (a *App) logf(format string, args ...interface{}) {
	a.logLine = logEntry{level: logLevelInfo, label: "INFO", body: fmt.Sprintf(format, args...)}
}

func (a *App) logErrorf(format string, args ...interface{}) {
	a.logLine = logEntry{level: logLevelError, label: "ERROR", body: fmt.Sprintf(format, args...)}
}
