package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/mattn/go-runewidth"

	"github.com/fenggwsx/SlashSQL/internal/storage"
)

const minViewportHeight = 3

func (a *App) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, a.viewport.View(), a.footerView())
}

// footerView stacks completion hints, the prompt, the log line and the
// status bar below the viewport.
func (a *App) footerView() string {
	rows := make([]string, 0, 4)
	if a.hints != "" {
		rows = append(rows, a.styles.hints.Render(a.hints))
	}
	rows = append(rows, a.input.View(), a.logLineView(), a.statusBar())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// layout sizes the input and the viewport to the terminal. The viewport gets
// whatever the footer leaves over.
func (a *App) layout() {
	a.refreshHints()
	if a.width > 0 {
		a.input.Width = max(a.width-lipgloss.Width(a.input.Prompt)-1, 10)
	}
	if a.height == 0 {
		return
	}
	a.viewport.Width = a.width
	a.viewport.Height = max(a.height-lipgloss.Height(a.footerView()), minViewportHeight)
}

func (a *App) updateViewportContent() {
	switch a.view {
	case viewHome:
		a.viewport.SetContent(homeContent)
	case viewResults:
		if len(a.history) == 0 {
			a.viewport.SetContent("No results yet. Type a SQL command and press Enter.")
			return
		}
		a.viewport.SetContent(a.renderResultsView())
		a.viewport.GotoBottom()
	case viewHelp:
		a.viewport.SetContent(a.renderHelpView())
	}
}

// refreshHints lists the completion candidates for the word being typed.
func (a *App) refreshHints() {
	_, _, matches := a.completions(a.input.Value())
	if len(matches) == 0 {
		a.hints = ""
		return
	}

	bindings := make([]key.Binding, len(matches))
	for i, m := range matches {
		desc := m.help
		if desc == "" {
			desc = m.kind.String()
		}
		bindings[i] = key.NewBinding(key.WithKeys(m.text), key.WithHelp(m.text, desc))
	}
	a.helper.Width = a.width
	a.hints = a.helper.ShortHelpView(bindings)
}

func (a *App) statusBar() string {
	state, stateStyle := "OFFLINE", a.styles.offline
	switch {
	case a.pending:
		state, stateStyle = "BUSY", a.styles.busy
	case a.statusOnline:
		state, stateStyle = "ONLINE", a.styles.online
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top,
		a.styles.brand.Render("SlashSQL"),
		stateStyle.Render(state),
		a.styles.segment.Render(a.serverAddr),
		a.styles.segment.Render(a.view.String()),
		a.styles.segment.Render(fmt.Sprintf("%d run", len(a.history))),
	)
	if fill := a.width - lipgloss.Width(bar); fill > 0 {
		bar += a.styles.segment.Padding(0).Width(fill).Render("")
	}
	return bar
}

func (a *App) logLineView() string {
	style := a.styles.logInfo
	if a.logLine.level == logLevelError {
		style = a.styles.logError
	}
	return style.Render(a.logLine.label) + " " + a.logLine.body
}

func buildStyles() styleSet {
	segment := lipgloss.NewStyle().Padding(0, 1).
		Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237"))
	badge := segment.Bold(true).Foreground(lipgloss.Color("0"))
	return styleSet{
		brand:    badge.Background(lipgloss.Color("13")),
		online:   badge.Background(lipgloss.Color("10")),
		offline:  badge.Background(lipgloss.Color("9")),
		busy:     badge.Background(lipgloss.Color("11")),
		segment:  segment,
		prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		command:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		meta:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		failed:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		logInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		logError: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		hints:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

func (a *App) renderHelpView() string {
	rows := []string{a.styles.command.Render("Client commands"), ""}
	for _, c := range a.commands {
		rows = append(rows, a.styles.prompt.Width(20).Render(c.usage)+c.description)
	}
	rows = append(rows,
		"",
		a.styles.command.Render("Tables"),
		"",
		strings.Join(storage.Relations, ", "),
		"",
		"Anything else is sent to the server as one SQL statement.",
		"Tab completes commands, SQL keywords and table names.",
	)
	return strings.Join(rows, "\n")
}

// renderResultsView lists every exchange with its reply wrapped to the
// viewport. The echoed command is kept to a single line.
func (a *App) renderResultsView() string {
	width := a.viewport.Width
	if width <= 0 {
		width = a.width
	}

	blocks := make([]string, len(a.history))
	for i, entry := range a.history {
		meta := fmt.Sprintf("#%d %s ", i+1, entry.elapsed.Round(time.Millisecond))
		command := strings.Join(strings.Fields(entry.command), " ")
		if width > 0 {
			command = runewidth.Truncate(command, width-runewidth.StringWidth(meta), "…")
		}

		body := wrapReply(entry.reply, width)
		if entry.failed {
			body = a.styles.failed.Render(body)
		}
		blocks[i] = a.styles.meta.Render(meta) + a.styles.command.Render(command) + "\n" + body
	}
	return strings.Join(blocks, "\n\n")
}

// wrapReply breaks reply lines wider than width, preferring spaces.
func wrapReply(reply string, width int) string {
	if width <= 0 {
		return reply
	}
	return ansi.Wrap(reply, width, "")
}

var homeContent = func() string {
	art := strings.TrimRight(figure.NewColorFigure("SLASH SQL", "3-d", "green", true).String(), "\n")
	return strings.Join([]string{
		art,
		"",
		"/connect [addr]   reach the server",
		"SELECT ...        print a table",
		"anything else     report rows affected",
		"/results /clear   review or reset replies",
		"/help             all commands and tables",
	}, "\n")
}()
