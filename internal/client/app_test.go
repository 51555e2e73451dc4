package client

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenggwsx/SlashSQL/internal/config"
)

func submit(t *testing.T, a *App, value string) tea.Cmd {
	t.Helper()
	a.input.SetValue(value)
	a.input.CursorEnd()
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, a.input.Value())
	return cmd
}

// run executes cmd synchronously and feeds its message back into the model.
func run(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	a.Update(cmd())
}

func TestAppRejectsSQLWhileOffline(t *testing.T) {
	a := NewApp(config.ClientConfig{ServerAddr: "127.0.0.1:7778"})

	cmd := submit(t, a, "SELECT 1")
	assert.Nil(t, cmd)
	assert.Equal(t, logLevelError, a.logLine.level)
	assert.Contains(t, a.logLine.body, "/connect")
	assert.Empty(t, a.history)
}

func TestAppViewCommands(t *testing.T) {
	a := NewApp(config.ClientConfig{})
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, viewHome, a.view)

	submit(t, a, "/help")
	assert.Equal(t, viewHelp, a.view)
	assert.Contains(t, a.View(), "/disconnect")

	submit(t, a, "/results")
	assert.Equal(t, viewResults, a.view)

	submit(t, a, "/bogus")
	assert.Equal(t, logLevelError, a.logLine.level)
	assert.Contains(t, a.logLine.body, "/bogus")

	submit(t, a, "/disconnect")
	assert.Equal(t, logLevelError, a.logLine.level)
}

func TestAppConnectAndExecute(t *testing.T) {
	addr := startServer(t)
	a := NewApp(config.ClientConfig{ServerAddr: addr})
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	t.Cleanup(func() { a.quit() })

	run(t, a, submit(t, a, "/connect"))
	require.True(t, a.statusOnline, a.logLine.body)

	run(t, a, submit(t, a, "SELECT 1 AS v"))
	require.Len(t, a.history, 1)
	assert.Equal(t, "v\n-\n1", a.history[0].reply)
	assert.False(t, a.history[0].failed)
	assert.Equal(t, viewResults, a.view)
	assert.False(t, a.pending)

	run(t, a, submit(t, a, "SELEC oops"))
	require.Len(t, a.history, 2)
	assert.True(t, a.history[1].failed)
	assert.True(t, a.statusOnline, "a server-side error keeps the connection")

	submit(t, a, "/clear")
	assert.Empty(t, a.history)

	submit(t, a, "/disconnect")
	assert.False(t, a.statusOnline)
	assert.Nil(t, a.session)
}

func TestAppOneCommandInFlight(t *testing.T) {
	a := NewApp(config.ClientConfig{ServerAddr: startServer(t)})
	t.Cleanup(func() { a.quit() })
	run(t, a, submit(t, a, "/connect"))
	require.True(t, a.statusOnline)

	first := submit(t, a, "SELECT 1")
	require.NotNil(t, first)
	assert.Nil(t, submit(t, a, "SELECT 2"))
	assert.Equal(t, logLevelError, a.logLine.level)

	a.Update(first())
	assert.False(t, a.pending)
}

func TestAppConnectFailure(t *testing.T) {
	a := NewApp(config.ClientConfig{})
	run(t, a, submit(t, a, "/connect 127.0.0.1:1"))
	assert.False(t, a.statusOnline)
	assert.Equal(t, logLevelError, a.logLine.level)
	assert.Equal(t, "127.0.0.1:1", a.serverAddr)
}

func tab(a *App, value string) string {
	a.input.SetValue(value)
	a.input.CursorEnd()
	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	return a.input.Value()
}

func TestTabCompletion(t *testing.T) {
	tests := []struct {
		name  string
		typed string
		want  string
	}{
		{"slash command", "/dis", "/disconnect"},
		{"ambiguous command", "/c", "/c"},
		{"command is not completed mid line", "SELECT /he", "SELECT /he"},
		{"sql verb keeps upper case", "SEL", "SELECT "},
		{"sql verb keeps lower case", "sel", "select "},
		{"keyword after text", "SELECT * FR", "SELECT * FROM "},
		{"table name", "SELECT * FROM log", "SELECT * FROM login_history "},
		{"table after paren", "INSERT INTO file_tracking(x) SELECT x FROM (SELECT 1) JOIN fil", "INSERT INTO file_tracking(x) SELECT x FROM (SELECT 1) JOIN file_tracking "},
		{"shared prefix", "DE", "DE"},
		{"upper case table prefix", "DELETE FROM USE", "DELETE FROM users "},
		{"nothing matches", "SELECT zz", "SELECT zz"},
		{"no sql in command arguments", "/connect lo", "/connect lo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewApp(config.ClientConfig{})
			assert.Equal(t, tt.want, tab(a, tt.typed))
		})
	}
}

func TestTabCompletionNeedsCursorAtEnd(t *testing.T) {
	a := NewApp(config.ClientConfig{})
	a.input.SetValue("SEL")
	a.input.SetCursor(1)
	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "SEL", a.input.Value())
}

func TestCompletionHints(t *testing.T) {
	a := NewApp(config.ClientConfig{})
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 24})

	tab(a, "/c")
	assert.Contains(t, a.hints, "/connect")
	assert.Contains(t, a.hints, "/clear")

	tab(a, "SELECT * FROM u")
	assert.Contains(t, a.hints, "users")
	assert.Contains(t, a.hints, "update")
	assert.Contains(t, a.View(), "users")

	tab(a, "SELECT * FROM users WHERE id = 1")
	assert.Empty(t, a.hints)
}

func TestCompletionsOrderTablesFirst(t *testing.T) {
	a := NewApp(config.ClientConfig{})
	word, start, matches := a.completions("select * from u")
	assert.Equal(t, "u", word)
	assert.Equal(t, 14, start)
	require.Len(t, matches, 2)
	assert.Equal(t, candidate{text: "users", kind: kindTable}, matches[0])
	assert.Equal(t, candidate{text: "update", kind: kindKeyword}, matches[1])
}

func TestCommonPrefixFold(t *testing.T) {
	assert.Equal(t, "/c", commonPrefixFold([]string{"/connect", "/clear"}))
	assert.Equal(t, "/help", commonPrefixFold([]string{"/help"}))
	assert.Equal(t, "login_", commonPrefixFold([]string{"login_history", "LOGIN_X"}))
	assert.Equal(t, "", commonPrefixFold(nil))
}

func TestWrapReply(t *testing.T) {
	reply := "id | path\n--\n1 | " + strings.Repeat("dir/", 12) + "file.txt"
	wrapped := wrapReply(reply, 20)
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 20, line)
	}
	squash := func(s string) string { return strings.Join(strings.Fields(s), "") }
	assert.Equal(t, squash(reply), squash(wrapped))
	assert.Equal(t, reply, wrapReply(reply, 0))
}

func TestResultsViewTruncatesCommandEcho(t *testing.T) {
	a := NewApp(config.ClientConfig{})
	a.Update(tea.WindowSizeMsg{Width: 30, Height: 24})
	a.history = []exchange{{
		command: "SELECT username,\n  password FROM users WHERE id > 100",
		reply:   "Error: no such column: password",
		failed:  true,
	}}
	a.view = viewResults
	a.updateViewportContent()

	first := strings.SplitN(a.renderResultsView(), "\n", 2)[0]
	assert.LessOrEqual(t, lipgloss.Width(first), 30)
	assert.Contains(t, first, "SELECT username, pass")
	assert.Contains(t, first, "…")
}
