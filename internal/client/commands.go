package client

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func (a *App) handleSubmit(value string) tea.Cmd {
	if strings.HasPrefix(value, commandPrefix) {
		return a.executeCommand(value)
	}

	return a.sendSQL(value)
}

func (a *App) executeCommand(raw string) tea.Cmd {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}

	switch strings.ToLower(fields[0]) {
	case "/connect":
		target := a.serverAddr
		if len(fields) > 1 {
			target = fields[1]
		}
		if target == "" {
			a.logErrorf("Usage: /connect <host:port>")
			return nil
		}
		return a.connectToServer(target)
	case "/disconnect":
		if a.session == nil {
			a.logErrorf("Not connected")
			return nil
		}
		_ = a.session.Close()
		a.session = nil
		a.statusOnline = false
		a.pending = false
		a.logf("Disconnected from %s", a.serverAddr)
	case "/results":
		a.view = viewResults
		a.logf("Switched to RESULTS view")
	case "/home":
		a.view = viewHome
		a.logf("Switched to HOME view")
	case "/help":
		a.view = viewHelp
		a.logf("Switched to HELP view")
	case "/clear":
		a.history = nil
		a.logf("Result history cleared")
	case "/quit", "/exit":
		return a.quit()
	default:
		a.logErrorf("Unknown command %s. Use /help to list commands.", fields[0])
	}
	return nil
}

func (a *App) connectToServer(target string) tea.Cmd {
	if a.session != nil {
		_ = a.session.Close()
	}

	cfg := a.cfg
	cfg.ServerAddr = target
	session := NewSession(cfg)
	a.session = session
	a.serverAddr = target
	a.statusOnline = false
	a.pending = false
	a.logf("Connecting to %s ...", target)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := session.Connect(ctx)
		return connectResultMsg{
			session: session,
			address: target,
			err:     err,
		}
	}
}

// sendSQL hands text to the server verbatim. Only one command is in flight
// at a time so replies land in the order they were typed.
func (a *App) sendSQL(text string) tea.Cmd {
	if !a.isConnected() {
		a.logErrorf("Not connected. Use /connect first.")
		return nil
	}
	if a.pending {
		a.logErrorf("Still waiting for the previous reply")
		return nil
	}
	a.pending = true
	a.logf("Executing ...")

	session := a.session
	return func() tea.Msg {
		start := time.Now()
		reply, err := session.Execute(context.Background(), text)
		return executeResultMsg{
			session: session,
			command: text,
			reply:   reply,
			elapsed: time.Since(start),
			err:     err,
		}
	}
}

func defaultCommands() []commandSpec {
	return []commandSpec{
		{trigger: "/connect", usage: "/connect [addr]", description: "Connect to the server"},
		{trigger: "/disconnect", usage: "/disconnect", description: "Close the current connection"},
		{trigger: "/results", usage: "/results", description: "Show command results"},
		{trigger: "/home", usage: "/home", description: "Show the welcome screen"},
		{trigger: "/help", usage: "/help", description: "Show command help"},
		{trigger: "/clear", usage: "/clear", description: "Clear result history"},
		{trigger: "/quit", usage: "/quit", description: "Exit the client"},
	}
}
