package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/fenggwsx/SlashSQL/internal/command"
	"github.com/fenggwsx/SlashSQL/internal/protocol"
)

// clientSession drives one connection: receive, classify, execute, send.
type clientSession struct {
	id     string
	app    *App
	conn   net.Conn
	logger *slog.Logger
}

func newClientSession(app *App, conn net.Conn) *clientSession {
	id := uuid.NewString()
	return &clientSession{
		id:     id,
		app:    app,
		conn:   conn,
		logger: app.logger.With("conn", id, "remote", remoteAddr(conn)),
	}
}

func (a *App) handleConnection(ctx context.Context, conn net.Conn) {
	session := newClientSession(a, conn)
	defer session.close()

	// Unblocks a pending read when the server shuts down.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			session.logger.Error("Error handling client", "panic", r)
		}
	}()

	session.logger.Info("Client connected")
	err := session.serve(ctx)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		session.logger.Info("Client disconnected")
	case ctx.Err() != nil:
		session.logger.Info("Client disconnected", "reason", "server shutdown")
	default:
		session.logger.Warn("Error handling client", "error", err)
	}
}

// serve loops until the peer closes, sends an empty frame, or the transport
// fails. Commands on one connection are handled strictly in order.
func (s *clientSession) serve(ctx context.Context) error {
	decoder := protocol.NewDecoder(s.conn, s.app.cfg.MaxFrameBytes)
	encoder := protocol.NewEncoder(s.conn)

	for {
		if err := s.extendDeadline(s.conn.SetReadDeadline, s.app.cfg.ReadTimeout); err != nil {
			return err
		}
		message, err := decoder.Decode(ctx)
		if err != nil {
			return err
		}

		cmd, err := command.Parse(message)
		if errors.Is(err, command.ErrEmpty) {
			return nil
		}
		s.logger.Debug("Received", "kind", cmd.Kind, "command", cmd.Text)

		result := s.app.engine.Execute(ctx, cmd)

		if err := s.extendDeadline(s.conn.SetWriteDeadline, s.app.cfg.WriteTimeout); err != nil {
			return err
		}
		if err := encoder.Encode(ctx, result.Render()); err != nil {
			return err
		}
	}
}

func (s *clientSession) extendDeadline(set func(time.Time) error, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}
	return set(time.Now().Add(timeout))
}

func (s *clientSession) close() {
	if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug("close connection", "error", err)
	}
}

func remoteAddr(conn net.Conn) string {
	if conn == nil {
		return ""
	}
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
