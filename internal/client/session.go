package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/fenggwsx/SlashSQL/internal/command"
	"github.com/fenggwsx/SlashSQL/internal/config"
	"github.com/fenggwsx/SlashSQL/internal/protocol"
)

// ErrNotConnected is returned by Execute before Connect or after the
// connection has been lost.
var ErrNotConnected = errors.New("not connected")

// Session manages one framed connection to a SlashSQL server.
// Execute calls are serialized so every reply is paired with its command.
type Session struct {
	cfg     config.ClientConfig
	mu      sync.Mutex
	conn    net.Conn
	encoder *protocol.Encoder
	decoder *protocol.Decoder
}

// NewSession initializes a session with configuration.
func NewSession(cfg config.ClientConfig) *Session {
	return &Session{cfg: cfg}
}

// Addr returns the server address this session dials.
func (s *Session) Addr() string {
	return s.cfg.ServerAddr
}

// Connect dials the server and prepares the frame encoder and decoder.
func (s *Session) Connect(ctx context.Context) error {
	if s.cfg.ServerAddr == "" {
		return errors.New("no server address configured")
	}
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", s.cfg.ServerAddr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn = conn
	s.encoder = protocol.NewEncoder(conn)
	s.decoder = protocol.NewDecoder(conn, 0)
	return nil
}

// Connected reports whether the session holds a live connection.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Execute sends one command and waits for its reply. A blank command is
// rejected locally because the server treats it as a goodbye. Transport
// failures drop the connection.
func (s *Session) Execute(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", command.ErrEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return "", ErrNotConnected
	}

	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}
	deadline, _ := ctx.Deadline()
	if err := s.conn.SetDeadline(deadline); err != nil {
		s.closeLocked()
		return "", err
	}

	if err := s.encoder.Encode(ctx, text); err != nil {
		s.closeLocked()
		return "", fmt.Errorf("send: %w", err)
	}
	reply, err := s.decoder.Decode(ctx)
	if err != nil {
		s.closeLocked()
		return "", fmt.Errorf("receive: %w", err)
	}
	return reply, nil
}

// Close terminates the session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Session) closeLocked() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}
