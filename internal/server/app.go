package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fenggwsx/SlashSQL/internal/command"
	"github.com/fenggwsx/SlashSQL/internal/config"
	"github.com/fenggwsx/SlashSQL/internal/engine"
	"github.com/fenggwsx/SlashSQL/internal/logging"
	"github.com/fenggwsx/SlashSQL/internal/storage"
)

const acceptRetryDelay = 50 * time.Millisecond

// App coordinates the listener, per-connection handlers and the shared store.
type App struct {
	cfg       config.ServerConfig
	store     storage.Store
	engine    *engine.Engine
	logger    *slog.Logger
	listener  net.Listener
	ready     chan struct{}
	closeOnce sync.Once
}

// NewApp constructs a server instance using the provided dependencies.
func NewApp(cfg config.ServerConfig, store storage.Store, logger *slog.Logger) *App {
	logger = logging.OrDiscard(logger).With("server", config.ServerName)
	policy := command.NewPolicy(cfg.Guard.Verbs())
	if policy.Restricted() {
		logger.Info("command guard enabled", "allowed_verbs", cfg.Guard.Verbs())
	}
	return &App{
		cfg:   cfg,
		store: store,
		engine: engine.New(store,
			engine.WithPolicy(policy),
			engine.WithLogger(logger.With("component", "engine")),
		),
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// Ready is closed once the listener is accepting connections.
func (a *App) Ready() <-chan struct{} {
	return a.ready
}

// Addr returns the listening address, or nil before Ready is closed.
func (a *App) Addr() net.Addr {
	select {
	case <-a.ready:
		return a.listener.Addr()
	default:
		return nil
	}
}

// Run initializes the store, then accepts connections until the context is
// canceled. On return the listener and every client socket are closed and
// all handlers have exited.
func (a *App) Run(ctx context.Context) error {
	if err := a.initializeStore(ctx); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", a.cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	a.listener = listener
	close(a.ready)
	a.logger.Info("Server started", "addr", listener.Addr().String())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		a.closeListener()
		return nil
	})

	g.Go(func() error {
		return a.acceptLoop(gctx, g)
	})

	err = g.Wait()
	a.logger.Info("Shutting down server...")
	return err
}

func (a *App) initializeStore(ctx context.Context) error {
	report, err := a.store.Initialize(ctx)
	if err != nil {
		a.logger.Error("Error initializing database", "error", err)
		if a.cfg.Database.FailOnInitError {
			return fmt.Errorf("initialize store: %w", err)
		}
		return nil
	}
	a.logger.Info("Database initialized successfully", "created", report.Created, "present", report.Present)
	return nil
}

func (a *App) acceptLoop(ctx context.Context, g *errgroup.Group) error {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			a.logger.Warn("accept failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(acceptRetryDelay):
			}
			continue
		}

		g.Go(func() error {
			a.handleConnection(ctx, conn)
			return nil
		})
	}
}

func (a *App) closeListener() {
	a.closeOnce.Do(func() {
		_ = a.listener.Close()
	})
}
