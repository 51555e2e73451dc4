// Package engine executes classified commands against the store and turns
// the outcome into the text result sent to clients.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fenggwsx/SlashSQL/internal/command"
	"github.com/fenggwsx/SlashSQL/internal/logging"
	"github.com/fenggwsx/SlashSQL/internal/storage"
)

// Engine runs commands against a storage.Store. It is safe for concurrent use
// as long as the store is.
type Engine struct {
	store  storage.Store
	policy command.Policy
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy restricts which commands are executed.
func WithPolicy(p command.Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine backed by store.
func New(store storage.Store, opts ...Option) *Engine {
	e := &Engine{store: store}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.OrDiscard(e.logger)
	return e
}

// Execute dispatches cmd by kind. Failures, including a rejected command,
// come back as ErrorResult; Execute never panics on store errors.
func (e *Engine) Execute(ctx context.Context, cmd command.Command) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("command panicked", "kind", cmd.Kind, "panic", r)
			result = ErrorResult{Message: fmt.Sprint(r)}
		}
	}()

	if err := e.policy.Check(cmd); err != nil {
		e.logger.Warn("command rejected", "verb", cmd.Verb())
		return ErrorResult{Message: err.Error()}
	}
	if err := command.CheckSingle(cmd.Text); err != nil {
		return ErrorResult{Message: err.Error()}
	}

	if cmd.Kind == command.Query {
		return e.ExecuteQuery(ctx, cmd.Text)
	}
	return e.ExecuteStatement(ctx, cmd.Text)
}

// ExecuteStatement runs text as a mutating statement and commits it.
func (e *Engine) ExecuteStatement(ctx context.Context, text string) Result {
	n, err := e.store.Exec(ctx, text)
	if err != nil {
		return e.failure(command.Statement, err)
	}
	e.logger.Debug("statement executed", "rows_affected", n)
	return StatementResult{RowsAffected: n}
}

// ExecuteQuery runs text as a query and collects every row.
func (e *Engine) ExecuteQuery(ctx context.Context, text string) Result {
	rows, err := e.store.Query(ctx, text)
	if err != nil {
		return e.failure(command.Query, err)
	}
	e.logger.Debug("query executed", "rows", len(rows.Values))
	return QueryResult{Columns: rows.Columns, Rows: rows.Values}
}

func (e *Engine) failure(kind command.Kind, err error) Result {
	e.logger.Debug("command failed", "kind", kind, "error", err)
	return ErrorResult{Message: err.Error()}
}
