package storage

import "context"

// Relations lists the tables every store must provide, in creation order:
// users is referenced by the other two.
var Relations = []string{"users", "login_history", "file_tracking"}

// Rows is a fully materialized result set.
type Rows struct {
	Columns []string
	Values  [][]interface{}
}

// InitReport records which relations initialization created and which
// already existed.
type InitReport struct {
	Created []string
	Present []string
}

// Store defines the persistence operations used by the execution engine.
//
// Implementations must not hold a connection between calls: every method
// opens its own connection and releases it before returning.
type Store interface {
	// Initialize creates any missing relations. It is safe to call repeatedly.
	Initialize(ctx context.Context) (InitReport, error)
	// Exec runs statement verbatim in a transaction and returns the number of
	// rows it changed. On error nothing is committed.
	Exec(ctx context.Context, statement string) (int64, error)
	// Query runs query verbatim and returns every row.
	Query(ctx context.Context, query string) (*Rows, error)
}
