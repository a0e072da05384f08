package db

import (
	"context"
	"database/sql"
)

// Querier is satisfied by *sql.DB and *sql.Tx so repository writes can join a
// caller-owned transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
