package db

import (
	"context"
	"database/sql"
	"time"
)

// WithTx runs fn inside one transaction bounded by timeout. Rollback on any
// error (including context deadline) so partial writes are never observable.
func WithTx(ctx context.Context, conn *sql.DB, timeout time.Duration, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// NullIfEmpty helps store optional strings without wiping existing data.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NullTime maps an optional time to its SQL value.
func NullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
