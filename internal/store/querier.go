package store

import (
	"context"
	"database/sql"
	"errors"
)

// Querier is implemented by both *sql.DB and *sql.Tx, so store functions can
// run standalone or as part of a caller's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ErrStockConflict is returned when an item's stock was changed by someone
// else between reading it and writing it back.
var ErrStockConflict = errors.New("item stock was modified concurrently")

type scanner interface {
	Scan(dest ...any) error
}
