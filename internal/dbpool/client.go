// Package dbpool implements the per-file pooled database connection
// manager: a driver capability contract over sqlite
// (mattn/go-sqlite3) and postgres (jackc/pgx/v5's stdlib driver), lazy
// per-logical-name connection opening, snapshot/restore for per_file
// isolation, and masked-secret error reporting.
package dbpool

import (
	"context"
)

// Rows is the two-dimensional textual matrix a query returns.
// Each inner slice is one row; NULL cells are the literal string "NULL".
type Rows [][]string

// Client is the driver capability contract (, abstract):
// open/execute/query plus the optional snapshot/restore capability. A
// driver that does not support snapshot/restore returns
// *bterrors.UnsupportedAction from both methods.
type Client interface {
	// Execute runs statements sequentially. onErrorContinue suppresses
	// per-statement failures instead of aborting at the first one.
	Execute(ctx context.Context, statements []string, onErrorContinue bool) error
	Query(ctx context.Context, query string) (Rows, error)
	TableExists(ctx context.Context, table string) (bool, error)
	RowCount(ctx context.Context, table string) (int64, error)
	Snapshot(name string) error
	Restore(name string) error
	Close() error
}
