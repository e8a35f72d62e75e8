package store

import (
	"context"
	"database/sql"
)

// DBTX is the common surface of *sql.DB and *sql.Tx. Stores are built
// against it so the same implementation runs standalone or inside a
// transaction handed out by WithTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
