//go:build unit || e2e

package dbtest

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBLike is satisfied by *pgxpool.Pool and pgx.Tx, so raw checks can run
// inside or outside a transaction.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SumColumn adds up an integer column; an empty table sums to zero.
func SumColumn(ctx context.Context, db DBLike, table, column string) (int64, error) {
	var n int64
	err := db.QueryRow(ctx, "SELECT COALESCE(SUM("+column+"), 0)::BIGINT FROM "+table).Scan(&n)
	return n, err
}
