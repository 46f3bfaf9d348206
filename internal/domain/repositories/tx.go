package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the common interface satisfied by both *pgxpool.Pool and pgx.Tx.
// Repositories query through it so they automatically participate in a
// transaction when one is present in the context.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxFn is a function executed within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs a function inside a database transaction
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

// Context key type to avoid collisions
type txContextKey struct{}

// SetTx stores a transaction in the context
func SetTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// GetTx retrieves a transaction from the context, nil if absent
func GetTx(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txContextKey{}).(pgx.Tx)
	return tx
}
