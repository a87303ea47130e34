package service

import (
	"context"
	"database/sql"

	"github.com/mgnegypt/nano-image/internal/store"
)

// TxRunner executes a function within a database transaction. It exists so
// services can be exercised without a live database.
type TxRunner func(ctx context.Context, fn store.TxFn) error

// NewSQLTxRunner returns a TxRunner that opens real transactions on db.
func NewSQLTxRunner(db *sql.DB) TxRunner {
	return func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, db, fn)
	}
}
