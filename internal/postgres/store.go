// Package postgres implements domain.Store on PostgreSQL via pgx. All
// queries run against a DBTX, which is either the shared pool or a
// transaction handed out by RunInTx.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stroymart/backend/internal/domain"
)

// DBTX is the query surface shared by pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements domain.Store. The zero value is not usable; construct
// with New.
type Store struct {
	db   DBTX
	pool *pgxpool.Pool
	tx   pgx.Tx // non-nil when this store is scoped to a transaction
}

// Compile-time check that Store implements domain.Store.
var _ domain.Store = (*Store)(nil)

// New creates a Store over an injected connection pool. The pool's
// lifecycle (creation, Close) belongs to the caller.
func New(pool *pgxpool.Pool) *Store {
	return &Store{db: pool, pool: pool}
}

// RunInTx executes fn inside a database transaction. On a transaction
//-scoped store, a nested call opens a pgx savepoint, so an inner failure
// rolls back only the inner work. Rollback is deferred on every path; it
// is a no-op after a successful commit.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx domain.Store) error) error {
	var (
		t   pgx.Tx
		err error
	)
	if s.tx != nil {
		t, err = s.tx.Begin(ctx)
	} else {
		t, err = s.pool.Begin(ctx)
	}
	if err != nil {
		return domain.Internal(err, "store.tx", "failed to begin transaction")
	}
	defer func() { _ = t.Rollback(ctx) }()

	scoped := &Store{db: t, pool: s.pool, tx: t}
	if err := fn(ctx, scoped); err != nil {
		return err
	}

	if err := t.Commit(ctx); err != nil {
		return domain.Internal(err, "store.tx", "failed to commit transaction")
	}
	return nil
}
