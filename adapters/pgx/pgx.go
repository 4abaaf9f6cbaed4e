// Package pgx stores users and potions in PostgreSQL through a pgx pool.
// Potions are kept as JSONB documents so analytics run inside the database.
package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/lborres/apothecary/core"
	"github.com/lborres/apothecary/pkg/crypto"
)

// Pool is the subset of *pgxpool.Pool the adapter uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

type Adapter struct {
	pool Pool
	ids  *crypto.IDGenerator
}

var _ core.Storage = (*Adapter)(nil)

func New(pool Pool) *Adapter {
	return &Adapter{
		pool: pool,
		ids:  crypto.NewDefaultIDGenerator(),
	}
}

// Connect opens a pool for databaseURL and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.Code("DB_PING_FAILED").Wrap(err)
	}
	return pool, nil
}

func (a *Adapter) Ping(ctx context.Context) error {
	if err := a.pool.Ping(ctx); err != nil {
		return oops.Code("DB_PING_FAILED").Wrap(err)
	}
	return nil
}

// Close releases the pool.
func (a *Adapter) Close() {
	a.pool.Close()
}
