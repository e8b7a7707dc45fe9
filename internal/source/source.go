// Package source reads creator rows from the relational source of truth.
// Two drivers are supported: postgres for production and sqlite for local
// runs.
package source

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/talentops/creator-sync/internal/model"
)

// Provider yields the bounded creator snapshot for one batch run. The
// read completes before any CRM work begins; provider connections are
// never held across HTTP calls.
type Provider interface {
	// ListCreators returns up to limit rows ordered by user ID ascending.
	ListCreators(ctx context.Context, limit int) ([]model.Creator, error)
	Close() error
}

// Pool is the subset of pgxpool.Pool the package needs. pgxmock's
// PgxPoolIface satisfies it, which keeps the Postgres provider testable
// without a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}
