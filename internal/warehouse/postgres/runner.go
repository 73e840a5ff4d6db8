// Package postgres implements a Postgres warehouse.Runner using pgx v5.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"reportpipe/internal/table"
	"reportpipe/internal/warehouse"
)

func init() {
	warehouse.Register("postgres", func(ctx context.Context, cfg warehouse.Config) (warehouse.Runner, error) {
		return NewRunner(ctx, cfg.DSN)
	})
}

// Runner is a Postgres-backed implementation of warehouse.Runner.
type Runner struct {
	pool *pgxpool.Pool
}

// NewRunner opens a pgx pool against dsn and pings it to fail fast on bad
// credentials or unreachable hosts.
func NewRunner(ctx context.Context, dsn string) (*Runner, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Runner{pool: pool}, nil
}

// Query executes sql and materializes the entire result set.
func (r *Runner) Query(ctx context.Context, sql string) (table.Table, error) {
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return table.Table{}, fmt.Errorf("postgres: query: %w", err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	t := table.Table{Columns: make([]string, len(fds))}
	for i, fd := range fds {
		t.Columns[i] = fd.Name
	}

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return table.Table{}, fmt.Errorf("postgres: scan: %w", err)
		}
		t.Rows = append(t.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return table.Table{}, fmt.Errorf("postgres: rows: %w", err)
	}
	return t, nil
}

// Close releases the pool.
func (r *Runner) Close() {
	r.pool.Close()
}
