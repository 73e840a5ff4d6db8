// Package sqldb implements a generic database/sql warehouse.Runner shared
// by every backend whose driver speaks database/sql (DuckDB, SQLite, MySQL,
// MSSQL). Backend subpackages contribute only the driver import and the
// factory registration.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reportpipe/internal/table"
)

// Runner wraps a database/sql handle for a specific driver.
type Runner struct {
	db     *sql.DB
	driver string
}

// Open opens the named driver against dsn and pings it with a short timeout
// to fail fast on invalid DSNs.
func Open(ctx context.Context, driver, dsn string) (*Runner, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", driver, err)
	}
	return &Runner{db: db, driver: driver}, nil
}

// Query executes sql and materializes the entire result set into a Table.
func (r *Runner) Query(ctx context.Context, query string) (tbl table.Table, err error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return table.Table{}, fmt.Errorf("%s: query: %w", r.driver, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return table.Table{}, fmt.Errorf("%s: columns: %w", r.driver, err)
	}
	tbl.Columns = cols

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return table.Table{}, fmt.Errorf("%s: scan: %w", r.driver, err)
		}
		for i, v := range vals {
			// Drivers commonly hand back []byte for text columns; keep the
			// table printable.
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		tbl.Rows = append(tbl.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return table.Table{}, fmt.Errorf("%s: rows: %w", r.driver, err)
	}
	return tbl, nil
}

// Close closes the underlying handle.
func (r *Runner) Close() {
	r.db.Close()
}
