// Package sqlite registers the "sqlite" warehouse backend.
package sqlite

import (
	"context"

	_ "modernc.org/sqlite" // cgo-free; alternative: github.com/mattn/go-sqlite3

	"reportpipe/internal/warehouse"
	"reportpipe/internal/warehouse/sqldb"
)

func init() {
	warehouse.Register("sqlite", func(ctx context.Context, cfg warehouse.Config) (warehouse.Runner, error) {
		return sqldb.Open(ctx, "sqlite", cfg.DSN)
	})
}
