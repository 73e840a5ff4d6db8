// Package duckdb registers the "duckdb" warehouse backend. DuckDB runs
// in-process, which makes it handy for local analytics extracts: the DSN is
// a database file path, or empty for an in-memory instance.
package duckdb

import (
	"context"

	_ "github.com/marcboeker/go-duckdb"

	"reportpipe/internal/warehouse"
	"reportpipe/internal/warehouse/sqldb"
)

func init() {
	warehouse.Register("duckdb", func(ctx context.Context, cfg warehouse.Config) (warehouse.Runner, error) {
		return sqldb.Open(ctx, "duckdb", cfg.DSN)
	})
}
