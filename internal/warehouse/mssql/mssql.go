// Package mssql registers the "mssql" warehouse backend.
package mssql

import (
	"context"

	_ "github.com/microsoft/go-mssqldb"

	"reportpipe/internal/warehouse"
	"reportpipe/internal/warehouse/sqldb"
)

func init() {
	warehouse.Register("mssql", func(ctx context.Context, cfg warehouse.Config) (warehouse.Runner, error) {
		return sqldb.Open(ctx, "sqlserver", cfg.DSN)
	})
}
