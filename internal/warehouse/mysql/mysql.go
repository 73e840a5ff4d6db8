// Package mysql registers the "mysql" warehouse backend.
package mysql

import (
	"context"

	_ "github.com/go-sql-driver/mysql"

	"reportpipe/internal/warehouse"
	"reportpipe/internal/warehouse/sqldb"
)

func init() {
	warehouse.Register("mysql", func(ctx context.Context, cfg warehouse.Config) (warehouse.Runner, error) {
		return sqldb.Open(ctx, "mysql", cfg.DSN)
	})
}
