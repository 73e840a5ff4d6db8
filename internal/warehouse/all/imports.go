// Package all wires all built-in warehouse backends into the factory.
//
// This package exists purely for side effects: importing it (even as a
// blank import) runs the init functions of each concrete backend, which in
// turn register their factories with the warehouse package. After importing
// it the following warehouse kinds are available at runtime:
//
//   - "postgres" (reportpipe/internal/warehouse/postgres)
//   - "duckdb"   (reportpipe/internal/warehouse/duckdb)
//   - "sqlite"   (reportpipe/internal/warehouse/sqlite)
//   - "mysql"    (reportpipe/internal/warehouse/mysql)
//   - "mssql"    (reportpipe/internal/warehouse/mssql)
//
// A binary that only ever talks to one warehouse can import that backend
// package directly instead of this one.
package all

import (
	_ "reportpipe/internal/warehouse/duckdb"
	_ "reportpipe/internal/warehouse/mssql"
	_ "reportpipe/internal/warehouse/mysql"
	_ "reportpipe/internal/warehouse/postgres"
	_ "reportpipe/internal/warehouse/sqlite"
)
