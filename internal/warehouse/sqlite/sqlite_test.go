package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"reportpipe/internal/warehouse"
)

func seedDB(t *testing.T, dsn string) {
	t.Helper()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	defer db.Close()

	for _, stmt := range []string{
		"CREATE TABLE ingresos (cuenta TEXT, monto REAL, fecha TEXT)",
		"INSERT INTO ingresos VALUES ('gaia', 1200.50, '2026-08-01')",
		"INSERT INTO ingresos VALUES ('condominios', 980.00, '2026-08-02')",
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
}

/*
TestSQLiteRunner_QueryRoundTrip opens a real on-disk SQLite database, loads
a couple of rows, and verifies that the runner materializes column names and
values in select order. SQLite is the only backend cheap enough to exercise
end to end in unit tests; the other database/sql backends share the same
sqldb runner.
*/
func TestSQLiteRunner_QueryRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "wh.db")
	seedDB(t, dsn)

	r, err := warehouse.New(ctx, warehouse.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	tbl, err := r.Query(ctx, "SELECT cuenta, monto FROM ingresos ORDER BY cuenta")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(tbl.Columns) != 2 || tbl.Columns[0] != "cuenta" || tbl.Columns[1] != "monto" {
		t.Fatalf("columns = %v, want [cuenta monto]", tbl.Columns)
	}
	if tbl.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.NumRows())
	}
	if got := tbl.Rows[0][0]; got != "condominios" {
		t.Fatalf("first row cuenta = %v, want condominios", got)
	}

	// Empty result keeps the column header.
	empty, err := r.Query(ctx, "SELECT cuenta FROM ingresos WHERE monto < 0")
	if err != nil {
		t.Fatalf("empty query: %v", err)
	}
	if !empty.Empty() || len(empty.Columns) != 1 {
		t.Fatalf("empty = %+v, want zero rows and one column", empty)
	}
}

/*
TestSQLiteRunner_QueryError verifies that malformed SQL surfaces as an error
from the runner rather than panicking or returning a partial table.
*/
func TestSQLiteRunner_QueryError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "wh.db")
	seedDB(t, dsn)

	r, err := warehouse.New(ctx, warehouse.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	if _, err := r.Query(ctx, "SELEC nonsense"); err == nil {
		t.Fatalf("expected error for malformed SQL")
	}
}
