// Package table defines the tabular result model passed between the
// warehouse runner, transforms, and the spreadsheet writer.
//
// A Table is a plain column-ordered grid. It is created fresh for every
// report iteration and never shared across iterations, so no locking is
// needed anywhere in the pipeline.
package table

// Table holds a query result: column names in select order plus rows of
// values aligned to those columns.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New returns a Table with the given columns and no rows.
func New(columns ...string) Table {
	return Table{Columns: columns}
}

// Empty reports whether the table has no rows. A table with columns but no
// rows is empty; the pipeline treats it as "no output" rather than an error.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// NumRows returns the row count.
func (t Table) NumRows() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the table. Transforms that reorder or drop
// rows in place should clone first when they need to preserve the input.
func (t Table) Clone() Table {
	out := Table{Columns: append([]string(nil), t.Columns...)}
	out.Rows = make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append([]any(nil), r...)
	}
	return out
}
