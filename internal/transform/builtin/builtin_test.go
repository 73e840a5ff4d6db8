package builtin

import (
	"reflect"
	"testing"

	"reportpipe/internal/table"
)

/*
TestNormalize covers cell trimming (plain and NBSP whitespace) and header
folding for accented, punctuated Spanish column names.
*/
func TestNormalize(t *testing.T) {
	t.Parallel()

	in := table.Table{
		Columns: []string{"Año", "Descripción del Gasto", " monto "},
		Rows: [][]any{
			{"  2024 ", " luz ", 12.5},
			{"2025", "agua", 7},
		},
	}

	out, err := Normalize{FoldHeaders: true}.Apply(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCols := []string{"ano", "descripcion_del_gasto", "monto"}
	if !reflect.DeepEqual(out.Columns, wantCols) {
		t.Fatalf("columns = %#v, want %#v", out.Columns, wantCols)
	}
	if out.Rows[0][0] != "2024" || out.Rows[0][1] != "luz" {
		t.Fatalf("rows not trimmed: %#v", out.Rows[0])
	}
	if out.Rows[0][2] != 12.5 {
		t.Fatalf("non-string cell changed: %#v", out.Rows[0][2])
	}
}

func TestNormalize_NoFold(t *testing.T) {
	t.Parallel()

	in := table.Table{Columns: []string{"Año"}, Rows: [][]any{{" x "}}}
	out, err := Normalize{}.Apply(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Columns[0] != "Año" {
		t.Fatalf("header changed without FoldHeaders: %q", out.Columns[0])
	}
	if out.Rows[0][0] != "x" {
		t.Fatalf("cell not trimmed: %#v", out.Rows[0][0])
	}
}

/*
TestDeDup exercises both keep policies and the pass-through cases (missing
key column, empty key list).
*/
func TestDeDup(t *testing.T) {
	t.Parallel()

	base := func() table.Table {
		return table.Table{
			Columns: []string{"cuenta", "monto"},
			Rows: [][]any{
				{"luz", 1},
				{"agua", 2},
				{"luz", 3},
			},
		}
	}

	tests := []struct {
		name   string
		dd     DeDup
		want   [][]any
		sameIn bool
	}{
		{
			name: "keep last is the default",
			dd:   DeDup{Keys: []string{"cuenta"}},
			want: [][]any{{"agua", 2}, {"luz", 3}},
		},
		{
			name: "keep first",
			dd:   DeDup{Keys: []string{"cuenta"}, Policy: "keep-first"},
			want: [][]any{{"luz", 1}, {"agua", 2}},
		},
		{
			name:   "missing key column passes through",
			dd:     DeDup{Keys: []string{"nope"}},
			sameIn: true,
		},
		{
			name:   "no keys passes through",
			dd:     DeDup{},
			sameIn: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := base()
			out, err := tt.dd.Apply(in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := tt.want
			if tt.sameIn {
				want = base().Rows
			}
			if !reflect.DeepEqual(out.Rows, want) {
				t.Fatalf("rows = %#v, want %#v", out.Rows, want)
			}
		})
	}
}

func TestDeDup_MultiKey(t *testing.T) {
	t.Parallel()

	in := table.Table{
		Columns: []string{"cuenta", "mes", "monto"},
		Rows: [][]any{
			{"luz", 1, 10},
			{"luz", 2, 20},
			{"luz", 1, 30},
		},
	}
	out, err := DeDup{Keys: []string{"cuenta", "mes"}}.Apply(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]any{{"luz", 2, 20}, {"luz", 1, 30}}
	if !reflect.DeepEqual(out.Rows, want) {
		t.Fatalf("rows = %#v, want %#v", out.Rows, want)
	}
}

/*
TestSortBy checks numeric ascending, descending, string fallback, and the
unknown-column no-op. Sort stability matters for equal keys.
*/
func TestSortBy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sb   SortBy
		rows [][]any
		want [][]any
	}{
		{
			name: "numeric ascending",
			sb:   SortBy{Column: "monto"},
			rows: [][]any{{"b", 3}, {"a", 1}, {"c", 2}},
			want: [][]any{{"a", 1}, {"c", 2}, {"b", 3}},
		},
		{
			name: "numeric descending",
			sb:   SortBy{Column: "monto", Desc: true},
			rows: [][]any{{"b", 3}, {"a", 1}, {"c", 2}},
			want: [][]any{{"b", 3}, {"c", 2}, {"a", 1}},
		},
		{
			name: "string fallback",
			sb:   SortBy{Column: "cuenta"},
			rows: [][]any{{"b", 1}, {"a", 2}, {"c", 3}},
			want: [][]any{{"a", 2}, {"b", 1}, {"c", 3}},
		},
		{
			name: "unknown column is a no-op",
			sb:   SortBy{Column: "nope"},
			rows: [][]any{{"b", 3}, {"a", 1}},
			want: [][]any{{"b", 3}, {"a", 1}},
		},
		{
			name: "stable for equal keys",
			sb:   SortBy{Column: "monto"},
			rows: [][]any{{"b", 1}, {"a", 1}, {"c", 1}},
			want: [][]any{{"b", 1}, {"a", 1}, {"c", 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := table.Table{Columns: []string{"cuenta", "monto"}, Rows: tt.rows}
			out, err := tt.sb.Apply(in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(out.Rows, tt.want) {
				t.Fatalf("rows = %#v, want %#v", out.Rows, tt.want)
			}
		})
	}
}
