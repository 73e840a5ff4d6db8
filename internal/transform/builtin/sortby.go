package builtin

import (
	"fmt"
	"sort"

	"reportpipe/internal/table"
)

// SortBy stable-sorts rows by one column. Numeric values compare
// numerically; everything else falls back to string comparison. An unknown
// column leaves the table untouched.
type SortBy struct {
	Column string
	Desc   bool
}

func (s SortBy) Apply(t table.Table) (table.Table, error) {
	i := t.ColumnIndex(s.Column)
	if i < 0 || t.Empty() {
		return t, nil
	}

	sort.SliceStable(t.Rows, func(a, b int) bool {
		less := lessValues(t.Rows[a][i], t.Rows[b][i])
		if s.Desc {
			return lessValues(t.Rows[b][i], t.Rows[a][i])
		}
		return less
	})
	return t, nil
}

func lessValues(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
