package builtin

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"reportpipe/internal/table"
)

// DeDup collapses duplicate rows by a configured column key and keeps one
// winner per key:
//
//   - "keep-first": keep the earliest occurrence
//   - "keep-last":  keep the latest occurrence (default)
//
// Rows are keyed by an xxh3 hash of the key columns' printed values. Rows
// missing a key column pass through untouched. Output preserves the winning
// rows' original relative order.
type DeDup struct {
	Keys   []string
	Policy string
}

func (d DeDup) Apply(t table.Table) (table.Table, error) {
	if t.Empty() || len(d.Keys) == 0 {
		return t, nil
	}

	idx := make([]int, 0, len(d.Keys))
	for _, k := range d.Keys {
		i := t.ColumnIndex(k)
		if i < 0 {
			// Key column absent: nothing sensible to deduplicate on.
			return t, nil
		}
		idx = append(idx, i)
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}

	keyOf := func(row []any) uint64 {
		var b strings.Builder
		for _, i := range idx {
			if b.Len() > 0 {
				b.WriteByte('\x1f')
			}
			switch v := row[i].(type) {
			case nil:
				b.WriteByte('\x00')
			case string:
				b.WriteString(v)
			default:
				b.WriteString(fmt.Sprint(v))
			}
		}
		return xxh3.HashString(b.String())
	}

	winners := map[uint64]int{} // key hash -> winning row index
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			continue
		}
		key := keyOf(row)
		if _, exists := winners[key]; exists && policy == "keep-first" {
			continue
		}
		winners[key] = i
	}

	keep := make(map[int]bool, len(winners))
	for _, i := range winners {
		keep[i] = true
	}

	out := table.Table{Columns: t.Columns, Rows: make([][]any, 0, len(winners))}
	for i, row := range t.Rows {
		if keep[i] || len(row) != len(t.Columns) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}
