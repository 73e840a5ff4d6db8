// Package builtin contains reusable table transforms that report
// definitions compose into their registered transformers.
package builtin

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"reportpipe/internal/table"
)

// Normalize trims cell whitespace (including NBSP, which warehouse exports
// of pasted data love to carry) and optionally folds column headers to
// ASCII snake_case. Header folding matters for Spanish-named columns like
// "Año" or "Descripción" that downstream consumers key on.
type Normalize struct {
	FoldHeaders bool
}

func (n Normalize) Apply(t table.Table) (table.Table, error) {
	if n.FoldHeaders {
		for i, c := range t.Columns {
			t.Columns[i] = foldHeader(c)
		}
	}
	for _, row := range t.Rows {
		for i, v := range row {
			if s, ok := v.(string); ok {
				row[i] = strings.TrimSpace(strings.ReplaceAll(s, " ", " "))
			}
		}
	}
	return t, nil
}

// foldHeader lowercases, strips diacritics, and squeezes runs of
// punctuation/whitespace into single underscores.
func foldHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose, remove nonspacing marks (accents), recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore && b.Len() > 0 {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
