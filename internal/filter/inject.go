package filter

import "strings"

// Inject returns query with the requested catalog filters spliced into its
// filtering clause. Fragments resolve in the request's insertion order and
// join with " AND ". Exactly one of three strategies applies:
//
//   - the query has a WHERE clause: "(<combined>) AND " goes right after the
//     WHERE keyword, so the original predicate is narrowed, not replaced;
//   - no WHERE but a GROUP BY / ORDER BY / LIMIT follows: "WHERE <combined>"
//     goes immediately before the first such keyword;
//   - neither: " WHERE <combined>" is appended.
//
// Only the first WHERE is considered; the pipeline's queries are single
// top-level SELECTs, so nested WHEREs are a known limitation. Unknown filter
// names resolve to nothing and are ignored. When nothing resolves, query is
// returned unchanged, byte for byte.
//
// Injection is not idempotent: applying the same request twice stacks the
// combined predicate twice. Callers inject once per run.
func Inject(query string, req Request, cat *Catalog) string {
	combined, ok := combine(req, cat)
	if !ok {
		return query
	}

	toks, err := scan(query)
	if err != nil {
		// The scanner could not make sense of the query. A trailing WHERE on
		// malformed input beats aborting the report run.
		return query + " WHERE " + combined
	}

	whereIdx, clauseIdx := -1, -1
	for i, t := range toks {
		if t.kind != tokenKeyword {
			continue
		}
		if t.keyword == "WHERE" {
			whereIdx = i
			break
		}
		if clauseIdx < 0 {
			clauseIdx = i
		}
	}

	switch {
	case whereIdx >= 0:
		return spliceAfterWhere(toks, whereIdx, combined)
	case clauseIdx >= 0:
		return spliceBeforeClause(toks, clauseIdx, combined)
	default:
		return query + " WHERE " + combined
	}
}

// combine resolves the enabled request entries against the catalog. ok is
// false when nothing resolves (empty request, all-false flags, or only
// unknown names).
func combine(req Request, cat *Catalog) (string, bool) {
	var frags []string
	for _, name := range req.Enabled() {
		if frag, found := cat.Lookup(name); found {
			frags = append(frags, frag)
		}
	}
	if len(frags) == 0 {
		return "", false
	}
	return strings.Join(frags, " AND "), true
}

func spliceAfterWhere(toks []token, whereIdx int, combined string) string {
	ins := " (" + combined + ") AND"
	if next := followingText(toks, whereIdx); next == "" || !isSpaceByte(next[0]) {
		ins += " "
	}

	var b strings.Builder
	for i, t := range toks {
		b.WriteString(t.text)
		if i == whereIdx {
			b.WriteString(ins)
		}
	}
	return b.String()
}

func spliceBeforeClause(toks []token, clauseIdx int, combined string) string {
	var b strings.Builder
	for _, t := range toks[:clauseIdx] {
		b.WriteString(t.text)
	}

	prefix := b.String()
	if prefix != "" && !isSpaceByte(prefix[len(prefix)-1]) {
		b.WriteString(" ")
	}
	b.WriteString("WHERE " + combined + " ")

	for _, t := range toks[clauseIdx:] {
		b.WriteString(t.text)
	}
	return b.String()
}

// followingText returns the raw text immediately after token i, or "".
func followingText(toks []token, i int) string {
	if i+1 < len(toks) {
		return toks[i+1].text
	}
	return ""
}
