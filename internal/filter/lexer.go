package filter

import (
	"fmt"
	"strings"
)

// The injector does not parse SQL. It only needs to locate the clause
// keywords WHERE / GROUP BY / ORDER BY / LIMIT at the lexical level, while
// keeping every other byte of the query intact. The scanner below produces a
// flat token stream where clause keywords are distinct tokens and everything
// else, including string literals, quoted identifiers, and comments (whose
// contents must never match a keyword), collapses into opaque text spans.
// Concatenating the token texts reproduces the input byte for byte.

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenKeyword
)

type token struct {
	kind    tokenKind
	keyword string // canonical form: "WHERE", "GROUP BY", "ORDER BY", "LIMIT"
	text    string // raw source bytes
}

func isWordByte(b byte) bool {
	return b == '_' || b >= 0x80 ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// scan tokenizes query. It fails only when the lexical structure cannot be
// recognized at all (unterminated string literal or block comment); callers
// fall back to appending a WHERE clause in that case.
func scan(query string) ([]token, error) {
	var (
		toks      []token
		textStart int
		i         int
		prevByte  byte // last significant byte before the current position
	)

	flushText := func(end int) {
		if end > textStart {
			toks = append(toks, token{kind: tokenText, text: query[textStart:end]})
		}
	}

	// skipQuoted consumes a quoted region starting at the opening quote and
	// returns the index just past the closing quote. Doubled quotes and
	// backslash escapes stay inside the literal.
	skipQuoted := func(start int, quote byte) (int, error) {
		j := start + 1
		for j < len(query) {
			switch query[j] {
			case '\\':
				j += 2
			case quote:
				if j+1 < len(query) && query[j+1] == quote {
					j += 2
					continue
				}
				return j + 1, nil
			default:
				j++
			}
		}
		return 0, fmt.Errorf("unterminated %c-quoted literal at byte %d", quote, start)
	}

	for i < len(query) {
		b := query[i]
		switch {
		case b == '\'' || b == '"' || b == '`':
			end, err := skipQuoted(i, b)
			if err != nil {
				return nil, err
			}
			prevByte = query[end-1]
			i = end

		case b == '-' && i+1 < len(query) && query[i+1] == '-':
			j := strings.IndexByte(query[i:], '\n')
			if j < 0 {
				i = len(query)
			} else {
				i += j + 1
			}

		case b == '#':
			j := strings.IndexByte(query[i:], '\n')
			if j < 0 {
				i = len(query)
			} else {
				i += j + 1
			}

		case b == '/' && i+1 < len(query) && query[i+1] == '*':
			j := strings.Index(query[i+2:], "*/")
			if j < 0 {
				return nil, fmt.Errorf("unterminated block comment at byte %d", i)
			}
			i += 2 + j + 2

		case isWordByte(b):
			wordStart := i
			for i < len(query) && isWordByte(query[i]) {
				i++
			}
			word := query[wordStart:i]

			// A word right after '.' is a qualified name segment (t.where),
			// never a clause keyword.
			if prevByte == '.' {
				prevByte = word[len(word)-1]
				continue
			}

			canonical, end := classifyKeyword(query, word, wordStart, i)
			if canonical != "" {
				flushText(wordStart)
				toks = append(toks, token{kind: tokenKeyword, keyword: canonical, text: query[wordStart:end]})
				i = end
				textStart = end
			}
			prevByte = word[len(word)-1]

		default:
			if !isSpaceByte(b) {
				prevByte = b
			}
			i++
		}
	}
	flushText(len(query))
	return toks, nil
}

// classifyKeyword decides whether word (spanning [start,end) in query) opens
// a clause keyword. For GROUP/ORDER it looks ahead for the BY word; the
// returned end covers the whole two-word keyword. Empty canonical means the
// word is ordinary text.
func classifyKeyword(query, word string, start, end int) (canonical string, newEnd int) {
	switch strings.ToUpper(word) {
	case "WHERE":
		return "WHERE", end
	case "LIMIT":
		return "LIMIT", end
	case "GROUP", "ORDER":
		j := end
		for j < len(query) && isSpaceByte(query[j]) {
			j++
		}
		byStart := j
		for j < len(query) && isWordByte(query[j]) {
			j++
		}
		if byStart == end || !strings.EqualFold(query[byStart:j], "BY") {
			return "", end
		}
		return strings.ToUpper(word) + " BY", j
	}
	return "", end
}
