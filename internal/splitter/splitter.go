// Package splitter cuts a DDL document into individual statements.
//
// Semicolons end a statement only outside single-quoted strings and
// backtick-quoted identifiers. A backslash escapes the next character: an
// escaped single quote or backslash is emitted bare, any other escaped
// character keeps its backslash. Escaped quotes never toggle quoting.
// Backticks delimit identifiers and are not emitted; the grammar has no
// backtick quoting, so `users` reaches it as users. Inside a single-quoted
// string a backtick is an ordinary character.
package splitter

import (
	"iter"
	"slices"
	"strings"
)

// Split returns the trimmed, non-empty statements of sql in order
func Split(sql string) []string {
	return slices.Collect(Statements(sql))
}

// Statements yields the trimmed, non-empty statements of sql in order
func Statements(sql string) iter.Seq[string] {
	return func(yield func(string) bool) {
		var (
			current      strings.Builder
			inQuote      bool
			inIdentifier bool
			escape       bool
		)

		for _, c := range sql {
			switch {
			case c == '\\' && !escape:
				escape = true
				continue
			case c == '\'' && !escape && !inIdentifier:
				inQuote = !inQuote
				current.WriteRune(c)
			case c == '`' && !escape && !inQuote:
				inIdentifier = !inIdentifier
			case c == ';' && !escape && !inQuote && !inIdentifier:
				if stmt := strings.TrimSpace(current.String()); stmt != "" {
					if !yield(stmt) {
						return
					}
					current.Reset()
				}
			default:
				if escape && c != '\'' && c != '\\' {
					current.WriteRune('\\')
				}
				current.WriteRune(c)
			}
			escape = false
		}

		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			yield(stmt)
		}
	}
}
