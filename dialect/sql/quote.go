package sql

import (
	"regexp"
	"strings"

	"github.com/syssam/strata/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// ValidIdentifier reports whether s is a plain SQL identifier that needs no
// escaping beyond quoting.
func ValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// Quote quotes an identifier for the given dialect. Postgres uses double
// quotes, MySQL and SQLite use backticks. Embedded quote characters are doubled.
func Quote(name, ident string) string {
	q := "`"
	if name == dialect.Postgres {
		q = `"`
	}
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// QuoteList quotes every identifier and joins them with ", ".
func QuoteList(name string, idents []string) string {
	quoted := make([]string, len(idents))
	for i, ident := range idents {
		quoted[i] = Quote(name, ident)
	}
	return strings.Join(quoted, ", ")
}

// Literal renders s as a single-quoted SQL string literal.
// It escapes both single quotes (by doubling) and backslashes (for MySQL compatibility).
func Literal(name, s string) string {
	if name == dialect.MySQL {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
