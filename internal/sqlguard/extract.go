package sqlguard

import (
	"regexp"
	"strings"

	"lumina/internal/domain"
)

// RefExtractor locates the table references a statement actually touches.
type RefExtractor interface {
	Extract(sql string) []domain.TableRef
}

// tableRefRe captures, after a FROM or JOIN keyword, an optional
// schema qualifier, a possibly bracket/quote-delimited table name, and an
// optional alias with or without AS. Submatch 1 is the table, 2 the alias.
var tableRefRe = regexp.MustCompile(
	`(?i)\b(?:from|join)\s+` +
		`(?:["\[]?\w+["\]]?\s*\.\s*)?` +
		`["\[]?(\w+)["\]]?` +
		`(?:\s+(?:as\s+)?["\[]?(\w+)["\]]?)?`)

// reservedAliases are clause keywords that must never be read as an alias.
// "FROM Orders WHERE ..." does not alias Orders to WHERE.
var reservedAliases = map[string]bool{
	"where": true, "on": true, "group": true, "order": true, "limit": true,
	"inner": true, "left": true, "right": true, "full": true, "outer": true,
	"cross": true, "join": true, "having": true, "union": true, "except": true,
	"intersect": true, "offset": true, "fetch": true, "as": true, "set": true,
	"and": true, "or": true, "when": true, "then": true, "else": true, "end": true,
}

// LexicalExtractor is the regex-based RefExtractor. Best-effort: it does not
// distinguish subquery scopes, but captures every table name occurring in any
// FROM/JOIN position anywhere in the text so validation can fail closed.
type LexicalExtractor struct{}

var _ RefExtractor = LexicalExtractor{}

// Extract returns the deduplicated (table, alias) pairs referenced by sql.
// Alias defaults to the table name when absent or when the candidate alias is
// a reserved clause keyword. Returns nil when no FROM/JOIN is present.
func (LexicalExtractor) Extract(sql string) []domain.TableRef {
	var refs []domain.TableRef
	seen := map[string]bool{}

	pos := 0
	for pos < len(sql) {
		loc := tableRefRe.FindStringSubmatchIndex(sql[pos:])
		if loc == nil {
			break
		}

		table := sql[pos+loc[2] : pos+loc[3]]
		alias := ""
		next := pos + loc[1]
		if loc[4] >= 0 {
			candidate := sql[pos+loc[4] : pos+loc[5]]
			if reservedAliases[strings.ToLower(candidate)] {
				// The candidate was the start of the next clause; rescan
				// from it so a consumed JOIN keyword is not lost.
				next = pos + loc[4]
			} else {
				alias = candidate
			}
		}
		if alias == "" {
			alias = table
		}

		key := strings.ToLower(table) + "\x00" + strings.ToLower(alias)
		if !seen[key] {
			seen[key] = true
			refs = append(refs, domain.TableRef{Table: table, Alias: alias})
		}
		pos = next
	}

	return refs
}
