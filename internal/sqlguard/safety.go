// Package sqlguard implements the lexical SQL policy boundary: the read-only
// safety gate, table reference extraction, row-security predicate injection,
// and the pre-generation self-intent guard.
//
// Extraction is a deliberate regex-based heuristic, not a SQL grammar. It is
// isolated behind the RefExtractor interface so a parser-backed implementation
// can replace it without touching validation or injection logic.
package sqlguard

import (
	"regexp"
	"strings"

	"lumina/internal/domain"
)

// readOnlyRe matches statements whose first keyword is SELECT or WITH.
var readOnlyRe = regexp.MustCompile(`(?i)^\s*(select|with)\b`)

// dangerousRe matches data-or-schema-mutating keywords as whole words
// anywhere in the statement text. Matches inside string literals or comments
// are rejected too: the gate is conservative and false-positive-tolerant.
var dangerousRe = regexp.MustCompile(`(?i)\b(insert|update|delete|truncate|drop|alter|create|replace|merge)\b`)

// CheckReadOnly verifies that sql is exactly one read-only statement.
// A rejection is terminal for the request and never retried.
func CheckReadOnly(sql string) error {
	if !readOnlyRe.MatchString(sql) {
		return &domain.UnsafeStatementError{Reason: "only SELECT/WITH statements are permitted"}
	}
	if m := dangerousRe.FindString(sql); m != "" {
		return &domain.UnsafeStatementError{Reason: "statement contains forbidden keyword " + strings.ToUpper(m)}
	}
	return nil
}
