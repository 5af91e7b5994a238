package sqlguard

import (
	"regexp"
	"strings"

	"lumina/internal/domain"
)

// OwnershipColumns maps lower-cased table names to the column holding the
// row owner's identity. Tables outside the map fall back to DefaultOwnerColumn.
type OwnershipColumns map[string]string

// DefaultOwnerColumn is the conventional identity column assumed for tables
// that have no explicit ownership-column entry.
const DefaultOwnerColumn = "Email"

// DefaultOwnershipColumns returns the built-in table-to-owner-column map.
func DefaultOwnershipColumns() OwnershipColumns {
	return OwnershipColumns{
		"employees":  "Email",
		"attendance": "EmployeeEmail",
	}
}

// ColumnFor returns the ownership column for a table name.
func (m OwnershipColumns) ColumnFor(table string) string {
	if col, ok := m[strings.ToLower(table)]; ok {
		return col
	}
	return DefaultOwnerColumn
}

// Predicate is one ownership constraint produced by the injector.
type Predicate struct {
	Table  string // stored table name the constraint protects
	Alias  string // effective alias used to qualify the column
	Column string // ownership column
}

// Rewrite is the result of a row-security pass. SQL carries a positional
// placeholder per predicate; Args holds the identity values to bind at
// execution time so identity strings never appear in statement text.
type Rewrite struct {
	SQL        string
	Args       []interface{}
	Predicates []Predicate
}

// Changed reports whether any predicate was spliced in.
func (r Rewrite) Changed() bool { return len(r.Predicates) > 0 }

// Display renders the rewritten statement with the bound identity values
// inlined as quoted literals, for audit entries and UI echo only.
func (r Rewrite) Display() string {
	out := r.SQL
	for _, arg := range r.Args {
		s, _ := arg.(string)
		literal := "'" + strings.ReplaceAll(s, "'", "''") + "'"
		out = strings.Replace(out, "?", literal, 1)
	}
	return out
}

// Injector splices ownership predicates into statements that touch tables
// the caller's role may only read its own rows from.
type Injector struct {
	refs    RefExtractor
	columns OwnershipColumns
}

// NewInjector creates an Injector. A nil columns map uses the defaults.
func NewInjector(refs RefExtractor, columns OwnershipColumns) *Injector {
	if columns == nil {
		columns = DefaultOwnershipColumns()
	}
	return &Injector{refs: refs, columns: columns}
}

// whereRe finds the first WHERE keyword for the append-with-AND strategy.
var whereRe = regexp.MustCompile(`(?i)\bwhere\b`)

// trailingClauseRe finds the first clause a synthesized WHERE must precede.
var trailingClauseRe = regexp.MustCompile(`(?i)\b(group\s+by|having|order\s+by|limit|offset|for\s+xml)\b`)

// Inject rewrites sql with ownership predicates for every referenced table
// whose permission is self-read-only. Privileged roles, permission maps with
// no self-only tables, and statements referencing none of the restricted
// tables all return the input unchanged. Deterministic: identical inputs
// produce identical output, and predicates follow extraction order.
func (inj *Injector) Inject(sql string, perms domain.PermissionMap, identity string, role domain.ResolvedRole) Rewrite {
	if role.Privileged() {
		return Rewrite{SQL: sql}
	}

	restricted := map[string]bool{}
	for _, t := range perms.SelfOnlyTables() {
		restricted[strings.ToLower(t)] = true
	}
	if len(restricted) == 0 {
		return Rewrite{SQL: sql}
	}

	var (
		parts []string
		preds []Predicate
		args  []interface{}
	)
	for _, ref := range inj.refs.Extract(sql) {
		if !restricted[strings.ToLower(ref.Table)] {
			continue
		}
		col := inj.columns.ColumnFor(ref.Table)
		parts = append(parts, ref.Alias+"."+col+" = ?")
		preds = append(preds, Predicate{Table: ref.Table, Alias: ref.Alias, Column: col})
		args = append(args, identity)
	}
	if len(preds) == 0 {
		return Rewrite{SQL: sql}
	}

	clause := "(" + strings.Join(parts, " AND ") + ")"

	var out string
	switch {
	case whereRe.MatchString(sql):
		// Constrain the existing filter: WHERE (preds) AND <original>.
		loc := whereRe.FindStringIndex(sql)
		out = sql[:loc[1]] + " " + clause + " AND" + sql[loc[1]:]
	default:
		if loc := trailingClauseRe.FindStringIndex(sql); loc != nil {
			out = sql[:loc[0]] + "WHERE " + clause + " " + sql[loc[0]:]
		} else {
			out = sql + " WHERE " + clause
		}
	}

	return Rewrite{SQL: out, Args: args, Predicates: preds}
}
