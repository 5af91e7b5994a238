package domain

// TableRef is a table reference lexically extracted from a SQL statement.
// Alias falls back to the table name when the statement declares none.
// TableRefs live for a single validation pass and are never persisted.
type TableRef struct {
	Table string
	Alias string
}

// AccessDecision partitions the tables referenced by a generated statement.
// It is consumed immediately by the pipeline to continue or fail the request.
type AccessDecision struct {
	Permitted    []string
	NotSelected  []string
	NotPermitted []string
	Bypassed     bool // privileged role skipped the permission dimension
}

// Allowed reports whether the statement may proceed to execution.
func (d AccessDecision) Allowed() bool {
	return len(d.NotSelected) == 0 && len(d.NotPermitted) == 0
}

// Err returns the typed rejection for a disallowed decision, or nil.
// NotPermitted takes precedence: it is terminal, NotSelected is correctable.
func (d AccessDecision) Err() error {
	if len(d.NotPermitted) > 0 {
		return &NotPermittedError{Tables: d.NotPermitted}
	}
	if len(d.NotSelected) > 0 {
		return &NotSelectedError{Tables: d.NotSelected}
	}
	return nil
}

// ColumnInfo describes one column of a project table.
type ColumnInfo struct {
	Table  string
	Column string
	Type   string
}
