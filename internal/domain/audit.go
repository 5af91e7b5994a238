package domain

import "time"

// AuditEntry records one gateway decision.
type AuditEntry struct {
	ID             string
	Email          string
	Project        string
	Action         string
	Question       *string
	OriginalSQL    *string
	RewrittenSQL   *string
	TablesAccessed []string
	Status         string // "ALLOWED", "DENIED", "ERROR"
	ErrorMessage   *string
	DurationMs     *int64
	RowsReturned   *int64
	CreatedAt      time.Time
}
