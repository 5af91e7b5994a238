package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"lumina/internal/domain"
)

var _ domain.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implements domain.AuditRepository using SQLite.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert stores one gateway decision. ID and CreatedAt are filled when empty.
func (r *AuditRepo) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = domain.NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var tables sql.NullString
	if len(entry.TablesAccessed) > 0 {
		tables = sql.NullString{String: strings.Join(entry.TablesAccessed, ","), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log
		     (id, email, project, action, question, original_sql, rewritten_sql,
		      tables_accessed, status, error_message, duration_ms, rows_returned, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		domain.NormalizeEmail(entry.Email),
		entry.Project,
		entry.Action,
		nullStr(entry.Question),
		nullStr(entry.OriginalSQL),
		nullStr(entry.RewrittenSQL),
		tables,
		entry.Status,
		nullStr(entry.ErrorMessage),
		nullInt(entry.DurationMs),
		nullInt(entry.RowsReturned),
		entry.CreatedAt,
	)
	return mapDBError(err)
}

// ListRecent returns the newest entries, most recent first.
func (r *AuditRepo) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, project, action, question, original_sql, rewritten_sql,
		        tables_accessed, status, error_message, duration_ms, rows_returned, created_at
		 FROM audit_log
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e        domain.AuditEntry
			question sql.NullString
			origSQL  sql.NullString
			rewrSQL  sql.NullString
			tables   sql.NullString
			errMsg   sql.NullString
			duration sql.NullInt64
			rowCount sql.NullInt64
		)
		if err := rows.Scan(
			&e.ID, &e.Email, &e.Project, &e.Action, &question, &origSQL, &rewrSQL,
			&tables, &e.Status, &errMsg, &duration, &rowCount, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Question = strPtr(question)
		e.OriginalSQL = strPtr(origSQL)
		e.RewrittenSQL = strPtr(rewrSQL)
		e.ErrorMessage = strPtr(errMsg)
		e.DurationMs = intPtr(duration)
		e.RowsReturned = intPtr(rowCount)
		if tables.Valid && tables.String != "" {
			e.TablesAccessed = strings.Split(tables.String, ",")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
