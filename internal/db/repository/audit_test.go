package repository

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "lumina/internal/db"
	"lumina/internal/domain"
)

func setupAuditRepo(t *testing.T) *AuditRepo {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewAuditRepo(writeDB)
}

func strp(s string) *string { return &s }
func intp(n int64) *int64   { return &n }

func TestAuditRepo_InsertAndListRecent(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	entry := &domain.AuditEntry{
		Email:          "Alice@Co.com",
		Project:        "Phoenix",
		Action:         "chat_query",
		Question:       strp("show my attendance"),
		OriginalSQL:    strp("SELECT * FROM Attendance"),
		RewrittenSQL:   strp("SELECT * FROM Attendance WHERE (Attendance.EmployeeEmail = 'alice@co.com')"),
		TablesAccessed: []string{"Attendance"},
		Status:         "ALLOWED",
		DurationMs:     intp(42),
		RowsReturned:   intp(7),
	}
	require.NoError(t, repo.Insert(ctx, entry))
	assert.NotEmpty(t, entry.ID, "ID is filled on insert")

	require.NoError(t, repo.Insert(ctx, &domain.AuditEntry{
		Email:        "bob@co.com",
		Project:      "Phoenix",
		Action:       "chat_query",
		Status:       "DENIED",
		ErrorMessage: strp("you do not have permission to access: Salaries"),
	}))

	entries, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "bob@co.com", entries[0].Email)
	assert.Equal(t, "DENIED", entries[0].Status)
	assert.Nil(t, entries[0].Question)
	assert.Empty(t, entries[0].TablesAccessed)

	got := entries[1]
	assert.Equal(t, "alice@co.com", got.Email, "email is case-normalized")
	assert.Equal(t, []string{"Attendance"}, got.TablesAccessed)
	require.NotNil(t, got.DurationMs)
	assert.EqualValues(t, 42, *got.DurationMs)
	require.NotNil(t, got.RowsReturned)
	assert.EqualValues(t, 7, *got.RowsReturned)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestAuditRepo_ListRecent_DefaultLimit(t *testing.T) {
	repo := setupAuditRepo(t)

	entries, err := repo.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
