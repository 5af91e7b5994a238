package repository

import (
	"context"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "lumina/internal/db"
	"lumina/internal/domain"
)

func setupProjectRepo(t *testing.T) (*ProjectRepo, *RoleRepo) {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewProjectRepo(writeDB), NewRoleRepo(writeDB)
}

func TestProjectRepo_SyncAndGet(t *testing.T) {
	projects, _ := setupProjectRepo(t)
	ctx := context.Background()

	require.NoError(t, projects.Sync(ctx, []string{"Phoenix", "Atlas"}))

	p, err := projects.GetByName(ctx, "phoenix")
	require.NoError(t, err)
	assert.Equal(t, "Phoenix", p.Name)

	all, err := projects.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Atlas", all[0].Name)

	// Sync with a smaller set removes the project that fell out.
	require.NoError(t, projects.Sync(ctx, []string{"Phoenix"}))
	_, err = projects.GetByName(ctx, "Atlas")
	var nfe *domain.NotFoundError
	assert.True(t, errors.As(err, &nfe))

	// Re-syncing the same set keeps existing IDs.
	before, err := projects.GetByName(ctx, "Phoenix")
	require.NoError(t, err)
	require.NoError(t, projects.Sync(ctx, []string{"Phoenix"}))
	after, err := projects.GetByName(ctx, "Phoenix")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
}

func TestProjectRepo_Directory(t *testing.T) {
	projects, _ := setupProjectRepo(t)
	ctx := context.Background()

	require.NoError(t, projects.Sync(ctx, []string{"Phoenix"}))
	require.NoError(t, projects.SyncDirectory(ctx, "Phoenix", []string{"Employees", "Attendance"}))

	tables, err := projects.DirectoryTables(ctx, "phoenix")
	require.NoError(t, err)
	assert.Equal(t, []string{"Attendance", "Employees"}, tables)

	// Replacing the directory drops entries that fell out.
	require.NoError(t, projects.SyncDirectory(ctx, "Phoenix", []string{"Employees"}))
	tables, err = projects.DirectoryTables(ctx, "Phoenix")
	require.NoError(t, err)
	assert.Equal(t, []string{"Employees"}, tables)
}

func TestProjectRepo_SyncDirectory_UnknownProject(t *testing.T) {
	projects, _ := setupProjectRepo(t)

	err := projects.SyncDirectory(context.Background(), "Nowhere", []string{"X"})
	require.Error(t, err)
	var nfe *domain.NotFoundError
	assert.True(t, errors.As(err, &nfe))
}

func TestRoleRepo_Sync(t *testing.T) {
	_, roles := setupProjectRepo(t)
	ctx := context.Background()

	require.NoError(t, roles.Sync(ctx, []string{"developer", "manager"}))

	names, err := roles.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"developer", "manager"}, names)

	require.NoError(t, roles.Sync(ctx, []string{"developer"}))
	names, err = roles.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"developer"}, names)
}
