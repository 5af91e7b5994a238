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

func setupUserRepo(t *testing.T) *UserRepo {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewUserRepo(writeDB)
}

func TestUserRepo_UpsertAndGet(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	u, err := repo.Upsert(ctx, "Alice@Co.com", "Alice Smith")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice@co.com", u.Email, "email is case-normalized")
	assert.Equal(t, "Alice Smith", u.Name)
	assert.False(t, u.IsAdmin)

	// Upsert again with a new name keeps the ID and updates the name.
	u2, err := repo.Upsert(ctx, "alice@co.com", "Alice S.")
	require.NoError(t, err)
	assert.Equal(t, u.ID, u2.ID)
	assert.Equal(t, "Alice S.", u2.Name)

	got, err := repo.GetByEmail(ctx, "ALICE@CO.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	repo := setupUserRepo(t)

	_, err := repo.GetByEmail(context.Background(), "ghost@co.com")
	require.Error(t, err)

	var nfe *domain.NotFoundError
	assert.True(t, errors.As(err, &nfe))
}

func TestUserRepo_Delete(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, "bob@co.com", "Bob")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "bob@co.com"))

	_, err = repo.GetByEmail(ctx, "bob@co.com")
	require.Error(t, err)

	// Deleting again reports not found.
	err = repo.Delete(ctx, "bob@co.com")
	var nfe *domain.NotFoundError
	assert.True(t, errors.As(err, &nfe))
}

func TestUserRepo_IsAdmin_ViaRoleGrant(t *testing.T) {
	writeDB, _ := internaldb.OpenTestSQLite(t)
	users := NewUserRepo(writeDB)
	projects := NewProjectRepo(writeDB)
	roles := NewRoleRepo(writeDB)
	grants := NewGrantRepo(writeDB)
	ctx := context.Background()

	_, err := users.Upsert(ctx, "carol@co.com", "Carol")
	require.NoError(t, err)
	require.NoError(t, projects.Sync(ctx, []string{"Phoenix"}))
	require.NoError(t, roles.Sync(ctx, []string{"Admin", "developer"}))

	admin, err := users.IsAdmin(ctx, "carol@co.com")
	require.NoError(t, err)
	assert.False(t, admin)

	require.NoError(t, grants.Assign(ctx, "carol@co.com", "Phoenix", "Admin"))

	admin, err = users.IsAdmin(ctx, "carol@co.com")
	require.NoError(t, err)
	assert.True(t, admin, "holding the admin role in any project grants admin")
}

func TestUserRepo_List(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	for _, email := range []string{"zed@co.com", "amy@co.com"} {
		_, err := repo.Upsert(ctx, email, "x")
		require.NoError(t, err)
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "amy@co.com", users[0].Email, "ordered by email")
	assert.Equal(t, "zed@co.com", users[1].Email)
}
