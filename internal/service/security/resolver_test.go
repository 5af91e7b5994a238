package security

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumina/internal/domain"
)

func TestRoleResolver_AdminShortCircuit(t *testing.T) {
	users := &mockUserRepo{
		isAdminFn: func(_ context.Context, email string) (bool, error) {
			assert.Equal(t, "root@co.com", email)
			return true, nil
		},
	}
	// The grant lookup must not run for admins.
	grants := &mockGrantRepo{}

	r := NewRoleResolver(users, grants)
	role, err := r.Resolve(context.Background(), "Root@Co.com", "Phoenix")
	require.NoError(t, err)

	assert.Equal(t, "admin", role.Name)
	assert.True(t, role.Privileged())
}

func TestRoleResolver_GrantLookup(t *testing.T) {
	users := &mockUserRepo{
		isAdminFn: func(context.Context, string) (bool, error) { return false, nil },
	}

	tests := []struct {
		role           string
		wantPrivileged bool
	}{
		{"developer", false},
		{"employee", false},
		{"Manager", true},
		{"CTO", true},
		{"techlead", true},
	}
	for _, tt := range tests {
		grants := &mockGrantRepo{
			roleForFn: func(_ context.Context, _, _ string) (string, error) {
				return tt.role, nil
			},
		}
		r := NewRoleResolver(users, grants)

		role, err := r.Resolve(context.Background(), "alice@co.com", "Phoenix")
		require.NoError(t, err)
		assert.Equal(t, tt.role, role.Name)
		assert.Equal(t, tt.wantPrivileged, role.Privileged(), "role %s", tt.role)
	}
}

func TestRoleResolver_NoGrantIsUnauthorized(t *testing.T) {
	users := &mockUserRepo{
		isAdminFn: func(context.Context, string) (bool, error) { return false, nil },
	}
	grants := &mockGrantRepo{
		roleForFn: func(_ context.Context, email, project string) (string, error) {
			return "", domain.ErrNotFound("no role for %q in project %q", email, project)
		},
	}

	r := NewRoleResolver(users, grants)
	_, err := r.Resolve(context.Background(), "alice@co.com", "Phoenix")
	require.Error(t, err)

	var unauthorized *domain.UnauthorizedError
	require.True(t, errors.As(err, &unauthorized), "missing grant must not fall back to a default role")
	assert.Equal(t, "alice@co.com", unauthorized.Email)
	assert.Equal(t, "Phoenix", unauthorized.Project)
}

func TestRoleResolver_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("db down")
	users := &mockUserRepo{
		isAdminFn: func(context.Context, string) (bool, error) { return false, storeErr },
	}

	r := NewRoleResolver(users, &mockGrantRepo{})
	_, err := r.Resolve(context.Background(), "alice@co.com", "Phoenix")
	assert.ErrorIs(t, err, storeErr)
}
