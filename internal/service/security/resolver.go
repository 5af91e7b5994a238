// Package security implements the policy decision services of the gateway:
// role resolution, access validation, and administrative management of the
// permission store.
package security

import (
	"context"
	"errors"

	"lumina/internal/domain"
)

// RoleResolver resolves a caller's effective role within a project.
type RoleResolver struct {
	users  domain.UserRepository
	grants domain.GrantRepository
}

// NewRoleResolver creates a RoleResolver backed by domain repositories.
func NewRoleResolver(users domain.UserRepository, grants domain.GrantRepository) *RoleResolver {
	return &RoleResolver{users: users, grants: grants}
}

// Resolve returns the caller's effective role in the project. A global-admin
// designation short-circuits to a privileged role; otherwise the (user,
// project) grant decides. A missing grant is UnauthorizedError — never a
// default role.
func (r *RoleResolver) Resolve(ctx context.Context, email, project string) (domain.ResolvedRole, error) {
	email = domain.NormalizeEmail(email)

	admin, err := r.users.IsAdmin(ctx, email)
	if err != nil {
		return domain.ResolvedRole{}, err
	}
	if admin {
		return domain.ResolvedRole{Name: "admin", Level: domain.LevelPrivileged}, nil
	}

	role, err := r.grants.RoleFor(ctx, email, project)
	if err != nil {
		var nfe *domain.NotFoundError
		if errors.As(err, &nfe) {
			return domain.ResolvedRole{}, &domain.UnauthorizedError{Email: email, Project: project}
		}
		return domain.ResolvedRole{}, err
	}

	return domain.ResolvedRole{Name: role, Level: domain.LevelForRole(role)}, nil
}
