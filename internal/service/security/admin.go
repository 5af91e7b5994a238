package security

import (
	"context"
	"log/slog"
	"strings"

	"lumina/internal/domain"
)

// singleHolderRoles may be held by at most one user per project.
var singleHolderRoles = map[string]bool{
	"ceo": true,
	"cto": true,
}

// PermissionUpdate targets one (project, role, table) entitlement.
type PermissionUpdate struct {
	Project    string
	Role       string
	Permission domain.TablePermission
}

// SaveAllRequest is the admin screen's one-shot save: the user, their role
// grants, and any role permission changes, applied fail-fast in that order.
type SaveAllRequest struct {
	User        domain.UpsertUserRequest
	Grants      []domain.AssignRoleRequest
	Permissions []PermissionUpdate
}

// UserWithGrants pairs a user with every (project, role) they hold.
type UserWithGrants struct {
	domain.User
	Grants []domain.ProjectRole
}

// Bootstrap is the admin screen's initial payload.
type Bootstrap struct {
	Projects []domain.Project
	Roles    []string
	Users    []UserWithGrants
}

// AdminService mutates the permission store. The gateway itself only reads;
// every write flows through here.
type AdminService struct {
	users    domain.UserRepository
	projects domain.ProjectRepository
	roles    domain.RoleRepository
	grants   domain.GrantRepository
	perms    domain.PermissionRepository

	// allowedDomain restricts provisioned emails when non-empty.
	allowedDomain string
	logger        *slog.Logger
}

// NewAdminService creates an AdminService. allowedDomain of "" accepts any
// email domain.
func NewAdminService(
	users domain.UserRepository,
	projects domain.ProjectRepository,
	roles domain.RoleRepository,
	grants domain.GrantRepository,
	perms domain.PermissionRepository,
	allowedDomain string,
	logger *slog.Logger,
) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{
		users:         users,
		projects:      projects,
		roles:         roles,
		grants:        grants,
		perms:         perms,
		allowedDomain: strings.TrimPrefix(strings.ToLower(allowedDomain), "@"),
		logger:        logger.With("component", "admin"),
	}
}

// UpsertUser creates or renames a user after validating the email against
// the allowed domain.
func (s *AdminService) UpsertUser(ctx context.Context, req domain.UpsertUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(req.Email)
	if s.allowedDomain != "" && !strings.HasSuffix(email, "@"+s.allowedDomain) {
		return nil, domain.ErrValidation("email must belong to the %s domain", s.allowedDomain)
	}

	u, err := s.users.Upsert(ctx, email, req.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user upserted", "email", u.Email)
	return u, nil
}

// DeleteUser removes a user and, by cascade, their grants.
func (s *AdminService) DeleteUser(ctx context.Context, email string) error {
	if err := s.users.Delete(ctx, email); err != nil {
		return err
	}
	s.logger.Info("user deleted", "email", domain.NormalizeEmail(email))
	return nil
}

// AssignRole grants a role to a user in a project. CEO and CTO are
// single-holder roles: assigning one already held by someone else conflicts.
func (s *AdminService) AssignRole(ctx context.Context, req domain.AssignRoleRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	email := domain.NormalizeEmail(req.Email)

	if singleHolderRoles[strings.ToLower(req.Role)] {
		holder, err := s.grants.HolderOf(ctx, req.Project, req.Role)
		if err != nil {
			return err
		}
		if holder != "" && holder != email {
			return domain.ErrConflict("project %q already has a %s", req.Project, strings.ToUpper(req.Role))
		}
	}

	if err := s.grants.Assign(ctx, email, req.Project, req.Role); err != nil {
		return err
	}
	s.logger.Info("role assigned", "email", email, "project", req.Project, "role", req.Role)
	return nil
}

// SetPermission records a (project, role, table) entitlement.
func (s *AdminService) SetPermission(ctx context.Context, upd PermissionUpdate) error {
	if upd.Project == "" || upd.Role == "" || upd.Permission.Table == "" {
		return domain.ErrValidation("project, role and table are required")
	}
	return s.perms.Upsert(ctx, upd.Project, upd.Role, upd.Permission)
}

// SaveAll applies the admin screen's one-shot save: user first, then grants,
// then permissions. The first failure aborts the remaining steps.
func (s *AdminService) SaveAll(ctx context.Context, req SaveAllRequest) error {
	if _, err := s.UpsertUser(ctx, req.User); err != nil {
		return err
	}
	for _, g := range req.Grants {
		g.Email = req.User.Email
		if err := s.AssignRole(ctx, g); err != nil {
			return err
		}
	}
	for _, p := range req.Permissions {
		if err := s.SetPermission(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// SyncProjects makes the project catalog equal to names.
func (s *AdminService) SyncProjects(ctx context.Context, names []string) error {
	return s.projects.Sync(ctx, names)
}

// SyncRoles makes the role catalog equal to names.
func (s *AdminService) SyncRoles(ctx context.Context, names []string) error {
	return s.roles.Sync(ctx, names)
}

// SyncDirectory replaces a project's table directory.
func (s *AdminService) SyncDirectory(ctx context.Context, project string, tables []string) error {
	return s.projects.SyncDirectory(ctx, project, tables)
}

// PermissionsFor lists the table permissions of (project, role).
func (s *AdminService) PermissionsFor(ctx context.Context, project, role string) ([]domain.TablePermission, error) {
	return s.perms.ListForRole(ctx, project, role)
}

// GetBootstrap loads the admin screen's initial payload.
func (s *AdminService) GetBootstrap(ctx context.Context) (*Bootstrap, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &Bootstrap{Projects: projects, Roles: roles}
	for _, u := range users {
		grants, err := s.grants.ProjectsFor(ctx, u.Email)
		if err != nil {
			return nil, err
		}
		out.Users = append(out.Users, UserWithGrants{User: u, Grants: grants})
	}
	return out, nil
}
