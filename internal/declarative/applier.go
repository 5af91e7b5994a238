package declarative

import (
	"context"
	"fmt"
	"log/slog"

	"lumina/internal/domain"
	"lumina/internal/service/security"
)

// adminWriter is the slice of security.AdminService the applier uses.
type adminWriter interface {
	SyncProjects(ctx context.Context, names []string) error
	SyncRoles(ctx context.Context, names []string) error
	SyncDirectory(ctx context.Context, project string, tables []string) error
	UpsertUser(ctx context.Context, req domain.UpsertUserRequest) (*domain.User, error)
	AssignRole(ctx context.Context, req domain.AssignRoleRequest) error
	SetPermission(ctx context.Context, upd security.PermissionUpdate) error
}

// Applier writes a seed into the permission store through the admin service,
// so seed writes obey the same rules as interactive ones.
type Applier struct {
	admin  adminWriter
	logger *slog.Logger
}

// NewApplier creates an Applier.
func NewApplier(admin adminWriter, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{admin: admin, logger: logger.With("component", "seed")}
}

// Apply reconciles the store with the seed: catalogs first, then users and
// their grants, then permissions. Reapplying the same seed is a no-op.
func (a *Applier) Apply(ctx context.Context, seed *Seed) error {
	projectNames := make([]string, len(seed.Projects))
	for i, p := range seed.Projects {
		projectNames[i] = p.Name
	}
	if err := a.admin.SyncProjects(ctx, projectNames); err != nil {
		return fmt.Errorf("sync projects: %w", err)
	}
	if err := a.admin.SyncRoles(ctx, seed.Roles); err != nil {
		return fmt.Errorf("sync roles: %w", err)
	}
	for _, p := range seed.Projects {
		if err := a.admin.SyncDirectory(ctx, p.Name, p.Tables); err != nil {
			return fmt.Errorf("sync table directory for %s: %w", p.Name, err)
		}
	}

	for _, u := range seed.Users {
		if _, err := a.admin.UpsertUser(ctx, domain.UpsertUserRequest{Email: u.Email, Name: u.Name}); err != nil {
			return fmt.Errorf("upsert user %s: %w", u.Email, err)
		}
		for _, g := range u.Grants {
			err := a.admin.AssignRole(ctx, domain.AssignRoleRequest{
				Email:   u.Email,
				Project: g.Project,
				Role:    g.Role,
			})
			if err != nil {
				return fmt.Errorf("assign %s to %s in %s: %w", g.Role, u.Email, g.Project, err)
			}
		}
	}

	for _, p := range seed.Permissions {
		err := a.admin.SetPermission(ctx, security.PermissionUpdate{
			Project: p.Project,
			Role:    p.Role,
			Permission: domain.TablePermission{
				Table:       p.Table,
				CanRead:     p.CanRead,
				CanReadSelf: p.CanReadSelf,
			},
		})
		if err != nil {
			return fmt.Errorf("set permission %s/%s/%s: %w", p.Project, p.Role, p.Table, err)
		}
	}

	a.logger.Info("seed applied",
		"projects", len(seed.Projects),
		"roles", len(seed.Roles),
		"users", len(seed.Users),
		"permissions", len(seed.Permissions))
	return nil
}
