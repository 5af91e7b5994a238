package repository

import (
	"context"
	"database/sql"

	"lumina/internal/domain"
)

var _ domain.GrantRepository = (*GrantRepo)(nil)

// GrantRepo implements domain.GrantRepository using SQLite.
type GrantRepo struct {
	db *sql.DB
}

// NewGrantRepo creates a new GrantRepo.
func NewGrantRepo(db *sql.DB) *GrantRepo {
	return &GrantRepo{db: db}
}

// RoleFor returns the role name granted to the user in the project.
func (r *GrantRepo) RoleFor(ctx context.Context, email, project string) (string, error) {
	email = domain.NormalizeEmail(email)

	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT ro.name
		 FROM user_project_roles upr
		 JOIN users u ON u.id = upr.user_id
		 JOIN projects p ON p.id = upr.project_id
		 JOIN roles ro ON ro.id = upr.role_id
		 WHERE u.email = ? AND LOWER(p.name) = LOWER(?)`,
		email, project,
	).Scan(&role)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound("no role for %q in project %q", email, project)
	}
	if err != nil {
		return "", mapDBError(err)
	}
	return role, nil
}

// Assign grants role to the user in the project, replacing any existing
// grant for the (user, project) pair.
func (r *GrantRepo) Assign(ctx context.Context, email, project, role string) error {
	email = domain.NormalizeEmail(email)

	var userID string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = ?`, email).Scan(&userID)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound("user %q not found", email)
	}
	if err != nil {
		return mapDBError(err)
	}

	var projectID string
	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM projects WHERE LOWER(name) = LOWER(?)`, project).Scan(&projectID)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound("project %q not found", project)
	}
	if err != nil {
		return mapDBError(err)
	}

	var roleID string
	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM roles WHERE LOWER(name) = LOWER(?)`, role).Scan(&roleID)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound("role %q not found", role)
	}
	if err != nil {
		return mapDBError(err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_project_roles (id, user_id, project_id, role_id)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, project_id) DO UPDATE SET role_id = excluded.role_id`,
		domain.NewID(), userID, projectID, roleID,
	)
	return mapDBError(err)
}

// ProjectsFor returns every (project, role) pair held by the user.
func (r *GrantRepo) ProjectsFor(ctx context.Context, email string) ([]domain.ProjectRole, error) {
	email = domain.NormalizeEmail(email)

	rows, err := r.db.QueryContext(ctx,
		`SELECT p.name, ro.name
		 FROM user_project_roles upr
		 JOIN users u ON u.id = upr.user_id
		 JOIN projects p ON p.id = upr.project_id
		 JOIN roles ro ON ro.id = upr.role_id
		 WHERE u.email = ?
		 ORDER BY p.name`,
		email,
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var grants []domain.ProjectRole
	for rows.Next() {
		var pr domain.ProjectRole
		if err := rows.Scan(&pr.Project, &pr.Role); err != nil {
			return nil, err
		}
		grants = append(grants, pr)
	}
	return grants, rows.Err()
}

// HolderOf returns the email of the user holding role in project, or ""
// when the role is unheld there.
func (r *GrantRepo) HolderOf(ctx context.Context, project, role string) (string, error) {
	var email string
	err := r.db.QueryRowContext(ctx,
		`SELECT u.email
		 FROM user_project_roles upr
		 JOIN users u ON u.id = upr.user_id
		 JOIN projects p ON p.id = upr.project_id
		 JOIN roles ro ON ro.id = upr.role_id
		 WHERE LOWER(p.name) = LOWER(?) AND LOWER(ro.name) = LOWER(?)
		 LIMIT 1`,
		project, role,
	).Scan(&email)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", mapDBError(err)
	}
	return email, nil
}
