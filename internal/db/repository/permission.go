package repository

import (
	"context"
	"database/sql"

	"lumina/internal/domain"
)

var _ domain.PermissionRepository = (*PermissionRepo)(nil)

// PermissionRepo implements domain.PermissionRepository using SQLite.
type PermissionRepo struct {
	db *sql.DB
}

// NewPermissionRepo creates a new PermissionRepo.
func NewPermissionRepo(db *sql.DB) *PermissionRepo {
	return &PermissionRepo{db: db}
}

// ListForRole returns the table permissions recorded for (project, role),
// ordered by table name.
func (r *PermissionRepo) ListForRole(ctx context.Context, project, role string) ([]domain.TablePermission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT perm.table_name, perm.can_read, perm.can_read_self
		 FROM permissions perm
		 JOIN projects p ON p.id = perm.project_id
		 JOIN roles ro ON ro.id = perm.role_id
		 WHERE LOWER(p.name) = LOWER(?) AND LOWER(ro.name) = LOWER(?)
		 ORDER BY perm.table_name`,
		project, role,
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var perms []domain.TablePermission
	for rows.Next() {
		var (
			tp      domain.TablePermission
			canRead int64
			canSelf int64
		)
		if err := rows.Scan(&tp.Table, &canRead, &canSelf); err != nil {
			return nil, err
		}
		tp.CanRead = canRead != 0
		tp.CanReadSelf = canSelf != 0
		perms = append(perms, tp)
	}
	return perms, rows.Err()
}

// MapFor returns the permissions for (project, role) keyed by table name.
func (r *PermissionRepo) MapFor(ctx context.Context, project, role string) (domain.PermissionMap, error) {
	perms, err := r.ListForRole(ctx, project, role)
	if err != nil {
		return nil, err
	}
	return domain.NewPermissionMap(perms), nil
}

// Upsert records a table permission for (project, role), replacing any
// existing row for the table.
func (r *PermissionRepo) Upsert(ctx context.Context, project, role string, p domain.TablePermission) error {
	var projectID string
	err := r.db.QueryRowContext(ctx,
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
		`INSERT INTO permissions (id, project_id, role_id, table_name, can_read, can_read_self)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (project_id, role_id, table_name) DO UPDATE
		 SET can_read = excluded.can_read, can_read_self = excluded.can_read_self`,
		domain.NewID(), projectID, roleID, p.Table, boolToInt(p.CanRead), boolToInt(p.CanReadSelf),
	)
	return mapDBError(err)
}
