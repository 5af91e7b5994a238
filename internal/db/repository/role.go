package repository

import (
	"context"
	"database/sql"
	"strings"

	"lumina/internal/domain"
)

var _ domain.RoleRepository = (*RoleRepo)(nil)

// RoleRepo implements domain.RoleRepository using SQLite.
type RoleRepo struct {
	db *sql.DB
}

// NewRoleRepo creates a new RoleRepo.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

// List returns all role names ordered alphabetically.
func (r *RoleRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM roles ORDER BY name`)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Sync makes the role catalog equal to names. Removing a role cascades its
// grants and permission rows away.
func (r *RoleRepo) Sync(ctx context.Context, names []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapDBError(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO roles (id, name) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`,
			domain.NewID(), name,
		); err != nil {
			return mapDBError(err)
		}
	}

	if len(names) == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM roles`); err != nil {
			return mapDBError(err)
		}
		return tx.Commit()
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	args := make([]interface{}, len(names))
	for i, name := range names {
		args[i] = name
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM roles WHERE name NOT IN (`+placeholders+`)`, args...,
	); err != nil {
		return mapDBError(err)
	}

	return tx.Commit()
}
