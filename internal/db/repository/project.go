package repository

import (
	"context"
	"database/sql"
	"strings"

	"lumina/internal/domain"
)

var _ domain.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo implements domain.ProjectRepository using SQLite.
type ProjectRepo struct {
	db *sql.DB
}

// NewProjectRepo creates a new ProjectRepo.
func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// GetByName returns the project with the given name (case-insensitive).
func (r *ProjectRepo) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	var p domain.Project
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM projects WHERE LOWER(name) = LOWER(?)`, name,
	).Scan(&p.ID, &p.Name)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("project %q not found", name)
	}
	if err != nil {
		return nil, mapDBError(err)
	}
	return &p, nil
}

// List returns all projects ordered by name.
func (r *ProjectRepo) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM projects ORDER BY name`)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Sync makes the project set equal to names: missing projects are created,
// projects outside the set are removed along with their grants, permissions
// and directory entries.
func (r *ProjectRepo) Sync(ctx context.Context, names []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapDBError(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO projects (id, name) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`,
			domain.NewID(), name,
		); err != nil {
			return mapDBError(err)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	args := make([]interface{}, len(names))
	for i, name := range names {
		args[i] = name
	}
	if len(names) == 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM projects`)
	} else {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM projects WHERE name NOT IN (`+placeholders+`)`, args...)
	}
	if err != nil {
		return mapDBError(err)
	}

	return tx.Commit()
}

// DirectoryTables returns the table names registered for the project,
// ordered alphabetically.
func (r *ProjectRepo) DirectoryTables(ctx context.Context, project string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT td.table_name
		 FROM table_directory td
		 JOIN projects p ON p.id = td.project_id
		 WHERE LOWER(p.name) = LOWER(?)
		 ORDER BY td.table_name`,
		project,
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var tables []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// SyncDirectory replaces the project's table directory with tables.
func (r *ProjectRepo) SyncDirectory(ctx context.Context, project string, tables []string) error {
	p, err := r.GetByName(ctx, project)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapDBError(err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM table_directory WHERE project_id = ?`, p.ID,
	); err != nil {
		return mapDBError(err)
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO table_directory (id, project_id, table_name) VALUES (?, ?, ?)`,
			domain.NewID(), p.ID, table,
		); err != nil {
			return mapDBError(err)
		}
	}

	return tx.Commit()
}
