package repository

import (
	"context"
	"database/sql"

	"lumina/internal/domain"
)

var _ domain.UserRepository = (*UserRepo)(nil)

// UserRepo implements domain.UserRepository using SQLite.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByEmail returns the user with the given (case-normalized) email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)

	var u domain.User
	var isAdmin int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, is_admin, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &isAdmin, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("user %q not found", email)
	}
	if err != nil {
		return nil, mapDBError(err)
	}
	u.IsAdmin = isAdmin != 0
	return &u, nil
}

// Upsert creates the user or updates their display name.
func (r *UserRepo) Upsert(ctx context.Context, email, name string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name) VALUES (?, ?, ?)
		 ON CONFLICT (email) DO UPDATE SET name = excluded.name`,
		domain.NewID(), email, name,
	)
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByEmail(ctx, email)
}

// Delete removes the user; role grants cascade away with the row.
func (r *UserRepo) Delete(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE email = ?`, email)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("user %q not found", email)
	}
	return nil
}

// IsAdmin reports whether the user carries the admin flag or holds the
// "admin" role in any project.
func (r *UserRepo) IsAdmin(ctx context.Context, email string) (bool, error) {
	email = domain.NormalizeEmail(email)

	var admin bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM users WHERE email = ? AND is_admin = 1
		 ) OR EXISTS (
		     SELECT 1
		     FROM users u
		     JOIN user_project_roles upr ON upr.user_id = u.id
		     JOIN roles r ON r.id = upr.role_id
		     WHERE u.email = ? AND LOWER(r.name) = 'admin'
		 )`,
		email, email,
	).Scan(&admin)
	if err != nil {
		return false, mapDBError(err)
	}
	return admin, nil
}

// List returns all users ordered by email.
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, name, is_admin, created_at FROM users ORDER BY email`)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var isAdmin int64
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &isAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.IsAdmin = isAdmin != 0
		users = append(users, u)
	}
	return users, rows.Err()
}
