package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/openshelf/review-platform/internal/model"
)

// UserRepo manages persistence for users.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, username, email, first_name, last_name, bio, role, is_superuser, created_at, updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.Bio, &u.Role, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Create inserts a user with the full administrative field set and loads
// the stored row back so DB-assigned timestamps are populated.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, first_name, last_name, bio, role, is_superuser) VALUES (?,?,?,?,?,?,?)",
		u.Username, normalizeEmail(u.Email), u.FirstName, u.LastName, u.Bio, string(u.Role), u.IsSuperuser)
	if err != nil {
		return mapUserDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*u = stored
	return nil
}

// GetOrCreate backs self-registration. Resubmitting the identical
// (username, email) pair is not an error: the existing row is returned and
// the caller re-issues a code against it. A username or email taken by a
// different pairing surfaces the matching sentinel. Races on the insert are
// closed by the UNIQUE keys, not by this lookup.
func (r *UserRepo) GetOrCreate(ctx context.Context, username, email string) (model.User, error) {
	email = normalizeEmail(email)

	u, err := r.GetByUsername(ctx, username)
	if err == nil {
		if u.Email != email {
			return model.User{}, ErrUsernameExists
		}
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.User{}, err
	}
	if _, err := r.GetByEmail(ctx, email); err == nil {
		return model.User{}, ErrEmailExists
	} else if !errors.Is(err, ErrNotFound) {
		return model.User{}, err
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, bio) VALUES (?,?,'')",
		username, email)
	if err != nil {
		return model.User{}, mapUserDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email)))
}

// List returns users ordered by id with simple limit/offset paging.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
			&u.Bio, &u.Role, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update stores the mutable field set of a user. updated_at bumps via the
// column's ON UPDATE clause, which also invalidates outstanding
// confirmation codes for the user.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?, email=?, first_name=?, last_name=?, bio=?, role=? WHERE id=?",
		u.Username, normalizeEmail(u.Email), u.FirstName, u.LastName, u.Bio, string(u.Role), u.ID)
	if err != nil {
		return mapUserDuplicate(err)
	}
	stored, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = stored
	return nil
}

// Delete removes a user by username. Reviews and comments cascade.
func (r *UserRepo) Delete(ctx context.Context, username string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE username=?", username)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mapUserDuplicate(err error) error {
	switch {
	case isDuplicateKey(err, "uq_users_username"):
		return ErrUsernameExists
	case isDuplicateKey(err, "uq_users_email"):
		return ErrEmailExists
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
