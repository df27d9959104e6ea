package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/openshelf/review-platform/internal/model"
)

// TitleRepo manages persistence for titles and their genre links.
type TitleRepo struct{ DB *sql.DB }

func NewTitleRepo(db *sql.DB) *TitleRepo { return &TitleRepo{DB: db} }

// Create inserts a title and its genre links in one transaction so a title
// never exists half-linked.
func (r *TitleRepo) Create(ctx context.Context, t *model.Title, genreIDs []uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO titles (name, year, description, category_id) VALUES (?,?,?,?)",
		t.Name, t.Year, t.Description, t.CategoryID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	for _, gid := range genreIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO title_genres (title_id, genre_id) VALUES (?,?)", t.ID, gid); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = stored
	return nil
}

func (r *TitleRepo) GetByID(ctx context.Context, id uint64) (model.Title, error) {
	var t model.Title
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, year, description, category_id, created_at FROM titles WHERE id=? LIMIT 1", id).
		Scan(&t.ID, &t.Name, &t.Year, &t.Description, &t.CategoryID, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Title{}, ErrNotFound
	}
	return t, err
}

func (r *TitleRepo) List(ctx context.Context, limit, offset int) ([]model.Title, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, year, description, category_id, created_at FROM titles ORDER BY id LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Title
	for rows.Next() {
		var t model.Title
		if err := rows.Scan(&t.ID, &t.Name, &t.Year, &t.Description, &t.CategoryID, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update stores the title fields and, when genreIDs is non-nil, replaces
// the genre links inside the same transaction.
func (r *TitleRepo) Update(ctx context.Context, t *model.Title, genreIDs []uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE titles SET name=?, year=?, description=?, category_id=? WHERE id=?",
		t.Name, t.Year, t.Description, t.CategoryID, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		// Distinguish "absent" from "unchanged".
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM titles WHERE id=?", t.ID).Scan(&one); errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		} else if err != nil {
			return err
		}
	}
	if genreIDs != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM title_genres WHERE title_id=?", t.ID); err != nil {
			return err
		}
		for _, gid := range genreIDs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO title_genres (title_id, genre_id) VALUES (?,?)", t.ID, gid); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = stored
	return nil
}

func (r *TitleRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM titles WHERE id=?", id)
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
