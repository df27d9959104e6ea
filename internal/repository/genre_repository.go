package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/openshelf/review-platform/internal/model"
)

// GenreRepo manages persistence for genres. Genres are flat tags addressed
// by slug in the API.
type GenreRepo struct{ DB *sql.DB }

func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{DB: db} }

func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO genres (name, slug) VALUES (?,?)", g.Name, g.Slug)
	if err != nil {
		return mapTagDuplicate(err, "uq_genres_name", "uq_genres_slug")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

func (r *GenreRepo) List(ctx context.Context, limit, offset int) ([]model.Genre, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, slug FROM genres ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Genre
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetBySlugs resolves genre slugs to rows. Any slug with no row yields
// ErrNotFound so title writes can reject unknown genres.
func (r *GenreRepo) GetBySlugs(ctx context.Context, slugs []string) ([]model.Genre, error) {
	out := make([]model.Genre, 0, len(slugs))
	for _, slug := range slugs {
		var g model.Genre
		err := r.DB.QueryRowContext(ctx,
			"SELECT id, name, slug FROM genres WHERE slug=? LIMIT 1", slug).
			Scan(&g.ID, &g.Name, &g.Slug)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// ByTitle returns the genres attached to a title.
func (r *GenreRepo) ByTitle(ctx context.Context, titleID uint64) ([]model.Genre, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT g.id, g.name, g.slug FROM genres g
		 JOIN title_genres tg ON tg.genre_id = g.id
		 WHERE tg.title_id = ? ORDER BY g.id`, titleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Genre
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *GenreRepo) Delete(ctx context.Context, slug string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM genres WHERE slug=?", slug)
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

// mapTagDuplicate resolves a 1062 on a genre/category write to the field
// that collided.
func mapTagDuplicate(err error, nameKey, slugKey string) error {
	switch {
	case isDuplicateKey(err, nameKey):
		return ErrNameExists
	case isDuplicateKey(err, slugKey):
		return ErrSlugExists
	case isDuplicateKey(err, ""):
		// Unique violation on an unexpected key; report the slug since it
		// is the addressable field.
		return ErrSlugExists
	}
	return err
}
