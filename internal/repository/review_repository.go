package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/openshelf/review-platform/internal/model"
)

// ReviewRepo manages persistence for reviews. The UNIQUE(author_id,
// title_id) key is the atomic guard on the one-review-per-author-per-title
// invariant; ExistsByAuthorTitle is only a fast path in front of it.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

const reviewSelect = `SELECT r.id, r.title_id, r.author_id, u.username, r.score, r.text, r.pub_date
	FROM reviews r JOIN users u ON u.id = r.author_id`

// Create inserts a review; pub_date is assigned by the database. A racing
// duplicate from the same author lands on the unique key and comes back as
// ErrDuplicateReview, same as the fast-path rejection.
func (r *ReviewRepo) Create(ctx context.Context, rev *model.Review) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reviews (title_id, author_id, score, text) VALUES (?,?,?,?)",
		rev.TitleID, rev.AuthorID, rev.Score, rev.Text)
	if err != nil {
		if isDuplicateKey(err, "uq_reviews_author_title") {
			return ErrDuplicateReview
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, rev.TitleID, uint64(id))
	if err != nil {
		return err
	}
	*rev = stored
	return nil
}

// GetByID fetches a review scoped to its title so nested routes 404 when
// the review belongs to a different title.
func (r *ReviewRepo) GetByID(ctx context.Context, titleID, reviewID uint64) (model.Review, error) {
	var rev model.Review
	err := r.DB.QueryRowContext(ctx,
		reviewSelect+" WHERE r.id=? AND r.title_id=? LIMIT 1", reviewID, titleID).
		Scan(&rev.ID, &rev.TitleID, &rev.AuthorID, &rev.Author, &rev.Score, &rev.Text, &rev.PubDate)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Review{}, ErrNotFound
	}
	return rev, err
}

// ExistsByAuthorTitle is the application-level duplicate check. It gives
// the common case a friendly error before the insert; the unique key covers
// the race it cannot.
func (r *ReviewRepo) ExistsByAuthorTitle(ctx context.Context, authorID, titleID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM reviews WHERE author_id=? AND title_id=? LIMIT 1", authorID, titleID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ReviewRepo) ListByTitle(ctx context.Context, titleID uint64, limit, offset int) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx,
		reviewSelect+" WHERE r.title_id=? ORDER BY r.pub_date DESC, r.id DESC LIMIT ? OFFSET ?",
		titleID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Review
	for rows.Next() {
		var rev model.Review
		if err := rows.Scan(&rev.ID, &rev.TitleID, &rev.AuthorID, &rev.Author,
			&rev.Score, &rev.Text, &rev.PubDate); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

// Update stores score and text. Author, title and pub_date never change.
func (r *ReviewRepo) Update(ctx context.Context, rev *model.Review) error {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE reviews SET score=?, text=? WHERE id=?", rev.Score, rev.Text, rev.ID); err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, rev.TitleID, rev.ID)
	if err != nil {
		return err
	}
	*rev = stored
	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, titleID, reviewID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM reviews WHERE id=? AND title_id=?", reviewID, titleID)
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

// AverageScore computes a title's aggregate rating in the database so the
// cost is one aggregate row regardless of review count. ok is false when
// the title has no reviews.
func (r *ReviewRepo) AverageScore(ctx context.Context, titleID uint64) (avg float64, ok bool, err error) {
	var nullable sql.NullFloat64
	err = r.DB.QueryRowContext(ctx,
		"SELECT AVG(score) FROM reviews WHERE title_id=?", titleID).Scan(&nullable)
	if err != nil {
		return 0, false, err
	}
	if !nullable.Valid {
		return 0, false, nil
	}
	return nullable.Float64, true, nil
}
