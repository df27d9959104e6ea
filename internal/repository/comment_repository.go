package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/openshelf/review-platform/internal/model"
)

// CommentRepo manages persistence for comments on reviews. No uniqueness
// constraint applies; an author may comment on a review any number of times.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

const commentSelect = `SELECT c.id, c.review_id, c.author_id, u.username, c.text, c.pub_date
	FROM comments c JOIN users u ON u.id = c.author_id`

func (r *CommentRepo) Create(ctx context.Context, cm *model.Comment) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (review_id, author_id, text) VALUES (?,?,?)",
		cm.ReviewID, cm.AuthorID, cm.Text)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, cm.ReviewID, uint64(id))
	if err != nil {
		return err
	}
	*cm = stored
	return nil
}

// GetByID fetches a comment scoped to its review, for the same 404
// semantics as reviews under titles.
func (r *CommentRepo) GetByID(ctx context.Context, reviewID, commentID uint64) (model.Comment, error) {
	var cm model.Comment
	err := r.DB.QueryRowContext(ctx,
		commentSelect+" WHERE c.id=? AND c.review_id=? LIMIT 1", commentID, reviewID).
		Scan(&cm.ID, &cm.ReviewID, &cm.AuthorID, &cm.Author, &cm.Text, &cm.PubDate)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Comment{}, ErrNotFound
	}
	return cm, err
}

func (r *CommentRepo) ListByReview(ctx context.Context, reviewID uint64, limit, offset int) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		commentSelect+" WHERE c.review_id=? ORDER BY c.pub_date DESC, c.id DESC LIMIT ? OFFSET ?",
		reviewID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Comment
	for rows.Next() {
		var cm model.Comment
		if err := rows.Scan(&cm.ID, &cm.ReviewID, &cm.AuthorID, &cm.Author, &cm.Text, &cm.PubDate); err != nil {
			return nil, err
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

// Update stores the text. Author, review and pub_date never change.
func (r *CommentRepo) Update(ctx context.Context, cm *model.Comment) error {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET text=? WHERE id=?", cm.Text, cm.ID); err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, cm.ReviewID, cm.ID)
	if err != nil {
		return err
	}
	*cm = stored
	return nil
}

func (r *CommentRepo) Delete(ctx context.Context, reviewID, commentID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM comments WHERE id=? AND review_id=?", commentID, reviewID)
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
