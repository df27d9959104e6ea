package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/auth"
	"github.com/openshelf/review-platform/internal/model"
	"github.com/openshelf/review-platform/internal/repository"
)

// ReviewHandler serves reviews nested under titles. Creation enforces the
// one-review-per-author-per-title invariant; edits and deletes are decided
// per record against the policy table with the review's author as owner.
type ReviewHandler struct {
	Titles  *repository.TitleRepo
	Reviews *repository.ReviewRepo
}

func NewReviewHandler(t *repository.TitleRepo, r *repository.ReviewRepo) *ReviewHandler {
	return &ReviewHandler{Titles: t, Reviews: r}
}

type reviewReq struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type reviewResp struct {
	ID      uint64    `json:"id"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
}

func toReviewResp(r model.Review) reviewResp {
	return reviewResp{ID: r.ID, Author: r.Author, Score: r.Score, Text: r.Text, PubDate: r.PubDate}
}

// resolveTitle loads the parent title or answers 404. Every nested route
// goes through it so reviews are only reachable under their own title.
func (h *ReviewHandler) resolveTitle(c echo.Context) (model.Title, bool, error) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return model.Title{}, false, notFound(c, "title not found")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Titles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Title{}, false, notFound(c, "title not found")
		}
		return model.Title{}, false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return t, true, nil
}

func (h *ReviewHandler) List(c echo.Context) error {
	t, ok, err := h.resolveTitle(c)
	if !ok {
		return err
	}
	limit, offset := pageParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	reviews, err := h.Reviews.ListByTitle(ctx, t.ID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]reviewResp, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, toReviewResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReviewHandler) Get(c echo.Context) error {
	t, ok, err := h.resolveTitle(c)
	if !ok {
		return err
	}
	reviewID, okID := pathID(c, "review_id")
	if !okID {
		return notFound(c, "review not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Reviews.GetByID(ctx, t.ID, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "review not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toReviewResp(r))
}

// Create handles POST /v1/titles/:title_id/reviews. The existence check is
// a fast path; a concurrent duplicate that slips past it lands on the
// storage unique key and surfaces as the same error.
func (h *ReviewHandler) Create(c echo.Context) error {
	t, ok, err := h.resolveTitle(c)
	if !ok {
		return err
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Score == nil {
		return fieldError(c, "score", "score is required")
	}
	if err := model.ValidateScore(*req.Score); err != nil {
		return fieldError(c, "score", err.Error())
	}
	if req.Text == nil || strings.TrimSpace(*req.Text) == "" {
		return fieldError(c, "text", "text is required")
	}

	a := actor(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	exists, err := h.Reviews.ExistsByAuthorTitle(ctx, a.ID, t.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if exists {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrDuplicateReview.Error()})
	}

	r := model.Review{TitleID: t.ID, AuthorID: a.ID, Score: *req.Score, Text: *req.Text}
	if err := h.Reviews.Create(ctx, &r); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
	}
	return c.JSON(http.StatusCreated, toReviewResp(r))
}

// Patch handles PATCH .../reviews/:review_id. An author updating their own
// review is an edit, not a duplicate, so the uniqueness check does not
// apply here.
func (h *ReviewHandler) Patch(c echo.Context) error {
	t, ok, err := h.resolveTitle(c)
	if !ok {
		return err
	}
	reviewID, okID := pathID(c, "review_id")
	if !okID {
		return notFound(c, "review not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Reviews.GetByID(ctx, t.ID, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "review not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !auth.Decide(actor(c), auth.ResourceReview, auth.ActionUpdate, r.AuthorID) {
		return forbidden(c)
	}

	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Score != nil {
		if err := model.ValidateScore(*req.Score); err != nil {
			return fieldError(c, "score", err.Error())
		}
		r.Score = *req.Score
	}
	if req.Text != nil {
		if strings.TrimSpace(*req.Text) == "" {
			return fieldError(c, "text", "text is required")
		}
		r.Text = *req.Text
	}
	if err := h.Reviews.Update(ctx, &r); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update review failed"})
	}
	return c.JSON(http.StatusOK, toReviewResp(r))
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	t, ok, err := h.resolveTitle(c)
	if !ok {
		return err
	}
	reviewID, okID := pathID(c, "review_id")
	if !okID {
		return notFound(c, "review not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Reviews.GetByID(ctx, t.ID, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "review not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !auth.Decide(actor(c), auth.ResourceReview, auth.ActionDelete, r.AuthorID) {
		return forbidden(c)
	}
	if err := h.Reviews.Delete(ctx, t.ID, r.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "review not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete review failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
