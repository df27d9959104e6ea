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

// CommentHandler serves comments nested under a title's review. There is no
// uniqueness rule here; ownership decides edit and delete rights exactly as
// for reviews.
type CommentHandler struct {
	Titles   *repository.TitleRepo
	Reviews  *repository.ReviewRepo
	Comments *repository.CommentRepo
}

func NewCommentHandler(t *repository.TitleRepo, r *repository.ReviewRepo, cm *repository.CommentRepo) *CommentHandler {
	return &CommentHandler{Titles: t, Reviews: r, Comments: cm}
}

type commentReq struct {
	Text *string `json:"text"`
}

type commentResp struct {
	ID      uint64    `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
}

func toCommentResp(cm model.Comment) commentResp {
	return commentResp{ID: cm.ID, Author: cm.Author, Text: cm.Text, PubDate: cm.PubDate}
}

// resolveReview walks the title -> review chain and answers 404 when any
// link is missing or mismatched.
func (h *CommentHandler) resolveReview(c echo.Context) (model.Review, bool, error) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return model.Review{}, false, notFound(c, "title not found")
	}
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		return model.Review{}, false, notFound(c, "review not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Titles.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Review{}, false, notFound(c, "title not found")
		}
		return model.Review{}, false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	r, err := h.Reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Review{}, false, notFound(c, "review not found")
		}
		return model.Review{}, false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return r, true, nil
}

func (h *CommentHandler) List(c echo.Context) error {
	r, ok, err := h.resolveReview(c)
	if !ok {
		return err
	}
	limit, offset := pageParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	comments, err := h.Comments.ListByReview(ctx, r.ID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]commentResp, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResp(cm))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CommentHandler) Get(c echo.Context) error {
	r, ok, err := h.resolveReview(c)
	if !ok {
		return err
	}
	commentID, okID := pathID(c, "comment_id")
	if !okID {
		return notFound(c, "comment not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, r.ID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "comment not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toCommentResp(cm))
}

func (h *CommentHandler) Create(c echo.Context) error {
	r, ok, err := h.resolveReview(c)
	if !ok {
		return err
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Text == nil || strings.TrimSpace(*req.Text) == "" {
		return fieldError(c, "text", "text is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cm := model.Comment{ReviewID: r.ID, AuthorID: actor(c).ID, Text: *req.Text}
	if err := h.Comments.Create(ctx, &cm); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create comment failed"})
	}
	return c.JSON(http.StatusCreated, toCommentResp(cm))
}

func (h *CommentHandler) Patch(c echo.Context) error {
	r, ok, err := h.resolveReview(c)
	if !ok {
		return err
	}
	commentID, okID := pathID(c, "comment_id")
	if !okID {
		return notFound(c, "comment not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, r.ID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "comment not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !auth.Decide(actor(c), auth.ResourceComment, auth.ActionUpdate, cm.AuthorID) {
		return forbidden(c)
	}

	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Text != nil {
		if strings.TrimSpace(*req.Text) == "" {
			return fieldError(c, "text", "text is required")
		}
		cm.Text = *req.Text
	}
	if err := h.Comments.Update(ctx, &cm); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update comment failed"})
	}
	return c.JSON(http.StatusOK, toCommentResp(cm))
}

func (h *CommentHandler) Delete(c echo.Context) error {
	r, ok, err := h.resolveReview(c)
	if !ok {
		return err
	}
	commentID, okID := pathID(c, "comment_id")
	if !okID {
		return notFound(c, "comment not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, r.ID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "comment not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !auth.Decide(actor(c), auth.ResourceComment, auth.ActionDelete, cm.AuthorID) {
		return forbidden(c)
	}
	if err := h.Comments.Delete(ctx, r.ID, cm.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "comment not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete comment failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
