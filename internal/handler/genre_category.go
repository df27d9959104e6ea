package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/model"
	"github.com/openshelf/review-platform/internal/repository"
)

// TagHandler serves genres and categories: the two flat tag vocabularies of
// the catalogue. Reads are open; create and delete are admin-gated by route
// middleware. Neither entity supports update.
type TagHandler struct {
	Genres     *repository.GenreRepo
	Categories *repository.CategoryRepo
}

func NewTagHandler(g *repository.GenreRepo, c *repository.CategoryRepo) *TagHandler {
	return &TagHandler{Genres: g, Categories: c}
}

type tagReq struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type tagResp struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (h *TagHandler) validateTag(c echo.Context, req *tagReq) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)
	if req.Name == "" {
		return fieldError(c, "name", "name is required")
	}
	if len(req.Name) > 256 {
		return fieldError(c, "name", "name must be at most 256 characters")
	}
	if !validSlug(req.Slug) {
		return fieldError(c, "slug", "slug must match ^[-a-zA-Z0-9_]+$ and be at most 50 characters")
	}
	return nil
}

// ----- genres -----

func (h *TagHandler) ListGenres(c echo.Context) error {
	limit, offset := pageParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	genres, err := h.Genres.List(ctx, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]tagResp, 0, len(genres))
	for _, g := range genres {
		out = append(out, tagResp{Name: g.Name, Slug: g.Slug})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TagHandler) CreateGenre(c echo.Context) error {
	var req tagReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.validateTag(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	g := model.Genre{Name: req.Name, Slug: req.Slug}
	if err := h.Genres.Create(ctx, &g); err != nil {
		return renderTagDuplicate(c, err, "create genre failed")
	}
	return c.JSON(http.StatusCreated, tagResp{Name: g.Name, Slug: g.Slug})
}

func (h *TagHandler) DeleteGenre(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Genres.Delete(ctx, c.Param("slug")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "genre not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete genre failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- categories -----

func (h *TagHandler) ListCategories(c echo.Context) error {
	limit, offset := pageParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	cats, err := h.Categories.List(ctx, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]tagResp, 0, len(cats))
	for _, cat := range cats {
		out = append(out, tagResp{Name: cat.Name, Slug: cat.Slug})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TagHandler) CreateCategory(c echo.Context) error {
	var req tagReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.validateTag(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cat := model.Category{Name: req.Name, Slug: req.Slug}
	if err := h.Categories.Create(ctx, &cat); err != nil {
		return renderTagDuplicate(c, err, "create category failed")
	}
	return c.JSON(http.StatusCreated, tagResp{Name: cat.Name, Slug: cat.Slug})
}

// DeleteCategory removes a category. Titles keep existing with a null
// category; the FK handles the detach.
func (h *TagHandler) DeleteCategory(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Categories.Delete(ctx, c.Param("slug")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "category not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete category failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

func renderTagDuplicate(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrNameExists):
		return fieldError(c, "name", "name already exists")
	case errors.Is(err, repository.ErrSlugExists):
		return fieldError(c, "slug", "slug already exists")
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}
