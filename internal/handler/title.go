package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/model"
	"github.com/openshelf/review-platform/internal/repository"
)

// TitleHandler serves the title catalogue. Reads are open and carry the
// derived rating; writes are admin-gated by route middleware.
type TitleHandler struct {
	Titles     *repository.TitleRepo
	Genres     *repository.GenreRepo
	Categories *repository.CategoryRepo
	Reviews    *repository.ReviewRepo
}

func NewTitleHandler(t *repository.TitleRepo, g *repository.GenreRepo, c *repository.CategoryRepo, r *repository.ReviewRepo) *TitleHandler {
	return &TitleHandler{Titles: t, Genres: g, Categories: c, Reviews: r}
}

type titleReq struct {
	Name        *string  `json:"name"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre"`    // genre slugs
	Category    *string  `json:"category"` // category slug
}

type titleResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Year        int       `json:"year"`
	Rating      *float64  `json:"rating"` // null until the first review
	Description string    `json:"description"`
	Genre       []tagResp `json:"genre"`
	Category    *tagResp  `json:"category"`
}

// buildTitleResp assembles the read representation: genres, category and
// the aggregate rating, which is recomputed per read so it always matches
// the current review rows.
func (h *TitleHandler) buildTitleResp(ctx context.Context, t model.Title) (titleResp, error) {
	resp := titleResp{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Genre:       []tagResp{},
	}
	genres, err := h.Genres.ByTitle(ctx, t.ID)
	if err != nil {
		return titleResp{}, err
	}
	for _, g := range genres {
		resp.Genre = append(resp.Genre, tagResp{Name: g.Name, Slug: g.Slug})
	}
	if t.CategoryID != nil {
		cat, err := h.Categories.GetByID(ctx, *t.CategoryID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return titleResp{}, err
		}
		if err == nil {
			resp.Category = &tagResp{Name: cat.Name, Slug: cat.Slug}
		}
	}
	avg, ok, err := h.Reviews.AverageScore(ctx, t.ID)
	if err != nil {
		return titleResp{}, err
	}
	if ok {
		rounded := model.RoundRating(avg)
		resp.Rating = &rounded
	}
	return resp, nil
}

func (h *TitleHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	titles, err := h.Titles.List(ctx, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]titleResp, 0, len(titles))
	for _, t := range titles {
		resp, err := h.buildTitleResp(ctx, t)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TitleHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return notFound(c, "title not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Titles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "title not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	resp, err := h.buildTitleResp(ctx, t)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Create handles POST /v1/titles (admin). Genres and category arrive as
// slugs; unknown slugs are a validation error, not a 404, because they are
// request payload rather than route targets.
func (h *TitleHandler) Create(c echo.Context) error {
	var req titleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return fieldError(c, "name", "name is required")
	}
	if req.Year == nil {
		return fieldError(c, "year", "year is required")
	}
	if err := model.ValidateYear(*req.Year, time.Now()); err != nil {
		return fieldError(c, "year", err.Error())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	genreIDs, catID, verr, err := h.resolveRefs(ctx, req.Genre, req.Category)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if verr != nil {
		return verr.render(c)
	}

	t := model.Title{
		Name:       strings.TrimSpace(*req.Name),
		Year:       *req.Year,
		CategoryID: catID,
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if err := h.Titles.Create(ctx, &t, genreIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create title failed"})
	}
	resp, err := h.buildTitleResp(ctx, t)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, resp)
}

// Patch handles PATCH /v1/titles/:id (admin). Absent fields keep their
// stored values; a present genre list replaces the links wholesale.
func (h *TitleHandler) Patch(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return notFound(c, "title not found")
	}
	var req titleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Titles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "title not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return fieldError(c, "name", "name is required")
		}
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Year != nil {
		if err := model.ValidateYear(*req.Year, time.Now()); err != nil {
			return fieldError(c, "year", err.Error())
		}
		t.Year = *req.Year
	}
	if req.Description != nil {
		t.Description = *req.Description
	}

	var genreIDs []uint64
	if req.Genre != nil || req.Category != nil {
		ids, catID, verr, err := h.resolveRefs(ctx, req.Genre, req.Category)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if verr != nil {
			return verr.render(c)
		}
		if req.Genre != nil {
			genreIDs = ids
		}
		if req.Category != nil {
			t.CategoryID = catID
		}
	}

	if err := h.Titles.Update(ctx, &t, genreIDs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "title not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update title failed"})
	}
	resp, err := h.buildTitleResp(ctx, t)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return notFound(c, "title not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Titles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "title not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete title failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// resolveRefs maps genre slugs and an optional category slug to ids.
func (h *TitleHandler) resolveRefs(ctx context.Context, genreSlugs []string, categorySlug *string) ([]uint64, *uint64, *validationErr, error) {
	var genreIDs []uint64
	if len(genreSlugs) > 0 {
		genres, err := h.Genres.GetBySlugs(ctx, genreSlugs)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, &validationErr{field: "genre", msg: "unknown genre slug"}, nil
		}
		if err != nil {
			return nil, nil, nil, err
		}
		for _, g := range genres {
			genreIDs = append(genreIDs, g.ID)
		}
	}
	var catID *uint64
	if categorySlug != nil && *categorySlug != "" {
		cat, err := h.Categories.GetBySlug(ctx, *categorySlug)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, &validationErr{field: "category", msg: "unknown category slug"}, nil
		}
		if err != nil {
			return nil, nil, nil, err
		}
		catID = &cat.ID
	}
	return genreIDs, catID, nil, nil
}
