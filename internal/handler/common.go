package handler

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/auth"
	"github.com/openshelf/review-platform/internal/middleware"
	"github.com/openshelf/review-platform/internal/model"
)

// dbTimeout bounds every storage call made from a handler.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// actor returns the authenticated principal stored by the JWT middleware.
func actor(c echo.Context) auth.Actor {
	return middleware.ActorFromContext(c)
}

// pathID parses a numeric path parameter; false means the segment was not a
// positive integer and the route target cannot exist.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// pageParams reads limit/offset with a default page of 20 capped at 100.
func pageParams(c echo.Context) (limit, offset int) {
	limit = 20
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// fieldError renders a 400-class validation failure naming the offending
// field, e.g. {"username": "username \"me\" is reserved"}.
func fieldError(c echo.Context, field, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{field: msg})
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}

var slugRe = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// validSlug checks the shared slug shape of genres and categories.
func validSlug(slug string) bool {
	return slug != "" && len(slug) <= 50 && slugRe.MatchString(slug)
}

// validationErr carries a field-level validation failure up to the point
// where it is rendered as JSON.
type validationErr struct {
	field string
	msg   string
}

func (v *validationErr) render(c echo.Context) error {
	return fieldError(c, v.field, v.msg)
}

// validateIdentity applies the username and email rules shared by signup
// and administrative user creation.
func validateIdentity(username, email string) *validationErr {
	if err := model.ValidateUsername(username); err != nil {
		return &validationErr{field: "username", msg: err.Error()}
	}
	if err := model.ValidateEmail(email); err != nil {
		return &validationErr{field: "email", msg: err.Error()}
	}
	return nil
}
