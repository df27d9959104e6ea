// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/auth"
	"github.com/openshelf/review-platform/internal/handler"
	"github.com/openshelf/review-platform/internal/middleware"
)

// RegisterRoutes registers routes that carry no authentication at all.
// Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the signup and token-exchange endpoints under
// /v1/auth. Both are anonymous by design.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.POST("/token", a.Token)
}

// RegisterUsers wires user management under /v1/users. Everything requires
// a valid token; the policy middleware narrows the by-username surface to
// admins while /me stays open to any authenticated actor. The static /me
// routes are matched ahead of the :username parameter by Echo, and there is
// deliberately no DELETE /v1/users/me.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, jwtSecret string) {
	g := e.Group("/v1/users", middleware.JWTAuth(jwtSecret))

	g.GET("/me", h.Me)
	g.PATCH("/me", h.PatchMe)

	g.GET("", h.List, middleware.Authorize(auth.ResourceUser, auth.ActionRead))
	g.POST("", h.Create, middleware.Authorize(auth.ResourceUser, auth.ActionCreate))
	g.GET("/:username", h.Get, middleware.Authorize(auth.ResourceUser, auth.ActionRead))
	g.PATCH("/:username", h.Patch, middleware.Authorize(auth.ResourceUser, auth.ActionUpdate))
	g.DELETE("/:username", h.Delete, middleware.Authorize(auth.ResourceUser, auth.ActionDelete))
}

// RegisterCatalogue wires titles, genres and categories. Reads are public
// and pass through the response cache; writes require a token and admin
// scope.
func RegisterCatalogue(e *echo.Echo, t *handler.TitleHandler, tags *handler.TagHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	e.GET("/v1/titles", t.List, cache)
	e.GET("/v1/titles/:id", t.Get, cache)
	e.GET("/v1/genres", tags.ListGenres, cache)
	e.GET("/v1/categories", tags.ListCategories, cache)

	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	g.POST("/titles", t.Create, middleware.Authorize(auth.ResourceTitle, auth.ActionCreate))
	g.PATCH("/titles/:id", t.Patch, middleware.Authorize(auth.ResourceTitle, auth.ActionUpdate))
	g.DELETE("/titles/:id", t.Delete, middleware.Authorize(auth.ResourceTitle, auth.ActionDelete))

	g.POST("/genres", tags.CreateGenre, middleware.Authorize(auth.ResourceGenre, auth.ActionCreate))
	g.DELETE("/genres/:slug", tags.DeleteGenre, middleware.Authorize(auth.ResourceGenre, auth.ActionDelete))
	g.POST("/categories", tags.CreateCategory, middleware.Authorize(auth.ResourceCategory, auth.ActionCreate))
	g.DELETE("/categories/:slug", tags.DeleteCategory, middleware.Authorize(auth.ResourceCategory, auth.ActionDelete))
}

// RegisterReviews wires reviews and their comments under titles. Reads are
// public; a reader presenting a token is identified by the global
// OptionalJWT. Creates require authentication; per-record edit and delete
// rights depend on the record's author, so those handlers consult the
// policy engine themselves after loading the record.
func RegisterReviews(e *echo.Echo, r *handler.ReviewHandler, cm *handler.CommentHandler, jwtSecret string) {
	e.GET("/v1/titles/:title_id/reviews", r.List)
	e.GET("/v1/titles/:title_id/reviews/:review_id", r.Get)
	e.GET("/v1/titles/:title_id/reviews/:review_id/comments", cm.List)
	e.GET("/v1/titles/:title_id/reviews/:review_id/comments/:comment_id", cm.Get)

	g := e.Group("/v1/titles/:title_id/reviews", middleware.JWTAuth(jwtSecret))
	g.POST("", r.Create, middleware.Authorize(auth.ResourceReview, auth.ActionCreate))
	g.PATCH("/:review_id", r.Patch)
	g.DELETE("/:review_id", r.Delete)

	g.POST("/:review_id/comments", cm.Create, middleware.Authorize(auth.ResourceComment, auth.ActionCreate))
	g.PATCH("/:review_id/comments/:comment_id", cm.Patch)
	g.DELETE("/:review_id/comments/:comment_id", cm.Delete)
}
