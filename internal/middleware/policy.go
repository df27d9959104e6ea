package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/auth"
)

// Authorize gates a route on the policy table for checks that do not depend
// on a specific record's owner: reads, creates and admin-only surfaces.
// Ownership-scoped decisions (edit/delete of a particular review or
// comment) are made in the handlers after the record is loaded, through the
// same auth.Decide function.
func Authorize(res auth.Resource, act auth.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := ActorFromContext(c)
			if !auth.Decide(actor, res, act, 0) {
				// Anonymous denial means authentication could change the
				// answer; authenticated denial is a permission problem.
				if !actor.Authenticated {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
				}
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
