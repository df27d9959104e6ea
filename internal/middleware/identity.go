package middleware

// identity.go holds the context plumbing shared by the middleware files:
// where the authenticated actor lives in the Echo context and how the rate
// limiter names a principal.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/auth"
)

// actorKey is the context key under which JWTAuth stores the actor.
const actorKey = "actor"

// ActorFromContext returns the authenticated actor, or the zero (anonymous)
// actor when no authentication middleware ran or the token was absent.
func ActorFromContext(c echo.Context) auth.Actor {
	if v := c.Get(actorKey); v != nil {
		if a, ok := v.(auth.Actor); ok {
			return a
		}
	}
	return auth.Actor{}
}

// currentUserID names the principal for rate-limit keys: the numeric user
// id when authenticated, "anon" otherwise.
func currentUserID(c echo.Context) string {
	if a := ActorFromContext(c); a.Authenticated {
		return strconv.FormatUint(a.ID, 10)
	}
	return "anon"
}
