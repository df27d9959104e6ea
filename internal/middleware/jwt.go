package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/auth"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores the resulting actor in the request context. Routes wrapped by
// it reject unauthenticated requests outright. When the global OptionalJWT
// already authenticated the request, the stored actor is reused instead of
// parsing the token twice.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ActorFromContext(c).Authenticated {
				return next(c)
			}
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := auth.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(actorKey, auth.Actor{
				Authenticated: true,
				ID:            claims.UserID,
				Role:          claims.Role,
				IsSuperuser:   claims.IsSuperuser,
			})
			return next(c)
		}
	}
}

// OptionalJWT populates the actor when a valid Bearer token is present and
// lets the request through anonymously otherwise. It runs globally so the
// rate limiter and the anonymous-readable routes see the principal whenever
// one is offered. A token that is present but invalid is still a hard 401;
// silently downgrading it would mask client bugs and expired sessions.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return next(c)
			}
			claims, err := auth.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(actorKey, auth.Actor{
				Authenticated: true,
				ID:            claims.UserID,
				Role:          claims.Role,
				IsSuperuser:   claims.IsSuperuser,
			})
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(h, "Bearer "), true
}
