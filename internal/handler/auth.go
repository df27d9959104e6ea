package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/auth"
	"github.com/openshelf/review-platform/internal/config"
	"github.com/openshelf/review-platform/internal/queue"
	"github.com/openshelf/review-platform/internal/repository"
	mail "github.com/openshelf/review-platform/internal/service"
)

// AuthHandler bundles dependencies for the signup and token-exchange
// endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type tokenReq struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

// Signup self-registers a user and dispatches a confirmation code to their
// email. Resubmitting the identical (username, email) pair is deliberately
// not an error: the existing record is reused and a fresh code dispatched,
// so a lost email is recovered by signing up again. The response echoes the
// submitted pair and never contains the code.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := validateIdentity(req.Username, req.Email); err != nil {
		return err.render(c)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetOrCreate(ctx, req.Username, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return fieldError(c, "username", "username already exists")
		case errors.Is(err, repository.ErrEmailExists):
			return fieldError(c, "email", "email already exists")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	code := auth.IssueCode(h.Cfg.CodeSecret, u)
	// Delivery is out-of-band; a failed publish is logged inside the
	// publisher and must not fail the signup, since the code can be
	// re-issued by simply signing up again.
	_ = mail.PublishCodeIssued(ctx, queue.ConfirmationCodeIssued{
		Username: u.Username,
		Email:    u.Email,
		Code:     code,
		IssuedAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"username": u.Username, "email": u.Email})
}

// Token exchanges a (username, confirmation_code) pair for an access token.
// Unknown usernames are a 404; a known user with a stale or wrong code is a
// 400 naming confirmation_code.
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.ConfirmationCode = strings.TrimSpace(req.ConfirmationCode)
	if req.Username == "" {
		return fieldError(c, "username", "username is required")
	}
	if req.ConfirmationCode == "" {
		return fieldError(c, "confirmation_code", "confirmation_code is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !auth.VerifyCode(h.Cfg.CodeSecret, u, req.ConfirmationCode) {
		return fieldError(c, "confirmation_code", "confirmation code is invalid")
	}

	access, err := auth.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.IsSuperuser, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": access.Token})
}
