package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/config"
	"github.com/openshelf/review-platform/internal/model"
	"github.com/openshelf/review-platform/internal/repository"
)

// UserHandler implements administrative user management and the /users/me
// self-service pair. Route-level policy middleware restricts everything but
// /me to admins.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u}
}

type userResp struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      string(u.Role),
	}
}

type createUserReq struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

// patchUserReq uses pointers so PATCH can distinguish "absent" from "set to
// empty".
type patchUserReq struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

// List handles GET /v1/users (admin).
func (h *UserHandler) List(c echo.Context) error {
	limit, offset := pageParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/users (admin): full field set including role.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if verr := validateIdentity(req.Username, req.Email); verr != nil {
		return verr.render(c)
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return fieldError(c, "role", "unknown role")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u := model.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return fieldError(c, "username", "username already exists")
		case errors.Is(err, repository.ErrEmailExists):
			return fieldError(c, "email", "email already exists")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, toUserResp(u))
}

// Get handles GET /v1/users/:username (admin).
func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Patch handles PATCH /v1/users/:username (admin). Unlike the /me path,
// role changes are honored here.
func (h *UserHandler) Patch(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return h.applyPatch(c, u, true)
}

// Me handles GET /v1/users/me for any authenticated actor.
func (h *UserHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, actor(c).ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// PatchMe handles PATCH /v1/users/me. A submitted role is silently
// discarded: the self path is not a privilege-escalation vector.
func (h *UserHandler) PatchMe(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, actor(c).ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return h.applyPatch(c, u, false)
}

// Delete handles DELETE /v1/users/:username (admin). There is deliberately
// no DELETE on the /me path.
func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, c.Param("username")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// mergeUserPatch folds a partial update onto the loaded user. allowRole
// gates whether a submitted role is applied; on the self path it is always
// false, so the stored role survives whatever the client sent.
func mergeUserPatch(u model.User, req patchUserReq, allowRole bool) (model.User, *validationErr) {
	if req.Username != nil {
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		u.Email = strings.TrimSpace(*req.Email)
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.Role != nil && allowRole {
		role, err := model.ParseRole(*req.Role)
		if err != nil {
			return u, &validationErr{field: "role", msg: "unknown role"}
		}
		u.Role = role
	}
	if verr := validateIdentity(u.Username, u.Email); verr != nil {
		return u, verr
	}
	return u, nil
}

// applyPatch binds a partial update onto the loaded user and stores it.
func (h *UserHandler) applyPatch(c echo.Context, u model.User, allowRole bool) error {
	var req patchUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	merged, verr := mergeUserPatch(u, req, allowRole)
	if verr != nil {
		return verr.render(c)
	}
	u = merged

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Update(ctx, &u); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return fieldError(c, "username", "username already exists")
		case errors.Is(err, repository.ErrEmailExists):
			return fieldError(c, "email", "email already exists")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}
