package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/auth"
	"github.com/openshelf/review-platform/internal/model"
)

func runAuthorize(t *testing.T, actor *auth.Actor, res auth.Resource, act auth.Action) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	handled := false
	h := Authorize(res, act)(func(c echo.Context) error {
		handled = true
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	if actor != nil {
		c.Set(actorKey, *actor)
	}
	if err := h(c); err != nil {
		t.Fatalf("chain: %v", err)
	}
	return rec, handled
}

func TestAuthorizeAnonymousDenialIs401(t *testing.T) {
	rec, handled := runAuthorize(t, nil, auth.ResourceReview, auth.ActionCreate)
	if handled {
		t.Fatal("handler ran for an anonymous write")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthorizeAuthenticatedDenialIs403(t *testing.T) {
	a := auth.Actor{Authenticated: true, ID: 1, Role: model.RoleUser}
	rec, handled := runAuthorize(t, &a, auth.ResourceTitle, auth.ActionCreate)
	if handled {
		t.Fatal("handler ran for a forbidden write")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestAuthorizeGrantPasses(t *testing.T) {
	a := auth.Actor{Authenticated: true, ID: 1, Role: model.RoleUser}
	rec, handled := runAuthorize(t, &a, auth.ResourceReview, auth.ActionCreate)
	if !handled || rec.Code != http.StatusOK {
		t.Errorf("grant did not pass: status %d", rec.Code)
	}
}

func TestAuthorizeSuperuserPasses(t *testing.T) {
	a := auth.Actor{Authenticated: true, ID: 1, Role: model.RoleUser, IsSuperuser: true}
	rec, handled := runAuthorize(t, &a, auth.ResourceUser, auth.ActionDelete)
	if !handled || rec.Code != http.StatusOK {
		t.Errorf("superuser denied: status %d", rec.Code)
	}
}

func TestCurrentUserID(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := currentUserID(c); got != "anon" {
		t.Errorf("anonymous principal = %q, want anon", got)
	}
	c.Set(actorKey, auth.Actor{Authenticated: true, ID: 9, Role: model.RoleUser})
	if got := currentUserID(c); got != "9" {
		t.Errorf("principal = %q, want 9", got)
	}
}
