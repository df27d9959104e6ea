package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/auth"
	"github.com/openshelf/review-platform/internal/model"
)

const testSecret = "test-secret"

func issueToken(t *testing.T, role model.Role, superuser bool) string {
	t.Helper()
	at, err := auth.NewAccessToken(testSecret, 42, role, superuser, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	return at.Token
}

// runChain sends a request through the given middleware into a handler
// that records the actor it observed.
func runChain(t *testing.T, mw echo.MiddlewareFunc, authz string) (*httptest.ResponseRecorder, auth.Actor, bool) {
	t.Helper()
	var seen auth.Actor
	handled := false
	h := mw(func(c echo.Context) error {
		seen = ActorFromContext(c)
		handled = true
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if err := h(c); err != nil {
		t.Fatalf("chain: %v", err)
	}
	return rec, seen, handled
}

func TestJWTAuthValidToken(t *testing.T) {
	tok := issueToken(t, model.RoleModerator, true)
	rec, seen, handled := runChain(t, JWTAuth(testSecret), "Bearer "+tok)
	if !handled || rec.Code != http.StatusOK {
		t.Fatalf("request rejected: status %d", rec.Code)
	}
	if !seen.Authenticated || seen.ID != 42 || seen.Role != model.RoleModerator || !seen.IsSuperuser {
		t.Errorf("actor = %+v, want authenticated moderator superuser 42", seen)
	}
}

func TestJWTAuthMissingToken(t *testing.T) {
	rec, _, handled := runChain(t, JWTAuth(testSecret), "")
	if handled {
		t.Fatal("handler ran without a token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthBadToken(t *testing.T) {
	for _, authz := range []string{"Bearer garbage", "Basic dXNlcg==", "Bearer "} {
		rec, _, handled := runChain(t, JWTAuth(testSecret), authz)
		if handled {
			t.Fatalf("handler ran with authorization %q", authz)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("authorization %q: status = %d, want 401", authz, rec.Code)
		}
	}
}

// The group-level JWTAuth trusts an actor stored by the global OptionalJWT
// and must not demand the token a second time.
func TestJWTAuthReusesStoredActor(t *testing.T) {
	handled := false
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		handled = true
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(actorKey, auth.Actor{Authenticated: true, ID: 42, Role: model.RoleUser})
	if err := h(c); err != nil {
		t.Fatalf("chain: %v", err)
	}
	if !handled || rec.Code != http.StatusOK {
		t.Errorf("pre-authenticated request rejected: status %d", rec.Code)
	}
}

func TestOptionalJWTAnonymous(t *testing.T) {
	rec, seen, handled := runChain(t, OptionalJWT(testSecret), "")
	if !handled || rec.Code != http.StatusOK {
		t.Fatalf("anonymous request rejected: status %d", rec.Code)
	}
	if seen.Authenticated {
		t.Errorf("actor = %+v, want anonymous", seen)
	}
}

func TestOptionalJWTInvalidTokenStillRejected(t *testing.T) {
	rec, _, handled := runChain(t, OptionalJWT(testSecret), "Bearer garbage")
	if handled {
		t.Fatal("handler ran with an invalid token present")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestOptionalJWTValidToken(t *testing.T) {
	tok := issueToken(t, model.RoleUser, false)
	_, seen, handled := runChain(t, OptionalJWT(testSecret), "Bearer "+tok)
	if !handled || !seen.Authenticated || seen.ID != 42 {
		t.Errorf("actor = %+v, want authenticated user 42", seen)
	}
}
