package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/auth"
	"github.com/openshelf/review-platform/internal/config"
	"github.com/openshelf/review-platform/internal/model"
)

func authActor(id uint64) auth.Actor {
	return auth.Actor{Authenticated: true, ID: id, Role: model.RoleUser}
}

// rateKeyThroughChain runs a request through OptionalJWT into a probe
// sitting where the token bucket runs and returns the key it would use.
func rateKeyThroughChain(t *testing.T, cfg config.RateLimitConfig, authz string) string {
	t.Helper()
	var key string
	h := OptionalJWT(testSecret)(func(c echo.Context) error {
		key = buildRateKey(cfg, c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/titles", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/titles")
	if err := h(c); err != nil {
		t.Fatalf("chain: %v", err)
	}
	return key
}

// The limiter runs after OptionalJWT in the global chain, so user-keyed
// strategies must see the real principal rather than lumping every
// authenticated caller into the anonymous bucket.
func TestRateKeySeesAuthenticatedPrincipal(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}
	tok := issueToken(t, model.RoleUser, false)

	key := rateKeyThroughChain(t, cfg, "Bearer "+tok)
	if !strings.Contains(key, ":user:42:") {
		t.Errorf("key %q does not carry the authenticated user id", key)
	}
	if strings.Contains(key, ":user:anon") {
		t.Errorf("authenticated request keyed as anonymous: %q", key)
	}
}

func TestRateKeyAnonymous(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}
	key := rateKeyThroughChain(t, cfg, "")
	if !strings.Contains(key, ":user:anon:") {
		t.Errorf("anonymous request not keyed as anon: %q", key)
	}
}

func TestRateKeyDistinctUsers(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	c.Set(actorKey, authActor(1))
	a := buildRateKey(cfg, c)
	c.Set(actorKey, authActor(2))
	b := buildRateKey(cfg, c)
	if a == b {
		t.Errorf("different users share bucket key %q", a)
	}
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
	handled := false
	h := mw(func(c echo.Context) error {
		handled = true
		return c.NoContent(http.StatusOK)
	})
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := h(c); err != nil {
		t.Fatalf("chain: %v", err)
	}
	if !handled {
		t.Error("disabled limiter blocked the handler")
	}
}
