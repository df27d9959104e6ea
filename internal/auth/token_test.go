package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openshelf/review-platform/internal/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken("secret", 42, model.RoleModerator, false, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if at.Token == "" {
		t.Fatal("empty token")
	}
	if until := time.Until(at.Exp); until < 14*time.Minute || until > 16*time.Minute {
		t.Errorf("expiry %v not within the configured ttl", at.Exp)
	}

	claims, err := ParseAccessToken("secret", at.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != model.RoleModerator {
		t.Errorf("Role = %s, want %s", claims.Role, model.RoleModerator)
	}
	if claims.IsSuperuser {
		t.Error("IsSuperuser = true, want false")
	}
}

func TestAccessTokenSuperuserClaim(t *testing.T) {
	at, err := NewAccessToken("secret", 7, model.RoleUser, true, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	claims, err := ParseAccessToken("secret", at.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if !claims.IsSuperuser {
		t.Error("superuser flag lost across the round trip")
	}
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	at, err := NewAccessToken("secret", 1, model.RoleUser, false, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := ParseAccessToken("other", at.Token); err == nil {
		t.Fatal("token verified under the wrong secret")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  float64(1),
		"role": "user",
		"su":   false,
		"exp":  time.Now().UTC().Add(-time.Minute).Unix(),
		"iat":  time.Now().UTC().Add(-2 * time.Minute).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken("secret", raw); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestParseAccessTokenRejectsNone(t *testing.T) {
	claims := jwt.MapClaims{"sub": float64(1), "role": "admin", "su": true}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken("secret", raw); err == nil {
		t.Fatal("unsigned token accepted")
	}
}

func TestParseAccessTokenUnknownRole(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  float64(1),
		"role": "overlord",
		"exp":  time.Now().UTC().Add(time.Minute).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken("secret", raw); err == nil {
		t.Fatal("token with an unknown role accepted")
	}
}

func TestParseAccessTokenGarbage(t *testing.T) {
	if _, err := ParseAccessToken("secret", "not.a.jwt"); err == nil {
		t.Fatal("garbage token accepted")
	}
}
