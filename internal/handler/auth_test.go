package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/config"
)

// newJSONContext builds an echo context carrying a JSON body, the way the
// router would hand it to a handler.
func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	out := map[string]string{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// The validation paths below reject the request before any storage access,
// so the handler runs with a nil repository.
func TestSignupValidation(t *testing.T) {
	h := NewAuthHandler(config.Config{}, nil)

	cases := []struct {
		name      string
		body      string
		wantField string
	}{
		{"reserved username", `{"username":"me","email":"a@b.io"}`, "username"},
		{"reserved username uppercase", `{"username":"ME","email":"a@b.io"}`, "username"},
		{"illegal characters", `{"username":"a b","email":"a@b.io"}`, "username"},
		{"missing username", `{"email":"a@b.io"}`, "username"},
		{"missing email", `{"username":"capote"}`, "email"},
		{"malformed email", `{"username":"capote","email":"nope"}`, "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/signup", tc.body)
			if err := h.Signup(c); err != nil {
				t.Fatalf("Signup: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if body := decodeBody(t, rec); body[tc.wantField] == "" {
				t.Errorf("response %v does not name field %q", body, tc.wantField)
			}
		})
	}
}

func TestSignupMalformedBody(t *testing.T) {
	h := NewAuthHandler(config.Config{}, nil)
	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/signup", `{"username":`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTokenMissingFields(t *testing.T) {
	h := NewAuthHandler(config.Config{}, nil)

	cases := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing username", `{"confirmation_code":"abc"}`, "username"},
		{"missing code", `{"username":"capote"}`, "confirmation_code"},
		{"blank code", `{"username":"capote","confirmation_code":"  "}`, "confirmation_code"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/token", tc.body)
			if err := h.Token(c); err != nil {
				t.Fatalf("Token: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if body := decodeBody(t, rec); body[tc.wantField] == "" {
				t.Errorf("response %v does not name field %q", body, tc.wantField)
			}
		})
	}
}
