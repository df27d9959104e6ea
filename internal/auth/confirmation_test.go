package auth

import (
	"testing"
	"time"

	"github.com/openshelf/review-platform/internal/model"
)

func testUser() model.User {
	return model.User{
		ID:        42,
		Username:  "capote",
		Email:     "capote@example.com",
		Role:      model.RoleUser,
		UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestIssueCodeDeterministic(t *testing.T) {
	u := testUser()
	first := IssueCode("secret", u)
	second := IssueCode("secret", u)
	if first != second {
		t.Fatalf("same user state produced different codes: %s vs %s", first, second)
	}
	if !VerifyCode("secret", u, first) {
		t.Fatal("freshly issued code did not verify")
	}
}

func TestVerifyCodeRejectsStale(t *testing.T) {
	u := testUser()
	code := IssueCode("secret", u)

	// Any mutation of the user row bumps updated_at; the old code must die.
	u.UpdatedAt = u.UpdatedAt.Add(time.Second)
	if VerifyCode("secret", u, code) {
		t.Fatal("code survived an updated_at bump")
	}
}

func TestVerifyCodeRejectsForeignUser(t *testing.T) {
	u := testUser()
	code := IssueCode("secret", u)

	other := u
	other.ID = 43
	if VerifyCode("secret", other, code) {
		t.Fatal("code issued for one user verified for another")
	}
}

func TestVerifyCodeRejectsWrongSecret(t *testing.T) {
	u := testUser()
	code := IssueCode("secret", u)
	if VerifyCode("other-secret", u, code) {
		t.Fatal("code verified under a different signing secret")
	}
}

func TestVerifyCodeRejectsGarbage(t *testing.T) {
	u := testUser()
	for _, code := range []string{"", "deadbeef", "not-hex-at-all"} {
		if VerifyCode("secret", u, code) {
			t.Fatalf("garbage code %q verified", code)
		}
	}
}
