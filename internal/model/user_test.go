package model

import (
	"strings"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"", RoleUser, false},
		{"user", RoleUser, false},
		{"moderator", RoleModerator, false},
		{"admin", RoleAdmin, false},
		{"  Admin ", RoleAdmin, false},
		{"MODERATOR", RoleModerator, false},
		{"superuser", "", true},
		{"root", "", true},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseRole(%q): expected error, got %s", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRole(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseRole(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name     string
		username string
		ok       bool
	}{
		{"plain", "capote", true},
		{"allowed punctuation", "a.b@c+d-e_f", true},
		{"single char", "x", true},
		{"max length", strings.Repeat("a", 150), true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", 151), false},
		{"reserved me", "me", false},
		{"reserved me uppercase", "ME", false},
		{"reserved me mixed", "Me", false},
		{"space", "two words", false},
		{"slash", "a/b", false},
		{"hash", "a#b", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUsername(tc.username)
			if tc.ok && err != nil {
				t.Errorf("ValidateUsername(%q): %v", tc.username, err)
			}
			if !tc.ok && err == nil {
				t.Errorf("ValidateUsername(%q): expected error", tc.username)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	long := strings.Repeat("a", 250) + "@e.io"
	cases := []struct {
		email string
		ok    bool
	}{
		{"user@example.com", true},
		{"a@b", true},
		{"", false},
		{"no-at-sign", false},
		{"@leading", false},
		{"trailing@", false},
		{long, false},
	}
	for _, tc := range cases {
		err := ValidateEmail(tc.email)
		if tc.ok && err != nil {
			t.Errorf("ValidateEmail(%q): %v", tc.email, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("ValidateEmail(%q): expected error", tc.email)
		}
	}
}
