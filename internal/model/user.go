package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Role is the closed set of user roles. Anything outside ParseRole's
// accepted values never reaches storage.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole normalizes a role string. Empty input falls back to RoleUser,
// which matches the default applied on self-registration.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return RoleUser, nil
	case RoleUser:
		return RoleUser, nil
	case RoleModerator:
		return RoleModerator, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", errors.New("unknown role")
}

// User mirrors the 'users' table. Superuser status is tracked separately
// from the role enum: it is a platform-level escalation equivalent in
// privilege to admin.
type User struct {
	ID          uint64
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Bio         string
	Role        Role
	IsSuperuser bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	maxUsernameLen = 150
	maxEmailLen    = 254
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// ValidateUsername enforces the username rules: non-empty, bounded length,
// word characters plus . @ + -, and the reserved literal "me" rejected
// case-insensitively because it collides with the /users/me route.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if len(username) > maxUsernameLen {
		return errors.New("username must be at most 150 characters")
	}
	if strings.EqualFold(username, "me") {
		return errors.New("username \"me\" is reserved")
	}
	if !usernameRe.MatchString(username) {
		return errors.New("username contains invalid characters")
	}
	return nil
}

// ValidateEmail applies the minimal shape check the API promises; full
// address verification happens out of band via the confirmation code.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > maxEmailLen {
		return errors.New("email must be at most 254 characters")
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return errors.New("email is not a valid address")
	}
	return nil
}
