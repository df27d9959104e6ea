// Package repository defines the data access layer and the sentinel errors
// shared across it. Handlers translate these sentinels into HTTP statuses
// exactly once each: not-found -> 404, the duplicate family -> 400 with a
// field-level message.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists and ErrEmailExists surface uniqueness violations on the
// users table with enough precision to name the offending field.
var (
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
)

// ErrNameExists and ErrSlugExists cover the genre/category unique keys.
var (
	ErrNameExists = errors.New("name already exists")
	ErrSlugExists = errors.New("slug already exists")
)

// ErrDuplicateReview is returned when an author already reviewed a title.
// It is raised both by the application-level fast path and by the storage
// UNIQUE key, so racing duplicate submissions collapse to one message.
var ErrDuplicateReview = errors.New("only one review per title is permitted")

// isDuplicateKey reports whether err is a MySQL 1062 duplicate-entry error,
// optionally scoped to a named unique key.
func isDuplicateKey(err error, key string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") && !strings.Contains(msg, "duplicate entry") {
		return false
	}
	return key == "" || strings.Contains(msg, strings.ToLower(key))
}
