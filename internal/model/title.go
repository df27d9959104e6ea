package model

import (
	"errors"
	"time"
)

// Title represents a catalogued creative work. Category is optional:
// deleting a category leaves its titles in place with a null category.
// Rating is derived (mean review score) and never stored.
type Title struct {
	ID          uint64
	Name        string
	Year        int
	Description string
	CategoryID  *uint64
	CreatedAt   time.Time
}

// Genre and Category are flat tag entities with globally unique name and
// slug. No hierarchy.
type Genre struct {
	ID   uint64
	Name string
	Slug string
}

type Category struct {
	ID   uint64
	Name string
	Slug string
}

// ValidateYear rejects titles dated in the future relative to now.
func ValidateYear(year int, now time.Time) error {
	if year > now.Year() {
		return errors.New("year must not be in the future")
	}
	return nil
}
