package model

import (
	"errors"
	"math"
	"time"
)

const (
	// Review scores live on a 10-point scale, inclusive on both ends.
	MinScore = 1
	MaxScore = 10
)

// Review belongs to exactly one title and one author. At most one review
// per (author, title) pair; the UNIQUE key in storage is the authoritative
// guard. PubDate is server-assigned at creation and immutable.
type Review struct {
	ID       uint64
	TitleID  uint64
	AuthorID uint64
	Author   string // author username, joined in for responses
	Score    int
	Text     string
	PubDate  time.Time
}

// Comment belongs to exactly one review and one author. No uniqueness
// constraint: unlimited comments per review per author.
type Comment struct {
	ID       uint64
	ReviewID uint64
	AuthorID uint64
	Author   string
	Text     string
	PubDate  time.Time
}

// ValidateScore checks the 1..10 bound.
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return errors.New("score must be on a 10-point scale")
	}
	return nil
}

// RoundRating rounds an aggregate rating to two decimals so 7, 9, 10
// averages to 8.67 rather than a long float tail.
func RoundRating(avg float64) float64 {
	return math.Round(avg*100) / 100
}
