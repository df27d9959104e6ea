package model

import (
	"testing"
	"time"
)

func TestValidateYear(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for _, year := range []int{2026, 1999, -440} {
		if err := ValidateYear(year, now); err != nil {
			t.Errorf("ValidateYear(%d): %v", year, err)
		}
	}
	if err := ValidateYear(2027, now); err == nil {
		t.Error("future year accepted")
	}
}
