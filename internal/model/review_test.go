package model

import "testing"

func TestValidateScore(t *testing.T) {
	for _, score := range []int{1, 5, 10} {
		if err := ValidateScore(score); err != nil {
			t.Errorf("ValidateScore(%d): %v", score, err)
		}
	}
	for _, score := range []int{0, -3, 11, 100} {
		if err := ValidateScore(score); err == nil {
			t.Errorf("ValidateScore(%d): expected error", score)
		}
	}
}

func TestRoundRating(t *testing.T) {
	cases := []struct {
		avg  float64
		want float64
	}{
		{(7.0 + 9.0 + 10.0) / 3.0, 8.67},
		{5, 5},
		{7.5, 7.5},
		{1.0 / 3.0, 0.33},
	}
	for _, tc := range cases {
		if got := RoundRating(tc.avg); got != tc.want {
			t.Errorf("RoundRating(%v) = %v, want %v", tc.avg, got, tc.want)
		}
	}
}
