package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestPathID(t *testing.T) {
	cases := []struct {
		raw  string
		want uint64
		ok   bool
	}{
		{"5", 5, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("title_id")
		c.SetParamValues(tc.raw)
		got, ok := pathID(c, "title_id")
		if got != tc.want || ok != tc.ok {
			t.Errorf("pathID(%q) = (%d, %v), want (%d, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPageParams(t *testing.T) {
	cases := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 20, 0},
		{"limit=5", 5, 0},
		{"limit=500", 100, 0},
		{"limit=-1", 20, 0},
		{"offset=40", 20, 40},
		{"limit=10&offset=30", 10, 30},
		{"limit=junk&offset=junk", 20, 0},
	}
	for _, tc := range cases {
		c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil), httptest.NewRecorder())
		limit, offset := pageParams(c)
		if limit != tc.wantLimit || offset != tc.wantOffset {
			t.Errorf("pageParams(%q) = (%d, %d), want (%d, %d)",
				tc.query, limit, offset, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestValidSlug(t *testing.T) {
	for _, slug := range []string{"drama", "sci-fi", "top_10", "A1"} {
		if !validSlug(slug) {
			t.Errorf("validSlug(%q) = false", slug)
		}
	}
	bad := []string{"", "with space", "ümlaut", "semi;colon", strings.Repeat("a", 51)}
	for _, slug := range bad {
		if validSlug(slug) {
			t.Errorf("validSlug(%q) = true", slug)
		}
	}
}
