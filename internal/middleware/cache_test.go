package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/review-platform/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	body := []byte(`{"name":"drama"}`)

	enc, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(enc)
	if !ok {
		t.Fatal("decodePayload rejected its own encoding")
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if gotHdr.Get("Content-Type") != "application/json" {
		t.Errorf("header lost: %v", gotHdr)
	}
	if !bytes.Equal(gotBody, body) {
		t.Errorf("body = %q, want %q", gotBody, body)
	}
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	for _, bs := range [][]byte{nil, {1, 2, 3}, {0, 0, 0, 200, 0, 0, 0, 99}} {
		if _, _, _, ok := decodePayload(bs); ok {
			t.Errorf("truncated payload %v decoded", bs)
		}
	}
}

func TestCacheKeyStrategies(t *testing.T) {
	newCtx := func(target, route string) echo.Context {
		c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath(route)
		return c
	}
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	a := cacheKeyFrom(cfg, newCtx("/v1/titles?limit=5", "/v1/titles"))
	b := cacheKeyFrom(cfg, newCtx("/v1/titles?limit=5", "/v1/titles"))
	if a != b {
		t.Error("identical requests produced different keys")
	}
	if c := cacheKeyFrom(cfg, newCtx("/v1/titles?limit=10", "/v1/titles")); c == a {
		t.Error("query change did not change the key")
	}

	routeOnly := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}
	d := cacheKeyFrom(routeOnly, newCtx("/v1/titles?limit=5", "/v1/titles"))
	e := cacheKeyFrom(routeOnly, newCtx("/v1/titles?limit=10", "/v1/titles"))
	if d != e {
		t.Error("route strategy keyed on the query string")
	}
}

// A response past the capture limit must never be stored: size keeps the
// true byte count so the store step can tell a complete capture from a
// clipped one.
func TestCaptureWriterOversizedBody(t *testing.T) {
	cw := &captureWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: 10}
	payload := []byte(`{"name":"a very long body well past the limit"}`)
	if _, err := cw.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if cw.size != int64(len(payload)) {
		t.Errorf("size = %d, want full length %d", cw.size, len(payload))
	}
	if cw.size <= cw.limit {
		t.Fatal("oversized body not detectable from size vs limit")
	}
	if int64(cw.buf.Len()) > cw.limit {
		t.Errorf("capture buffer grew past the limit: %d bytes", cw.buf.Len())
	}
}

func TestCaptureWriterWithinLimit(t *testing.T) {
	cw := &captureWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: 1024}
	body := []byte(`{"name":"drama"}`)
	if _, err := cw.Write(body); err != nil {
		t.Fatalf("write: %v", err)
	}
	if cw.size > cw.limit {
		t.Fatal("small body misreported as oversized")
	}
	if !bytes.Equal(cw.buf.Bytes(), body) {
		t.Errorf("captured %q, want %q", cw.buf.Bytes(), body)
	}
}

func TestCacheDisabledPassesThrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)
	handled := false
	h := mw(func(c echo.Context) error {
		handled = true
		return c.NoContent(http.StatusOK)
	})
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/v1/titles", nil), httptest.NewRecorder())
	if err := h(c); err != nil {
		t.Fatalf("chain: %v", err)
	}
	if !handled {
		t.Error("disabled cache blocked the handler")
	}
}
