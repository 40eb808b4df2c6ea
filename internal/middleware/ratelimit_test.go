package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMultiLimiter_Allow(t *testing.T) {
	ml := newMultiLimiter(2, 2, time.Minute)
	key := "test"
	if !ml.allow(key) {
		t.Fatal("first allow should pass")
	}
	if !ml.allow(key) {
		t.Fatal("second allow should pass")
	}
	if ml.allow(key) {
		t.Fatal("third allow should be rate limited")
	}
}

func TestMultiLimiter_SeparateKeysIndependent(t *testing.T) {
	ml := newMultiLimiter(1, 1, time.Minute)
	if !ml.allow("a") {
		t.Fatal("expected first client to be allowed")
	}
	if !ml.allow("b") {
		t.Fatal("expected a different client to have its own bucket")
	}
}

func TestRateLimit_RejectsOverBurst(t *testing.T) {
	h := RateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec1 := httptest.NewRecorder()
	h.ServeHTTP(rec1, req)
	if rec1.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec1.Code)
	}

	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec2.Code)
	}
}

func TestClientIP_PrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")

	if got := clientIP(req); got != "203.0.113.5" {
		t.Errorf("clientIP = %q; want 203.0.113.5", got)
	}
}
