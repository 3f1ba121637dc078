package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestLimiter_AllowsThenBlocks(t *testing.T) {
	lim := NewLimiter(rate.Limit(2), 2, time.Minute)
	h := lim.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/login", nil)
		h.ServeHTTP(rec, req)
		if rec.Code != 200 {
			t.Fatalf("want 200, got %d", rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/login", nil)
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("want 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
}

func TestLimiter_KeysPerIP(t *testing.T) {
	lim := NewLimiter(rate.Limit(1), 1, time.Minute)
	h := lim.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = addr
		h.ServeHTTP(rec, req)
		if rec.Code != 200 {
			t.Fatalf("%s: want 200, got %d", addr, rec.Code)
		}
	}
}

func TestLimiter_CleanupEvictsIdle(t *testing.T) {
	lim := NewLimiter(rate.Limit(1), 1, -time.Second)
	lim.get("ip:1.2.3.4")
	lim.Cleanup()
	n := 0
	lim.m.Range(func(any, any) bool { n++; return true })
	if n != 0 {
		t.Fatalf("want empty after cleanup, got %d", n)
	}
}
