package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClerkAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached without credentials")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	rec := httptest.NewRecorder()
	ClerkAuthMiddleware(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestClerkAuthMiddlewareRejectsNonBearerScheme(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached without credentials")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	ClerkAuthMiddleware(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGetClerkIDRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := WithClerkID(req.Context(), "user_123")

	got, ok := GetClerkID(ctx)
	if !ok || got != "user_123" {
		t.Fatalf("GetClerkID = %q, %v; want %q, true", got, ok, "user_123")
	}

	if _, ok := GetClerkID(req.Context()); ok {
		t.Fatal("GetClerkID reported a clerk ID on a bare context")
	}
}

func TestIPRateLimiterExhaustsBurst(t *testing.T) {
	l := newIPRateLimiter(1, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.allow("10.0.0.1") {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}
	if l.allow("10.0.0.1") {
		t.Fatal("request past burst was allowed")
	}

	// A different IP has its own bucket.
	if !l.allow("10.0.0.2") {
		t.Fatal("fresh IP was denied")
	}
}

func TestIPRateLimiterCleanupDropsIdleVisitors(t *testing.T) {
	l := newIPRateLimiter(1, 1, time.Nanosecond)
	l.allow("10.0.0.1")

	time.Sleep(time.Millisecond)
	l.cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.visitors) != 0 {
		t.Fatalf("visitors after cleanup = %d, want 0", len(l.visitors))
	}
}

func TestClientIPPrefersFirstForwardedHop(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Fatalf("clientIP = %q, want %q", got, "203.0.113.7")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.4:5555"
	if got := clientIP(req); got != "192.0.2.4" {
		t.Fatalf("clientIP = %q, want %q", got, "192.0.2.4")
	}
}
