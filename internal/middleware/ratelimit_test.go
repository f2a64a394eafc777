package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func rateLimited(rl *RateLimiter) http.Handler {
	return UserIdentity()(rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
}

func hit(t *testing.T, h http.Handler, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/vector/search", nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	h := rateLimited(NewRateLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		if w := hit(t, h, "alice"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	w := hit(t, h, "alice")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "RATE_LIMITED") {
		t.Errorf("expected RATE_LIMITED error code, got %s", w.Body.String())
	}
}

func TestRateLimiter_PerUserWindows(t *testing.T) {
	h := rateLimited(NewRateLimiter(1, time.Minute))

	if w := hit(t, h, "alice"); w.Code != http.StatusOK {
		t.Fatalf("alice first request: got %d", w.Code)
	}
	if w := hit(t, h, "alice"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("alice second request: expected 429, got %d", w.Code)
	}
	// each user gets a separate window
	if w := hit(t, h, "bob"); w.Code != http.StatusOK {
		t.Errorf("bob first request: expected 200, got %d", w.Code)
	}
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	h := rateLimited(NewRateLimiter(1, 20*time.Millisecond))

	if w := hit(t, h, "alice"); w.Code != http.StatusOK {
		t.Fatalf("first request: got %d", w.Code)
	}
	if w := hit(t, h, "alice"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 inside the window, got %d", w.Code)
	}

	time.Sleep(30 * time.Millisecond)

	if w := hit(t, h, "alice"); w.Code != http.StatusOK {
		t.Errorf("expected 200 after the window expired, got %d", w.Code)
	}
}
