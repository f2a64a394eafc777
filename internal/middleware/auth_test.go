package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// captureHandler records the user id the middleware put in the context.
func captureHandler(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestUserIdentity_HeaderPropagates(t *testing.T) {
	var got string
	h := UserIdentity()(captureHandler(&got))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vector/add", nil)
	req.Header.Set("X-User-ID", "alice")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got != "alice" {
		t.Errorf("user id = %q, want alice", got)
	}
}

func TestUserIdentity_AnonymousDefault(t *testing.T) {
	var got string
	h := UserIdentity()(captureHandler(&got))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vector/add", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got != "anonymous" {
		t.Errorf("user id = %q, want anonymous", got)
	}
}

func TestUserIDFromContext_Missing(t *testing.T) {
	if got := UserIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty user id, got %q", got)
	}
}
