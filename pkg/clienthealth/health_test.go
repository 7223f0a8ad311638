package clienthealth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func newTestEndpoint(reachable bool) (*Endpoint, chi.Router) {
	e := NewEndpoint(func(ctx context.Context) bool { return reachable })
	r := chi.NewRouter()
	r.Mount("/", e.Routes())
	return e, r
}

func TestHandleHealth_HealthyWhenReachable(t *testing.T) {
	_, router := newTestEndpoint(true)

	req := httptest.NewRequest(http.MethodGet, "/client/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHandleHealth_UnhealthyWhenUnreachable(t *testing.T) {
	_, router := newTestEndpoint(false)

	req := httptest.NewRequest(http.MethodGet, "/client/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestHandleStartup_AlwaysOK(t *testing.T) {
	_, router := newTestEndpoint(false)

	req := httptest.NewRequest(http.MethodGet, "/client/health/startup", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestCompute_CachesWithinTTL(t *testing.T) {
	calls := 0
	e := NewEndpoint(func(ctx context.Context) bool {
		calls++
		return true
	})

	e.compute(context.Background())
	e.compute(context.Background())

	if calls != 1 {
		t.Fatalf("prober called %d times within TTL, want 1", calls)
	}

	e.cachedAt = time.Now().Add(-2 * cacheTTL)
	e.compute(context.Background())

	if calls != 2 {
		t.Fatalf("prober called %d times after TTL expiry, want 2", calls)
	}
}
