package security

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func passThrough() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, ip, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/keepalive", nil)
	req.RemoteAddr = ip + ":12345"
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGate_RateLimitRejectsOverBurst(t *testing.T) {
	gate := New(Config{RateLimitBurst: 30, RateLimitWindowSecs: 60}, testLogger(), nil)
	handler := gate.Middleware(passThrough())

	var last *httptest.ResponseRecorder
	for i := 0; i < 31; i++ {
		last = doRequest(handler, "10.0.0.1", "")
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("31st request status = %d, want %d", last.Code, http.StatusTooManyRequests)
	}
}

func TestGate_RateLimitAllowsWithinBurst(t *testing.T) {
	gate := New(Config{RateLimitBurst: 30, RateLimitWindowSecs: 60}, testLogger(), nil)
	handler := gate.Middleware(passThrough())

	for i := 0; i < 30; i++ {
		w := doRequest(handler, "10.0.0.2", "")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}
}

func TestGate_MissingAPIKeyRejected(t *testing.T) {
	gate := New(Config{APIKey: "secret"}, testLogger(), nil)
	handler := gate.Middleware(passThrough())

	w := doRequest(handler, "10.0.0.3", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestGate_WrongAPIKeyRejected(t *testing.T) {
	gate := New(Config{APIKey: "secret"}, testLogger(), nil)
	handler := gate.Middleware(passThrough())

	w := doRequest(handler, "10.0.0.4", "wrong")
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestGate_CorrectAPIKeyAccepted(t *testing.T) {
	gate := New(Config{APIKey: "secret"}, testLogger(), nil)
	handler := gate.Middleware(passThrough())

	w := doRequest(handler, "10.0.0.5", "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestGate_IPNotInWhitelistRejected(t *testing.T) {
	gate := New(Config{AllowedIPs: []string{"10.0.0.9"}}, testLogger(), nil)
	handler := gate.Middleware(passThrough())

	w := doRequest(handler, "10.0.0.6", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestGate_IPInWhitelistAccepted(t *testing.T) {
	gate := New(Config{AllowedIPs: []string{"10.0.0.9"}}, testLogger(), nil)
	handler := gate.Middleware(passThrough())

	w := doRequest(handler, "10.0.0.9", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
