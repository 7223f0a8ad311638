package supervisor

import (
	"io"
	"log/slog"
	"testing"

	"github.com/agigante80/vpnsentinel/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_GeneratesClientIDWhenUnset(t *testing.T) {
	cfg := &config.ClientConfig{}
	s, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.clientID == "" {
		t.Fatal("expected a generated client id")
	}
}

func TestNew_KeepsConfiguredClientID(t *testing.T) {
	cfg := &config.ClientConfig{ClientID: "fixed-id"}
	s, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.clientID != "fixed-id" {
		t.Fatalf("clientID = %q, want fixed-id", s.clientID)
	}
}
