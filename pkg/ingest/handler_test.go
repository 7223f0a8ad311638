package ingest

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/agigante80/vpnsentinel/pkg/clientstate"
	"github.com/agigante80/vpnsentinel/pkg/notify"
)

type recordingBus struct {
	events []notify.Event
}

func (b *recordingBus) Emit(e notify.Event) { b.events = append(b.events, e) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler() (*Handler, *clientstate.Store, *recordingBus) {
	store := clientstate.New()
	bus := &recordingBus{}
	h := NewHandler(store, bus, nil, testLogger(), nil)
	return h, store, bus
}

func doKeepalive(h *Handler, body string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Mount("/", h.Routes())

	req := httptest.NewRequest(http.MethodPost, "/keepalive", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleKeepalive_NewClientEmitsClientConnected(t *testing.T) {
	h, store, bus := newTestHandler()

	body := `{"client_id":"client-1","public_ip":"1.2.3.4","location":{"country":"France","city":"Paris"},"dns_test":{"location":"France"}}`
	w := doKeepalive(h, body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", w.Code, w.Body.String())
	}
	if store.Len() != 1 {
		t.Fatalf("store.Len() = %d, want 1", store.Len())
	}
	if len(bus.events) != 1 {
		t.Fatalf("events = %d, want 1", len(bus.events))
	}
	if _, ok := bus.events[0].(notify.ClientConnected); !ok {
		t.Fatalf("event type = %T, want ClientConnected", bus.events[0])
	}
}

func TestHandleKeepalive_IPChangeEmitsIPChanged(t *testing.T) {
	h, _, bus := newTestHandler()

	doKeepalive(h, `{"client_id":"client-1","public_ip":"1.2.3.4"}`)
	bus.events = nil

	w := doKeepalive(h, `{"client_id":"client-1","public_ip":"5.6.7.8"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(bus.events) != 1 {
		t.Fatalf("events = %d, want 1", len(bus.events))
	}
	changed, ok := bus.events[0].(notify.IPChanged)
	if !ok {
		t.Fatalf("event type = %T, want IPChanged", bus.events[0])
	}
	if changed.OldIP != "1.2.3.4" || changed.NewIP != "5.6.7.8" {
		t.Fatalf("unexpected IPChanged: %+v", changed)
	}
}

func TestHandleKeepalive_MissingClientIDRejected(t *testing.T) {
	h, _, _ := newTestHandler()

	w := doKeepalive(h, `{"public_ip":"1.2.3.4"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleKeepalive_MalformedJSONRejected(t *testing.T) {
	h, _, _ := newTestHandler()

	w := doKeepalive(h, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleKeepalive_UnknownIPFlaggedAsBypassButAccepted(t *testing.T) {
	h, store, _ := newTestHandler()

	w := doKeepalive(h, `{"client_id":"client-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	entry, ok := store.Get("client-1")
	if !ok {
		t.Fatal("entry not stored")
	}
	if entry.IP != "unknown" {
		t.Fatalf("ip = %q, want unknown", entry.IP)
	}
}

func TestHandleStatus_ReturnsStateMap(t *testing.T) {
	h, _, _ := newTestHandler()
	doKeepalive(h, `{"client_id":"client-1","public_ip":"1.2.3.4"}`)

	router := chi.NewRouter()
	router.Mount("/", h.Routes())

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var out map[string]clientstate.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if _, ok := out["client-1"]; !ok {
		t.Fatalf("status map missing client-1: %v", out)
	}
}
