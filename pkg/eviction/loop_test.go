package eviction

import (
	"io"
	"log/slog"
	"testing"
	"time"

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

func TestSweep_EvictsStaleEntry(t *testing.T) {
	store := clientstate.New()
	stale := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	store.Apply("stale-client", clientstate.Entry{LastSeen: stale, IP: "1.2.3.4"})

	l := New(store, notify.NoopBus{}, 30*time.Minute, testLogger(), nil)
	l.sweep()

	if store.Len() != 0 {
		t.Fatalf("store.Len() = %d, want 0", store.Len())
	}
}

func TestSweep_KeepsFreshEntry(t *testing.T) {
	store := clientstate.New()
	fresh := time.Now().UTC().Format(time.RFC3339)
	store.Apply("fresh-client", clientstate.Entry{LastSeen: fresh, IP: "1.2.3.4"})

	l := New(store, notify.NoopBus{}, 30*time.Minute, testLogger(), nil)
	l.sweep()

	if store.Len() != 1 {
		t.Fatalf("store.Len() = %d, want 1", store.Len())
	}
}

func TestSweep_SkipsUnparseableLastSeen(t *testing.T) {
	store := clientstate.New()
	store.Apply("bad-client", clientstate.Entry{LastSeen: "not-a-timestamp", IP: "1.2.3.4"})

	l := New(store, notify.NoopBus{}, 30*time.Minute, testLogger(), nil)
	l.sweep()

	if store.Len() != 1 {
		t.Fatalf("store.Len() = %d, want 1 (skipped, not evicted)", store.Len())
	}
}

func TestSweep_EmitsNoClientsOnceOnTransitionToZero(t *testing.T) {
	store := clientstate.New()
	stale := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	store.Apply("stale-client", clientstate.Entry{LastSeen: stale, IP: "1.2.3.4"})

	bus := &recordingBus{}
	l := New(store, bus, 30*time.Minute, testLogger(), nil)

	l.sweep()
	l.sweep() // second sweep with zero clients must not re-fire

	count := 0
	for _, e := range bus.events {
		if _, ok := e.(notify.NoClients); ok {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("NoClients fired %d times, want 1", count)
	}
}
