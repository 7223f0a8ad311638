// Package notify implements the command-driven chat bot notification
// subsystem: outbound event messages, a long-poll inbound update loop, and
// a command router, all speaking the Telegram Bot API.
package notify

import "time"

// Event is the set of state transitions the ingestion handler and
// eviction loop emit to the notification bus.
type Event interface {
	isEvent()
}

// ServerStarted fires once, at server startup.
type ServerStarted struct {
	Timestamp            time.Time
	RateLimitBurst       int
	RateLimitWindowSecs  int
	ClientTimeoutMinutes int
}

// ClientConnected fires when a client_id is seen for the first time since
// process start or its most recent eviction.
type ClientConnected struct {
	ClientID string
	IP       string
	Country  string
	City     string
	Region   string
	Org      string
	DNSLoc   string
	DNSColo  string
}

// IPChanged fires when an already-known client's public IP changes.
type IPChanged struct {
	ClientID string
	OldIP    string
	NewIP    string
	Country  string
	City     string
}

// NoClients fires when the active-client count transitions to zero,
// rate-limited to at most once per transition (see SPEC_FULL.md §9).
type NoClients struct{}

func (ServerStarted) isEvent()   {}
func (ClientConnected) isEvent() {}
func (IPChanged) isEvent()       {}
func (NoClients) isEvent()       {}

// Bus accepts domain events for delivery over whatever chat transport is
// wired in. The ingestion handler and eviction loop depend only on this
// interface, never on the Telegram client directly.
type Bus interface {
	Emit(event Event)
}

// NoopBus discards every event. Used when no chat transport is
// configured, so callers never need a nil check.
type NoopBus struct{}

func (NoopBus) Emit(Event) {}
