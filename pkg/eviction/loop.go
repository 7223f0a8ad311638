// Package eviction implements the server's background sweep that removes
// clients that have gone stale (§4.S5).
package eviction

import (
	"context"
	"log/slog"
	"time"

	"github.com/agigante80/vpnsentinel/internal/telemetry"
	"github.com/agigante80/vpnsentinel/pkg/clientstate"
	"github.com/agigante80/vpnsentinel/pkg/notify"
)

const sweepInterval = 60 * time.Second

// Loop periodically evicts clients whose last_seen exceeds the configured
// timeout.
type Loop struct {
	store   *clientstate.Store
	bus     notify.Bus
	timeout time.Duration
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// New creates an eviction Loop. bus may be notify.NoopBus{}.
func New(store *clientstate.Store, bus notify.Bus, timeout time.Duration, logger *slog.Logger, metrics *telemetry.Metrics) *Loop {
	if bus == nil {
		bus = notify.NoopBus{}
	}
	return &Loop{store: store, bus: bus, timeout: timeout, logger: logger, metrics: metrics}
}

// Run blocks, sweeping every 60 seconds, until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("eviction loop started", "component", "cleanup", "interval", sweepInterval, "timeout", l.timeout)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("eviction loop stopped", "component", "cleanup")
			return nil
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Loop) sweep() {
	now := time.Now().UTC()
	snapshot := l.store.Snapshot()

	for id, entry := range snapshot {
		lastSeen, err := parseLastSeen(entry.LastSeen)
		if err != nil {
			l.logger.Warn("cleanup: skipping entry with unparseable last_seen",
				"component", "cleanup", "client_id", id, "last_seen", entry.LastSeen, "error", err)
			continue
		}

		if now.Sub(lastSeen) <= l.timeout {
			continue
		}

		l.store.Evict(id)
		l.logger.Info("cleanup: evicted stale client",
			"component", "cleanup", "client_id", id, "last_seen", entry.LastSeen)
		if l.metrics != nil && l.metrics.ClientsEvictedTotal != nil {
			l.metrics.ClientsEvictedTotal.Inc()
		}
	}

	if l.store.Len() == 0 {
		if l.store.MarkNoClientsAlertIfNeeded() {
			l.bus.Emit(notify.NoClients{})
		}
	}
}

// parseLastSeen tolerantly parses an ISO-8601 timestamp: RFC3339 first,
// then RFC3339 without a timezone offset, treating the latter as UTC.
func parseLastSeen(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, time.UTC); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, raw)
}
