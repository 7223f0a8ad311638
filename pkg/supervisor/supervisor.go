// Package supervisor implements the client agent's main loop (§4.C5):
// geolocation, DNS egress probing, payload assembly, and authenticated
// submission, repeated on a tick-based interval so cancellation is prompt.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/agigante80/vpnsentinel/internal/config"
	"github.com/agigante80/vpnsentinel/pkg/dnsprobe"
	"github.com/agigante80/vpnsentinel/pkg/geo"
	"github.com/agigante80/vpnsentinel/pkg/identity"
	"github.com/agigante80/vpnsentinel/pkg/keepalive"
)

// tickResolution bounds how long a cancellation can take to take effect
// mid-interval: the supervisor sleeps in short sub-second ticks rather
// than one long time.Sleep, per the spec's cancellation requirement.
const tickResolution = 500 * time.Millisecond

// Supervisor runs the client agent's self-measurement-and-submit cycle.
type Supervisor struct {
	cfg    *config.ClientConfig
	logger *slog.Logger

	clientID string
}

// New creates a Supervisor. If cfg.ClientID is empty, one is generated and
// retained for the lifetime of the process (the spec gives no persistence
// requirement for a generated id beyond process lifetime).
func New(cfg *config.ClientConfig, logger *slog.Logger) (*Supervisor, error) {
	id := cfg.ClientID
	if id == "" {
		generated, err := identity.Generate(time.Now())
		if err != nil {
			return nil, err
		}
		id = generated
		logger.Info("supervisor: generated client id", "client_id", id)
	}

	return &Supervisor{cfg: cfg, logger: logger, clientID: id}, nil
}

// Run blocks, performing one measure-and-submit cycle immediately and then
// every IntervalSeconds, until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	s.logger.Info("supervisor: started",
		"component", "supervisor",
		"client_id", s.clientID,
		"interval_seconds", s.cfg.IntervalSeconds,
	)

	s.cycle(ctx)

	interval := time.Duration(s.cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 300 * time.Second
	}

	deadline := time.Now().Add(interval)
	ticker := time.NewTicker(tickResolution)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("supervisor: stopped", "component", "supervisor")
			return nil
		case now := <-ticker.C:
			if now.Before(deadline) {
				continue
			}
			s.cycle(ctx)
			deadline = time.Now().Add(interval)
		}
	}
}

// cycle performs one self-measurement-and-submit iteration. Errors are
// logged, never fatal — the spec requires the loop to continue across
// transient failures.
func (s *Supervisor) cycle(ctx context.Context) {
	timeout := time.Duration(s.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	geoRec := geo.Resolve(ctx, s.cfg.GeolocationService, timeout)
	if geoRec.Empty() {
		s.logger.Warn("supervisor: geolocation resolution failed", "component", "supervisor", "client_id", s.clientID)
		return
	}

	dnsRes := dnsprobe.Probe(ctx)

	payload := keepalive.Build(s.clientID, geoRec, dnsRes, s.cfg.ClientVersion, time.Now())

	transportCfg := keepalive.TransportConfig{
		URL:              s.cfg.KeepaliveURL(),
		APIKey:           s.cfg.APIKey,
		Timeout:          timeout,
		AllowInsecureTLS: s.cfg.AllowInsecureTLS,
		CABundlePath:     s.cfg.TLSCABundlePath,
		TestCapturePath:  s.cfg.TestCapturePath,
	}

	if err := keepalive.Submit(transportCfg, payload); err != nil {
		s.logger.Warn("supervisor: keepalive submission failed",
			"component", "supervisor", "client_id", s.clientID, "error", err)
		return
	}

	s.logger.Info("supervisor: keepalive submitted",
		"component", "supervisor", "client_id", s.clientID, "ip", geoRec.IP)
}
