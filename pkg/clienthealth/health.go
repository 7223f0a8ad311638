// Package clienthealth implements the client agent's local self-diagnostic
// HTTP endpoint (§4.C4), realized as a goroutine inside the supervisor
// process rather than a child process — see SPEC_FULL.md §4.C4.
package clienthealth

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agigante80/vpnsentinel/internal/httpserver"
)

const cacheTTL = 5 * time.Second

// Status is the client health status object returned by /client/health;
// /client/health/ready returns only its status and timestamp fields.
type Status struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	System    SystemStats       `json:"system"`
	Issues    []string          `json:"issues"`
}

// SystemStats reports coarse resource usage. VPN Sentinel ships no
// platform-specific resource sampler in this retrieval pack, so both
// fields are fixed placeholders — see DESIGN.md.
type SystemStats struct {
	MemoryPercent float64 `json:"memory_percent"`
	DiskPercent   float64 `json:"disk_percent"`
}

// Prober reports whether the network egress path used for keepalive
// submission is reachable.
type Prober func(ctx context.Context) bool

// Endpoint serves the client's self-diagnostic HTTP surface with a
// 5-second check-result cache.
type Endpoint struct {
	prober Prober

	mu       sync.Mutex
	cached   Status
	cachedAt time.Time
}

// NewEndpoint creates an Endpoint. prober defaults to a TCP dial against
// Cloudflare's trace host when nil.
func NewEndpoint(prober Prober) *Endpoint {
	if prober == nil {
		prober = defaultProber
	}
	return &Endpoint{prober: prober}
}

func defaultProber(ctx context.Context) bool {
	d := net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", "1.1.1.1:443")
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Routes mounts the three client health endpoints.
func (e *Endpoint) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/client/health", e.handleHealth)
	r.Get("/client/health/ready", e.handleReady)
	r.Get("/client/health/startup", e.handleStartup)
	return r
}

func (e *Endpoint) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := e.compute(r.Context())
	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	httpserver.Respond(w, code, status)
}

func (e *Endpoint) handleReady(w http.ResponseWriter, r *http.Request) {
	status := e.compute(r.Context())
	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	httpserver.Respond(w, code, map[string]string{
		"status":    status.Status,
		"timestamp": status.Timestamp,
	})
}

func (e *Endpoint) handleStartup(w http.ResponseWriter, r *http.Request) {
	httpserver.Respond(w, http.StatusOK, map[string]string{
		"status":    "started",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// compute returns the cached status object if less than 5 seconds old,
// else recomputes and re-caches it.
func (e *Endpoint) compute(ctx context.Context) Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	if time.Since(e.cachedAt) < cacheTTL {
		return e.cached
	}

	now := time.Now().UTC()
	issues := []string{}

	// checks.client_process reports "is the supervisor goroutine running":
	// always healthy while this handler can answer, since there is no
	// sibling process to scan for (SPEC_FULL.md §4.C4).
	checks := map[string]string{
		"client_process": "healthy",
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if e.prober(probeCtx) {
		checks["network_connectivity"] = "healthy"
	} else {
		checks["network_connectivity"] = "unhealthy"
		issues = append(issues, "network connectivity probe failed")
	}

	overall := "healthy"
	for _, v := range checks {
		if v != "healthy" {
			overall = "unhealthy"
			break
		}
	}

	e.cached = Status{
		Status:    overall,
		Timestamp: now.Format(time.RFC3339),
		Checks:    checks,
		System:    SystemStats{MemoryPercent: 0, DiskPercent: 0},
		Issues:    issues,
	}
	e.cachedAt = now
	return e.cached
}
