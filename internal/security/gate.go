// Package security implements the request gate applied to every
// authenticated VPN Sentinel ingestion endpoint: client-IP extraction,
// an IP whitelist, a sliding-window rate limiter, and API-key
// authentication, in that order. Health endpoints and the dashboard are
// not subject to this gate.
package security

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/agigante80/vpnsentinel/internal/telemetry"
)

// Gate is the per-request security pipeline shared across all ingestion
// endpoints.
type Gate struct {
	logger  *slog.Logger
	metrics *telemetry.Metrics

	allowedIPs map[string]bool // empty map == allow all

	limiter *slidingWindowLimiter

	apiKey string

	warnOnce sync.Once
}

// Config configures a Gate.
type Config struct {
	AllowedIPs          []string
	RateLimitBurst      int
	RateLimitWindowSecs int
	APIKey              string
}

// New creates a Gate. Defaults match the spec: burst 30, window 60s.
func New(cfg Config, logger *slog.Logger, metrics *telemetry.Metrics) *Gate {
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 30
	}
	windowSecs := cfg.RateLimitWindowSecs
	if windowSecs <= 0 {
		windowSecs = 60
	}

	allowed := make(map[string]bool, len(cfg.AllowedIPs))
	for _, ip := range cfg.AllowedIPs {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			allowed[ip] = true
		}
	}

	return &Gate{
		logger:     logger,
		metrics:    metrics,
		allowedIPs: allowed,
		limiter:    newSlidingWindowLimiter(time.Duration(windowSecs)*time.Second, burst),
		apiKey:     cfg.APIKey,
	}
}

// Middleware returns the chi-compatible middleware implementing the four
// ordered checks: extract IP, whitelist, rate limit, API key.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		endpoint := r.URL.Path

		if len(g.allowedIPs) > 0 && !g.allowedIPs[ip] {
			g.reject(w, r, endpoint, ip, http.StatusForbidden, "whitelist", "ip not allowed")
			return
		}

		if !g.limiter.Allow(ip, time.Now()) {
			g.reject(w, r, endpoint, ip, http.StatusTooManyRequests, "rate_limit", "rate limit exceeded")
			return
		}

		authPresent := r.Header.Get("X-API-Key") != ""

		if g.apiKey == "" {
			g.warnOnce.Do(func() {
				g.logger.Warn("security gate: no API key configured, all requests permitted",
					"component", "security",
				)
			})
		} else {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				g.reject(w, r, endpoint, ip, http.StatusUnauthorized, "api_key", "missing API key")
				return
			}
			if key != g.apiKey {
				g.reject(w, r, endpoint, ip, http.StatusForbidden, "api_key", "API key mismatch")
				return
			}
		}

		g.logger.Info("security gate: accepted",
			"component", "security",
			"endpoint", endpoint,
			"ip", ip,
			"auth_present", authPresent,
		)
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, endpoint, ip string, status int, stage, reason string) {
	if g.metrics != nil && g.metrics.SecurityGateRejections != nil {
		g.metrics.SecurityGateRejections.WithLabelValues(stage).Inc()
	}
	g.logger.Warn("security gate: rejected",
		"component", "security",
		"endpoint", endpoint,
		"ip", ip,
		"auth_present", r.Header.Get("X-API-Key") != "",
		"stage", stage,
		"reason", reason,
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + reason + `"}`))
}

// ClientIP extracts the client IP per the spec's ordered resolution:
// X-Forwarded-For[0] -> X-Real-IP -> transport peer address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
