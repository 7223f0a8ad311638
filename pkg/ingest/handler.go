// Package ingest implements the server's authenticated keepalive ingestion
// endpoint and the companion status endpoint: parse, validate, apply to the
// state store, and emit change events to the notification bus.
package ingest

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agigante80/vpnsentinel/internal/httpserver"
	"github.com/agigante80/vpnsentinel/internal/telemetry"
	"github.com/agigante80/vpnsentinel/internal/validate"
	"github.com/agigante80/vpnsentinel/pkg/clientstate"
	"github.com/agigante80/vpnsentinel/pkg/geo"
	"github.com/agigante80/vpnsentinel/pkg/identity"
	"github.com/agigante80/vpnsentinel/pkg/keepalive"
	"github.com/agigante80/vpnsentinel/pkg/notify"
)

// GeoResolver resolves the server's own public IP for the lazy server-IP
// cache (§4.C1's chain, reused server-side).
type GeoResolver interface {
	Resolve() geo.Record
}

// Handler implements the ingestion handler (§4.S4): POST .../keepalive and
// GET .../status.
type Handler struct {
	store   *clientstate.Store
	bus     notify.Bus
	geo     GeoResolver
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewHandler constructs a Handler. bus may be notify.NoopBus{} when no chat
// transport is configured; geoResolver may be nil, in which case the
// server-IP cache is never populated.
func NewHandler(store *clientstate.Store, bus notify.Bus, geoResolver GeoResolver, logger *slog.Logger, metrics *telemetry.Metrics) *Handler {
	if bus == nil {
		bus = notify.NoopBus{}
	}
	return &Handler{store: store, bus: bus, geo: geoResolver, logger: logger, metrics: metrics}
}

// Routes mounts the ingestion endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/keepalive", h.handleKeepalive)
	r.Get("/status", h.handleStatus)
	return r
}

type keepaliveResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	ServerTime string `json:"server_time"`
}

func (h *Handler) handleKeepalive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.rejectBadRequest(w, "reading request body")
		return
	}

	rec, err := keepalive.Parse(body)
	if err != nil {
		h.rejectBadRequest(w, err.Error())
		return
	}

	clientID := validate.ClientID(rec.ClientID)
	if clientID == identity.Unknown {
		h.rejectBadRequest(w, "client_id is invalid or unknown")
		return
	}

	newIP := validate.PublicIP(rec.PublicIP)
	country := validate.LocationField(rec.Country)
	city := validate.LocationField(rec.City)
	region := validate.LocationField(rec.Region)
	org := validate.LocationField(rec.Org)
	timezone := validate.TimezoneField(rec.Timezone)
	dnsLoc := validate.LocationField(rec.DNSLoc)
	dnsColo := validate.LocationField(rec.DNSColo)

	if h.geo != nil && h.store.ServerIP() == "" {
		if serverRec := h.geo.Resolve(); !serverRec.Empty() {
			h.store.SetServerIPIfUnset(serverRec.IP)
		}
	}

	now := time.Now().UTC()
	entry := clientstate.Entry{
		LastSeen:      clientstate.NowUTCISO(now),
		IP:            newIP,
		Provider:      org,
		Country:       country,
		City:          city,
		Region:        region,
		Timezone:      timezone,
		DNSLoc:        dnsLoc,
		DNSColo:       dnsColo,
		ClientVersion: rec.ClientVersion,
	}

	result := h.store.Apply(clientID, entry)

	h.logger.Info("api: keepalive accepted", "component", "api", "client_id", clientID)
	h.logger.Info("vpn-info",
		"component", "vpn-info",
		"client_id", clientID,
		"ip", newIP,
		"country", country,
		"provider", org,
	)

	cachedServerIP := h.store.ServerIP()
	if newIP == cachedServerIP || newIP == "unknown" {
		h.logger.Warn("VPN BYPASS WARNING",
			"component", "security",
			"client_id", clientID,
			"ip", newIP,
		)
	}

	switch {
	case result.IsNewClient:
		h.store.ResetNoClientsAlert()
		h.bus.Emit(notify.ClientConnected{
			ClientID: clientID,
			IP:       newIP,
			Country:  country,
			City:     city,
			Region:   region,
			Org:      org,
			DNSLoc:   dnsLoc,
			DNSColo:  dnsColo,
		})
	case result.IPChanged:
		h.bus.Emit(notify.IPChanged{
			ClientID: clientID,
			OldIP:    result.OldIP,
			NewIP:    newIP,
			Country:  country,
			City:     city,
		})
	}

	if h.metrics != nil && h.metrics.KeepalivesReceivedTotal != nil {
		h.metrics.KeepalivesReceivedTotal.WithLabelValues(clientID).Inc()
	}

	httpserver.Respond(w, http.StatusOK, keepaliveResponse{
		Status:     "ok",
		Message:    "keepalive accepted",
		ServerTime: clientstate.NowUTCISO(now),
	})
}

func (h *Handler) rejectBadRequest(w http.ResponseWriter, reason string) {
	if h.metrics != nil && h.metrics.KeepalivesRejectedTotal != nil {
		h.metrics.KeepalivesRejectedTotal.WithLabelValues("bad_request").Inc()
	}
	h.logger.Warn("api: keepalive rejected", "component", "api", "reason", reason)
	httpserver.RespondError(w, http.StatusBadRequest, reason)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	snapshot := h.store.Snapshot()
	httpserver.Respond(w, http.StatusOK, snapshot)
}
