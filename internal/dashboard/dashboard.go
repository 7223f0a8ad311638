// Package dashboard implements the read-only operator dashboard and log
// tail endpoint. Both are out of core scope per the spec; they are
// rendered with the standard library's html/template, which the spec
// itself says suffices for this surface.
package dashboard

import (
	"html/template"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agigante80/vpnsentinel/internal/telemetry"
	"github.com/agigante80/vpnsentinel/pkg/classify"
	"github.com/agigante80/vpnsentinel/pkg/clientstate"
)

// Handler serves the dashboard and log endpoints over a point-in-time
// snapshot of the client-state store.
type Handler struct {
	store       *clientstate.Store
	logFilePath string
	tmpl        *template.Template
	metrics     *telemetry.Metrics
}

// NewHandler creates a dashboard Handler. logFilePath may be empty, in
// which case /logs reports that no log file is configured. metrics may be
// nil, in which case classification results are not recorded.
func NewHandler(store *clientstate.Store, logFilePath string, metrics *telemetry.Metrics) *Handler {
	return &Handler{
		store:       store,
		logFilePath: logFilePath,
		tmpl:        template.Must(template.New("dashboard").Parse(dashboardTemplate)),
		metrics:     metrics,
	}
}

// Routes mounts the dashboard and log endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/dashboard/", h.handleDashboard)
	r.Get("/logs", h.handleLogs)
	return r
}

type dashboardRow struct {
	ClientID string
	IP       string
	Country  string
	City     string
	LastSeen string
	Status   classify.Status
}

type dashboardView struct {
	GeneratedAt string
	ServerIP    string
	Rows        []dashboardRow
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snapshot := h.store.Snapshot()
	serverIP := h.store.ServerIP()

	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	view := dashboardView{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		ServerIP:    serverIP,
	}
	for _, id := range ids {
		e := snapshot[id]
		status := classify.Classify(e.IP, e.Country, e.DNSLoc, serverIP)
		if h.metrics != nil && h.metrics.ClientsClassified != nil {
			h.metrics.ClientsClassified.WithLabelValues(string(status)).Inc()
		}
		view.Rows = append(view.Rows, dashboardRow{
			ClientID: id,
			IP:       e.IP,
			Country:  e.Country,
			City:     e.City,
			LastSeen: e.LastSeen,
			Status:   status,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, view); err != nil {
		http.Error(w, "rendering dashboard", http.StatusInternalServerError)
	}
}

func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if h.logFilePath == "" {
		w.Write([]byte(`<pre>no log file configured</pre>`))
		return
	}

	data, err := os.ReadFile(h.logFilePath)
	if err != nil {
		http.Error(w, "reading log file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Only the last logTailLines lines of the file are shown.
	const logTailLines = 200
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > logTailLines {
		lines = lines[len(lines)-logTailLines:]
	}

	// Escape through html/template so log content can never break out of
	// the <pre> block.
	if err := template.Must(template.New("logs").Parse(`<pre>{{.}}</pre>`)).Execute(w, strings.Join(lines, "\n")); err != nil {
		http.Error(w, "rendering logs", http.StatusInternalServerError)
	}
}

const dashboardTemplate = `<!DOCTYPE html>
<html>
<head><title>VPN Sentinel</title></head>
<body>
<h1>VPN Sentinel — Fleet Status</h1>
<p>Generated: {{.GeneratedAt}} — Server IP: {{.ServerIP}}</p>
<table border="1" cellpadding="4">
<tr><th>Client</th><th>IP</th><th>Country</th><th>City</th><th>Last Seen</th><th>Status</th></tr>
{{range .Rows}}<tr><td>{{.ClientID}}</td><td>{{.IP}}</td><td>{{.Country}}</td><td>{{.City}}</td><td>{{.LastSeen}}</td><td>{{.Status}}</td></tr>
{{else}}<tr><td colspan="6">No clients connected</td></tr>
{{end}}</table>
</body>
</html>
`
