package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every VPN Sentinel server-side Prometheus collector,
// registered into a single prometheus.Registry at startup.
type Metrics struct {
	KeepalivesReceivedTotal *prometheus.CounterVec
	KeepalivesRejectedTotal *prometheus.CounterVec
	SecurityGateRejections  *prometheus.CounterVec
	ClientsClassified       *prometheus.CounterVec
	ClientsEvictedTotal     prometheus.Counter
	NotificationsSentTotal  *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec
	ActiveClients           prometheus.GaugeFunc
}

// NewMetrics constructs and registers every VPN Sentinel metric. activeFn
// is polled on /metrics scrape to report the current client-state size.
func NewMetrics(reg *prometheus.Registry, activeFn func() float64) *Metrics {
	m := &Metrics{
		KeepalivesReceivedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vpnsentinel",
			Subsystem: "keepalive",
			Name:      "received_total",
			Help:      "Total number of keepalive requests accepted.",
		}, []string{"client_id"}),
		KeepalivesRejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vpnsentinel",
			Subsystem: "keepalive",
			Name:      "rejected_total",
			Help:      "Total number of keepalive requests rejected, by reason.",
		}, []string{"reason"}),
		SecurityGateRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vpnsentinel",
			Subsystem: "security_gate",
			Name:      "rejections_total",
			Help:      "Total number of requests rejected by the security gate, by stage.",
		}, []string{"stage"}),
		ClientsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vpnsentinel",
			Subsystem: "classifier",
			Name:      "results_total",
			Help:      "Total number of health classifications, by status.",
		}, []string{"status"}),
		ClientsEvictedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vpnsentinel",
			Subsystem: "eviction",
			Name:      "clients_evicted_total",
			Help:      "Total number of clients evicted for staleness.",
		}),
		NotificationsSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vpnsentinel",
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Total number of chat notifications sent, by event type and outcome.",
		}, []string{"event", "outcome"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vpnsentinel",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	collectors := []prometheus.Collector{
		m.KeepalivesReceivedTotal,
		m.KeepalivesRejectedTotal,
		m.SecurityGateRejections,
		m.ClientsClassified,
		m.ClientsEvictedTotal,
		m.NotificationsSentTotal,
		m.HTTPRequestDuration,
	}
	if activeFn != nil {
		m.ActiveClients = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "vpnsentinel",
			Subsystem: "clients",
			Name:      "active",
			Help:      "Current number of clients in the state store.",
		}, activeFn)
		collectors = append(collectors, m.ActiveClients)
	}

	reg.MustRegister(collectors...)
	return m
}

// RecordNotification implements notify.MetricsRecorder.
func (m *Metrics) RecordNotification(event, outcome string) {
	if m == nil || m.NotificationsSentTotal == nil {
		return
	}
	m.NotificationsSentTotal.WithLabelValues(event, outcome).Inc()
}
