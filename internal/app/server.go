// Package app wires every VPN Sentinel component into a running process,
// mirroring the corpus's internal/app.Run(ctx, cfg) entry-point shape, with
// one concrete Run function per process role (server, client).
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agigante80/vpnsentinel/internal/config"
	"github.com/agigante80/vpnsentinel/internal/dashboard"
	"github.com/agigante80/vpnsentinel/internal/httpserver"
	"github.com/agigante80/vpnsentinel/internal/security"
	"github.com/agigante80/vpnsentinel/internal/telemetry"
	"github.com/agigante80/vpnsentinel/pkg/clientstate"
	"github.com/agigante80/vpnsentinel/pkg/eviction"
	"github.com/agigante80/vpnsentinel/pkg/ingest"
	"github.com/agigante80/vpnsentinel/pkg/notify"
)

// RunServer starts the server aggregation core: the ingestion/status API,
// the eviction loop, the notification bus, the server's own health
// endpoints, and the operator dashboard.
func RunServer(ctx context.Context, cfg *config.ServerConfig) error {
	logger := telemetry.NewLogger(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting vpn-sentinel-server",
		"api_port", cfg.APIPort, "health_port", cfg.HealthPort, "dashboard_port", cfg.DashboardPort,
	)

	store := clientstate.New()

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg, func() float64 { return float64(store.Len()) })

	var bus notify.Bus = notify.NoopBus{}
	var sender *notify.Sender
	if cfg.TelegramTransportEnabled() {
		var err error
		sender, err = notify.NewSender(cfg.TelegramToken, cfg.TelegramChatID, true, telemetry.WithComponent(logger, "notify"), metrics)
		if err != nil {
			return fmt.Errorf("initializing telegram notification transport: %w", err)
		}
		bus = sender
		logger.Info("telegram notification transport enabled")
	} else {
		logger.Info("telegram notification transport disabled")
	}

	resolver := geoResolver{service: cfg.GeolocationService, timeout: 10 * time.Second}

	ingestHandler := ingest.NewHandler(store, bus, resolver, telemetry.WithComponent(logger, "api"), metrics)

	gate := security.New(security.Config{
		AllowedIPs:          cfg.AllowedIPs,
		RateLimitBurst:      cfg.RateLimitRequests,
		RateLimitWindowSecs: cfg.RateLimitWindowSecs,
		APIKey:              cfg.APIKey,
	}, telemetry.WithComponent(logger, "security"), metrics)

	apiRouter := chi.NewRouter()
	apiRouter.Use(httpserver.RequestID)
	apiRouter.Use(httpserver.Logger(logger))
	apiRouter.Use(httpserver.Metrics(metrics))
	apiRouter.Use(middleware.Recoverer)
	apiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type", "X-API-Key", "X-Request-ID"},
	}))
	apiRouter.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	apiRouter.Route(cfg.NormalizedAPIPath(), func(r chi.Router) {
		r.Use(gate.Middleware)
		r.Mount("/", ingestHandler.Routes())
	})

	healthRouter := chi.NewRouter()
	healthRouter.Use(httpserver.RequestID)
	healthRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpserver.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	healthRouter.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		httpserver.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	healthRouter.Get("/health/startup", func(w http.ResponseWriter, r *http.Request) {
		httpserver.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	dashboardHandler := dashboard.NewHandler(store, cfg.LogFilePath, metrics)
	dashboardRouter := chi.NewRouter()
	dashboardRouter.Use(httpserver.RequestID)
	dashboardRouter.Use(httpserver.Logger(logger))
	dashboardRouter.Mount("/", dashboardHandler.Routes())

	evictionLoop := eviction.New(store, bus, time.Duration(cfg.ClientTimeoutMinutes)*time.Minute, telemetry.WithComponent(logger, "cleanup"), metrics)
	go func() {
		if err := evictionLoop.Run(ctx); err != nil {
			logger.Error("eviction loop exited", "error", err)
		}
	}()

	if sender != nil && sender.Enabled() {
		router := notify.NewCommandRouter(store, cfg.RateLimitRequests, cfg.RateLimitWindowSecs, cfg.ClientTimeoutMinutes, time.Now())
		go sender.Poll(ctx, router)
		sender.Emit(notify.ServerStarted{
			Timestamp:            time.Now(),
			RateLimitBurst:       cfg.RateLimitRequests,
			RateLimitWindowSecs:  cfg.RateLimitWindowSecs,
			ClientTimeoutMinutes: cfg.ClientTimeoutMinutes,
		})
	}

	servers := []*http.Server{
		{Addr: fmt.Sprintf(":%d", cfg.APIPort), Handler: apiRouter, ReadTimeout: 10 * time.Second, WriteTimeout: 30 * time.Second},
		{Addr: fmt.Sprintf(":%d", cfg.HealthPort), Handler: healthRouter, ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second},
		{Addr: fmt.Sprintf(":%d", cfg.DashboardPort), Handler: dashboardRouter, ReadTimeout: 10 * time.Second, WriteTimeout: 30 * time.Second},
	}

	errCh := make(chan error, len(servers))
	for _, s := range servers {
		s := s
		go func() {
			logger.Info("listener started", "addr", s.Addr)
			var err error
			if cfg.TLSConfigured() {
				err = s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
			} else {
				err = s.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listener %s: %w", s.Addr, err)
				return
			}
			errCh <- nil
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down vpn-sentinel-server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutting down listener", "addr", s.Addr, "error", err)
			}
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	}
}
