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

	"github.com/agigante80/vpnsentinel/internal/config"
	"github.com/agigante80/vpnsentinel/internal/httpserver"
	"github.com/agigante80/vpnsentinel/internal/telemetry"
	"github.com/agigante80/vpnsentinel/pkg/clienthealth"
	"github.com/agigante80/vpnsentinel/pkg/supervisor"
)

// RunClient starts the client agent: the supervisor's measure-and-submit
// loop plus the in-process client health endpoint (§4.C4, realized as a
// goroutine rather than a child process — SPEC_FULL.md §4.C4).
func RunClient(ctx context.Context, cfg *config.ClientConfig) error {
	logger := telemetry.NewLogger("json", "info")
	slog.SetDefault(logger)

	logger.Info("starting vpn-sentinel-client", "server_url", cfg.ServerURL, "interval_seconds", cfg.IntervalSeconds)

	sup, err := supervisor.New(cfg, telemetry.WithComponent(logger, "supervisor"))
	if err != nil {
		return fmt.Errorf("initializing supervisor: %w", err)
	}

	var healthServer *http.Server
	if cfg.HealthMonitor {
		endpoint := clienthealth.NewEndpoint(nil)
		router := chi.NewRouter()
		router.Use(httpserver.RequestID)
		router.Use(middleware.Recoverer)
		router.Mount("/", endpoint.Routes())

		healthServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HealthPort),
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("client health endpoint started", "addr", healthServer.Addr)
			if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("client health endpoint failed", "error", err)
			}
		}()
	} else {
		logger.Info("client health endpoint disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- sup.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down vpn-sentinel-client")
		if healthServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutting down client health endpoint", "error", err)
			}
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}
