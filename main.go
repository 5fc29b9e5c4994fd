package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/medica/medica-web/config"
	"github.com/medica/medica-web/gateway"
	"github.com/medica/medica-web/handlers"
	"github.com/medica/medica-web/health"
	"github.com/medica/medica-web/logging"
	"github.com/medica/medica-web/metrics"
	"github.com/medica/medica-web/ml"
	"github.com/medica/medica-web/probe"
	"github.com/medica/medica-web/scheduler"
	"github.com/medica/medica-web/server"
	"github.com/medica/medica-web/session"
	"github.com/medica/medica-web/status"
)

// sweepInterval is how often expired sessions are collected.
const sweepInterval = 10 * time.Minute

func main() {
	// A missing .env is fine; the environment may carry everything
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs", cfg.LogRetentionWeeks, cfg.LogLevel)
	logging.Info("Configuration loaded",
		"env", cfg.Env,
		"backend", cfg.BackendBaseURL,
		"prediction", cfg.MLBaseURL)

	// Sessions
	sessions := session.NewManager(cfg.SessionTTL, cfg.Env == "prod")
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepDone:
				return
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					logging.Debug("Swept expired sessions", "count", n)
				}
				metrics.ActiveSessions.Set(float64(sessions.Count()))
			}
		}
	}()

	// Upstream clients
	backend := gateway.New(cfg.BackendBaseURL, cfg.UpstreamTimeout)
	predict := ml.New(cfg.MLBaseURL, cfg.UpstreamTimeout)

	// Upstream monitoring
	statusStore := status.NewContainer()
	statusStore.SetServerStartTime(time.Now())
	prober := probe.NewHTTPProber(cfg.BackendBaseURL, cfg.MLBaseURL, cfg.UpstreamTimeout)
	sched := scheduler.NewScheduler(statusStore, prober)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start upstream monitoring", "error", err)
		os.Exit(1)
	}

	checker := health.NewHealthChecker(statusStore)
	h := handlers.New(sessions, backend, predict, checker)
	srv := server.NewServer(cfg, h, sessions)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit

	sched.Stop()
	close(sweepDone)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
		os.Exit(1)
	}
}
