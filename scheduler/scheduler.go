// Package scheduler provides automated upstream monitoring for the web
// application. It handles cron-based reachability probes and staleness
// alerts, and coordinates probe rounds with the status container using
// dependency injection.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/medica/medica-web/interfaces"
	"github.com/medica/medica-web/logging"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// probeTimeout bounds one probe round so a hung upstream cannot pile up
// overlapping rounds.
const probeTimeout = 10 * time.Second

// Scheduler runs periodic upstream probes using dependency injection
type Scheduler struct {
	statusStore interfaces.StatusStore
	prober      interfaces.Prober
	scheduler   *gocron.Scheduler
	stopMonitor chan struct{}
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(statusStore interfaces.StatusStore, prober interfaces.Prober) *Scheduler {
	return &Scheduler{
		statusStore: statusStore,
		prober:      prober,
		scheduler:   gocron.NewScheduler(time.Local),
		stopMonitor: make(chan struct{}),
	}
}

// Start runs an initial probe round and schedules recurring ones
func (s *Scheduler) Start() error {
	// Initial round so /health has data before the first tick
	s.probeAll()

	_, err := s.scheduler.Every(5).Minutes().Do(func() {
		s.probeAll()
	})
	if err != nil {
		logging.Error("Failed to schedule upstream probes", "error", err)
		return fmt.Errorf("failed to schedule upstream probes: %w", err)
	}

	s.scheduler.StartAsync()

	s.startStalenessMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopMonitor)
	s.scheduler.Stop()
}

// probeAll runs one probe round against both upstreams
func (s *Scheduler) probeAll() {
	// Prevent overlapping rounds
	if !s.statusStore.BeginCheck() {
		logging.Info("Probe round already in progress, skipping...")
		return
	}
	defer s.statusStore.EndCheck()

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	backend := s.prober.ProbeBackend(ctx)
	s.statusStore.SetBackendStatus(backend)
	if !backend.Healthy {
		logging.Warn("Backend probe failed", "error", backend.Error)
	}

	prediction := s.prober.ProbePrediction(ctx)
	s.statusStore.SetPredictionStatus(prediction)
	if !prediction.Healthy {
		logging.Warn("Prediction service probe failed", "error", prediction.Error)
	}

	logging.Debug("Probe round completed",
		"backend_healthy", backend.Healthy,
		"prediction_healthy", prediction.Healthy,
		"backend_latency_ms", backend.Latency.Milliseconds(),
		"prediction_latency_ms", prediction.Latency.Milliseconds())
}

// startStalenessMonitoring alerts when probe results stop refreshing
func (s *Scheduler) startStalenessMonitoring() {
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopMonitor:
				return
			case <-ticker.C:
				lastChecked := s.statusStore.BackendStatus().CheckedAt
				if time.Since(lastChecked) > 20*time.Minute {
					logging.Warn("Upstream probes haven't refreshed in over 20 minutes")
				}
			}
		}
	}()
}
