package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/medica/medica-web/interfaces"
	"github.com/medica/medica-web/status"
)

type fakeProber struct {
	backendHealthy    bool
	predictionHealthy bool
	calls             int
}

func (f *fakeProber) ProbeBackend(ctx context.Context) interfaces.Probe {
	f.calls++
	return interfaces.Probe{
		Upstream:  "backend",
		Healthy:   f.backendHealthy,
		CheckedAt: time.Now(),
	}
}

func (f *fakeProber) ProbePrediction(ctx context.Context) interfaces.Probe {
	return interfaces.Probe{
		Upstream:  "prediction",
		Healthy:   f.predictionHealthy,
		CheckedAt: time.Now(),
	}
}

func TestProbeAllStoresResults(t *testing.T) {
	store := status.NewContainer()
	prober := &fakeProber{backendHealthy: true, predictionHealthy: false}
	s := NewScheduler(store, prober)

	s.probeAll()

	if !store.BackendStatus().Healthy {
		t.Error("backend probe result not stored")
	}
	if store.PredictionStatus().Healthy {
		t.Error("prediction probe should be unhealthy")
	}
	if store.BackendStatus().CheckedAt.IsZero() {
		t.Error("probe timestamp not recorded")
	}
}

func TestProbeAllSkipsWhenRoundInProgress(t *testing.T) {
	store := status.NewContainer()
	prober := &fakeProber{backendHealthy: true, predictionHealthy: true}
	s := NewScheduler(store, prober)

	if !store.BeginCheck() {
		t.Fatal("could not mark round in progress")
	}
	defer store.EndCheck()

	s.probeAll()

	if prober.calls != 0 {
		t.Errorf("probe ran %d times during an active round, want 0", prober.calls)
	}
}

func TestCheckFlagClearedAfterRound(t *testing.T) {
	store := status.NewContainer()
	s := NewScheduler(store, &fakeProber{backendHealthy: true, predictionHealthy: true})

	s.probeAll()

	if store.IsChecking() {
		t.Error("checking flag should be cleared after the round")
	}
}
