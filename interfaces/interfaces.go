// Package interfaces defines core abstractions for the web application
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"time"
)

// Probe is the result of one reachability check against an upstream.
type Probe struct {
	Upstream  string
	Healthy   bool
	Status    int
	Latency   time.Duration
	CheckedAt time.Time
	Error     string
}

// StatusStore defines the contract for upstream status storage.
// It provides thread-safe access to the latest probe results with
// atomic operations so readers never see a torn update.
type StatusStore interface {
	// Probe retrieval methods
	BackendStatus() Probe
	PredictionStatus() Probe
	IsChecking() bool
	ServerStartTime() time.Time

	// Probe update methods
	SetBackendStatus(Probe)
	SetPredictionStatus(Probe)
	SetServerStartTime(time.Time)
	BeginCheck() bool
	EndCheck()
}

// Prober defines the contract for checking upstream reachability.
type Prober interface {
	// ProbeBackend checks the management backend origin
	ProbeBackend(ctx context.Context) Probe

	// ProbePrediction checks the prediction service origin
	ProbePrediction(ctx context.Context) Probe
}

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages periodic upstream probes and staleness alerts.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HealthChecker defines the contract for aggregating probe results into
// an overall service health verdict.
type HealthChecker interface {
	// HealthCheck returns status, response data and the HTTP code to serve
	HealthCheck() (status string, data map[string]any, httpStatus int)
}
