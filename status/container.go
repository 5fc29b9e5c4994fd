// Package status provides thread-safe storage for upstream probe results.
// It includes the Container struct with atomic operations so the health
// endpoint and the scheduler never block each other.
package status

import (
	"sync/atomic"
	"time"

	"github.com/medica/medica-web/interfaces"
	"github.com/medica/medica-web/logging"
)

// Compile-time check to ensure Container implements StatusStore
var _ interfaces.StatusStore = (*Container)(nil)

// Container holds the latest probe per upstream with atomic values.
type Container struct {
	backend         atomic.Value // interfaces.Probe
	prediction      atomic.Value // interfaces.Probe
	serverStartTime atomic.Value // time.Time
	checking        atomic.Bool
}

// NewContainer creates a new Container with zero-valued probes.
func NewContainer() *Container {
	c := &Container{}
	c.backend.Store(interfaces.Probe{Upstream: "backend"})
	c.prediction.Store(interfaces.Probe{Upstream: "prediction"})
	c.serverStartTime.Store(time.Time{})
	return c
}

// BackendStatus returns the latest backend probe result.
func (c *Container) BackendStatus() interfaces.Probe {
	if v := c.backend.Load(); v != nil {
		if probe, ok := v.(interfaces.Probe); ok {
			return probe
		}
	}

	logging.Warn("Backend probe status is empty or invalid")
	return interfaces.Probe{Upstream: "backend"}
}

// PredictionStatus returns the latest prediction service probe result.
func (c *Container) PredictionStatus() interfaces.Probe {
	if v := c.prediction.Load(); v != nil {
		if probe, ok := v.(interfaces.Probe); ok {
			return probe
		}
	}

	logging.Warn("Prediction probe status is empty or invalid")
	return interfaces.Probe{Upstream: "prediction"}
}

// SetBackendStatus atomically replaces the backend probe result.
func (c *Container) SetBackendStatus(p interfaces.Probe) {
	c.backend.Store(p)
}

// SetPredictionStatus atomically replaces the prediction probe result.
func (c *Container) SetPredictionStatus(p interfaces.Probe) {
	c.prediction.Store(p)
}

// ServerStartTime returns when the server started.
func (c *Container) ServerStartTime() time.Time {
	if v := c.serverStartTime.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

// SetServerStartTime records the server start time.
func (c *Container) SetServerStartTime(t time.Time) {
	c.serverStartTime.Store(t)
}

// IsChecking reports whether a probe round is in progress.
func (c *Container) IsChecking() bool {
	return c.checking.Load()
}

// BeginCheck marks a probe round as started. Returns false when another
// round is already running.
func (c *Container) BeginCheck() bool {
	return c.checking.CompareAndSwap(false, true)
}

// EndCheck marks the probe round as finished.
func (c *Container) EndCheck() {
	c.checking.Store(false)
}
