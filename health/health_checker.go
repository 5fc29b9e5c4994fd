// Package health aggregates upstream probe results for the web application.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/medica/medica-web/interfaces"
)

// staleAfter marks probe results too old to trust. Probes run every five
// minutes, so three missed rounds means the scheduler itself is in trouble.
const staleAfter = 15 * time.Minute

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	statusStore interfaces.StatusStore
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(statusStore interfaces.StatusStore) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		statusStore: statusStore,
	}
}

// HealthCheck returns HTTP-specific health data. The backend is essential:
// without it no screen can render, so its failure is unhealthy. The
// prediction service only serves the doctor's prediction forms, so its
// failure alone degrades.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	backend := h.statusStore.BackendStatus()
	prediction := h.statusStore.PredictionStatus()
	isChecking := h.statusStore.IsChecking()

	backendAge := time.Since(backend.CheckedAt)
	predictionAge := time.Since(prediction.CheckedAt)

	switch {
	case backend.CheckedAt.IsZero():
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case !backend.Healthy:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case backendAge > staleAfter:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case !prediction.Healthy || predictionAge > staleAfter:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	uptime := time.Duration(0)
	if start := h.statusStore.ServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	data = map[string]any{
		"backend":      probeData(backend),
		"prediction":   probeData(prediction),
		"is_checking":  isChecking,
		"uptime_hours": math.Round(uptime.Hours()*10) / 10,
	}

	return status, data, httpStatus
}

func probeData(p interfaces.Probe) map[string]any {
	d := map[string]any{
		"healthy":    p.Healthy,
		"latency_ms": p.Latency.Milliseconds(),
	}
	if !p.CheckedAt.IsZero() {
		d["last_checked"] = p.CheckedAt.Format(time.RFC3339)
	}
	if p.Status != 0 {
		d["status_code"] = p.Status
	}
	if p.Error != "" {
		d["error"] = p.Error
	}
	return d
}
