package health

import (
	"net/http"
	"testing"
	"time"

	"github.com/medica/medica-web/interfaces"
	"github.com/medica/medica-web/status"
)

func freshProbe(upstream string, healthy bool) interfaces.Probe {
	return interfaces.Probe{
		Upstream:  upstream,
		Healthy:   healthy,
		Status:    200,
		CheckedAt: time.Now(),
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		backend    interfaces.Probe
		prediction interfaces.Probe
		wantStatus string
		wantCode   int
	}{
		{
			name:       "both healthy",
			backend:    freshProbe("backend", true),
			prediction: freshProbe("prediction", true),
			wantStatus: "healthy",
			wantCode:   http.StatusOK,
		},
		{
			name:       "backend down",
			backend:    freshProbe("backend", false),
			prediction: freshProbe("prediction", true),
			wantStatus: "unhealthy",
			wantCode:   http.StatusServiceUnavailable,
		},
		{
			name:       "prediction down",
			backend:    freshProbe("backend", true),
			prediction: freshProbe("prediction", false),
			wantStatus: "degraded",
			wantCode:   http.StatusServiceUnavailable,
		},
		{
			name: "stale backend probe",
			backend: interfaces.Probe{
				Upstream:  "backend",
				Healthy:   true,
				CheckedAt: time.Now().Add(-time.Hour),
			},
			prediction: freshProbe("prediction", true),
			wantStatus: "degraded",
			wantCode:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := status.NewContainer()
			store.SetBackendStatus(tt.backend)
			store.SetPredictionStatus(tt.prediction)

			checker := NewHealthChecker(store)
			gotStatus, data, gotCode := checker.HealthCheck()

			if gotStatus != tt.wantStatus {
				t.Errorf("status = %q, want %q", gotStatus, tt.wantStatus)
			}
			if gotCode != tt.wantCode {
				t.Errorf("http status = %d, want %d", gotCode, tt.wantCode)
			}
			if _, ok := data["backend"]; !ok {
				t.Error("response data missing backend probe")
			}
		})
	}
}

func TestNeverProbedIsUnhealthy(t *testing.T) {
	checker := NewHealthChecker(status.NewContainer())

	gotStatus, _, gotCode := checker.HealthCheck()
	if gotStatus != "unhealthy" {
		t.Errorf("status = %q, want unhealthy before any probe ran", gotStatus)
	}
	if gotCode != http.StatusServiceUnavailable {
		t.Errorf("http status = %d, want 503", gotCode)
	}
}
