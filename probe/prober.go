// Package probe checks upstream reachability for the scheduler.
package probe

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/medica/medica-web/interfaces"
)

// Compile-time check to ensure HTTPProber implements Prober
var _ interfaces.Prober = (*HTTPProber)(nil)

// HTTPProber checks upstreams with a plain GET against their origin. Any
// HTTP answer proves the upstream is reachable; only transport failures
// count as unhealthy.
type HTTPProber struct {
	backend    *resty.Client
	prediction *resty.Client
}

// NewHTTPProber creates a prober for the two upstream origins.
func NewHTTPProber(backendURL, predictionURL string, timeout time.Duration) *HTTPProber {
	return &HTTPProber{
		backend:    resty.New().SetBaseURL(backendURL).SetTimeout(timeout),
		prediction: resty.New().SetBaseURL(predictionURL).SetTimeout(timeout),
	}
}

// ProbeBackend checks the management backend origin.
func (p *HTTPProber) ProbeBackend(ctx context.Context) interfaces.Probe {
	return run(ctx, p.backend, "backend")
}

// ProbePrediction checks the prediction service origin.
func (p *HTTPProber) ProbePrediction(ctx context.Context) interfaces.Probe {
	return run(ctx, p.prediction, "prediction")
}

func run(ctx context.Context, client *resty.Client, upstream string) interfaces.Probe {
	start := time.Now()
	resp, err := client.R().SetContext(ctx).Get("/")
	probe := interfaces.Probe{
		Upstream:  upstream,
		Latency:   time.Since(start),
		CheckedAt: time.Now(),
	}
	if err != nil {
		probe.Error = err.Error()
		return probe
	}
	probe.Healthy = true
	probe.Status = resp.StatusCode()
	return probe
}
