package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults should not fail: %v", err)
	}

	if cfg.Port != "8090" {
		t.Errorf("Expected default port 8090, got %s", cfg.Port)
	}
	if cfg.BackendBaseURL != "http://localhost:8082" {
		t.Errorf("Expected default backend URL, got %s", cfg.BackendBaseURL)
	}
	if cfg.MLBaseURL != "http://localhost:8083" {
		t.Errorf("Expected default ML URL, got %s", cfg.MLBaseURL)
	}
	if cfg.UpstreamTimeout != 15*time.Second {
		t.Errorf("Expected default upstream timeout 15s, got %s", cfg.UpstreamTimeout)
	}
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		name    string
		port    string
		wantErr bool
	}{
		{"valid port", "8090", false},
		{"empty port", "", true},
		{"non-numeric", "abc", true},
		{"privileged", "80", true},
		{"too large", "70000", true},
		{"upper bound", "65535", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePort(tt.port)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePort(%q) error = %v, wantErr %v", tt.port, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"localhost", "localhost", false},
		{"loopback", "127.0.0.1", false},
		{"ipv6 loopback", "::1", false},
		{"private", "192.168.1.10", false},
		{"public", "8.8.8.8", true},
		{"garbage", "not-an-ip", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAddress(tt.address)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAddress(%q) error = %v, wantErr %v", tt.address, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"plain http origin", "http://localhost:8082", false},
		{"https origin", "https://api.medica.example", false},
		{"with path", "http://host:8082/medica", false},
		{"trailing slash", "http://host:8082/medica/", true},
		{"bad scheme", "ftp://host", true},
		{"no host", "http://", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBaseURL(tt.raw, "BACKEND_BASE_URL")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateBaseURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsBadUpstream(t *testing.T) {
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
	}
	t.Setenv("BACKEND_BASE_URL", "not a url at all ://")

	_, err := Load()
	if err == nil {
		t.Fatal("Load should fail with malformed BACKEND_BASE_URL")
	}
	if !strings.Contains(err.Error(), "BACKEND_BASE_URL") {
		t.Errorf("error should name the offending variable, got: %v", err)
	}
}

func TestLoadRejectsShortTimeout(t *testing.T) {
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
	}
	t.Setenv("UPSTREAM_TIMEOUT", "10ms")

	_, err := Load()
	if err == nil {
		t.Fatal("Load should reject a sub-second upstream timeout")
	}
}
