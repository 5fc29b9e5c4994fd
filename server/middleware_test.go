package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medica/medica-web/config"
)

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		path         string
		expectedCost int64
	}{
		{"Metrics scrape", "GET", "/metrics", 0},
		{"Favicon", "GET", "/favicon.ico", 0},
		{"Health check", "GET", "/health", 5},
		{"Login page", "GET", "/login", 5},
		{"Login attempt", "POST", "/login", 50},
		{"Medicine typeahead", "GET", "/api/suggest/medicines", 5},
		{"Interaction typeahead", "GET", "/api/suggest/interactions", 5},
		{"Dataset upload", "POST", "/pharma/upload", 100},
		{"Recommendation inference", "POST", "/doctor/recommend", 50},
		{"Recommendation form", "GET", "/doctor/recommend", 20},
		{"Suitability inference", "POST", "/doctor/suitability", 50},
		{"Patient list", "GET", "/doctor/patients", 20},
		{"Admin dashboard", "GET", "/admin", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			cost := getTokenCost(req)

			if cost != tt.expectedCost {
				t.Errorf("Expected cost %d for %s %s, got %d", tt.expectedCost, tt.method, tt.path, cost)
			}
		})
	}
}

func TestRateLimitHandlerSetsHeaders(t *testing.T) {
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-RateLimit-Limit") != "1000" {
		t.Errorf("Expected X-RateLimit-Limit 1000, got %s", w.Header().Get("X-RateLimit-Limit"))
	}
	if w.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("Expected X-RateLimit-Remaining to be set")
	}
}

func TestRateLimitHandlerExhaustsBucket(t *testing.T) {
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Uploads cost 100, so a fresh 1000-token bucket allows exactly 10
	got429 := false
	for i := 0; i < 12; i++ {
		req := httptest.NewRequest("POST", "/pharma/upload", nil)
		req.RemoteAddr = "192.0.2.99:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			got429 = true
			if w.Header().Get("Retry-After") != "60" {
				t.Errorf("Expected Retry-After 60, got %s", w.Header().Get("Retry-After"))
			}
			break
		}
	}

	if !got429 {
		t.Error("Expected the bucket to run out within 12 expensive requests")
	}
}

func TestRealIPMiddleware(t *testing.T) {
	var gotAddr string
	handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddr = r.RemoteAddr
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	req.RemoteAddr = "10.0.0.1:5555"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotAddr != "203.0.113.5" {
		t.Errorf("Expected first forwarded IP, got %s", gotAddr)
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 100, MaxHeaderSize: 4096}
	handler := RequestSizeMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("accepts small body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/login", strings.NewReader("small"))
		req.Header.Set("Content-Length", "5")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/login", strings.NewReader("x"))
		req.Header.Set("Content-Length", "101")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("Expected 413, got %d", w.Code)
		}
	})

	t.Run("rejects oversized headers", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/login", nil)
		req.Header.Set("X-Big", strings.Repeat("a", 5000))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusRequestHeaderFieldsTooLarge {
			t.Errorf("Expected 431, got %d", w.Code)
		}
	})
}
