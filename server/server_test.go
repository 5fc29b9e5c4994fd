package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/medica/medica-web/config"
	"github.com/medica/medica-web/gateway"
	"github.com/medica/medica-web/handlers"
	"github.com/medica/medica-web/logging"
	"github.com/medica/medica-web/ml"
	"github.com/medica/medica-web/session"
)

type okChecker struct{}

func (okChecker) HealthCheck() (string, map[string]any, int) {
	return "healthy", map[string]any{"status": "healthy"}, http.StatusOK
}

func newTestServer(t *testing.T) (*Server, *session.Manager) {
	t.Helper()

	logDir, err := os.MkdirTemp("", "medica-logs")
	if err != nil {
		t.Fatalf("Failed to create temp log dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(logDir) })
	logging.InitLogger(logDir, 1, "error")

	cfg := &config.Config{
		Port:           "8090",
		Address:        "127.0.0.1",
		Env:            "test",
		MaxRequestBody: 10 << 20,
		MaxHeaderSize:  1 << 20,
	}

	sessions := session.NewManager(time.Hour, false)
	backend := gateway.New("http://localhost:1", time.Second)
	predict := ml.New("http://localhost:1", time.Second)
	h := handlers.New(sessions, backend, predict, okChecker{})

	return NewServer(cfg, h, sessions), sessions
}

func TestPublicRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{"Login page", "/login", http.StatusOK},
		{"Root serves login", "/", http.StatusOK},
		{"Health endpoint", "/health", http.StatusOK},
		{"Metrics endpoint", "/metrics", http.StatusOK},
		{"Unknown route", "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)

			if w.Code != tt.expected {
				t.Errorf("Expected %d for %s, got %d", tt.expected, tt.path, w.Code)
			}
		})
	}
}

func TestRoleAreasAreGated(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/admin", "/doctor", "/pharma", "/api/suggest/medicines"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)

			if w.Code != http.StatusForbidden {
				t.Errorf("Expected 403 for %s without a session, got %d", path, w.Code)
			}
		})
	}
}

func TestGatedAreaOpensWithRoleSession(t *testing.T) {
	srv, sessions := newTestServer(t)

	w := httptest.NewRecorder()
	s := sessions.New(w)
	s.Set(session.KeyRole, session.RoleDoctor)
	s.Set(session.KeyUserID, "5")
	s.Set("fullName", "Dr Test")
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("Expected a session cookie")
	}

	req := httptest.NewRequest("GET", "/doctor", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for doctor home with a doctor session, got %d", w.Code)
	}
}
