package views

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/medica/medica-web/session"
)

func authedRequest(t *testing.T, m *session.Manager, role, id string) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	s := m.New(rec)
	if role != "" {
		s.Set(session.KeyRole, role)
	}
	if id != "" {
		s.Set(session.KeyUserID, id)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/doctors", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	return req
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	m := session.NewManager(time.Hour, false)

	var sawSession bool
	handler := RequireRole(m, session.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawSession = SessionFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, m, session.RoleAdmin, "7"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !sawSession {
		t.Error("handler should find the session in the request context")
	}
}

func TestRequireRoleDenies(t *testing.T) {
	m := session.NewManager(time.Hour, false)

	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
	}{
		{"no session", func(t *testing.T) *http.Request {
			return httptest.NewRequest(http.MethodGet, "/admin/doctors", nil)
		}},
		{"wrong role", func(t *testing.T) *http.Request {
			return authedRequest(t, m, session.RoleDoctor, "42")
		}},
		{"partial session", func(t *testing.T) *http.Request {
			return authedRequest(t, m, session.RoleAdmin, "")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(m, session.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler must not run for denied requests")
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, tt.req(t))

			if rec.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", rec.Code)
			}
			body := rec.Body.String()
			if !strings.Contains(body, MsgAccessDenied) {
				t.Error("denial page must carry the fixed message")
			}
			if !strings.Contains(body, "/login") {
				t.Error("denial page must link to login")
			}
		})
	}
}
