package handlers

import (
	"fmt"
	"net/http"

	"github.com/medica/medica-web/logging"
	"github.com/medica/medica-web/metrics"
	"github.com/medica/medica-web/session"
	"github.com/medica/medica-web/validation"
	"github.com/medica/medica-web/views"
)

// roleHome maps a role to its landing page.
func roleHome(role string) string {
	switch role {
	case session.RoleAdmin:
		return "/admin"
	case session.RoleDoctor:
		return "/doctor"
	case session.RolePharmaCompany:
		return "/pharma"
	default:
		return "/login"
	}
}

// LoginPage renders the login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	// Already logged in users go straight to their area
	if s, ok := h.sessions.FromRequest(r); ok {
		if role, ok := s.Role(); ok {
			http.Redirect(w, r, roleHome(role), http.StatusSeeOther)
			return
		}
	}

	views.Render(w, http.StatusOK, "login", views.Page{
		Title:   "Login",
		Content: views.LoginForm{},
	})
}

// Login authenticates the posted credentials and opens a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	v := validation.NewFormValidator().
		Require("Email", email).
		Email("Email", email).
		Require("Password", password)
	if !v.Valid() {
		h.loginFailed(w, email, v.Err())
		return
	}

	creds, err := h.backend.Login(r.Context(), email, password)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		logging.Info("Login rejected", "email", email)
		h.loginFailed(w, email, userMessage(err))
		return
	}

	s := h.sessions.New(w)
	s.Set(session.KeyRole, creds.Role)
	s.Set(session.KeyUserID, fmt.Sprintf("%d", creds.UserID))
	s.Set("fullName", creds.FullName)

	switch creds.Role {
	case session.RoleDoctor:
		s.Set(session.KeyDoctor, fmt.Sprintf(`{"id":%d}`, creds.UserID))
	case session.RolePharmaCompany:
		s.Set(session.KeyCompanyID, fmt.Sprintf("%d", creds.UserID))
	}

	metrics.ActiveSessions.Set(float64(h.sessions.Count()))
	logging.Info("Login successful", "role", creds.Role, "user_id", creds.UserID)

	http.Redirect(w, r, roleHome(creds.Role), http.StatusSeeOther)
}

func (h *Handler) loginFailed(w http.ResponseWriter, email, msg string) {
	views.Render(w, http.StatusOK, "login", views.Page{
		Title:   "Login",
		Error:   msg,
		Content: views.LoginForm{Email: email},
	})
}

// Logout clears every key the active role wrote and drops the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if s, ok := h.sessions.FromRequest(r); ok {
		if role, ok := s.Role(); ok {
			s.Clear(session.RoleScopedKeys(role)...)
		}
		// Best effort; the server-side session is the source of truth
		if err := h.backend.Logout(r.Context()); err != nil {
			logging.Debug("Backend logout failed", "error", err)
		}
		h.sessions.Destroy(w, s)
		metrics.ActiveSessions.Set(float64(h.sessions.Count()))
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
