// Package handlers provides the HTTP handlers behind every screen: login,
// the three role areas, the typeahead JSON endpoints and the health check.
// Handlers translate between HTTP and the gateway/ml clients, and push all
// testable decisions into the views package.
package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/medica/medica-web/gateway"
	"github.com/medica/medica-web/interfaces"
	"github.com/medica/medica-web/ml"
	"github.com/medica/medica-web/session"
	"github.com/medica/medica-web/views"
)

// Handler carries the shared dependencies of all screens.
type Handler struct {
	sessions *session.Manager
	backend  *gateway.Client
	predict  *ml.Client
	checker  interfaces.HealthChecker

	// per-session typeahead sequencers, keyed by session id and kind
	suggestSeqs sync.Map
}

// New creates a handler set with injected dependencies.
func New(sessions *session.Manager, backend *gateway.Client, predict *ml.Client, checker interfaces.HealthChecker) *Handler {
	return &Handler{
		sessions: sessions,
		backend:  backend,
		predict:  predict,
		checker:  checker,
	}
}

// userMessage folds the error taxonomy into text fit for the page. Upstream
// rejections carry the backend's own words; transport failures stay generic
// so internals never reach the browser.
func userMessage(err error) string {
	var apiErr *gateway.APIError
	var netErr *gateway.NetworkError
	var predErr *ml.PredictionError

	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.As(err, &predErr):
		return predErr.Detail
	case errors.As(err, &netErr):
		return "Network error. Please check that the server is running."
	case errors.Is(err, gateway.ErrMalformedLogin):
		return "Login failed: could not extract role."
	default:
		return "Something went wrong. Please try again."
	}
}

// mustSession pulls the gate-attached session, denying when absent. The
// gate should make absence impossible; this is the backstop for routes
// wired without it.
func mustSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := views.SessionFrom(r.Context())
	if !ok {
		views.Deny(w)
		return nil, false
	}
	return s, ok
}

// userID reads the session's numeric user id, denying on a partial session.
func userID(w http.ResponseWriter, s *session.Session) (int64, bool) {
	id, ok := s.UserID()
	if !ok {
		views.Deny(w)
		return 0, false
	}
	return id, true
}

// fullName is the display name stored at login, for the page header.
func fullName(s *session.Session) string {
	name, _ := s.Get("fullName")
	return name
}

// flash pops the one-shot message stored by the previous redirect.
func flash(s *session.Session) string {
	msg, ok := s.Get("flash")
	if ok {
		s.Remove("flash")
	}
	return msg
}

// setFlash stores a one-shot message for the page after a redirect.
func setFlash(s *session.Session, msg string) {
	s.Set("flash", msg)
}
