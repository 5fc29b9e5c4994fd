package views

import (
	"context"
	"net/http"

	"github.com/medica/medica-web/session"
)

type contextKey string

const sessionContextKey contextKey = "medica.session"

// RequireRole gates a route subtree to one role. Anything else, including
// no session at all or a partially written one, gets the fixed denial page
// with a login affordance. The message never varies by reason, so a probe
// cannot distinguish "not logged in" from "wrong role".
func RequireRole(manager *session.Manager, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := manager.FromRequest(r)
			if !ok {
				Deny(w)
				return
			}
			got, ok := s.Role()
			if !ok || got != role {
				Deny(w)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Deny renders the access denial page.
func Deny(w http.ResponseWriter) {
	Render(w, http.StatusForbidden, "denied", Page{
		Title: "Access denied",
		Error: MsgAccessDenied,
	})
}

// SessionFrom returns the session a RequireRole middleware attached.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(*session.Session)
	return s, ok
}
