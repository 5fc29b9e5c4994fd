// Package session keeps the browser's authenticated state server-side. The
// original client parked role, user id and role-specific JSON blobs in
// ambient browser storage; here the same keys live in an in-memory session
// keyed by an opaque cookie, so the browser only ever holds a random id.
// Sessions are a UX convenience: authorization truth stays with the backend.
package session

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName is the browser cookie carrying the session id.
const CookieName = "medica_session"

// Keys mirrored from the original client storage layout.
const (
	KeyRole      = "role"
	KeyUserID    = "id"
	KeyDoctor    = "doctor"
	KeyCompanyID = "companyId"
)

// Roles understood by the application.
const (
	RoleAdmin         = "ADMIN"
	RoleDoctor        = "DOCTOR"
	RolePharmaCompany = "PHARMA_COMPANY"
)

// Session is one browser's key/value state. Values are opaque strings;
// callers JSON-encode structured blobs before Set and decode after Get.
type Session struct {
	id       string
	mu       sync.RWMutex
	values   map[string]string
	lastSeen time.Time
}

// ID returns the opaque session identifier.
func (s *Session) ID() string {
	return s.id
}

// Get returns the value for key, or ok=false when absent.
func (s *Session) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key.
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Remove deletes key.
func (s *Session) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Clear removes every listed key. Logout uses this to drop all keys the
// active role wrote, so no stale authorization leaks into a later login.
func (s *Session) Clear(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
}

// Role returns the stored role, but only when the user id is present too.
// A partially written session (role without id, or id without role) is
// treated as absent.
func (s *Session) Role() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.values[KeyRole]
	if !ok || role == "" {
		return "", false
	}
	if id, ok := s.values[KeyUserID]; !ok || id == "" {
		return "", false
	}
	return role, true
}

// UserID returns the stored numeric user id, subject to the same
// both-or-neither rule as Role.
func (s *Session) UserID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if role, ok := s.values[KeyRole]; !ok || role == "" {
		return 0, false
	}
	raw, ok := s.values[KeyUserID]
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// Manager owns all live sessions and their expiry.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	secure   bool
}

// NewManager creates a session manager with the given idle TTL.
// secure marks issued cookies as HTTPS-only.
func NewManager(ttl time.Duration, secure bool) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		secure:   secure,
	}
}

// New creates a fresh session and sets its cookie on the response.
func (m *Manager) New(w http.ResponseWriter) *Session {
	s := &Session{
		id:       uuid.NewString(),
		values:   make(map[string]string),
		lastSeen: time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return s
}

// FromRequest resolves the request's session cookie. Expired or unknown
// sessions yield ok=false.
func (m *Manager) FromRequest(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	return m.lookup(cookie.Value)
}

func (m *Manager) lookup(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	expired := time.Since(s.lastSeen) > m.ttl
	if !expired {
		s.lastSeen = time.Now()
	}
	s.mu.Unlock()

	if expired {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return nil, false
	}
	return s, true
}

// Destroy drops the session and expires its cookie.
func (m *Manager) Destroy(w http.ResponseWriter, s *Session) {
	if s == nil {
		return
	}

	m.mu.Lock()
	delete(m.sessions, s.id)
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Count returns the number of live sessions (expired ones included until swept).
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle past the TTL and returns how many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		s.mu.RLock()
		idle := time.Since(s.lastSeen)
		s.mu.RUnlock()
		if idle > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// RoleScopedKeys returns every key a login under the given role may have
// written, for Clear on logout.
func RoleScopedKeys(role string) []string {
	switch role {
	case RoleDoctor:
		return []string{KeyRole, KeyUserID, KeyDoctor}
	case RolePharmaCompany:
		return []string{KeyRole, KeyUserID, KeyCompanyID}
	default:
		return []string{KeyRole, KeyUserID}
	}
}
