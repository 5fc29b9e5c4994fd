package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, m *Manager) (*Session, *http.Cookie) {
	t.Helper()

	rec := httptest.NewRecorder()
	s := m.New(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	return s, cookies[0]
}

func TestManagerRoundTrip(t *testing.T) {
	m := NewManager(time.Hour, false)
	s, cookie := newTestSession(t, m)

	s.Set(KeyRole, RoleAdmin)
	s.Set(KeyUserID, "7")

	req := httptest.NewRequest(http.MethodGet, "/admin/doctors", nil)
	req.AddCookie(cookie)

	got, ok := m.FromRequest(req)
	require.True(t, ok)
	assert.Equal(t, s.ID(), got.ID())

	role, ok := got.Role()
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	id, ok := got.UserID()
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestPartialSessionIsAbsent(t *testing.T) {
	m := NewManager(time.Hour, false)

	tests := []struct {
		name  string
		setup func(s *Session)
	}{
		{"role only", func(s *Session) { s.Set(KeyRole, RoleDoctor) }},
		{"id only", func(s *Session) { s.Set(KeyUserID, "42") }},
		{"empty role", func(s *Session) { s.Set(KeyRole, ""); s.Set(KeyUserID, "42") }},
		{"non-numeric id", func(s *Session) { s.Set(KeyRole, RoleDoctor); s.Set(KeyUserID, "forty-two") }},
		{"nothing", func(s *Session) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t, m)
			tt.setup(s)

			_, ok := s.Role()
			assert.False(t, ok, "partial session must read as absent")
			_, ok = s.UserID()
			assert.False(t, ok)
		})
	}
}

func TestLogoutClearsRoleScopedKeys(t *testing.T) {
	m := NewManager(time.Hour, false)
	s, _ := newTestSession(t, m)

	s.Set(KeyRole, RoleDoctor)
	s.Set(KeyUserID, "42")
	s.Set(KeyDoctor, `{"id":"42"}`)

	s.Clear(RoleScopedKeys(RoleDoctor)...)

	for _, key := range []string{KeyRole, KeyUserID, KeyDoctor} {
		_, ok := s.Get(key)
		assert.False(t, ok, "key %s should be cleared on logout", key)
	}
}

func TestRoleScopedKeys(t *testing.T) {
	assert.Contains(t, RoleScopedKeys(RoleDoctor), KeyDoctor)
	assert.Contains(t, RoleScopedKeys(RolePharmaCompany), KeyCompanyID)
	assert.NotContains(t, RoleScopedKeys(RoleAdmin), KeyDoctor)
}

func TestExpiredSessionIsGone(t *testing.T) {
	m := NewManager(10*time.Millisecond, false)
	_, cookie := newTestSession(t, m)

	time.Sleep(30 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	_, ok := m.FromRequest(req)
	assert.False(t, ok, "expired session should not resolve")
}

func TestSweep(t *testing.T) {
	m := NewManager(10*time.Millisecond, false)
	newTestSession(t, m)
	newTestSession(t, m)

	time.Sleep(30 * time.Millisecond)

	removed := m.Sweep()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, m.Count())
}

func TestDestroyExpiresCookie(t *testing.T) {
	m := NewManager(time.Hour, false)
	s, _ := newTestSession(t, m)

	rec := httptest.NewRecorder()
	m.Destroy(rec, s)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
	assert.Equal(t, 0, m.Count())
}
