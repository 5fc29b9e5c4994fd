package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medica/medica-web/gateway"
	"github.com/medica/medica-web/idcodec"
	"github.com/medica/medica-web/ml"
	"github.com/medica/medica-web/session"
	"github.com/medica/medica-web/views"
)

type stubChecker struct {
	verdict string
	status  int
	data    map[string]any
}

func (c *stubChecker) HealthCheck() (string, map[string]any, int) {
	return c.verdict, c.data, c.status
}

func newTestHandler(backendURL, mlURL string) (*Handler, *session.Manager) {
	sessions := session.NewManager(time.Hour, false)
	backend := gateway.New(backendURL, 2*time.Second)
	predict := ml.New(mlURL, 2*time.Second)
	checker := &stubChecker{verdict: "healthy", status: http.StatusOK, data: map[string]any{}}
	return New(sessions, backend, predict, checker), sessions
}

// sessionCookie opens a session with the given role and returns its cookie.
func sessionCookie(t *testing.T, sessions *session.Manager, role string, userID string) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	s := sessions.New(w)
	s.Set(session.KeyRole, role)
	s.Set(session.KeyUserID, userID)
	s.Set("fullName", "Test User")
	if role == session.RolePharmaCompany {
		s.Set(session.KeyCompanyID, userID)
	}

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func testRouter(h *Handler, sessions *session.Manager) http.Handler {
	r := chi.NewRouter()
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Get("/health", h.HealthCheck)

	r.Route("/admin", func(r chi.Router) {
		r.Use(views.RequireRole(sessions, session.RoleAdmin))
		r.Get("/", h.AdminHome)
		r.Get("/doctors", h.ListDoctors)
	})
	r.Route("/doctor", func(r chi.Router) {
		r.Use(views.RequireRole(sessions, session.RoleDoctor))
		r.Get("/", h.DoctorHome)
		r.Get("/patients", h.ListPatients)
		r.Post("/patients/{id}", h.UpdatePatient)
		r.Post("/patients/{id}/delete", h.DeletePatient)
		r.Post("/recommend", h.Recommend)
	})
	r.Route("/pharma", func(r chi.Router) {
		r.Use(views.RequireRole(sessions, session.RolePharmaCompany))
		r.Get("/medicines", h.ListOwnMedicines)
	})
	r.Route("/api/suggest", func(r chi.Router) {
		r.Use(views.RequireRole(sessions, session.RoleDoctor))
		r.Get("/medicines", h.SuggestMedicines)
	})
	return r
}

func TestLoginOpensRoleSession(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		w.Write([]byte("Login successful: Amira Hassan [ADMIN] [7]"))
	}))
	defer backend.Close()

	h, sessions := newTestHandler(backend.URL, backend.URL)
	router := testRouter(h, sessions)

	form := url.Values{"email": {"amira@medica.test"}, "password": {"Passw0rd!"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	require.NotEmpty(t, w.Result().Cookies(), "login should set a session cookie")

	// The cookie must open the admin area
	req = httptest.NewRequest("GET", "/admin/", nil)
	req.AddCookie(w.Result().Cookies()[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Amira Hassan")
}

func TestLoginRejectedShowsBackendMessage(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Incorrect password."}`))
	}))
	defer backend.Close()

	h, sessions := newTestHandler(backend.URL, backend.URL)
	router := testRouter(h, sessions)

	form := url.Values{"email": {"amira@medica.test"}, "password": {"wrong"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect password.")
	// The typed email survives the re-render
	assert.Contains(t, w.Body.String(), "amira@medica.test")
}

func TestRoleGateDeniesWithFixedMessage(t *testing.T) {
	h, sessions := newTestHandler("http://localhost:1", "http://localhost:1")
	router := testRouter(h, sessions)

	cases := []struct {
		name   string
		path   string
		cookie *http.Cookie
	}{
		{"no session", "/admin/", nil},
		{"wrong role", "/admin/", sessionCookie(t, sessions, session.RoleDoctor, "5")},
		{"doctor area as pharma", "/doctor/", sessionCookie(t, sessions, session.RolePharmaCompany, "3")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Contains(t, w.Body.String(), views.MsgAccessDenied)
		})
	}
}

func TestUpdatePatientNoChangesSkipsBackend(t *testing.T) {
	backendCalled := false
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendCalled = true
		w.Write([]byte("{}"))
	}))
	defer backend.Close()

	h, sessions := newTestHandler(backend.URL, backend.URL)
	router := testRouter(h, sessions)
	cookie := sessionCookie(t, sessions, session.RoleDoctor, "5")

	values := map[string]string{
		"name":        "Omar Farouk",
		"bloodType":   "A+",
		"gender":      "Male",
		"age":         "42",
		"phoneNumber": "01234567890",
		"history":     "",
	}
	form := url.Values{"snapshot": {views.Snapshot(values)}}
	for k, v := range values {
		form.Set(k, v)
	}

	req := httptest.NewRequest("POST", "/doctor/patients/"+idcodec.Encode(1), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), views.MsgNoChanges)
	assert.False(t, backendCalled, "a no-op save must not reach the backend")
}

func TestListDoctorsMatchesEmailFragment(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "user": {"id": 1, "fullName": "Hala Mansour", "email": "hala@cityclinic.example"}, "specialization": "Dermatology"},
			{"id": 2, "user": {"id": 2, "fullName": "Omar Farouk", "email": "omar@rivermed.example"}, "specialization": "Cardiology"}
		]`))
	}))
	defer backend.Close()

	h, sessions := newTestHandler(backend.URL, backend.URL)
	router := testRouter(h, sessions)
	cookie := sessionCookie(t, sessions, session.RoleAdmin, "7")

	req := httptest.NewRequest("GET", "/admin/doctors?q=cityclinic", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hala Mansour")
	assert.NotContains(t, w.Body.String(), "Omar Farouk")
}

func TestDeletePatientRefetchesWithoutRow(t *testing.T) {
	patients := []gateway.Patient{
		{ID: 1, Name: "Omar Farouk"},
		{ID: 3, Name: "Hala Mansour"},
		{ID: 5, Name: "Sara Adel"},
		{ID: 9, Name: "Karim Nabil"},
	}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/api/patients/5/delete":
			kept := patients[:0:0]
			for _, p := range patients {
				if p.ID != 5 {
					kept = append(kept, p)
				}
			}
			patients = kept
			w.Write([]byte("Patient deleted"))
		case r.Method == http.MethodDelete:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"Patient has open visits."}`))
		default:
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(patients)
		}
	}))
	defer backend.Close()

	h, sessions := newTestHandler(backend.URL, backend.URL)
	router := testRouter(h, sessions)
	cookie := sessionCookie(t, sessions, session.RoleDoctor, "5")

	req := httptest.NewRequest("POST", "/doctor/patients/"+idcodec.Encode(5)+"/delete", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/doctor/patients", w.Header().Get("Location"))

	// The refetched list no longer carries the deleted row
	req = httptest.NewRequest("GET", "/doctor/patients", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Sara Adel")
	assert.Contains(t, w.Body.String(), "Omar Farouk")
	assert.Contains(t, w.Body.String(), "Karim Nabil")
	assert.Contains(t, w.Body.String(), "Patient deleted")

	// A failed delete leaves the list unchanged and surfaces the message
	req = httptest.NewRequest("POST", "/doctor/patients/"+idcodec.Encode(9)+"/delete", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)

	req = httptest.NewRequest("GET", "/doctor/patients", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), "Karim Nabil")
	assert.Contains(t, w.Body.String(), "Patient has open visits.")
}

func TestRecommendFormNarrowsOptionPool(t *testing.T) {
	h, sessions := newTestHandler("http://localhost:1", "http://localhost:1")
	router := testRouter(h, sessions)
	cookie := sessionCookie(t, sessions, session.RoleDoctor, "5")

	// Gender is missing, so the form re-renders around the typed fragment
	form := url.Values{
		"age":       {"40"},
		"diagnosis": {"asthma"},
	}
	req := httptest.NewRequest("POST", "/doctor/recommend", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	// The typed fragment stands as the provisional value
	assert.Contains(t, body, `value="asthma"`)
	// and the datalist narrows to the matching diagnosis classes
	assert.Contains(t, body, "Asthma_mild")
	assert.Contains(t, body, "Asthma_severe")
	assert.NotContains(t, body, "Hypothyroidism")
}

func TestRecommendShowsModelRejection(t *testing.T) {
	mlServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"Unknown diagnosis class"}`))
	}))
	defer mlServer.Close()

	h, sessions := newTestHandler(mlServer.URL, mlServer.URL)
	router := testRouter(h, sessions)
	cookie := sessionCookie(t, sessions, session.RoleDoctor, "5")

	form := url.Values{
		"age":               {"40"},
		"gender":            {"Female"},
		"diagnosis":         {"Hypothyroidism"},
		"allergies":         {"None"},
		"chronicConditions": {"None"},
	}
	req := httptest.NewRequest("POST", "/doctor/recommend", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Unknown diagnosis class")
}

func TestSuggestMedicinesEchoesSequence(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/medicines/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"Paracetamol"},{"name":"Pantoprazole"}]`))
	}))
	defer backend.Close()

	h, sessions := newTestHandler(backend.URL, backend.URL)
	router := testRouter(h, sessions)
	cookie := sessionCookie(t, sessions, session.RoleDoctor, "5")

	req := httptest.NewRequest("GET", "/api/suggest/medicines?q=pa", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Seq         uint64   `json:"seq"`
		Query       string   `json:"query"`
		Stale       bool     `json:"stale"`
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1), resp.Seq)
	assert.Equal(t, "pa", resp.Query)
	assert.False(t, resp.Stale)
	assert.Equal(t, []string{"Paracetamol", "Pantoprazole"}, resp.Suggestions)
}

func TestSuggestEmptyQueryShortCircuits(t *testing.T) {
	h, sessions := newTestHandler("http://localhost:1", "http://localhost:1")
	router := testRouter(h, sessions)
	cookie := sessionCookie(t, sessions, session.RoleDoctor, "5")

	req := httptest.NewRequest("GET", "/api/suggest/medicines", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"suggestions":[]`)
}

func TestHealthCheckServesCheckerVerdict(t *testing.T) {
	// degraded and unhealthy share the 503, so the body must carry the verdict
	cases := []struct {
		verdict  string
		expected int
	}{
		{"degraded", http.StatusServiceUnavailable},
		{"unhealthy", http.StatusServiceUnavailable},
		{"healthy", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.verdict, func(t *testing.T) {
			h, sessions := newTestHandler("http://localhost:1", "http://localhost:1")
			h.checker = &stubChecker{
				verdict: tc.verdict,
				status:  tc.expected,
				data:    map[string]any{"backend": map[string]any{"healthy": tc.verdict == "healthy"}},
			}
			router := testRouter(h, sessions)

			req := httptest.NewRequest("GET", "/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expected, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.verdict, body["status"])
		})
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Logged out"))
	}))
	defer backend.Close()

	h, sessions := newTestHandler(backend.URL, backend.URL)
	router := testRouter(h, sessions)
	cookie := sessionCookie(t, sessions, session.RoleDoctor, "5")

	req := httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// The old cookie must no longer open the doctor area
	req = httptest.NewRequest("GET", "/doctor/", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
