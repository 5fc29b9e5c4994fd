package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second)
}

func TestParseLoginText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Credentials
		wantErr bool
	}{
		{
			name: "doctor login",
			text: "Login successful: Jane Roe [DOCTOR] [42]",
			want: Credentials{FullName: "Jane Roe", Role: "DOCTOR", UserID: 42},
		},
		{
			name: "admin login",
			text: "Login successful: Root Admin [ADMIN] [1]",
			want: Credentials{FullName: "Root Admin", Role: "ADMIN", UserID: 1},
		},
		{
			name: "pharma login",
			text: "Login successful: Acme Pharma [PHARMA_COMPANY] [9]",
			want: Credentials{FullName: "Acme Pharma", Role: "PHARMA_COMPANY", UserID: 9},
		},
		{
			name:    "no brackets",
			text:    "Login successful: Jane Roe",
			wantErr: true,
		},
		{
			name:    "unknown role",
			text:    "Login successful: Jane Roe [SUPERUSER] [42]",
			wantErr: true,
		},
		{
			name:    "missing id",
			text:    "Login successful: Jane Roe [DOCTOR]",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLoginText(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedLogin)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)
		io.WriteString(w, "Login successful: Jane Roe [DOCTOR] [42]")
	}))

	creds, err := client.Login(context.Background(), "jane@clinic.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, "DOCTOR", creds.Role)
	assert.Equal(t, int64(42), creds.UserID)
	assert.Equal(t, "Jane Roe", creds.FullName)
}

func TestLoginRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, "Incorrect password.")
	}))

	_, err := client.Login(context.Background(), "jane@clinic.test", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Incorrect password.", apiErr.Message)
}

func TestErrorMessageSniffing(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{
			name:        "json message field",
			contentType: "application/json",
			body:        `{"message": "Email already exists"}`,
			want:        "Email already exists",
		},
		{
			name:        "json error field",
			contentType: "application/json",
			body:        `{"error": "Bad request"}`,
			want:        "Bad request",
		},
		{
			name:        "plain text body",
			contentType: "text/plain",
			body:        "Invalid input",
			want:        "Invalid input",
		},
		{
			name:        "json without known fields falls back to raw body",
			contentType: "application/json",
			body:        `{"code": 17}`,
			want:        `{"code": 17}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusBadRequest)
				io.WriteString(w, tt.body)
			}))

			_, err := client.ListDoctors(context.Background())

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, "request failed: "+tt.want, apiErr.Error())
		})
	}
}

func TestEmptyErrorBodyFallsBackToStatusText(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.ListPatients(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusText(http.StatusServiceUnavailable), apiErr.Message)
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := New(srv.URL, time.Second)

	_, err := client.ListAdmins(context.Background())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "network error", netErr.Error())
	assert.NotNil(t, errors.Unwrap(netErr))
}

func TestContextCancellation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.ListDoctors(ctx)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestDeleteDoctorSendsActingAdminHeader(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/admin/doctors/42/delete", r.URL.Path)
		require.Equal(t, "7", r.Header.Get("adminUserId"))
		io.WriteString(w, "Doctor deleted successfully.")
	}))

	msg, err := client.DeleteDoctor(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.Equal(t, "Doctor deleted successfully.", msg)
}

func TestListDoctors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/admin/doctors", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id": 42, "user": {"id": 42, "fullName": "Jane Roe", "email": "jane@clinic.test", "contactInfo": "01234567890"}, "specialization": "Cardiology"}
		]`)
	}))

	doctors, err := client.ListDoctors(context.Background())
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Jane Roe", doctors[0].User.FullName)
	assert.Equal(t, "Cardiology", doctors[0].Specialization)
}

func TestGetMedicineSendsScopeParams(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/medicines/getMedicineById", r.URL.Path)
		require.Equal(t, "9", r.URL.Query().Get("companyId"))
		require.Equal(t, "3", r.URL.Query().Get("medicineId"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": 3, "name": "aspirin", "sideeffect0": "nausea"}`)
	}))

	medicine, err := client.GetMedicine(context.Background(), 9, 3)
	require.NoError(t, err)
	assert.Equal(t, "aspirin", medicine.Name)
	assert.Equal(t, "nausea", medicine.SideEffect0)
}

func TestCheckInteraction(t *testing.T) {
	t.Run("known interaction list", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "aspirin", r.URL.Query().Get("drug1"))
			require.Equal(t, "warfarin", r.URL.Query().Get("drug2"))
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `[{"id": 1, "drug1": "aspirin", "drug2": "warfarin", "interactionDescription": "increased bleeding risk"}]`)
		}))

		interactions, notice, err := client.CheckInteraction(context.Background(), "aspirin", "warfarin")
		require.NoError(t, err)
		assert.Empty(t, notice)
		require.Len(t, interactions, 1)
		assert.Equal(t, "increased bleeding risk", interactions[0].InteractionDescription)
	})

	t.Run("no interaction notice", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "No known interaction between aspirin and ibuprofen")
		}))

		interactions, notice, err := client.CheckInteraction(context.Background(), "aspirin", "ibuprofen")
		require.NoError(t, err)
		assert.Empty(t, interactions)
		assert.Equal(t, "No known interaction between aspirin and ibuprofen", notice)
	})
}

func TestUploadDataset(t *testing.T) {
	const csv = "name,substitute0,substitute1,use0,use1,use2,sideeffect0,sideeffect1,sideeffect2\naspirin,,,pain,,,nausea,,\n"

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/medicines/upload-dataset", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "9", r.FormValue("companyId"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "catalog.csv", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, csv, string(content))

		io.WriteString(w, "Dataset processed: 1 added, 0 updated.")
	}))

	msg, err := client.UploadDataset(context.Background(), 9, "catalog.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, "Dataset processed: 1 added, 0 updated.", msg)
}

func TestIsFavorite(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/favorites/exists/42/9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "true")
	}))

	exists, err := client.IsFavorite(context.Background(), 42, 9)
	require.NoError(t, err)
	assert.True(t, exists)
}
