package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medica/medica-web/gateway"
	"github.com/medica/medica-web/idcodec"
	"github.com/medica/medica-web/metrics"
	"github.com/medica/medica-web/validation"
	"github.com/medica/medica-web/views"
)

// pathID decodes the id token from the route.
func pathID(r *http.Request) (int64, error) {
	return idcodec.Decode(chi.URLParam(r, "id"))
}

// formValues collects the named form fields into the map shape the
// snapshot diff works on.
func formValues(r *http.Request, names ...string) map[string]string {
	values := make(map[string]string, len(names))
	for _, name := range names {
		values[name] = strings.TrimSpace(r.FormValue(name))
	}
	return values
}

// AdminHome renders the admin dashboard.
func (h *Handler) AdminHome(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	views.Render(w, http.StatusOK, "home", views.Page{
		Title:    "Admin dashboard",
		FullName: fullName(s),
		Flash:    flash(s),
		Content: views.Home{Links: []views.Link{
			{Label: "Doctors", URL: "/admin/doctors"},
			{Label: "Admins", URL: "/admin/admins"},
			{Label: "Pharma companies", URL: "/admin/companies"},
			{Label: "Action logs", URL: "/admin/logs"},
		}},
	})
}

// Doctors.

var doctorFieldNames = []string{"fullName", "email", "contactInfo", "specialization"}

func doctorFormFields(values map[string]string, includePassword bool) []views.Field {
	fields := []views.Field{
		{Name: "fullName", Label: "Full name", Type: "text", Value: values["fullName"], Required: true},
		{Name: "email", Label: "Email", Type: "email", Value: values["email"], Required: true},
	}
	if includePassword {
		fields = append(fields, views.Field{Name: "password", Label: "Password", Type: "password", Required: true})
	}
	fields = append(fields,
		views.Field{Name: "contactInfo", Label: "Contact info", Type: "text", Value: values["contactInfo"], Required: true},
		views.Field{Name: "specialization", Label: "Specialization", Type: "text", Value: values["specialization"], Required: true},
	)
	return fields
}

// ListDoctors renders the doctor table, filtered by the q parameter.
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	doctors, err := h.backend.ListDoctors(r.Context())
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		views.Render(w, http.StatusOK, "table", views.Page{
			Title:    "Doctors",
			FullName: fullName(s),
			Error:    views.MsgLoadFailed,
			Content:  views.Table{EmptyMessage: views.MsgLoadFailed},
		})
		return
	}

	query := validation.SanitizeQuery(r.URL.Query().Get("q"), 100)
	doctors = views.Filter(doctors, query, func(d gateway.Doctor) string {
		return d.User.FullName + " " + d.User.Email
	})

	rows := make([]views.Row, 0, len(doctors))
	for _, d := range doctors {
		token := idcodec.Encode(d.ID)
		rows = append(rows, views.Row{
			Cells:     []string{d.User.FullName, d.User.Email, d.User.ContactInfo, d.Specialization},
			EditURL:   "/admin/doctors/" + token + "/edit",
			DeleteURL: "/admin/doctors/" + token + "/delete",
		})
	}

	views.Render(w, http.StatusOK, "table", views.Page{
		Title:    "Doctors",
		FullName: fullName(s),
		Flash:    flash(s),
		Content: views.Table{
			Columns:      []string{"Name", "Email", "Contact", "Specialization"},
			Rows:         rows,
			HasActions:   true,
			SearchAction: "/admin/doctors",
			Query:        query,
			NewURL:       "/admin/doctors/new",
			NewLabel:     "Add doctor",
			EmptyMessage: "No doctors found.",
		},
	})
}

// NewDoctorForm renders an empty doctor form.
func (h *Handler) NewDoctorForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	h.renderDoctorForm(w, fullName(s), "/admin/doctors", map[string]string{}, "", "")
}

// CreateDoctor handles the new-doctor submission.
func (h *Handler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	adminID, ok := userID(w, s)
	if !ok {
		return
	}

	values := formValues(r, doctorFieldNames...)
	password := r.FormValue("password")

	v := validation.NewFormValidator().
		Require("Full name", values["fullName"]).
		Require("Email", values["email"]).
		Email("Email", values["email"]).
		Require("Password", password).
		Password("Password", password).
		Phone("Contact info", values["contactInfo"]).
		Require("Contact info", values["contactInfo"]).
		Require("Specialization", values["specialization"])
	if !v.Valid() {
		h.renderDoctorForm(w, fullName(s), "/admin/doctors", values, "", v.Err())
		return
	}

	_, err := h.backend.CreateDoctor(r.Context(), gateway.DoctorRequest{
		FullName:       values["fullName"],
		Email:          values["email"],
		Password:       password,
		ContactInfo:    values["contactInfo"],
		Specialization: values["specialization"],
		UserID:         adminID,
	})
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderDoctorForm(w, fullName(s), "/admin/doctors", values, "", userMessage(err))
		return
	}

	setFlash(s, "Doctor added successfully.")
	http.Redirect(w, r, "/admin/doctors", http.StatusSeeOther)
}

// EditDoctorForm loads a doctor and renders the prefilled form with a
// snapshot of the loaded values.
func (h *Handler) EditDoctorForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	doctor, err := h.backend.GetDoctor(r.Context(), id)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, views.MsgLoadFailed)
		http.Redirect(w, r, "/admin/doctors", http.StatusSeeOther)
		return
	}

	values := map[string]string{
		"fullName":       doctor.User.FullName,
		"email":          doctor.User.Email,
		"contactInfo":    doctor.User.ContactInfo,
		"specialization": doctor.Specialization,
	}
	action := "/admin/doctors/" + chi.URLParam(r, "id")
	h.renderDoctorForm(w, fullName(s), action, values, views.Snapshot(values), "")
}

// UpdateDoctor handles the edit submission, short-circuiting no-op saves.
func (h *Handler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	adminID, ok := userID(w, s)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	values := formValues(r, doctorFieldNames...)
	snapshot := r.FormValue("snapshot")
	action := "/admin/doctors/" + chi.URLParam(r, "id")

	if !views.Changed(snapshot, values) {
		h.renderDoctorFormFlash(w, fullName(s), action, values, snapshot, views.MsgNoChanges)
		return
	}

	v := validation.NewFormValidator().
		Require("Full name", values["fullName"]).
		Require("Email", values["email"]).
		Email("Email", values["email"]).
		Require("Contact info", values["contactInfo"]).
		Phone("Contact info", values["contactInfo"]).
		Require("Specialization", values["specialization"])
	if !v.Valid() {
		h.renderDoctorForm(w, fullName(s), action, values, snapshot, v.Err())
		return
	}

	_, err = h.backend.UpdateDoctor(r.Context(), id, gateway.DoctorRequest{
		FullName:       values["fullName"],
		Email:          values["email"],
		ContactInfo:    values["contactInfo"],
		Specialization: values["specialization"],
		UserID:         adminID,
	})
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderDoctorForm(w, fullName(s), action, values, snapshot, userMessage(err))
		return
	}

	setFlash(s, "Doctor updated successfully.")
	http.Redirect(w, r, "/admin/doctors", http.StatusSeeOther)
}

// ConfirmDeleteDoctor renders the delete confirmation page.
func (h *Handler) ConfirmDeleteDoctor(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	doctor, err := h.backend.GetDoctor(r.Context(), id)
	metrics.ObserveUpstream("backend", err)
	prompt := "Delete this doctor? This cannot be undone."
	if err == nil {
		prompt = fmt.Sprintf("Delete doctor %s? This cannot be undone.", doctor.User.FullName)
	}

	views.Render(w, http.StatusOK, "confirm", views.Page{
		Title:    "Delete doctor",
		FullName: fullName(s),
		Content: views.Confirm{
			Prompt:    prompt,
			Action:    "/admin/doctors/" + chi.URLParam(r, "id") + "/delete",
			CancelURL: "/admin/doctors",
		},
	})
}

// DeleteDoctor performs the confirmed deletion.
func (h *Handler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	adminID, ok := userID(w, s)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	msg, err := h.backend.DeleteDoctor(r.Context(), id, adminID)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, userMessage(err))
	} else {
		setFlash(s, msg)
	}
	http.Redirect(w, r, "/admin/doctors", http.StatusSeeOther)
}

func (h *Handler) renderDoctorForm(w http.ResponseWriter, name, action string, values map[string]string, snapshot, errMsg string) {
	views.Render(w, http.StatusOK, "form", views.Page{
		Title:    "Doctor",
		FullName: name,
		Error:    errMsg,
		Content: views.Form{
			Action:      action,
			Snapshot:    snapshot,
			Fields:      doctorFormFields(values, snapshot == ""),
			SubmitLabel: "Save",
			CancelURL:   "/admin/doctors",
		},
	})
}

func (h *Handler) renderDoctorFormFlash(w http.ResponseWriter, name, action string, values map[string]string, snapshot, flashMsg string) {
	views.Render(w, http.StatusOK, "form", views.Page{
		Title:    "Doctor",
		FullName: name,
		Flash:    flashMsg,
		Content: views.Form{
			Action:      action,
			Snapshot:    snapshot,
			Fields:      doctorFormFields(values, false),
			SubmitLabel: "Save",
			CancelURL:   "/admin/doctors",
		},
	})
}
