package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medica/medica-web/gateway"
	"github.com/medica/medica-web/idcodec"
	"github.com/medica/medica-web/metrics"
	"github.com/medica/medica-web/validation"
	"github.com/medica/medica-web/views"
)

// DoctorHome renders the doctor dashboard.
func (h *Handler) DoctorHome(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	views.Render(w, http.StatusOK, "home", views.Page{
		Title:    "Doctor dashboard",
		FullName: fullName(s),
		Flash:    flash(s),
		Content: views.Home{Links: []views.Link{
			{Label: "Patients", URL: "/doctor/patients"},
			{Label: "Recommend treatment", URL: "/doctor/recommend"},
			{Label: "Medicine suitability", URL: "/doctor/suitability"},
			{Label: "Drug interactions", URL: "/doctor/interactions"},
			{Label: "Medicine search", URL: "/doctor/medicines"},
			{Label: "Pharma companies", URL: "/doctor/companies"},
		}},
	})
}

// Patients.

var patientFieldNames = []string{"name", "bloodType", "gender", "age", "phoneNumber", "history"}

func patientFormFields(values map[string]string) []views.Field {
	return []views.Field{
		{Name: "name", Label: "Name", Type: "text", Value: values["name"], Required: true},
		{Name: "bloodType", Label: "Blood type", Type: "text", Value: values["bloodType"],
			Options: []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}, Required: true},
		{Name: "gender", Label: "Gender", Type: "text", Value: values["gender"], Options: views.Genders, Required: true},
		{Name: "age", Label: "Age", Type: "number", Value: values["age"], Required: true},
		{Name: "phoneNumber", Label: "Phone number", Type: "text", Value: values["phoneNumber"], Required: true},
		{Name: "history", Label: "Medical history", Type: "textarea", Value: values["history"]},
	}
}

func patientFromValues(values map[string]string) gateway.Patient {
	age, _ := strconv.Atoi(values["age"])
	return gateway.Patient{
		Name:        values["name"],
		BloodType:   values["bloodType"],
		Gender:      values["gender"],
		Age:         age,
		PhoneNumber: values["phoneNumber"],
		History:     values["history"],
	}
}

func validatePatient(values map[string]string) *validation.FormValidator {
	age, err := strconv.Atoi(values["age"])
	if err != nil {
		age = -1
	}
	return validation.NewFormValidator().
		Require("Name", values["name"]).
		Require("Blood type", values["bloodType"]).
		Require("Gender", values["gender"]).
		Range("Age", age, 0, 130).
		Require("Phone number", values["phoneNumber"]).
		Phone("Phone number", values["phoneNumber"])
}

// ListPatients renders the patient table, filtered by the q parameter.
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	patients, err := h.backend.ListPatients(r.Context())
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		views.Render(w, http.StatusOK, "table", views.Page{
			Title:    "Patients",
			FullName: fullName(s),
			Error:    views.MsgLoadFailed,
			Content:  views.Table{EmptyMessage: views.MsgLoadFailed},
		})
		return
	}

	query := validation.SanitizeQuery(r.URL.Query().Get("q"), 100)
	patients = views.Filter(patients, query, func(p gateway.Patient) string { return p.Name })

	rows := make([]views.Row, 0, len(patients))
	for _, p := range patients {
		token := idcodec.Encode(p.ID)
		rows = append(rows, views.Row{
			Cells:     []string{p.Name, p.Gender, strconv.Itoa(p.Age), p.BloodType, p.PhoneNumber},
			DetailURL: "/doctor/patients/" + token,
			EditURL:   "/doctor/patients/" + token + "/edit",
			DeleteURL: "/doctor/patients/" + token + "/delete",
		})
	}

	views.Render(w, http.StatusOK, "table", views.Page{
		Title:    "Patients",
		FullName: fullName(s),
		Flash:    flash(s),
		Content: views.Table{
			Columns:      []string{"Name", "Gender", "Age", "Blood type", "Phone"},
			Rows:         rows,
			HasActions:   true,
			SearchAction: "/doctor/patients",
			Query:        query,
			NewURL:       "/doctor/patients/new",
			NewLabel:     "Add patient",
			EmptyMessage: "No patients found.",
		},
	})
}

// NewPatientForm renders an empty patient form.
func (h *Handler) NewPatientForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	h.renderPatientForm(w, fullName(s), "/doctor/patients", map[string]string{}, "", "", "")
}

// CreatePatient handles the new-patient submission.
func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	values := formValues(r, patientFieldNames...)
	if v := validatePatient(values); !v.Valid() {
		h.renderPatientForm(w, fullName(s), "/doctor/patients", values, "", v.Err(), "")
		return
	}

	_, err := h.backend.AddPatient(r.Context(), patientFromValues(values))
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderPatientForm(w, fullName(s), "/doctor/patients", values, "", userMessage(err), "")
		return
	}

	setFlash(s, "Patient added successfully.")
	http.Redirect(w, r, "/doctor/patients", http.StatusSeeOther)
}

// EditPatientForm loads a patient and renders the prefilled form.
func (h *Handler) EditPatientForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	patient, err := h.backend.GetPatient(r.Context(), id)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, views.MsgLoadFailed)
		http.Redirect(w, r, "/doctor/patients", http.StatusSeeOther)
		return
	}

	values := map[string]string{
		"name":        patient.Name,
		"bloodType":   patient.BloodType,
		"gender":      patient.Gender,
		"age":         strconv.Itoa(patient.Age),
		"phoneNumber": patient.PhoneNumber,
		"history":     patient.History,
	}
	action := "/doctor/patients/" + chi.URLParam(r, "id")
	h.renderPatientForm(w, fullName(s), action, values, views.Snapshot(values), "", "")
}

// UpdatePatient handles the edit submission, short-circuiting no-op saves.
func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	values := formValues(r, patientFieldNames...)
	snapshot := r.FormValue("snapshot")
	action := "/doctor/patients/" + chi.URLParam(r, "id")

	if !views.Changed(snapshot, values) {
		h.renderPatientForm(w, fullName(s), action, values, snapshot, "", views.MsgNoChanges)
		return
	}
	if v := validatePatient(values); !v.Valid() {
		h.renderPatientForm(w, fullName(s), action, values, snapshot, v.Err(), "")
		return
	}

	_, err = h.backend.UpdatePatient(r.Context(), id, patientFromValues(values))
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderPatientForm(w, fullName(s), action, values, snapshot, userMessage(err), "")
		return
	}

	setFlash(s, "Patient updated successfully.")
	http.Redirect(w, r, "/doctor/patients", http.StatusSeeOther)
}

// ConfirmDeletePatient renders the delete confirmation page.
func (h *Handler) ConfirmDeletePatient(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	prompt := "Delete this patient and their visit history? This cannot be undone."
	if patient, err := h.backend.GetPatient(r.Context(), id); err == nil {
		prompt = fmt.Sprintf("Delete patient %s and their visit history? This cannot be undone.", patient.Name)
	}

	views.Render(w, http.StatusOK, "confirm", views.Page{
		Title:    "Delete patient",
		FullName: fullName(s),
		Content: views.Confirm{
			Prompt:    prompt,
			Action:    "/doctor/patients/" + chi.URLParam(r, "id") + "/delete",
			CancelURL: "/doctor/patients",
		},
	})
}

// DeletePatient performs the confirmed deletion.
func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	msg, err := h.backend.DeletePatient(r.Context(), id)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, userMessage(err))
	} else {
		setFlash(s, msg)
	}
	http.Redirect(w, r, "/doctor/patients", http.StatusSeeOther)
}

func (h *Handler) renderPatientForm(w http.ResponseWriter, name, action string, values map[string]string, snapshot, errMsg, flashMsg string) {
	views.Render(w, http.StatusOK, "form", views.Page{
		Title:    "Patient",
		FullName: name,
		Error:    errMsg,
		Flash:    flashMsg,
		Content: views.Form{
			Action:      action,
			Snapshot:    snapshot,
			Fields:      patientFormFields(values),
			SubmitLabel: "Save",
			CancelURL:   "/doctor/patients",
		},
	})
}
