package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medica/medica-web/gateway"
	"github.com/medica/medica-web/idcodec"
	"github.com/medica/medica-web/metrics"
	"github.com/medica/medica-web/validation"
	"github.com/medica/medica-web/views"
)

var visitFieldNames = []string{"visitDate", "diagnosis", "symptoms", "prescribedMedicine", "treatmentEffect"}

func visitFormFields(values map[string]string) []views.Field {
	return []views.Field{
		{Name: "visitDate", Label: "Visit date", Type: "date", Value: values["visitDate"], Required: true},
		{Name: "diagnosis", Label: "Diagnosis", Type: "text", Value: values["diagnosis"], Required: true},
		{Name: "symptoms", Label: "Symptoms", Type: "textarea", Value: values["symptoms"]},
		{Name: "prescribedMedicine", Label: "Prescribed medicine", Type: "text", Value: values["prescribedMedicine"]},
		{Name: "treatmentEffect", Label: "Treatment effect", Type: "text", Value: values["treatmentEffect"]},
	}
}

func validateVisit(values map[string]string) *validation.FormValidator {
	return validation.NewFormValidator().
		Require("Visit date", values["visitDate"]).
		Date("Visit date", values["visitDate"]).
		Require("Diagnosis", values["diagnosis"])
}

// PatientDetail shows one patient with their visits, newest first.
func (h *Handler) PatientDetail(w http.ResponseWriter, r *http.Request) {
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

	visits, err := h.backend.ListVisits(r.Context(), id)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		// A patient without visits is a 404 upstream, not a failure
		visits = nil
	}

	visits = views.SortByTimeDesc(visits, func(v gateway.Visit) time.Time {
		t, err := time.Parse("2006-01-02", v.VisitDate)
		if err != nil {
			return time.Time{}
		}
		return t
	})

	patientToken := chi.URLParam(r, "id")
	rows := make([]views.Row, 0, len(visits))
	for _, v := range visits {
		visitToken := idcodec.Encode(v.ID)
		rows = append(rows, views.Row{
			Cells:     []string{v.VisitDate, v.Diagnosis, v.Symptoms, v.PrescribedMedicine, v.TreatmentEffect},
			EditURL:   "/doctor/patients/" + patientToken + "/visits/" + visitToken + "/edit",
			DeleteURL: "/doctor/patients/" + patientToken + "/visits/" + visitToken + "/delete",
		})
	}

	views.Render(w, http.StatusOK, "table", views.Page{
		Title:    "Visits for " + patient.Name,
		FullName: fullName(s),
		Flash:    flash(s),
		Content: views.Table{
			Columns:      []string{"Date", "Diagnosis", "Symptoms", "Medicine", "Effect"},
			Rows:         rows,
			HasActions:   true,
			NewURL:       "/doctor/patients/" + patientToken + "/visits/new",
			NewLabel:     "Add visit",
			EmptyMessage: "No visits recorded for this patient.",
		},
	})
}

// NewVisitForm renders an empty visit form for a patient.
func (h *Handler) NewVisitForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	patientToken := chi.URLParam(r, "id")
	action := "/doctor/patients/" + patientToken + "/visits"
	h.renderVisitForm(w, fullName(s), action, patientToken, map[string]string{}, "", "", "")
}

// CreateVisit records a new visit for a patient.
func (h *Handler) CreateVisit(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	doctorID, ok := userID(w, s)
	if !ok {
		return
	}
	patientID, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	patientToken := chi.URLParam(r, "id")
	action := "/doctor/patients/" + patientToken + "/visits"
	values := formValues(r, visitFieldNames...)
	if v := validateVisit(values); !v.Valid() {
		h.renderVisitForm(w, fullName(s), action, patientToken, values, "", v.Err(), "")
		return
	}

	_, err = h.backend.AddVisit(r.Context(), gateway.Visit{
		PatientID:          patientID,
		DoctorID:           doctorID,
		VisitDate:          values["visitDate"],
		Diagnosis:          values["diagnosis"],
		Symptoms:           values["symptoms"],
		PrescribedMedicine: values["prescribedMedicine"],
		TreatmentEffect:    values["treatmentEffect"],
	})
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderVisitForm(w, fullName(s), action, patientToken, values, "", userMessage(err), "")
		return
	}

	setFlash(s, "Visit recorded.")
	http.Redirect(w, r, "/doctor/patients/"+patientToken, http.StatusSeeOther)
}

// EditVisitForm renders the prefilled visit form. The visit values come
// from the patient's visit list since there is no single-visit read.
func (h *Handler) EditVisitForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	patientID, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	visitID, err := idcodec.Decode(chi.URLParam(r, "visitID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	patientToken := chi.URLParam(r, "id")
	visits, err := h.backend.ListVisits(r.Context(), patientID)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, views.MsgLoadFailed)
		http.Redirect(w, r, "/doctor/patients/"+patientToken, http.StatusSeeOther)
		return
	}

	var visit *gateway.Visit
	for i := range visits {
		if visits[i].ID == visitID {
			visit = &visits[i]
			break
		}
	}
	if visit == nil {
		http.NotFound(w, r)
		return
	}

	values := map[string]string{
		"visitDate":          visit.VisitDate,
		"diagnosis":          visit.Diagnosis,
		"symptoms":           visit.Symptoms,
		"prescribedMedicine": visit.PrescribedMedicine,
		"treatmentEffect":    visit.TreatmentEffect,
	}
	action := "/doctor/patients/" + patientToken + "/visits/" + chi.URLParam(r, "visitID")
	h.renderVisitForm(w, fullName(s), action, patientToken, values, views.Snapshot(values), "", "")
}

// UpdateVisit handles the visit edit submission.
func (h *Handler) UpdateVisit(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	visitID, err := idcodec.Decode(chi.URLParam(r, "visitID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	patientToken := chi.URLParam(r, "id")
	action := "/doctor/patients/" + patientToken + "/visits/" + chi.URLParam(r, "visitID")
	values := formValues(r, visitFieldNames...)
	snapshot := r.FormValue("snapshot")

	if !views.Changed(snapshot, values) {
		h.renderVisitForm(w, fullName(s), action, patientToken, values, snapshot, "", views.MsgNoChanges)
		return
	}
	if v := validateVisit(values); !v.Valid() {
		h.renderVisitForm(w, fullName(s), action, patientToken, values, snapshot, v.Err(), "")
		return
	}

	_, err = h.backend.UpdateVisit(r.Context(), visitID, gateway.Visit{
		VisitDate:          values["visitDate"],
		Diagnosis:          values["diagnosis"],
		Symptoms:           values["symptoms"],
		PrescribedMedicine: values["prescribedMedicine"],
		TreatmentEffect:    values["treatmentEffect"],
	})
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderVisitForm(w, fullName(s), action, patientToken, values, snapshot, userMessage(err), "")
		return
	}

	setFlash(s, "Visit updated.")
	http.Redirect(w, r, "/doctor/patients/"+patientToken, http.StatusSeeOther)
}

// ConfirmDeleteVisit renders the delete confirmation page.
func (h *Handler) ConfirmDeleteVisit(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	if _, err := idcodec.Decode(chi.URLParam(r, "visitID")); err != nil {
		http.NotFound(w, r)
		return
	}

	patientToken := chi.URLParam(r, "id")
	views.Render(w, http.StatusOK, "confirm", views.Page{
		Title:    "Delete visit",
		FullName: fullName(s),
		Content: views.Confirm{
			Prompt:    "Delete this visit record? This cannot be undone.",
			Action:    "/doctor/patients/" + patientToken + "/visits/" + chi.URLParam(r, "visitID") + "/delete",
			CancelURL: "/doctor/patients/" + patientToken,
		},
	})
}

// DeleteVisit removes one visit and returns to the patient detail.
func (h *Handler) DeleteVisit(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	visitID, err := idcodec.Decode(chi.URLParam(r, "visitID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	msg, err := h.backend.DeleteVisit(r.Context(), visitID)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, userMessage(err))
	} else {
		setFlash(s, msg)
	}
	http.Redirect(w, r, "/doctor/patients/"+chi.URLParam(r, "id"), http.StatusSeeOther)
}

func (h *Handler) renderVisitForm(w http.ResponseWriter, name, action, patientToken string, values map[string]string, snapshot, errMsg, flashMsg string) {
	views.Render(w, http.StatusOK, "form", views.Page{
		Title:    "Visit",
		FullName: name,
		Error:    errMsg,
		Flash:    flashMsg,
		Content: views.Form{
			Action:      action,
			Snapshot:    snapshot,
			Fields:      visitFormFields(values),
			SubmitLabel: "Save",
			CancelURL:   "/doctor/patients/" + patientToken,
		},
	})
}
