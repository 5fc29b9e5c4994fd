package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medica/medica-web/dataset"
	"github.com/medica/medica-web/gateway"
	"github.com/medica/medica-web/idcodec"
	"github.com/medica/medica-web/logging"
	"github.com/medica/medica-web/metrics"
	"github.com/medica/medica-web/session"
	"github.com/medica/medica-web/validation"
	"github.com/medica/medica-web/views"
)

// maxDatasetSize caps catalog uploads at 10 MB.
const maxDatasetSize = 10 << 20

// companyID reads the pharma account's company id from the session.
func companyID(w http.ResponseWriter, s *session.Session) (int64, bool) {
	raw, ok := s.Get(session.KeyCompanyID)
	if !ok {
		views.Deny(w)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		views.Deny(w)
		return 0, false
	}
	return id, true
}

// PharmaHome renders the pharma company dashboard.
func (h *Handler) PharmaHome(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	views.Render(w, http.StatusOK, "home", views.Page{
		Title:    "Company dashboard",
		FullName: fullName(s),
		Flash:    flash(s),
		Content: views.Home{Links: []views.Link{
			{Label: "Our medicines", URL: "/pharma/medicines"},
			{Label: "Add medicine", URL: "/pharma/medicines/new"},
			{Label: "Upload catalog", URL: "/pharma/upload"},
		}},
	})
}

// Medicines.

var medicineFieldNames = []string{
	"name", "substitute0", "substitute1",
	"use0", "use1", "use2",
	"sideeffect0", "sideeffect1", "sideeffect2",
}

func medicineFormFields(values map[string]string) []views.Field {
	return []views.Field{
		{Name: "name", Label: "Name", Type: "text", Value: values["name"], Required: true},
		{Name: "substitute0", Label: "Substitute 1", Type: "text", Value: values["substitute0"]},
		{Name: "substitute1", Label: "Substitute 2", Type: "text", Value: values["substitute1"]},
		{Name: "use0", Label: "Use 1", Type: "text", Value: values["use0"], Required: true},
		{Name: "use1", Label: "Use 2", Type: "text", Value: values["use1"]},
		{Name: "use2", Label: "Use 3", Type: "text", Value: values["use2"]},
		{Name: "sideeffect0", Label: "Side effect 1", Type: "text", Value: values["sideeffect0"]},
		{Name: "sideeffect1", Label: "Side effect 2", Type: "text", Value: values["sideeffect1"]},
		{Name: "sideeffect2", Label: "Side effect 3", Type: "text", Value: values["sideeffect2"]},
	}
}

func medicineFromValues(values map[string]string) gateway.Medicine {
	return gateway.Medicine{
		Name:        values["name"],
		Substitute0: values["substitute0"],
		Substitute1: values["substitute1"],
		Use0:        values["use0"],
		Use1:        values["use1"],
		Use2:        values["use2"],
		SideEffect0: values["sideeffect0"],
		SideEffect1: values["sideeffect1"],
		SideEffect2: values["sideeffect2"],
	}
}

func validateMedicine(values map[string]string) *validation.FormValidator {
	return validation.NewFormValidator().
		Require("Name", values["name"]).
		Require("Use 1", values["use0"])
}

// ListOwnMedicines renders the company's own catalog.
func (h *Handler) ListOwnMedicines(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	company, ok := companyID(w, s)
	if !ok {
		return
	}

	medicines, err := h.backend.ListMedicinesByCompany(r.Context(), company)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		views.Render(w, http.StatusOK, "table", views.Page{
			Title:    "Our medicines",
			FullName: fullName(s),
			Error:    views.MsgLoadFailed,
			Content:  views.Table{EmptyMessage: views.MsgLoadFailed},
		})
		return
	}

	query := validation.SanitizeQuery(r.URL.Query().Get("q"), 100)
	medicines = views.Filter(medicines, query, func(m gateway.Medicine) string { return m.Name })

	rows := make([]views.Row, 0, len(medicines))
	for _, m := range medicines {
		token := idcodec.Encode(m.ID)
		rows = append(rows, views.Row{
			Cells:     []string{m.Name, m.Use0, m.SideEffect0},
			EditURL:   "/pharma/medicines/" + token + "/edit",
			DeleteURL: "/pharma/medicines/" + token + "/delete",
		})
	}

	views.Render(w, http.StatusOK, "table", views.Page{
		Title:    "Our medicines",
		FullName: fullName(s),
		Flash:    flash(s),
		Content: views.Table{
			Columns:      []string{"Name", "Primary use", "Side effect"},
			Rows:         rows,
			HasActions:   true,
			SearchAction: "/pharma/medicines",
			Query:        query,
			NewURL:       "/pharma/medicines/new",
			NewLabel:     "Add medicine",
			EmptyMessage: "Your catalog is empty.",
		},
	})
}

// NewMedicineForm renders an empty medicine form.
func (h *Handler) NewMedicineForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	h.renderMedicineForm(w, fullName(s), "/pharma/medicines", map[string]string{}, "", "", "")
}

// CreateMedicine adds one medicine to the company catalog.
func (h *Handler) CreateMedicine(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	company, ok := companyID(w, s)
	if !ok {
		return
	}

	values := formValues(r, medicineFieldNames...)
	if v := validateMedicine(values); !v.Valid() {
		h.renderMedicineForm(w, fullName(s), "/pharma/medicines", values, "", v.Err(), "")
		return
	}

	msg, err := h.backend.AddMedicine(r.Context(), gateway.AddMedicineRequest{
		Medicine:  medicineFromValues(values),
		CompanyID: company,
	})
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderMedicineForm(w, fullName(s), "/pharma/medicines", values, "", userMessage(err), "")
		return
	}

	setFlash(s, msg)
	http.Redirect(w, r, "/pharma/medicines", http.StatusSeeOther)
}

// EditMedicineForm loads a medicine and renders the prefilled form.
func (h *Handler) EditMedicineForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	company, ok := companyID(w, s)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	medicine, err := h.backend.GetMedicine(r.Context(), company, id)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, views.MsgLoadFailed)
		http.Redirect(w, r, "/pharma/medicines", http.StatusSeeOther)
		return
	}

	values := map[string]string{
		"name":        medicine.Name,
		"substitute0": medicine.Substitute0,
		"substitute1": medicine.Substitute1,
		"use0":        medicine.Use0,
		"use1":        medicine.Use1,
		"use2":        medicine.Use2,
		"sideeffect0": medicine.SideEffect0,
		"sideeffect1": medicine.SideEffect1,
		"sideeffect2": medicine.SideEffect2,
	}
	action := "/pharma/medicines/" + chi.URLParam(r, "id")
	h.renderMedicineForm(w, fullName(s), action, values, views.Snapshot(values), "", "")
}

// UpdateMedicine handles the edit submission, short-circuiting no-op saves.
func (h *Handler) UpdateMedicine(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	company, ok := companyID(w, s)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	values := formValues(r, medicineFieldNames...)
	snapshot := r.FormValue("snapshot")
	action := "/pharma/medicines/" + chi.URLParam(r, "id")

	if !views.Changed(snapshot, values) {
		h.renderMedicineForm(w, fullName(s), action, values, snapshot, "", views.MsgNoChanges)
		return
	}
	if v := validateMedicine(values); !v.Valid() {
		h.renderMedicineForm(w, fullName(s), action, values, snapshot, v.Err(), "")
		return
	}

	msg, err := h.backend.UpdateMedicine(r.Context(), company, id, medicineFromValues(values))
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderMedicineForm(w, fullName(s), action, values, snapshot, userMessage(err), "")
		return
	}

	setFlash(s, msg)
	http.Redirect(w, r, "/pharma/medicines", http.StatusSeeOther)
}

// ConfirmDeleteMedicine renders the delete confirmation page.
func (h *Handler) ConfirmDeleteMedicine(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	company, ok := companyID(w, s)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	prompt := "Remove this medicine from your catalog?"
	if medicine, err := h.backend.GetMedicine(r.Context(), company, id); err == nil {
		prompt = fmt.Sprintf("Remove %s from your catalog?", medicine.Name)
	}

	views.Render(w, http.StatusOK, "confirm", views.Page{
		Title:    "Delete medicine",
		FullName: fullName(s),
		Content: views.Confirm{
			Prompt:    prompt,
			Action:    "/pharma/medicines/" + chi.URLParam(r, "id") + "/delete",
			CancelURL: "/pharma/medicines",
		},
	})
}

// DeleteMedicine performs the confirmed deletion.
func (h *Handler) DeleteMedicine(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	company, ok := companyID(w, s)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	msg, err := h.backend.DeleteMedicine(r.Context(), company, id)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, userMessage(err))
	} else {
		setFlash(s, msg)
	}
	http.Redirect(w, r, "/pharma/medicines", http.StatusSeeOther)
}

func (h *Handler) renderMedicineForm(w http.ResponseWriter, name, action string, values map[string]string, snapshot, errMsg, flashMsg string) {
	views.Render(w, http.StatusOK, "form", views.Page{
		Title:    "Medicine",
		FullName: name,
		Error:    errMsg,
		Flash:    flashMsg,
		Content: views.Form{
			Action:      action,
			Snapshot:    snapshot,
			Fields:      medicineFormFields(values),
			SubmitLabel: "Save",
			CancelURL:   "/pharma/medicines",
		},
	})
}

// Catalog upload.

// UploadForm renders the CSV upload form.
func (h *Handler) UploadForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	h.renderUploadForm(w, fullName(s), "")
}

// UploadDataset parses the uploaded catalog locally for a quality report,
// then forwards the file to the backend's bulk import.
func (h *Handler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	company, ok := companyID(w, s)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxDatasetSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.renderUploadForm(w, fullName(s), "Please choose a CSV file to upload.")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		h.renderUploadForm(w, fullName(s), "Only CSV files are accepted.")
		return
	}

	// The file is parsed twice: once locally for the quality report and
	// once streamed to the backend, so buffer it.
	raw, err := io.ReadAll(file)
	if err != nil {
		h.renderUploadForm(w, fullName(s), "Could not read the uploaded file.")
		return
	}

	medicines, report, err := dataset.ParseCatalog(bytes.NewReader(raw))
	if err != nil {
		h.renderUploadForm(w, fullName(s), userDatasetMessage(err))
		return
	}

	if report.HasIssues() {
		logging.Warn("Catalog upload has quality issues",
			"company_id", company,
			"total_rows", report.TotalRows,
			"rows_without_name", report.RowsWithoutName,
			"rows_without_use", report.RowsWithoutUse,
			"duplicate_names", len(report.DuplicateNames))
	}

	msg, err := h.backend.UploadDataset(r.Context(), company, header.Filename, bytes.NewReader(raw))
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderUploadForm(w, fullName(s), userMessage(err))
		return
	}

	lines := []string{
		msg,
		fmt.Sprintf("Rows processed: %d, medicines imported: %d.", report.TotalRows, len(medicines)),
	}
	if report.RowsWithoutName > 0 {
		lines = append(lines, fmt.Sprintf("Skipped %d rows with no medicine name.", report.RowsWithoutName))
	}
	if report.RowsWithoutUse > 0 {
		lines = append(lines, fmt.Sprintf("%d medicines have no use listed.", report.RowsWithoutUse))
	}
	if len(report.DuplicateNames) > 0 {
		lines = append(lines, "Duplicate names: "+strings.Join(report.DuplicateNames, ", ")+".")
	}

	views.Render(w, http.StatusOK, "result", views.Page{
		Title:    "Catalog uploaded",
		FullName: fullName(s),
		Content: views.Result{
			Lines:   lines,
			BackURL: "/pharma/medicines",
		},
	})
}

func userDatasetMessage(err error) string {
	if err == dataset.ErrEmptyFile {
		return "The file has no data rows."
	}
	return "The file does not look like a medicine catalog: " + err.Error()
}

func (h *Handler) renderUploadForm(w http.ResponseWriter, name, errMsg string) {
	views.Render(w, http.StatusOK, "form", views.Page{
		Title:    "Upload catalog",
		FullName: name,
		Error:    errMsg,
		Content: views.Form{
			Action:      "/pharma/upload",
			Multipart:   true,
			Fields:      []views.Field{{Name: "file", Label: "Catalog CSV", Type: "file", Required: true}},
			SubmitLabel: "Upload",
			CancelURL:   "/pharma",
		},
	})
}
