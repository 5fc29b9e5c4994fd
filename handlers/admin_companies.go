package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medica/medica-web/gateway"
	"github.com/medica/medica-web/idcodec"
	"github.com/medica/medica-web/metrics"
	"github.com/medica/medica-web/validation"
	"github.com/medica/medica-web/views"
)

var companyFieldNames = []string{"fullName", "email", "contactInfo", "location"}

func companyFormFields(values map[string]string, includePassword bool) []views.Field {
	fields := []views.Field{
		{Name: "fullName", Label: "Company name", Type: "text", Value: values["fullName"], Required: true},
		{Name: "email", Label: "Email", Type: "email", Value: values["email"], Required: true},
	}
	if includePassword {
		fields = append(fields, views.Field{Name: "password", Label: "Password", Type: "password", Required: true})
	}
	fields = append(fields,
		views.Field{Name: "contactInfo", Label: "Contact info", Type: "text", Value: values["contactInfo"], Required: true},
		views.Field{Name: "location", Label: "Location", Type: "text", Value: values["location"], Required: true},
	)
	return fields
}

// ListCompanies renders the pharma company table.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	companies, err := h.backend.ListPharmaCompanies(r.Context())
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		views.Render(w, http.StatusOK, "table", views.Page{
			Title:    "Pharma companies",
			FullName: fullName(s),
			Error:    views.MsgLoadFailed,
			Content:  views.Table{EmptyMessage: views.MsgLoadFailed},
		})
		return
	}

	query := validation.SanitizeQuery(r.URL.Query().Get("q"), 100)
	companies = views.Filter(companies, query, func(c gateway.PharmaCompany) string {
		return c.User.FullName + " " + c.User.Email
	})

	rows := make([]views.Row, 0, len(companies))
	for _, c := range companies {
		token := idcodec.Encode(c.ID)
		rows = append(rows, views.Row{
			Cells:     []string{c.User.FullName, c.User.Email, c.User.ContactInfo, c.Location},
			EditURL:   "/admin/companies/" + token + "/edit",
			DeleteURL: "/admin/companies/" + token + "/delete",
		})
	}

	views.Render(w, http.StatusOK, "table", views.Page{
		Title:    "Pharma companies",
		FullName: fullName(s),
		Flash:    flash(s),
		Content: views.Table{
			Columns:      []string{"Name", "Email", "Contact", "Location"},
			Rows:         rows,
			HasActions:   true,
			SearchAction: "/admin/companies",
			Query:        query,
			NewURL:       "/admin/companies/new",
			NewLabel:     "Register company",
			EmptyMessage: "No companies registered.",
		},
	})
}

// NewCompanyForm renders an empty registration form.
func (h *Handler) NewCompanyForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	h.renderCompanyForm(w, fullName(s), "/admin/companies", map[string]string{}, "", "", "")
}

// CreateCompany handles the registration submission.
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	actingID, ok := userID(w, s)
	if !ok {
		return
	}

	values := formValues(r, companyFieldNames...)
	password := r.FormValue("password")

	v := validation.NewFormValidator().
		Require("Company name", values["fullName"]).
		Require("Email", values["email"]).
		Email("Email", values["email"]).
		Require("Password", password).
		Password("Password", password).
		Require("Contact info", values["contactInfo"]).
		Phone("Contact info", values["contactInfo"]).
		Require("Location", values["location"])
	if !v.Valid() {
		h.renderCompanyForm(w, fullName(s), "/admin/companies", values, "", v.Err(), "")
		return
	}

	_, err := h.backend.RegisterPharmaCompany(r.Context(), gateway.PharmaRegisterRequest{
		FullName:    values["fullName"],
		Email:       values["email"],
		Password:    password,
		ContactInfo: values["contactInfo"],
		Location:    values["location"],
		AdminID:     actingID,
	})
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderCompanyForm(w, fullName(s), "/admin/companies", values, "", userMessage(err), "")
		return
	}

	setFlash(s, "Company registered successfully.")
	http.Redirect(w, r, "/admin/companies", http.StatusSeeOther)
}

// EditCompanyForm loads a company and renders the prefilled form.
func (h *Handler) EditCompanyForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	company, err := h.backend.GetPharmaCompany(r.Context(), id)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, views.MsgLoadFailed)
		http.Redirect(w, r, "/admin/companies", http.StatusSeeOther)
		return
	}

	values := map[string]string{
		"fullName":    company.User.FullName,
		"email":       company.User.Email,
		"contactInfo": company.User.ContactInfo,
		"location":    company.Location,
	}
	action := "/admin/companies/" + chi.URLParam(r, "id")
	h.renderCompanyForm(w, fullName(s), action, values, views.Snapshot(values), "", "")
}

// UpdateCompany handles the edit submission, short-circuiting no-op saves.
func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	values := formValues(r, companyFieldNames...)
	snapshot := r.FormValue("snapshot")
	action := "/admin/companies/" + chi.URLParam(r, "id")

	if !views.Changed(snapshot, values) {
		h.renderCompanyForm(w, fullName(s), action, values, snapshot, "", views.MsgNoChanges)
		return
	}

	v := validation.NewFormValidator().
		Require("Company name", values["fullName"]).
		Require("Email", values["email"]).
		Email("Email", values["email"]).
		Require("Contact info", values["contactInfo"]).
		Phone("Contact info", values["contactInfo"]).
		Require("Location", values["location"])
	if !v.Valid() {
		h.renderCompanyForm(w, fullName(s), action, values, snapshot, v.Err(), "")
		return
	}

	_, err = h.backend.UpdatePharmaCompany(r.Context(), id, gateway.PharmaCompany{
		User: gateway.User{
			FullName:    values["fullName"],
			Email:       values["email"],
			ContactInfo: values["contactInfo"],
		},
		Location: values["location"],
	})
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderCompanyForm(w, fullName(s), action, values, snapshot, userMessage(err), "")
		return
	}

	setFlash(s, "Company updated successfully.")
	http.Redirect(w, r, "/admin/companies", http.StatusSeeOther)
}

// ConfirmDeleteCompany renders the delete confirmation page.
func (h *Handler) ConfirmDeleteCompany(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	if _, err := pathID(r); err != nil {
		http.NotFound(w, r)
		return
	}

	views.Render(w, http.StatusOK, "confirm", views.Page{
		Title:    "Delete company",
		FullName: fullName(s),
		Content: views.Confirm{
			Prompt:    "Delete this company and its catalog? This cannot be undone.",
			Action:    "/admin/companies/" + chi.URLParam(r, "id") + "/delete",
			CancelURL: "/admin/companies",
		},
	})
}

// DeleteCompany performs the confirmed deletion.
func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	actingID, ok := userID(w, s)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	msg, err := h.backend.DeletePharmaCompany(r.Context(), id, actingID)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, userMessage(err))
	} else {
		setFlash(s, msg)
	}
	http.Redirect(w, r, "/admin/companies", http.StatusSeeOther)
}

func (h *Handler) renderCompanyForm(w http.ResponseWriter, name, action string, values map[string]string, snapshot, errMsg, flashMsg string) {
	views.Render(w, http.StatusOK, "form", views.Page{
		Title:    "Pharma company",
		FullName: name,
		Error:    errMsg,
		Flash:    flashMsg,
		Content: views.Form{
			Action:      action,
			Snapshot:    snapshot,
			Fields:      companyFormFields(values, snapshot == "" && flashMsg == ""),
			SubmitLabel: "Save",
			CancelURL:   "/admin/companies",
		},
	})
}
