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

var adminFieldNames = []string{"fullName", "email", "contactInfo"}

func adminFormFields(values map[string]string, includePassword bool) []views.Field {
	fields := []views.Field{
		{Name: "fullName", Label: "Full name", Type: "text", Value: values["fullName"], Required: true},
		{Name: "email", Label: "Email", Type: "email", Value: values["email"], Required: true},
	}
	if includePassword {
		fields = append(fields, views.Field{Name: "password", Label: "Password", Type: "password", Required: true})
	}
	fields = append(fields, views.Field{Name: "contactInfo", Label: "Contact info", Type: "text", Value: values["contactInfo"], Required: true})
	return fields
}

// ListAdmins renders the admin accounts table.
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	admins, err := h.backend.ListAdmins(r.Context())
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		views.Render(w, http.StatusOK, "table", views.Page{
			Title:    "Admins",
			FullName: fullName(s),
			Error:    views.MsgLoadFailed,
			Content:  views.Table{EmptyMessage: views.MsgLoadFailed},
		})
		return
	}

	query := validation.SanitizeQuery(r.URL.Query().Get("q"), 100)
	admins = views.Filter(admins, query, func(a gateway.User) string { return a.FullName + " " + a.Email })

	rows := make([]views.Row, 0, len(admins))
	for _, a := range admins {
		token := idcodec.Encode(a.ID)
		rows = append(rows, views.Row{
			Cells:     []string{a.FullName, a.Email, a.ContactInfo},
			EditURL:   "/admin/admins/" + token + "/edit",
			DeleteURL: "/admin/admins/" + token + "/delete",
		})
	}

	views.Render(w, http.StatusOK, "table", views.Page{
		Title:    "Admins",
		FullName: fullName(s),
		Flash:    flash(s),
		Content: views.Table{
			Columns:      []string{"Name", "Email", "Contact"},
			Rows:         rows,
			HasActions:   true,
			SearchAction: "/admin/admins",
			Query:        query,
			NewURL:       "/admin/admins/new",
			NewLabel:     "Add admin",
			EmptyMessage: "No admins found.",
		},
	})
}

// NewAdminForm renders an empty admin form.
func (h *Handler) NewAdminForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	h.renderAdminForm(w, fullName(s), "/admin/admins", map[string]string{}, "", "", "")
}

// CreateAdmin handles the new-admin submission.
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	actingID, ok := userID(w, s)
	if !ok {
		return
	}

	values := formValues(r, adminFieldNames...)
	password := r.FormValue("password")

	v := validation.NewFormValidator().
		Require("Full name", values["fullName"]).
		Require("Email", values["email"]).
		Email("Email", values["email"]).
		Require("Password", password).
		Password("Password", password).
		Require("Contact info", values["contactInfo"]).
		Phone("Contact info", values["contactInfo"])
	if !v.Valid() {
		h.renderAdminForm(w, fullName(s), "/admin/admins", values, "", v.Err(), "")
		return
	}

	_, err := h.backend.CreateAdmin(r.Context(), gateway.AdminRequest{
		FullName:    values["fullName"],
		Email:       values["email"],
		Password:    password,
		ContactInfo: values["contactInfo"],
		AdminID:     actingID,
	})
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderAdminForm(w, fullName(s), "/admin/admins", values, "", userMessage(err), "")
		return
	}

	setFlash(s, "Admin added successfully.")
	http.Redirect(w, r, "/admin/admins", http.StatusSeeOther)
}

// EditAdminForm loads an admin and renders the prefilled form.
func (h *Handler) EditAdminForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	admin, err := h.backend.GetAdmin(r.Context(), id)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, views.MsgLoadFailed)
		http.Redirect(w, r, "/admin/admins", http.StatusSeeOther)
		return
	}

	values := map[string]string{
		"fullName":    admin.FullName,
		"email":       admin.Email,
		"contactInfo": admin.ContactInfo,
	}
	action := "/admin/admins/" + chi.URLParam(r, "id")
	h.renderAdminForm(w, fullName(s), action, values, views.Snapshot(values), "", "")
}

// UpdateAdmin handles the edit submission, short-circuiting no-op saves.
func (h *Handler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	values := formValues(r, adminFieldNames...)
	snapshot := r.FormValue("snapshot")
	action := "/admin/admins/" + chi.URLParam(r, "id")

	if !views.Changed(snapshot, values) {
		h.renderAdminForm(w, fullName(s), action, values, snapshot, "", views.MsgNoChanges)
		return
	}

	v := validation.NewFormValidator().
		Require("Full name", values["fullName"]).
		Require("Email", values["email"]).
		Email("Email", values["email"]).
		Require("Contact info", values["contactInfo"]).
		Phone("Contact info", values["contactInfo"])
	if !v.Valid() {
		h.renderAdminForm(w, fullName(s), action, values, snapshot, v.Err(), "")
		return
	}

	_, err = h.backend.UpdateAdmin(r.Context(), id, gateway.User{
		FullName:    values["fullName"],
		Email:       values["email"],
		ContactInfo: values["contactInfo"],
	})
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderAdminForm(w, fullName(s), action, values, snapshot, userMessage(err), "")
		return
	}

	setFlash(s, "Admin updated successfully.")
	http.Redirect(w, r, "/admin/admins", http.StatusSeeOther)
}

// ConfirmDeleteAdmin renders the delete confirmation page.
func (h *Handler) ConfirmDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	if _, err := pathID(r); err != nil {
		http.NotFound(w, r)
		return
	}

	views.Render(w, http.StatusOK, "confirm", views.Page{
		Title:    "Delete admin",
		FullName: fullName(s),
		Content: views.Confirm{
			Prompt:    "Delete this admin account? This cannot be undone.",
			Action:    "/admin/admins/" + chi.URLParam(r, "id") + "/delete",
			CancelURL: "/admin/admins",
		},
	})
}

// DeleteAdmin performs the confirmed deletion.
func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
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

	msg, err := h.backend.DeleteAdmin(r.Context(), id, actingID)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, userMessage(err))
	} else {
		setFlash(s, msg)
	}
	http.Redirect(w, r, "/admin/admins", http.StatusSeeOther)
}

func (h *Handler) renderAdminForm(w http.ResponseWriter, name, action string, values map[string]string, snapshot, errMsg, flashMsg string) {
	views.Render(w, http.StatusOK, "form", views.Page{
		Title:    "Admin account",
		FullName: name,
		Error:    errMsg,
		Flash:    flashMsg,
		Content: views.Form{
			Action:      action,
			Snapshot:    snapshot,
			Fields:      adminFormFields(values, snapshot == "" && flashMsg == ""),
			SubmitLabel: "Save",
			CancelURL:   "/admin/admins",
		},
	})
}

// ListActionLogs renders the audit trail, newest first.
func (h *Handler) ListActionLogs(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	logs, err := h.backend.ListActionLogs(r.Context())
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		views.Render(w, http.StatusOK, "table", views.Page{
			Title:    "Action logs",
			FullName: fullName(s),
			Error:    views.MsgLoadFailed,
			Content:  views.Table{EmptyMessage: views.MsgLoadFailed},
		})
		return
	}

	logs = views.SortByTimeDesc(logs, func(l gateway.ActionLog) time.Time {
		return views.ParseLogTime(l.Timestamp)
	})

	rows := make([]views.Row, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, views.Row{
			Cells: []string{l.Timestamp, l.Action, l.Details, l.Username},
		})
	}

	views.Render(w, http.StatusOK, "table", views.Page{
		Title:    "Action logs",
		FullName: fullName(s),
		Content: views.Table{
			Columns:      []string{"When", "Action", "Details", "User"},
			Rows:         rows,
			EmptyMessage: "No activity recorded.",
		},
	})
}
