package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medica/medica-web/gateway"
	"github.com/medica/medica-web/idcodec"
	"github.com/medica/medica-web/metrics"
	"github.com/medica/medica-web/ml"
	"github.com/medica/medica-web/validation"
	"github.com/medica/medica-web/views"
)

// Treatment recommendation.

var recommendFieldNames = []string{"age", "gender", "diagnosis", "allergies", "chronicConditions"}

func recommendFormFields(values map[string]string) []views.Field {
	return []views.Field{
		{Name: "age", Label: "Age", Type: "number", Value: values["age"], Required: true},
		{Name: "gender", Label: "Gender", Type: "text", Value: values["gender"], Options: views.Genders, Required: true},
		{Name: "diagnosis", Label: "Diagnosis", Type: "combo", Value: values["diagnosis"], Options: views.FilterOptions(views.RecommendDiagnoses, values["diagnosis"]), Required: true},
		{Name: "allergies", Label: "Allergies", Type: "combo", Value: values["allergies"], Options: views.FilterOptions(views.AllergyTypes, values["allergies"]), Required: true},
		{Name: "chronicConditions", Label: "Chronic conditions", Type: "combo", Value: values["chronicConditions"], Options: views.FilterOptions(views.ChronicConditions, values["chronicConditions"]), Required: true},
	}
}

// RecommendForm renders the recommendation questionnaire.
func (h *Handler) RecommendForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	h.renderRecommendForm(w, fullName(s), map[string]string{}, "")
}

// Recommend submits a patient profile to the recommendation model and
// renders the suggested medicine.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	values := formValues(r, recommendFieldNames...)
	age, convErr := strconv.Atoi(values["age"])
	if convErr != nil {
		age = -1
	}
	v := validation.NewFormValidator().
		Range("Age", age, 0, 130).
		Require("Gender", values["gender"]).
		Require("Diagnosis", values["diagnosis"]).
		Require("Allergies", values["allergies"]).
		Require("Chronic conditions", values["chronicConditions"])
	if !v.Valid() {
		h.renderRecommendForm(w, fullName(s), values, v.Err())
		return
	}

	medicine, err := h.predict.RecommendMedicine(r.Context(), ml.RecommendationRequest{
		Age:               age,
		Gender:            values["gender"],
		Diagnosis:         values["diagnosis"],
		Allergies:         values["allergies"],
		ChronicConditions: values["chronicConditions"],
	})
	metrics.ObserveUpstream("prediction", err)
	if err != nil {
		h.renderRecommendForm(w, fullName(s), values, predictionMessage(err))
		return
	}

	// A failed description lookup never invalidates the prediction
	description, err := h.backend.IngredientDescription(r.Context(), medicine)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		description = ""
	}

	views.Render(w, http.StatusOK, "result", views.Page{
		Title:    "Recommended treatment",
		FullName: fullName(s),
		Content: views.Result{
			Lines: []string{
				fmt.Sprintf("Recommended medicine: %s", medicine),
				fmt.Sprintf("Profile: %s, age %d, %s.", values["gender"], age, values["diagnosis"]),
				"About: " + views.DescriptionOrFallback(description),
			},
			BackURL: "/doctor/recommend",
		},
	})
}

func (h *Handler) renderRecommendForm(w http.ResponseWriter, name string, values map[string]string, errMsg string) {
	views.Render(w, http.StatusOK, "form", views.Page{
		Title:    "Recommend treatment",
		FullName: name,
		Error:    errMsg,
		Content: views.Form{
			Action:      "/doctor/recommend",
			Fields:      recommendFormFields(values),
			SubmitLabel: "Recommend",
			CancelURL:   "/doctor",
		},
	})
}

// Medicine suitability.

var suitabilityFieldNames = []string{
	"age", "gender", "diagnosis", "medicine", "allergies",
	"chronicConditions", "severity", "smoking", "labValue",
}

func suitabilityFormFields(values map[string]string) []views.Field {
	return []views.Field{
		{Name: "age", Label: "Age", Type: "number", Value: values["age"], Required: true},
		{Name: "gender", Label: "Gender", Type: "text", Value: values["gender"], Options: views.Genders, Required: true},
		{Name: "diagnosis", Label: "Diagnosis", Type: "combo", Value: values["diagnosis"], Options: views.FilterOptions(views.SuitabilityDiagnoses, values["diagnosis"]), Required: true},
		{Name: "medicine", Label: "Medicine", Type: "combo", Value: values["medicine"], Options: views.FilterOptions(views.SuitabilityMedicines, values["medicine"]), Required: true},
		{Name: "allergies", Label: "Allergies", Type: "combo", Value: values["allergies"], Options: views.FilterOptions(views.AllergyTypes, values["allergies"]), Required: true},
		{Name: "chronicConditions", Label: "Chronic conditions", Type: "combo", Value: values["chronicConditions"], Options: views.FilterOptions(views.ChronicConditions, values["chronicConditions"]), Required: true},
		{Name: "severity", Label: "Severity", Type: "text", Value: values["severity"], Options: views.SeverityLevels, Required: true},
		{Name: "smoking", Label: "Smoker", Type: "text", Value: values["smoking"], Options: []string{"No", "Yes"}, Required: true},
		{Name: "labValue", Label: "Lab value for the selected diagnosis", Type: "number", Value: values["labValue"]},
	}
}

// SuitabilityForm renders the improvement questionnaire.
func (h *Handler) SuitabilityForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	h.renderSuitabilityForm(w, fullName(s), map[string]string{}, "")
}

// Suitability scores a medicine against a patient profile. Only the lab
// measurement matching the diagnosis is sent; the rest travel as null.
func (h *Handler) Suitability(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	values := formValues(r, suitabilityFieldNames...)
	age, convErr := strconv.Atoi(values["age"])
	if convErr != nil {
		age = -1
	}
	v := validation.NewFormValidator().
		Range("Age", age, 0, 130).
		Require("Gender", values["gender"]).
		Require("Diagnosis", values["diagnosis"]).
		Require("Medicine", values["medicine"]).
		Require("Allergies", values["allergies"]).
		Require("Chronic conditions", values["chronicConditions"]).
		Require("Severity", values["severity"]).
		Require("Smoker", values["smoking"])
	if !v.Valid() {
		h.renderSuitabilityForm(w, fullName(s), values, v.Err())
		return
	}

	req := ml.SuitabilityRequest{
		Age:               age,
		Gender:            values["gender"],
		Diagnosis:         values["diagnosis"],
		Medicine:          values["medicine"],
		Allergies:         values["allergies"],
		ChronicConditions: values["chronicConditions"],
		Severity:          views.EncodeSeverity(values["severity"]),
	}
	if values["smoking"] == "Yes" {
		req.Smoking = 1
	}
	if values["labValue"] != "" {
		lab, err := strconv.ParseFloat(values["labValue"], 64)
		if err != nil {
			h.renderSuitabilityForm(w, fullName(s), values, "Lab value must be a number.")
			return
		}
		switch views.SuitabilityLabFields[values["diagnosis"]] {
		case "Blood_Pressure_Systolic_BP":
			req.BloodPressureSystolic = &lab
		case "HbA1c":
			req.HbA1c = &lab
		case "LDL_Cholesterol":
			req.LDLCholesterol = &lab
		case "BNP":
			req.BNP = &lab
		case "Endoscopy_Result":
			req.EndoscopyResult = &lab
		case "TSH":
			req.TSH = &lab
		}
	}

	verdict, err := h.predict.PredictImprovement(r.Context(), req)
	metrics.ObserveUpstream("prediction", err)
	if err != nil {
		h.renderSuitabilityForm(w, fullName(s), values, predictionMessage(err))
		return
	}

	views.Render(w, http.StatusOK, "result", views.Page{
		Title:    "Suitability verdict",
		FullName: fullName(s),
		Content: views.Result{
			Lines: []string{
				fmt.Sprintf("%s for %s: %s", values["medicine"], values["diagnosis"], verdict.Prediction),
				fmt.Sprintf("Improvement probability: %.1f%%", verdict.ImprovementProbability*100),
			},
			BackURL: "/doctor/suitability",
		},
	})
}

func (h *Handler) renderSuitabilityForm(w http.ResponseWriter, name string, values map[string]string, errMsg string) {
	views.Render(w, http.StatusOK, "form", views.Page{
		Title:    "Medicine suitability",
		FullName: name,
		Error:    errMsg,
		Content: views.Form{
			Action:      "/doctor/suitability",
			Fields:      suitabilityFormFields(values),
			SubmitLabel: "Check suitability",
			CancelURL:   "/doctor",
		},
	})
}

// predictionMessage folds a prediction service failure into user wording.
func predictionMessage(err error) string {
	var predErr *ml.PredictionError
	if errors.As(err, &predErr) {
		return predErr.Detail
	}
	return "Prediction service is unavailable. Please try again later."
}

// Drug interactions.

func interactionFormFields(values map[string]string) []views.Field {
	return []views.Field{
		{Name: "drug1", Label: "First drug", Type: "text", Value: values["drug1"], Required: true},
		{Name: "drug2", Label: "Second drug", Type: "text", Value: values["drug2"], Required: true},
	}
}

// InteractionsForm renders the interaction checker.
func (h *Handler) InteractionsForm(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	h.renderInteractionForm(w, fullName(s), map[string]string{}, "")
}

// CheckInteractions looks up known interactions between two drugs. The
// backend answers either with a match list or a plain-text notice.
func (h *Handler) CheckInteractions(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	values := formValues(r, "drug1", "drug2")
	v := validation.NewFormValidator().
		Require("First drug", values["drug1"]).
		Require("Second drug", values["drug2"])
	if !v.Valid() {
		h.renderInteractionForm(w, fullName(s), values, v.Err())
		return
	}

	interactions, notice, err := h.backend.CheckInteraction(r.Context(), values["drug1"], values["drug2"])
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		h.renderInteractionForm(w, fullName(s), values, userMessage(err))
		return
	}

	if notice != "" {
		views.Render(w, http.StatusOK, "result", views.Page{
			Title:    "Interaction check",
			FullName: fullName(s),
			Content: views.Result{
				Lines:   []string{notice},
				BackURL: "/doctor/interactions",
			},
		})
		return
	}

	rows := make([]views.Row, 0, len(interactions))
	for _, it := range interactions {
		rows = append(rows, views.Row{
			Cells: []string{it.Drug1, it.Drug2, it.InteractionDescription},
		})
	}
	views.Render(w, http.StatusOK, "table", views.Page{
		Title:    "Interaction check",
		FullName: fullName(s),
		Content: views.Table{
			Columns:      []string{"Drug", "Interacts with", "Description"},
			Rows:         rows,
			NewURL:       "/doctor/interactions",
			NewLabel:     "Check another pair",
			EmptyMessage: "No known interactions between these drugs.",
		},
	})
}

func (h *Handler) renderInteractionForm(w http.ResponseWriter, name string, values map[string]string, errMsg string) {
	views.Render(w, http.StatusOK, "form", views.Page{
		Title:    "Drug interactions",
		FullName: name,
		Error:    errMsg,
		Content: views.Form{
			Action:      "/doctor/interactions",
			Fields:      interactionFormFields(values),
			SubmitLabel: "Check",
			CancelURL:   "/doctor",
		},
	})
}

// Companies and favorites.

// DoctorCompanies lists pharma companies with the doctor's favorite state.
func (h *Handler) DoctorCompanies(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	doctorID, ok := userID(w, s)
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
		return c.User.FullName
	})

	rows := make([]views.Row, 0, len(companies))
	for _, c := range companies {
		token := idcodec.Encode(c.ID)
		marker := ""
		label := "Favorite"
		fav, err := h.backend.IsFavorite(r.Context(), doctorID, c.ID)
		metrics.ObserveUpstream("backend", err)
		if err == nil && fav {
			marker = "★"
			label = "Unfavorite"
		}
		rows = append(rows, views.Row{
			Cells:       []string{marker, c.User.FullName, c.Location, c.User.ContactInfo},
			DetailURL:   "/doctor/companies/" + token + "/medicines",
			ToggleURL:   "/doctor/companies/" + token + "/favorite",
			ToggleLabel: label,
		})
	}

	views.Render(w, http.StatusOK, "table", views.Page{
		Title:    "Pharma companies",
		FullName: fullName(s),
		Flash:    flash(s),
		Content: views.Table{
			Columns:      []string{"", "Name", "Location", "Contact"},
			Rows:         rows,
			HasActions:   true,
			SearchAction: "/doctor/companies",
			Query:        query,
			EmptyMessage: "No companies registered.",
		},
	})
}

// ToggleFavorite flips the doctor's favorite mark on a company.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	doctorID, ok := userID(w, s)
	if !ok {
		return
	}
	companyID, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	fav, err := h.backend.IsFavorite(r.Context(), doctorID, companyID)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, userMessage(err))
		http.Redirect(w, r, "/doctor/companies", http.StatusSeeOther)
		return
	}

	var msg string
	if fav {
		msg, err = h.backend.RemoveFavorite(r.Context(), doctorID, companyID)
	} else {
		msg, err = h.backend.AddFavorite(r.Context(), doctorID, companyID)
	}
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, userMessage(err))
	} else {
		setFlash(s, msg)
	}
	http.Redirect(w, r, "/doctor/companies", http.StatusSeeOther)
}

// CompanyMedicines lists one company's catalog for browsing doctors.
func (h *Handler) CompanyMedicines(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	companyID, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	medicines, err := h.backend.ListMedicinesByCompany(r.Context(), companyID)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, views.MsgLoadFailed)
		http.Redirect(w, r, "/doctor/companies", http.StatusSeeOther)
		return
	}

	companyToken := chi.URLParam(r, "id")
	rows := make([]views.Row, 0, len(medicines))
	for _, m := range medicines {
		rows = append(rows, views.Row{
			Cells:     []string{m.Name, m.Use0, m.Substitute0},
			DetailURL: "/doctor/medicines/" + companyToken + "/" + idcodec.Encode(m.ID),
		})
	}

	views.Render(w, http.StatusOK, "table", views.Page{
		Title:    "Company catalog",
		FullName: fullName(s),
		Content: views.Table{
			Columns:      []string{"Medicine", "Primary use", "Substitute"},
			Rows:         rows,
			HasActions:   true,
			EmptyMessage: "This company has no medicines listed.",
		},
	})
}

// Medicine search and detail.

// SearchMedicinesPage searches the whole catalog by name.
func (h *Handler) SearchMedicinesPage(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	query := validation.SanitizeQuery(r.URL.Query().Get("q"), 100)
	var rows []views.Row
	if query != "" {
		medicines, err := h.backend.SearchMedicines(r.Context(), query)
		metrics.ObserveUpstream("backend", err)
		if err != nil {
			views.Render(w, http.StatusOK, "table", views.Page{
				Title:    "Medicine search",
				FullName: fullName(s),
				Error:    views.MsgLoadFailed,
				Content:  views.Table{SearchAction: "/doctor/medicines", Query: query, EmptyMessage: views.MsgLoadFailed},
			})
			return
		}
		rows = make([]views.Row, 0, len(medicines))
		for _, m := range medicines {
			rows = append(rows, views.Row{
				Cells:     []string{m.Name, m.Use0, m.Substitute0},
				DetailURL: "/doctor/medicines/info?name=" + url.QueryEscape(m.Name),
			})
		}
	}

	empty := "Type a medicine name to search."
	if query != "" {
		empty = "No medicines match that name."
	}
	views.Render(w, http.StatusOK, "table", views.Page{
		Title:    "Medicine search",
		FullName: fullName(s),
		Content: views.Table{
			Columns:      []string{"Medicine", "Primary use", "Substitute"},
			Rows:         rows,
			HasActions:   true,
			SearchAction: "/doctor/medicines",
			Query:        query,
			EmptyMessage: empty,
		},
	})
}

// MedicineDetail shows one catalog entry with its ingredient description.
func (h *Handler) MedicineDetail(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}
	companyID, err := idcodec.Decode(chi.URLParam(r, "companyID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	medicineID, err := idcodec.Decode(chi.URLParam(r, "medicineID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	medicine, err := h.backend.GetMedicine(r.Context(), companyID, medicineID)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		setFlash(s, views.MsgLoadFailed)
		http.Redirect(w, r, "/doctor/companies", http.StatusSeeOther)
		return
	}

	h.renderMedicineInfo(w, r, fullName(s), medicine, "/doctor/companies/"+chi.URLParam(r, "companyID")+"/medicines")
}

// MedicineInfo shows a medicine found by exact name, for search results
// where the owning company is not known.
func (h *Handler) MedicineInfo(w http.ResponseWriter, r *http.Request) {
	s, ok := mustSession(w, r)
	if !ok {
		return
	}

	name := validation.SanitizeQuery(r.URL.Query().Get("name"), 100)
	if name == "" {
		http.Redirect(w, r, "/doctor/medicines", http.StatusSeeOther)
		return
	}

	medicines, err := h.backend.SearchMedicines(r.Context(), name)
	metrics.ObserveUpstream("backend", err)
	if err != nil || len(medicines) == 0 {
		setFlash(s, views.MsgLoadFailed)
		http.Redirect(w, r, "/doctor/medicines", http.StatusSeeOther)
		return
	}

	medicine := medicines[0]
	for _, m := range medicines {
		if strings.EqualFold(m.Name, name) {
			medicine = m
			break
		}
	}

	h.renderMedicineInfo(w, r, fullName(s), medicine, "/doctor/medicines")
}

func (h *Handler) renderMedicineInfo(w http.ResponseWriter, r *http.Request, name string, medicine gateway.Medicine, backURL string) {
	description, err := h.backend.IngredientDescription(r.Context(), medicine.Name)
	metrics.ObserveUpstream("backend", err)
	if err != nil {
		description = ""
	}

	lines := []string{"About: " + views.DescriptionOrFallback(description)}
	for _, sub := range []string{medicine.Substitute0, medicine.Substitute1} {
		if sub != "" {
			lines = append(lines, "Substitute: "+sub)
		}
	}
	for _, use := range []string{medicine.Use0, medicine.Use1, medicine.Use2} {
		if use != "" {
			lines = append(lines, "Use: "+use)
		}
	}
	for _, effect := range []string{medicine.SideEffect0, medicine.SideEffect1, medicine.SideEffect2} {
		if effect != "" {
			lines = append(lines, "Side effect: "+effect)
		}
	}

	views.Render(w, http.StatusOK, "result", views.Page{
		Title:    medicine.Name,
		FullName: name,
		Content: views.Result{
			Lines:   lines,
			BackURL: backURL,
		},
	})
}
