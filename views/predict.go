package views

// Option pools for the prediction forms. These mirror the categories the
// models were trained on; free text outside the pool would make the
// prediction service reject the request.

// DescriptionFallback is shown when an ingredient has no description.
const DescriptionFallback = "No description available."

// RecommendDiagnoses are the diagnosis classes of the recommendation model.
var RecommendDiagnoses = []string{
	"Asthma_mild",
	"Asthma_severe",
	"Bacterial Infection",
	"GERD_<=3wk",
	"GERD_>3wk",
	"Heart Failure_EF<40",
	"Heart Failure_EF>=40",
	"Hyperlipidemia_LDL<130",
	"Hyperlipidemia_LDL>=130",
	"Hypertension_<=50",
	"Hypertension_51-70",
	"Hypertension_>70",
	"Hypothyroidism",
	"Type 2 Diabetes_controlled",
	"Type 2 Diabetes_uncontrolled",
}

// AllergyTypes the models understand. "None" is a real class, not absence.
var AllergyTypes = []string{"None", "Penicillin", "Sulfa", "Statins", "NSAIDs"}

// ChronicConditions the models understand.
var ChronicConditions = []string{"None", "CKD", "COPD", "CAD", "Obesity", "Liver Disease"}

// Genders the models were trained on.
var Genders = []string{"Male", "Female"}

// SuitabilityMedicines are the medicines the improvement model can score.
var SuitabilityMedicines = []string{
	"Lisinopril", "Amlodipine", "Hydrochlorothiazide", "Metformin",
	"Insulin", "Atorvastatin", "Simvastatin", "Furosemide",
	"Carvedilol", "Omeprazole", "Pantoprazole", "Levothyroxine",
}

// SuitabilityLabFields maps each diagnosis of the improvement model to the
// lab measurement it needs. Fields outside the active diagnosis travel as
// null so the model knows they were not taken.
var SuitabilityLabFields = map[string]string{
	"Hypertension":    "Blood_Pressure_Systolic_BP",
	"Type 2 Diabetes": "HbA1c",
	"Hyperlipidemia":  "LDL_Cholesterol",
	"Heart Failure":   "BNP",
	"GERD":            "Endoscopy_Result",
	"Hypothyroidism":  "TSH",
}

// SuitabilityDiagnoses lists the improvement model's diagnoses in display
// order.
var SuitabilityDiagnoses = []string{
	"Hypertension",
	"Type 2 Diabetes",
	"Hyperlipidemia",
	"Heart Failure",
	"GERD",
	"Hypothyroidism",
}

// SeverityLevels maps the displayed severity to the encoded value the
// improvement model expects.
var SeverityLevels = []string{"Mild", "Moderate", "Severe"}

// EncodeSeverity translates a severity label to its model encoding.
// Unknown labels encode as Mild.
func EncodeSeverity(label string) int {
	switch label {
	case "Moderate":
		return 1
	case "Severe":
		return 2
	default:
		return 0
	}
}

// FilterOptions narrows an option pool by a typed prefix or fragment,
// accent-insensitively. Used by the searchable dropdowns.
func FilterOptions(options []string, query string) []string {
	return Filter(options, query, func(s string) string { return s })
}

// DescriptionOrFallback substitutes the fixed fallback for blank
// descriptions so the detail panel never renders empty.
func DescriptionOrFallback(description string) string {
	if description == "" {
		return DescriptionFallback
	}
	return description
}
