package views

import (
	"testing"
)

func TestFilterOptions(t *testing.T) {
	got := FilterOptions(RecommendDiagnoses, "hypert")
	want := []string{"Hypertension_<=50", "Hypertension_51-70", "Hypertension_>70"}

	if len(got) != len(want) {
		t.Fatalf("FilterOptions returned %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("option %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOptionPoolsIncludeNone(t *testing.T) {
	if AllergyTypes[0] != "None" {
		t.Error("allergy pool must lead with the None class")
	}
	if ChronicConditions[0] != "None" {
		t.Error("chronic pool must lead with the None class")
	}
}

func TestSuitabilityLabFieldsCoverDiagnoses(t *testing.T) {
	for _, diagnosis := range SuitabilityDiagnoses {
		if _, ok := SuitabilityLabFields[diagnosis]; !ok {
			t.Errorf("diagnosis %q has no lab field mapping", diagnosis)
		}
	}
}

func TestEncodeSeverity(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"Mild", 0},
		{"Moderate", 1},
		{"Severe", 2},
		{"", 0},
		{"unknown", 0},
	}
	for _, tt := range tests {
		if got := EncodeSeverity(tt.label); got != tt.want {
			t.Errorf("EncodeSeverity(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}

func TestDescriptionOrFallback(t *testing.T) {
	if got := DescriptionOrFallback(""); got != DescriptionFallback {
		t.Errorf("blank description = %q", got)
	}
	if got := DescriptionOrFallback("relieves pain"); got != "relieves pain" {
		t.Errorf("real description = %q", got)
	}
}
