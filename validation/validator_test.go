package validation

import (
	"strings"
	"testing"
)

func TestRequire(t *testing.T) {
	v := NewFormValidator().
		Require("Full name", "Jane Roe").
		Require("Email", "   ")

	if v.Valid() {
		t.Fatal("blank required field should fail")
	}
	if got := v.Err(); !strings.Contains(got, "Email is required.") {
		t.Errorf("Err() = %q, want mention of Email", got)
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"01234567890", true},
		{"01000000000", true},
		{"0123456789", false},   // 10 digits
		{"012345678901", false}, // 12 digits
		{"02123456789", false},  // wrong prefix
		{"01-23456789", false},  // non-digit
		{"", true},              // blank is Require's business
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			v := NewFormValidator().Phone("Contact info", tt.phone)
			if v.Valid() != tt.valid {
				t.Errorf("Phone(%q) valid = %v, want %v", tt.phone, v.Valid(), tt.valid)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	if !NewFormValidator().Email("Email", "jane@clinic.test").Valid() {
		t.Error("plain address should pass")
	}
	if NewFormValidator().Email("Email", "not-an-email").Valid() {
		t.Error("address without @ should fail")
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"meets criteria", "Str0ng!pass", true},
		{"too short", "S1!a", false},
		{"no uppercase", "str0ng!pass", false},
		{"no digit", "Strong!pass", false},
		{"no special", "Str0ngpass", false},
		{"blank skipped", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFormValidator().Password("Password", tt.password)
			if v.Valid() != tt.valid {
				t.Errorf("Password(%q) valid = %v, want %v", tt.password, v.Valid(), tt.valid)
			}
		})
	}
}

func TestChainAccumulates(t *testing.T) {
	v := NewFormValidator().
		Require("Name", "").
		Email("Email", "bad").
		Phone("Phone", "123")

	if got := len(v.Errors()); got != 3 {
		t.Errorf("accumulated %d errors, want 3", got)
	}
}

func TestRangeAndDate(t *testing.T) {
	if NewFormValidator().Range("Age", 150, 0, 130).Valid() {
		t.Error("out-of-range age should fail")
	}
	if !NewFormValidator().Date("Visit date", "2026-08-30").Valid() {
		t.Error("well-formed date should pass")
	}
	if NewFormValidator().Date("Visit date", "30/08/2026").Valid() {
		t.Error("slashed date should fail")
	}
}

func TestSanitizeQuery(t *testing.T) {
	if got := SanitizeQuery("  aspirin  ", 100); got != "aspirin" {
		t.Errorf("SanitizeQuery trim = %q", got)
	}
	if got := SanitizeQuery(strings.Repeat("a", 300), 100); len(got) != 100 {
		t.Errorf("SanitizeQuery cap len = %d, want 100", len(got))
	}
}
