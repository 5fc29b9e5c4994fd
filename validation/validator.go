// Package validation provides input validation for form submissions
// before they are forwarded upstream. Rules mirror what the backend
// enforces so the user gets feedback without a round trip.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	// Egyptian mobile numbers: 11 digits starting with 01.
	phonePattern = regexp.MustCompile(`^01\d{9}$`)

	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	// At least 8 characters with one uppercase, one lowercase, one digit
	// and one special character.
	passwordUpper   = regexp.MustCompile(`[A-Z]`)
	passwordLower   = regexp.MustCompile(`[a-z]`)
	passwordDigit   = regexp.MustCompile(`\d`)
	passwordSpecial = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// FormValidator accumulates field errors across a form. Checks are chained
// and Err is consulted once at the end.
type FormValidator struct {
	errors []string
}

// NewFormValidator creates an empty validator.
func NewFormValidator() *FormValidator {
	return &FormValidator{}
}

// Require adds an error when value is blank.
func (v *FormValidator) Require(field, value string) *FormValidator {
	if strings.TrimSpace(value) == "" {
		v.errors = append(v.errors, fmt.Sprintf("%s is required.", field))
	}
	return v
}

// Email adds an error when value is not a plausible email address.
func (v *FormValidator) Email(field, value string) *FormValidator {
	if value != "" && !emailPattern.MatchString(value) {
		v.errors = append(v.errors, fmt.Sprintf("%s must be a valid email address.", field))
	}
	return v
}

// Phone adds an error when value is not an 11-digit number starting 01.
func (v *FormValidator) Phone(field, value string) *FormValidator {
	if value != "" && !phonePattern.MatchString(value) {
		v.errors = append(v.errors, fmt.Sprintf("%s must be 11 digits, start with 01 and contain only digits.", field))
	}
	return v
}

// Password adds an error when value does not meet the strength criteria.
func (v *FormValidator) Password(field, value string) *FormValidator {
	if value == "" {
		return v
	}
	ok := len(value) >= 8 &&
		passwordUpper.MatchString(value) &&
		passwordLower.MatchString(value) &&
		passwordDigit.MatchString(value) &&
		passwordSpecial.MatchString(value)
	if !ok {
		v.errors = append(v.errors, fmt.Sprintf("%s must be at least 8 characters with an uppercase letter, a lowercase letter, a digit and a special character.", field))
	}
	return v
}

// Range adds an error when n falls outside [min, max].
func (v *FormValidator) Range(field string, n, min, max int) *FormValidator {
	if n < min || n > max {
		v.errors = append(v.errors, fmt.Sprintf("%s must be between %d and %d.", field, min, max))
	}
	return v
}

// Date adds an error when value is not a yyyy-MM-dd date.
func (v *FormValidator) Date(field, value string) *FormValidator {
	if value == "" {
		return v
	}
	if !datePattern.MatchString(value) {
		v.errors = append(v.errors, fmt.Sprintf("%s must be a date in yyyy-MM-dd form.", field))
	}
	return v
}

// Valid reports whether every check passed.
func (v *FormValidator) Valid() bool {
	return len(v.errors) == 0
}

// Errors returns the accumulated messages in check order.
func (v *FormValidator) Errors() []string {
	return v.errors
}

// Err joins the messages into one line for flash-style rendering, or
// returns "" when the form is valid.
func (v *FormValidator) Err() string {
	return strings.Join(v.errors, " ")
}

// SanitizeQuery trims a free-text search input and caps its length so an
// oversized query never reaches the upstream.
func SanitizeQuery(q string, maxLen int) string {
	q = strings.TrimSpace(q)
	if maxLen > 0 && len(q) > maxLen {
		q = q[:maxLen]
	}
	return q
}
