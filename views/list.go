// Package views holds the presentation logic behind the screens: pure
// helpers for filtering and ordering table rows, form draft diffing,
// prediction option pools and the typeahead sequencer. Handlers stay thin
// by pushing every testable decision down here.
package views

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and strips diacritics, so "Céline" matches "celine".
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Filter returns the items whose key contains the query, compared
// accent-insensitively. An empty query returns the input unchanged. The
// input slice is never mutated, so filtering twice with the same query
// yields the same rows.
func Filter[T any](items []T, query string, key func(T) string) []T {
	if strings.TrimSpace(query) == "" {
		return items
	}

	q := Fold(strings.TrimSpace(query))
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if strings.Contains(Fold(key(item)), q) {
			matched = append(matched, item)
		}
	}
	return matched
}

// SortByTimeDesc orders items newest first. The sort is stable so rows
// sharing a timestamp keep their upstream order.
func SortByTimeDesc[T any](items []T, at func(T) time.Time) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return at(sorted[i]).After(at(sorted[j]))
	})
	return sorted
}

// ParseLogTime parses the audit trail timestamp format, falling back
// through the shapes the backend has emitted over time. Unparseable
// timestamps sort last.
func ParseLogTime(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
