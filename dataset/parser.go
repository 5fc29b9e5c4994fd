// Package dataset parses medicine catalog CSV files before they are
// forwarded to the backend's bulk import. Parsing locally lets the upload
// screen reject malformed files and show a quality summary without
// spending a round trip.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/medica/medica-web/gateway"
)

// expectedHeader is the column layout the backend import understands.
var expectedHeader = []string{
	"name",
	"substitute0", "substitute1",
	"use0", "use1", "use2",
	"sideeffect0", "sideeffect1", "sideeffect2",
}

// ErrEmptyFile reports a CSV with no data rows.
var ErrEmptyFile = errors.New("dataset: file has no data rows")

// QualityReport provides a summary of catalog quality issues
type QualityReport struct {
	TotalRows       int
	DuplicateNames  []string
	RowsWithoutName int
	RowsWithoutUse  int // rows missing every use column
}

// HasIssues reports whether anything in the report needs the user's eye.
func (r *QualityReport) HasIssues() bool {
	return len(r.DuplicateNames) > 0 || r.RowsWithoutName > 0 || r.RowsWithoutUse > 0
}

// ParseCatalog reads a medicine catalog CSV and reports its quality.
// Rows without a name are dropped; everything else passes through so the
// backend stays the authority on what to accept.
func ParseCatalog(r io.Reader) ([]gateway.Medicine, *QualityReport, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, nil, err
	}

	report := &QualityReport{}
	seen := make(map[string]bool)
	var medicines []gateway.Medicine

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading row %d: %w", report.TotalRows+2, err)
		}

		report.TotalRows++

		m := rowToMedicine(record)
		if m.Name == "" {
			report.RowsWithoutName++
			continue
		}

		key := strings.ToLower(m.Name)
		if seen[key] {
			report.DuplicateNames = append(report.DuplicateNames, m.Name)
		}
		seen[key] = true

		if m.Use0 == "" && m.Use1 == "" && m.Use2 == "" {
			report.RowsWithoutUse++
		}

		medicines = append(medicines, m)
	}

	if report.TotalRows == 0 {
		return nil, nil, ErrEmptyFile
	}

	return medicines, report, nil
}

func checkHeader(header []string) error {
	if len(header) != len(expectedHeader) {
		return fmt.Errorf("dataset: expected %d columns, got %d", len(expectedHeader), len(header))
	}
	for i, want := range expectedHeader {
		got := strings.ToLower(strings.TrimSpace(header[i]))
		if got != want {
			return fmt.Errorf("dataset: column %d is %q, want %q", i+1, header[i], want)
		}
	}
	return nil
}

func rowToMedicine(record []string) gateway.Medicine {
	col := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	return gateway.Medicine{
		Name:        col(0),
		Substitute0: col(1),
		Substitute1: col(2),
		Use0:        col(3),
		Use1:        col(4),
		Use2:        col(5),
		SideEffect0: col(6),
		SideEffect1: col(7),
		SideEffect2: col(8),
	}
}
