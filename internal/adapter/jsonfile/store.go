// Package jsonfile reads and writes the JSON files handed between the fetch and
// aggregate jobs.
package jsonfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/ifrc-field-report-etl/internal/domain"
)

// ReportStore persists the simplified report list at a fixed path.
type ReportStore struct {
	path string
}

// NewReportStore creates a ReportStore for path.
func NewReportStore(path string) *ReportStore {
	return &ReportStore{path: path}
}

// Path returns the file location.
func (s *ReportStore) Path() string { return s.path }

// SaveReports writes reports as an indented JSON array.
func (s *ReportStore) SaveReports(reports []domain.Report) error {
	if reports == nil {
		reports = []domain.Report{}
	}
	return writeJSON(s.path, reports)
}

// LoadReports reads the whole report list.
func (s *ReportStore) LoadReports() ([]domain.Report, error) {
	var reports []domain.Report
	if err := readJSON(s.path, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// MonthStore persists aggregated months at a fixed path.
type MonthStore struct {
	path string
}

// NewMonthStore creates a MonthStore for path.
func NewMonthStore(path string) *MonthStore {
	return &MonthStore{path: path}
}

// Path returns the file location.
func (s *MonthStore) Path() string { return s.path }

// SaveMonths writes months as an indented JSON array.
func (s *MonthStore) SaveMonths(months []domain.MonthEntry) error {
	if months == nil {
		months = []domain.MonthEntry{}
	}
	return writeJSON(s.path, months)
}

// LoadMonths reads an aggregated file back.
func (s *MonthStore) LoadMonths() ([]domain.MonthEntry, error) {
	var months []domain.MonthEntry
	if err := readJSON(s.path, &months); err != nil {
		return nil, err
	}
	return months, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(bufio.NewReader(f)).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// writeJSON encodes v with 2-space indentation and without HTML escaping into a
// temporary file next to path, then renames it into place.
func writeJSON(path string, v any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		tmp.Close() //nolint:errcheck // the write error is the one reported
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close() //nolint:errcheck // the write error is the one reported
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
