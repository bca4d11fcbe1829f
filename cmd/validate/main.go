// Command validate checks an aggregated month file for internal consistency and,
// when the fetched report file is given, cross-checks the retained report ids
// against it.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -input field_reports_aggregated.json \
//	  -reports field_reports.json \
//	  -max-locations 50
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/ifrc-field-report-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	input := flag.String("input", "field_reports_aggregated.json", "path to the aggregated month file")
	reports := flag.String("reports", "", "optional path to the fetched report file for cross-checks")
	maxLocations := flag.Int("max-locations", domain.DefaultMaxLocations, "maximum locations allowed per month")
	flag.Parse()

	if *input == "" || *maxLocations <= 0 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*input, *reports, *maxLocations))
}

func run(inputPath, reportsPath string, maxLocations int) int {
	fmt.Println("=== IFRC Field Report Aggregation Validation ===")
	fmt.Println()

	months, err := jsonfile.NewMonthStore(inputPath).LoadMonths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load aggregated months: %v\n", err)
		return 1
	}

	phases := []*phase{validateStructure(months, maxLocations)}

	var reports []domain.Report
	if reportsPath != "" {
		reports, err = jsonfile.NewReportStore(reportsPath).LoadReports()
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load field reports: %v\n", err)
			return 1
		}
		phases = append(phases, validateCrossReference(months, reports))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Months: %d, locations: %d, retained reports: %d", len(months), countLocations(months), countReports(months))
	if reportsPath != "" {
		fmt.Printf(", fetched reports: %d", len(reports))
	}
	fmt.Println()

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Structure ──

func validateStructure(months []domain.MonthEntry, maxLocations int) *phase {
	p := &phase{name: "Phase 1: Structure (month invariants)"}
	for _, v := range domain.ValidateMonths(months, maxLocations) {
		p.errorf("%s", v)
	}
	return p
}

// ── Phase 2: Cross-reference ──
// Every retained id must exist in the fetched file, appear once in the output, and
// sit in the month its created_at falls in.

func validateCrossReference(months []domain.MonthEntry, reports []domain.Report) *phase {
	p := &phase{name: "Phase 2: Cross-reference (ids vs fetched)"}

	fetched := make(map[int64]domain.Report, len(reports))
	for _, r := range reports {
		if r.ID != nil {
			fetched[*r.ID] = r
		}
	}

	seen := make(map[int64]string)
	for _, m := range months {
		for _, loc := range m.Locations {
			for _, id := range loc.Reports {
				if id == nil {
					continue
				}
				if prev, dup := seen[*id]; dup {
					p.errorf("report %d appears in %s and %s", *id, prev, m.Month)
					continue
				}
				seen[*id] = m.Month

				r, ok := fetched[*id]
				if !ok {
					p.errorf("%s: report %d not found in fetched reports", m.Month, *id)
					continue
				}
				checkReportMonth(p, m.Month, *id, r)
			}
		}
	}
	return p
}

func checkReportMonth(p *phase, month string, id int64, r domain.Report) {
	if r.CreatedAt == nil {
		p.errorf("%s: report %d has no created_at", month, id)
		return
	}
	t, err := domain.ParseCreatedAt(*r.CreatedAt)
	if err != nil {
		p.errorf("%s: report %d: %v", month, id, err)
		return
	}
	if got := domain.MonthKey(t); got != month {
		p.errorf("report %d created in %s but aggregated under %s", id, got, month)
	}
}

// ── Helpers ──

func countLocations(months []domain.MonthEntry) int {
	n := 0
	for _, m := range months {
		n += len(m.Locations)
	}
	return n
}

func countReports(months []domain.MonthEntry) int {
	n := 0
	for _, m := range months {
		n += m.TotalReports
	}
	return n
}
