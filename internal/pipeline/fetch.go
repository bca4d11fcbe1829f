package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/ifrc-field-report-etl/internal/domain"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/observability"
)

// CountrySource supplies country centroids indexed by country id.
type CountrySource interface {
	FetchCountryCoordinates(ctx context.Context) (domain.CountryCoords, error)
}

// ReportSource supplies simplified field reports. It may return partial results
// together with an error.
type ReportSource interface {
	FetchFieldReports(ctx context.Context, coords domain.CountryCoords) ([]domain.Report, error)
}

// ReportSaver persists the fetched reports.
type ReportSaver interface {
	SaveReports(reports []domain.Report) error
}

// Fetch phases reported by Fetcher.Status.
const (
	PhaseIdle         = "idle"
	PhaseCountries    = "countries"
	PhaseFieldReports = "field_reports"
	PhaseSaving       = "saving"
	PhaseDone         = "done"
)

// FetchStatus is a point-in-time view of a fetch run.
type FetchStatus struct {
	Phase     string `json:"phase"`
	Countries int    `json:"countries"`
	Reports   int    `json:"reports"`
	Complete  bool   `json:"complete"`
}

// FetchResult summarises a finished fetch run. Errors holds the page errors that
// ended pagination early, if any; the reports gathered before them were still saved.
type FetchResult struct {
	Countries int
	Reports   int
	Errors    []error
}

// Complete reports whether both endpoints were paginated to the end.
func (r FetchResult) Complete() bool { return len(r.Errors) == 0 }

// Fetcher downloads country centroids and field reports and saves the reports.
type Fetcher struct {
	countries CountrySource
	reports   ReportSource
	saver     ReportSaver
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu     sync.Mutex
	status FetchStatus
}

// NewFetcher wires a fetch job.
func NewFetcher(countries CountrySource, reports ReportSource, saver ReportSaver, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{
		countries: countries,
		reports:   reports,
		saver:     saver,
		logger:    logger,
		metrics:   metrics,
		status:    FetchStatus{Phase: PhaseIdle},
	}
}

// CheckReadiness returns nil once country coordinates have been loaded.
func (f *Fetcher) CheckReadiness(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status.Phase == PhaseIdle || f.status.Phase == PhaseCountries {
		return errors.New("country coordinates not loaded")
	}
	return nil
}

// Status returns the current FetchStatus.
func (f *Fetcher) Status() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Run fetches countries then field reports and saves whatever was gathered. When no
// reports were gathered nothing is written, so an earlier file survives. Page errors
// are logged and collected in the result; only a failed save is returned as an error.
func (f *Fetcher) Run(ctx context.Context) (FetchResult, error) {
	var result FetchResult

	f.setPhase(PhaseCountries)
	coords, err := f.countries.FetchCountryCoordinates(ctx)
	if err != nil {
		f.logger.Warn("country fetch incomplete, continuing with partial coordinates",
			"countries", len(coords),
			"error", err,
		)
		result.Errors = append(result.Errors, err)
	}
	result.Countries = len(coords)
	f.update(func(s *FetchStatus) {
		s.Phase = PhaseFieldReports
		s.Countries = len(coords)
	})

	reports, err := f.reports.FetchFieldReports(ctx, coords)
	if err != nil {
		f.logger.Warn("field report fetch incomplete, saving partial results",
			"reports", len(reports),
			"error", err,
		)
		result.Errors = append(result.Errors, err)
	}
	result.Reports = len(reports)
	f.update(func(s *FetchStatus) {
		s.Phase = PhaseSaving
		s.Reports = len(reports)
	})

	if len(reports) == 0 {
		f.logger.Warn("no reports found, keeping existing report file")
	} else if err := f.saver.SaveReports(reports); err != nil {
		return result, fmt.Errorf("save field reports: %w", err)
	}

	if result.Complete() {
		f.metrics.FetchComplete.Set(1)
	} else {
		f.metrics.FetchComplete.Set(0)
	}
	f.update(func(s *FetchStatus) {
		s.Phase = PhaseDone
		s.Complete = result.Complete()
	})

	f.logger.Info("fetch finished",
		"countries", result.Countries,
		"reports", result.Reports,
		"complete", result.Complete(),
	)
	return result, nil
}

func (f *Fetcher) setPhase(phase string) {
	f.update(func(s *FetchStatus) { s.Phase = phase })
}

func (f *Fetcher) update(fn func(*FetchStatus)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.status)
}
