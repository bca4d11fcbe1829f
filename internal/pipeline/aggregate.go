package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/ifrc-field-report-etl/internal/domain"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/observability"
)

// ReportLoader reads the reports written by a fetch run.
type ReportLoader interface {
	LoadReports() ([]domain.Report, error)
}

// MonthSaver persists the aggregated months.
type MonthSaver interface {
	SaveMonths(months []domain.MonthEntry) error
}

// MonthPublisher forwards aggregated months downstream.
type MonthPublisher interface {
	PublishMonths(ctx context.Context, months []domain.MonthEntry) error
}

// Aggregator turns a saved report list into the month-by-location summary.
type Aggregator struct {
	loader       ReportLoader
	saver        MonthSaver
	publisher    MonthPublisher
	maxLocations int
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewAggregator wires an aggregate job. publisher may be nil.
func NewAggregator(loader ReportLoader, saver MonthSaver, publisher MonthPublisher, maxLocations int, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{
		loader:       loader,
		saver:        saver,
		publisher:    publisher,
		maxLocations: maxLocations,
		logger:       logger,
		metrics:      metrics,
	}
}

// Run loads, aggregates, saves, and optionally publishes. The file is written before
// anything is published.
func (a *Aggregator) Run(ctx context.Context) (domain.Aggregation, error) {
	reports, err := a.loader.LoadReports()
	if err != nil {
		return domain.Aggregation{}, fmt.Errorf("load field reports: %w", err)
	}
	a.logger.Info("loaded field reports", "count", len(reports))

	agg := domain.AggregateByMonth(reports, a.maxLocations, a.logger)
	a.record(agg)
	a.logSummary(agg)

	if err := a.saver.SaveMonths(agg.Months); err != nil {
		return agg, fmt.Errorf("save aggregated months: %w", err)
	}
	a.logger.Info("saved aggregated months", "months", len(agg.Months))

	if a.publisher == nil {
		return agg, nil
	}
	if err := a.publisher.PublishMonths(ctx, agg.Months); err != nil {
		return agg, err
	}
	a.metrics.MessagesPublished.Add(float64(len(agg.Months)))
	return agg, nil
}

func (a *Aggregator) record(agg domain.Aggregation) {
	s := agg.Stats
	a.metrics.ReportsLoaded.Add(float64(s.Loaded))
	for _, reason := range domain.SkipReasons {
		a.metrics.ReportsSkipped.WithLabelValues(string(reason)).Add(float64(s.Skipped[reason]))
	}
	a.metrics.ReportsRetained.Add(float64(s.RetainedReports))
	a.metrics.LocationsDropped.Add(float64(s.TruncatedBuckets))
	a.metrics.MonthsAggregated.Set(float64(len(agg.Months)))
}

func (a *Aggregator) logSummary(agg domain.Aggregation) {
	s := agg.Stats
	skipped := make([]any, 0, len(domain.SkipReasons))
	for _, reason := range domain.SkipReasons {
		skipped = append(skipped, slog.Int(string(reason), s.Skipped[reason]))
	}
	first, last := agg.DateRange()

	a.logger.Info("aggregation summary",
		"loaded", s.Loaded,
		"admitted", s.Admitted,
		slog.Group("skipped", skipped...),
		"months", len(agg.Months),
		"first_month", first,
		"last_month", last,
		"total_reports", s.RetainedReports,
		"dropped_locations", s.TruncatedBuckets,
		"dropped_reports", s.TruncatedReports,
		"avg_locations_per_month", agg.AverageLocations(),
	)
}
