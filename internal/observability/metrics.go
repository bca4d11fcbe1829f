package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the fetch and
// aggregate jobs.
type Metrics struct {
	// Fetch metrics.
	PagesFetched    *prometheus.CounterVec   // labels: endpoint={country,field_report}
	RecordsFetched  *prometheus.CounterVec   // labels: endpoint
	FetchErrors     *prometheus.CounterVec   // labels: endpoint
	RequestDuration *prometheus.HistogramVec // labels: endpoint
	CountriesCached prometheus.Gauge
	FetchComplete   prometheus.Gauge

	// Aggregation metrics.
	ReportsLoaded     prometheus.Counter
	ReportsSkipped    *prometheus.CounterVec // labels: reason
	ReportsRetained   prometheus.Counter
	LocationsDropped  prometheus.Counter
	MonthsAggregated  prometheus.Gauge
	MessagesPublished prometheus.Counter
}

// NewMetrics creates and registers all job metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.PagesFetched,
		m.RecordsFetched,
		m.FetchErrors,
		m.RequestDuration,
		m.CountriesCached,
		m.FetchComplete,
		m.ReportsLoaded,
		m.ReportsSkipped,
		m.ReportsRetained,
		m.LocationsDropped,
		m.MonthsAggregated,
		m.MessagesPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ifrc_etl",
			Name:      "pages_fetched_total",
			Help:      "Non-empty API pages fetched, by endpoint.",
		}, []string{"endpoint"}),
		RecordsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ifrc_etl",
			Name:      "records_fetched_total",
			Help:      "Records received from the API, by endpoint.",
		}, []string{"endpoint"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ifrc_etl",
			Name:      "fetch_errors_total",
			Help:      "Failed page requests that ended pagination early, by endpoint.",
		}, []string{"endpoint"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ifrc_etl",
			Name:      "request_duration_seconds",
			Help:      "IFRC GO API request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		CountriesCached: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ifrc_etl",
			Name:      "countries_cached",
			Help:      "Countries with a known centroid.",
		}),
		FetchComplete: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ifrc_etl",
			Name:      "fetch_complete",
			Help:      "1 when the last fetch paginated to the end, 0 when it stopped on an error.",
		}),
		ReportsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ifrc_etl",
			Name:      "reports_loaded_total",
			Help:      "Reports read by the aggregate job.",
		}),
		ReportsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ifrc_etl",
			Name:      "reports_skipped_total",
			Help:      "Reports excluded from aggregation, by reason.",
		}, []string{"reason"}),
		ReportsRetained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ifrc_etl",
			Name:      "reports_retained_total",
			Help:      "Reports counted in retained locations.",
		}),
		LocationsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ifrc_etl",
			Name:      "locations_dropped_total",
			Help:      "Location buckets dropped by the per-month limit.",
		}),
		MonthsAggregated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ifrc_etl",
			Name:      "months_aggregated",
			Help:      "Months in the last aggregated output.",
		}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ifrc_etl",
			Name:      "messages_published_total",
			Help:      "Month entries published to Kafka.",
		}),
	}
}
