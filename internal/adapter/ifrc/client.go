package ifrc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/ifrc-field-report-etl/internal/config"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/domain"
	"github.com/couchcryptid/ifrc-field-report-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Metric label values for the two paginated endpoints.
const (
	EndpointCountry     = "country"
	EndpointFieldReport = "field_report"
)

const (
	countryPath     = "/api/v2/country/"
	fieldReportPath = "/api/v2/field-report/"

	maxErrorBody = 512
)

// PageError reports the request that ended pagination early. Records gathered before
// it are still returned alongside it.
type PageError struct {
	Endpoint string
	Offset   int
	Err      error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%s page at offset %d: %v", e.Endpoint, e.Offset, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Client reads countries and field reports from the IFRC GO API.
type Client struct {
	token        string
	httpClient   *http.Client
	baseURL      string
	pageSize     int
	pageDelay    time.Duration
	createdSince string
	clock        clockwork.Clock
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewClient creates a GO API client from the IFRC_* settings.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: cfg.IFRCToken,
		httpClient: &http.Client{
			Timeout: cfg.IFRCTimeout,
		},
		baseURL:      strings.TrimRight(cfg.IFRCBaseURL, "/"),
		pageSize:     cfg.IFRCPageSize,
		pageDelay:    cfg.IFRCPageDelay,
		createdSince: cfg.IFRCCreatedSince,
		clock:        clockwork.NewRealClock(),
		metrics:      metrics,
		logger:       logger,
	}
}

// FetchCountryCoordinates pages through the country listing and indexes each
// country's centroid by id. On a failed page it returns the centroids gathered so
// far together with a *PageError.
func (c *Client) FetchCountryCoordinates(ctx context.Context) (domain.CountryCoords, error) {
	c.logger.Info("fetching country coordinates")

	var countries []domain.Country
	err := paginate(ctx, c, countryPath, EndpointCountry, nil, 0, func(batch []domain.Country) {
		countries = append(countries, batch...)
		c.logger.Info("fetched countries", "count", len(batch), "total", len(countries))
	})

	coords := domain.BuildCountryCoords(countries)
	c.metrics.CountriesCached.Set(float64(len(coords)))
	c.logger.Info("cached country coordinates", "countries", len(coords))
	return coords, err
}

// FetchFieldReports pages through field reports created on or after the configured
// date, projecting each onto domain.Report with coordinates from coords. It waits
// pageDelay after every non-empty page. On a failed page it returns the reports
// gathered so far together with a *PageError.
func (c *Client) FetchFieldReports(ctx context.Context, coords domain.CountryCoords) ([]domain.Report, error) {
	params := url.Values{"created_at__gte": {c.createdSince}}

	var reports []domain.Report
	err := paginate(ctx, c, fieldReportPath, EndpointFieldReport, params, c.pageDelay, func(batch []domain.RawFieldReport) {
		for _, raw := range batch {
			reports = append(reports, domain.ExtractReportFields(raw, coords))
		}
		c.logger.Info("fetched field reports", "count", len(batch), "total", len(reports))
	})
	if err != nil {
		c.logger.Warn("field report fetch incomplete", "saved_so_far", len(reports))
	}
	return reports, err
}

// paginate requests pages of pageSize at increasing offsets until a page comes back
// empty or a request fails, handing each non-empty page to handle.
func paginate[T any](ctx context.Context, c *Client, path, endpoint string, extra url.Values, delay time.Duration, handle func([]T)) error {
	offset := 0
	for {
		c.logger.Debug("fetching page", "endpoint", endpoint, "offset", offset)

		results, err := fetchPage[T](ctx, c, path, endpoint, extra, offset)
		if err != nil {
			c.metrics.FetchErrors.WithLabelValues(endpoint).Inc()
			c.logger.Error("fetch page failed, stopping pagination",
				"endpoint", endpoint,
				"offset", offset,
				"error", err,
			)
			return &PageError{Endpoint: endpoint, Offset: offset, Err: err}
		}

		if len(results) == 0 {
			c.logger.Info("no more data available", "endpoint", endpoint, "offset", offset)
			return nil
		}

		c.metrics.PagesFetched.WithLabelValues(endpoint).Inc()
		c.metrics.RecordsFetched.WithLabelValues(endpoint).Add(float64(len(results)))
		handle(results)
		offset += c.pageSize

		if !sleepWithContext(ctx, c.clock, delay) {
			return &PageError{Endpoint: endpoint, Offset: offset, Err: ctx.Err()}
		}
	}
}

// page is the GO API list envelope. Count and next are ignored; an empty results
// array ends pagination.
type page[T any] struct {
	Results []T `json:"results"`
}

func fetchPage[T any](ctx context.Context, c *Client, path, endpoint string, extra url.Values, offset int) ([]T, error) {
	params := url.Values{
		"limit":  {strconv.Itoa(c.pageSize)},
		"offset": {strconv.Itoa(offset)},
	}
	for k, v := range extra {
		params[k] = v
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RequestDuration.WithLabelValues(endpoint).Observe(c.clock.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("ifrc API error: status %d: %s", resp.StatusCode, body)
	}

	var p page[T]
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return p.Results, nil
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
