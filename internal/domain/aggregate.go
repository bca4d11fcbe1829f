package domain

import (
	"cmp"
	"log/slog"
	"slices"
	"strconv"
	"time"
)

const (
	// DefaultMaxLocations caps the locations kept per month.
	DefaultMaxLocations = 50

	// UnknownCategory stands in for a missing event or disaster type name.
	UnknownCategory = "Unknown"

	maxTitles = 3

	firstYear = 2018
	lastYear  = 2025
)

// SkipReason explains why a report was left out of the aggregation.
type SkipReason string

const (
	SkipNoCoords    SkipReason = "no_coords"
	SkipNoDate      SkipReason = "no_date"
	SkipInvalidDate SkipReason = "invalid_date"
	SkipOutOfRange  SkipReason = "out_of_range"
	SkipBulkImport  SkipReason = "bulk_import"
)

// SkipReasons lists every SkipReason in reporting order.
var SkipReasons = []SkipReason{SkipNoCoords, SkipNoDate, SkipInvalidDate, SkipOutOfRange, SkipBulkImport}

// AggregateStats carries diagnostics for one aggregation pass. None of it affects
// the aggregated months.
type AggregateStats struct {
	Loaded            int
	Admitted          int
	Skipped           map[SkipReason]int
	TruncatedBuckets  int
	TruncatedReports  int
	RetainedReports   int
	RetainedLocations int
}

// TotalSkipped sums the skip counters.
func (s AggregateStats) TotalSkipped() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

// Aggregation is the result of AggregateByMonth.
type Aggregation struct {
	Months []MonthEntry
	Stats  AggregateStats
}

// DateRange returns the first and last month keys, or empty strings when there are none.
func (a Aggregation) DateRange() (string, string) {
	if len(a.Months) == 0 {
		return "", ""
	}
	return a.Months[0].Month, a.Months[len(a.Months)-1].Month
}

// AverageLocations is the mean number of retained locations per month.
func (a Aggregation) AverageLocations() float64 {
	if len(a.Months) == 0 {
		return 0
	}
	return float64(a.Stats.RetainedLocations) / float64(len(a.Months))
}

// locationBucket holds the reports that share a rounded coordinate pair within a month.
type locationBucket struct {
	lat     float64
	lon     float64
	reports []Report
}

// monthBucket keeps its locations in first-seen order.
type monthBucket struct {
	order     []string
	locations map[string]*locationBucket
}

func (m *monthBucket) add(key string, lat, lon float64, r Report) {
	b, ok := m.locations[key]
	if !ok {
		b = &locationBucket{lat: lat, lon: lon}
		m.locations[key] = b
		m.order = append(m.order, key)
	}
	b.reports = append(b.reports, r)
}

// AggregateByMonth buckets reports by month and rounded location, summarises each
// bucket, and keeps at most maxLocations locations per month (DefaultMaxLocations when
// maxLocations <= 0). Reports are admitted in input order, which fixes every tie-break,
// so the same input always yields the same output.
func AggregateByMonth(reports []Report, maxLocations int, logger *slog.Logger) Aggregation {
	if maxLocations <= 0 {
		maxLocations = DefaultMaxLocations
	}

	stats := AggregateStats{
		Loaded:  len(reports),
		Skipped: make(map[SkipReason]int, len(SkipReasons)),
	}
	for _, reason := range SkipReasons {
		stats.Skipped[reason] = 0
	}

	months := make(map[string]*monthBucket)
	for _, r := range reports {
		monthKey, reason, err := admit(r)
		if err != nil {
			logger.Warn("invalid report date, skipping report",
				"report_id", idAttr(r.ID),
				"error", err,
			)
		}
		if reason != "" {
			stats.Skipped[reason]++
			continue
		}

		lat, latKey := roundCoordinate(*r.Lat)
		lon, lonKey := roundCoordinate(*r.Lon)

		m, ok := months[monthKey]
		if !ok {
			m = &monthBucket{locations: make(map[string]*locationBucket)}
			months[monthKey] = m
		}
		m.add(latKey+","+lonKey, lat, lon, r)
		stats.Admitted++
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]MonthEntry, 0, len(keys))
	for _, key := range keys {
		m := months[key]
		locations := make([]LocationEntry, 0, len(m.order))
		for _, locKey := range m.order {
			locations = append(locations, summarizeLocation(m.locations[locKey]))
		}

		slices.SortStableFunc(locations, func(a, b LocationEntry) int {
			return cmp.Compare(b.Count, a.Count)
		})
		if len(locations) > maxLocations {
			for _, dropped := range locations[maxLocations:] {
				stats.TruncatedBuckets++
				stats.TruncatedReports += dropped.Count
			}
			locations = locations[:maxLocations]
		}

		total := 0
		for _, loc := range locations {
			total += loc.Count
		}
		stats.RetainedReports += total
		stats.RetainedLocations += len(locations)

		out = append(out, MonthEntry{
			Month:          key,
			Date:           key + "-01",
			TotalReports:   total,
			TotalLocations: len(locations),
			Locations:      locations,
		})
	}

	return Aggregation{Months: out, Stats: stats}
}

// admit applies the admission filter. It returns the month key for admitted reports,
// or the reason the report was skipped. err is set only for unparsable dates.
func admit(r Report) (string, SkipReason, error) {
	if !hasCoordinate(r.Lat) || !hasCoordinate(r.Lon) {
		return "", SkipNoCoords, nil
	}
	if r.CreatedAt == nil || *r.CreatedAt == "" {
		return "", SkipNoDate, nil
	}

	t, err := ParseCreatedAt(*r.CreatedAt)
	if err != nil {
		return "", SkipInvalidDate, err
	}
	if t.Year() < firstYear || t.Year() > lastYear {
		return "", SkipOutOfRange, nil
	}
	if t.Year() == firstYear && t.Month() < time.March {
		return "", SkipBulkImport, nil
	}
	return MonthKey(t), "", nil
}

// hasCoordinate reports whether v is set and non-zero. Zero counts as missing.
func hasCoordinate(v *float64) bool {
	return v != nil && *v != 0
}

// MonthKey formats t's year and month as "YYYY-MM".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// roundCoordinate rounds v to 2 decimals by correctly rounding its exact binary value
// (ties to even). It returns the rounded value and its key text.
func roundCoordinate(v float64) (float64, string) {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	rounded, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return v, s
	}
	return rounded, s
}

func summarizeLocation(b *locationBucket) LocationEntry {
	events := newTally()
	dtypes := newTally()
	covid := 0
	ids := make([]*int64, 0, len(b.reports))
	titles := make([]string, 0, maxTitles)
	seenTitles := make(map[string]struct{}, maxTitles)

	for _, r := range b.reports {
		events.add(valueOr(r.EventName, UnknownCategory))
		dtypes.add(valueOr(r.DTypeName, UnknownCategory))
		if r.IsCovidReport != nil && *r.IsCovidReport {
			covid++
		}
		ids = append(ids, r.ID)

		if r.Title == nil || *r.Title == "" || len(titles) == maxTitles {
			continue
		}
		if _, dup := seenTitles[*r.Title]; !dup {
			seenTitles[*r.Title] = struct{}{}
			titles = append(titles, *r.Title)
		}
	}

	first := b.reports[0]
	return LocationEntry{
		Lat:         b.lat,
		Lon:         b.lon,
		Count:       len(b.reports),
		CountryName: first.CountryName,
		CountryISO3: first.CountryISO3,
		RegionName:  first.RegionName,
		EventName:   events.mode(UnknownCategory),
		DTypeName:   dtypes.mode(UnknownCategory),
		IsCovid:     covid*2 > len(b.reports),
		Reports:     ids,
		Titles:      titles,
	}
}

func valueOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}

func idAttr(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
