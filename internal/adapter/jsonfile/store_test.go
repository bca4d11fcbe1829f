package jsonfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/ifrc-field-report-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestReportStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field_reports.json")
	store := NewReportStore(path)

	reports := []domain.Report{
		{
			ID:          ptr(int64(1)),
			Title:       ptr("Côte d'Ivoire: Floods <update> & more"),
			CreatedAt:   ptr("2019-05-10T00:00:00Z"),
			CountryName: ptr("Côte d'Ivoire"),
			Lat:         ptr(7.54),
			Lon:         ptr(-5.55),
		},
		{ID: ptr(int64(2))},
	}
	require.NoError(t, store.SaveReports(reports))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "[\n  {\n    \"id\": 1,"), "indented with two spaces")
	assert.Contains(t, text, "Côte d'Ivoire: Floods <update> & more", "no ASCII or HTML escaping")

	loaded, err := store.LoadReports()
	require.NoError(t, err)
	if diff := cmp.Diff(reports, loaded); diff != "" {
		t.Fatalf("reports mismatch (-want +got):\n%s", diff)
	}
}

func TestReportStore_SaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, NewReportStore(path).SaveReports(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestReportStore_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewReportStore(filepath.Join(dir, "missing.json")).LoadReports()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "a list"}`), 0o644))
	_, err = NewReportStore(bad).LoadReports()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestReportStore_LoadToleratesMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparse.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 7}, {"lat": null, "title": "x"}, {}]`), 0o644))

	reports, err := NewReportStore(path).LoadReports()
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, int64(7), *reports[0].ID)
	assert.Nil(t, reports[1].Lat)
	assert.Nil(t, reports[2].ID)
}

func TestMonthStore_SaveIsByteStable(t *testing.T) {
	dir := t.TempDir()
	months := []domain.MonthEntry{{
		Month:          "2019-05",
		Date:           "2019-05-01",
		TotalReports:   1,
		TotalLocations: 1,
		Locations: []domain.LocationEntry{{
			Lat: 12.35, Lon: 6.79, Count: 1,
			EventName: "Flood", DTypeName: "Unknown",
			Reports: []*int64{ptr(int64(1))}, Titles: []string{},
		}},
	}}

	first := NewMonthStore(filepath.Join(dir, "a.json"))
	second := NewMonthStore(filepath.Join(dir, "b.json"))
	require.NoError(t, first.SaveMonths(months))
	require.NoError(t, second.SaveMonths(months))

	a, err := os.ReadFile(first.Path())
	require.NoError(t, err)
	b, err := os.ReadFile(second.Path())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	loaded, err := first.LoadMonths()
	require.NoError(t, err)
	if diff := cmp.Diff(months, loaded); diff != "" {
		t.Fatalf("months mismatch (-want +got):\n%s", diff)
	}
}

func TestMonthStore_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, NewMonthStore(path).SaveMonths(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is renamed away")
}
