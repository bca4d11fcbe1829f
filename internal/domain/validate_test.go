package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMonth(month string) MonthEntry {
	return MonthEntry{
		Month:          month,
		Date:           month + "-01",
		TotalReports:   3,
		TotalLocations: 2,
		Locations: []LocationEntry{
			{Lat: 1, Lon: 1, Count: 2, Reports: []*int64{ptr(int64(1)), ptr(int64(2))}, Titles: []string{}},
			{Lat: 2, Lon: 2, Count: 1, Reports: []*int64{ptr(int64(3))}, Titles: []string{}},
		},
	}
}

func TestValidateMonths_Valid(t *testing.T) {
	months := []MonthEntry{validMonth("2019-04"), validMonth("2019-05")}
	assert.Empty(t, ValidateMonths(months, 0))
}

func TestValidateMonths_Violations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m []MonthEntry) []MonthEntry
		limit   int
		message string
	}{
		{
			name: "months out of order",
			mutate: func(m []MonthEntry) []MonthEntry {
				m[0], m[1] = m[1], m[0]
				return m
			},
			message: "not after previous month",
		},
		{
			name: "wrong date",
			mutate: func(m []MonthEntry) []MonthEntry {
				m[0].Date = "2019-04-15"
				return m
			},
			message: "date",
		},
		{
			name: "count mismatch",
			mutate: func(m []MonthEntry) []MonthEntry {
				m[0].Locations[0].Count = 5
				m[0].TotalReports = 6
				return m
			},
			message: "report ids",
		},
		{
			name: "ascending counts",
			mutate: func(m []MonthEntry) []MonthEntry {
				m[0].Locations[0], m[0].Locations[1] = m[0].Locations[1], m[0].Locations[0]
				return m
			},
			message: "want descending",
		},
		{
			name: "total reports mismatch",
			mutate: func(m []MonthEntry) []MonthEntry {
				m[1].TotalReports = 10
				return m
			},
			message: "total_reports 10",
		},
		{
			name: "total locations mismatch",
			mutate: func(m []MonthEntry) []MonthEntry {
				m[1].TotalLocations = 1
				return m
			},
			message: "total_locations 1",
		},
		{
			name: "over the limit",
			mutate: func(m []MonthEntry) []MonthEntry {
				return m
			},
			limit:   1,
			message: "exceeds limit 1",
		},
		{
			name: "empty month",
			mutate: func(m []MonthEntry) []MonthEntry {
				m[1].Locations = nil
				m[1].TotalLocations = 0
				m[1].TotalReports = 0
				return m
			},
			message: "no locations",
		},
		{
			name: "too many titles",
			mutate: func(m []MonthEntry) []MonthEntry {
				m[0].Locations[1].Titles = []string{"a", "b", "c", "d"}
				return m
			},
			message: "4 titles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			months := tt.mutate([]MonthEntry{validMonth("2019-04"), validMonth("2019-05")})
			problems := ValidateMonths(months, tt.limit)
			require.NotEmpty(t, problems)

			found := false
			for _, p := range problems {
				if strings.Contains(p, tt.message) {
					found = true
				}
			}
			assert.True(t, found, "expected a problem containing %q, got %v", tt.message, problems)
		})
	}
}
