package domain

import "fmt"

// ValidateMonths checks aggregated output against its structural invariants and
// returns one message per violation. maxLocations <= 0 means DefaultMaxLocations.
func ValidateMonths(months []MonthEntry, maxLocations int) []string {
	if maxLocations <= 0 {
		maxLocations = DefaultMaxLocations
	}

	var problems []string
	errorf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for i, m := range months {
		if i > 0 && m.Month <= months[i-1].Month {
			errorf("month %s: not after previous month %s", m.Month, months[i-1].Month)
		}
		if m.Date != m.Month+"-01" {
			errorf("month %s: date %q, want %q", m.Month, m.Date, m.Month+"-01")
		}
		if len(m.Locations) == 0 {
			errorf("month %s: no locations", m.Month)
		}
		if m.TotalLocations != len(m.Locations) {
			errorf("month %s: total_locations %d, have %d locations", m.Month, m.TotalLocations, len(m.Locations))
		}
		if len(m.Locations) > maxLocations {
			errorf("month %s: %d locations exceeds limit %d", m.Month, len(m.Locations), maxLocations)
		}

		sum := 0
		for j, loc := range m.Locations {
			sum += loc.Count
			if loc.Count != len(loc.Reports) {
				errorf("month %s location %.2f,%.2f: count %d, have %d report ids",
					m.Month, loc.Lat, loc.Lon, loc.Count, len(loc.Reports))
			}
			if j > 0 && loc.Count > m.Locations[j-1].Count {
				errorf("month %s location %.2f,%.2f: count %d after %d, want descending",
					m.Month, loc.Lat, loc.Lon, loc.Count, m.Locations[j-1].Count)
			}
			if len(loc.Titles) > maxTitles {
				errorf("month %s location %.2f,%.2f: %d titles exceeds %d",
					m.Month, loc.Lat, loc.Lon, len(loc.Titles), maxTitles)
			}
		}
		if m.TotalReports != sum {
			errorf("month %s: total_reports %d, locations sum to %d", m.Month, m.TotalReports, sum)
		}
	}
	return problems
}
