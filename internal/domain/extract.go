package domain

// BuildCountryCoords indexes country centroids by id. Countries with a zero id or a
// centroid of fewer than two components are left out.
func BuildCountryCoords(countries []Country) CountryCoords {
	coords := make(CountryCoords, len(countries))
	for _, c := range countries {
		if c.ID == 0 || c.Centroid == nil || len(c.Centroid.Coordinates) < 2 {
			continue
		}
		coords[c.ID] = Coordinates{
			Lon: c.Centroid.Coordinates[0],
			Lat: c.Centroid.Coordinates[1],
		}
	}
	return coords
}

// ExtractReportFields projects a raw GO API report onto the simplified Report schema.
// The first listed country and region are used; lat/lon come from coords when the
// country's centroid is known and stay unset otherwise.
func ExtractReportFields(raw RawFieldReport, coords CountryCoords) Report {
	report := Report{
		ID:                raw.ID,
		Title:             raw.Title,
		VisibilityDisplay: raw.VisibilityDisplay,
		IsCovidReport:     raw.IsCovidReport,
		CreatedAt:         raw.CreatedAt,
	}
	if raw.DTypeDetails != nil {
		report.DTypeName = raw.DTypeDetails.Name
	}
	if raw.EventDetails != nil {
		report.EventName = raw.EventDetails.Name
	}

	if len(raw.CountriesDetails) > 0 {
		country := raw.CountriesDetails[0]
		report.CountryName = country.Name
		report.CountryISO3 = country.ISO3
		if country.ID != 0 {
			countryID := country.ID
			report.CountryID = &countryID
			if c, ok := coords[countryID]; ok {
				lat, lon := c.Lat, c.Lon
				report.Lat = &lat
				report.Lon = &lon
			}
		}
	}

	if len(raw.RegionsDetails) > 0 {
		region := raw.RegionsDetails[0]
		name := string(region.Name)
		report.RegionName = firstNonEmpty(region.RegionName, &name)
	}

	return report
}

func firstNonEmpty(values ...*string) *string {
	for _, v := range values {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}
