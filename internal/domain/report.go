package domain

import (
	"encoding/json"
	"fmt"
)

// RawFieldReport is the subset of the GO API field-report payload read during extraction.
type RawFieldReport struct {
	ID                *int64           `json:"id"`
	Title             *string          `json:"title"`
	CreatedAt         *string          `json:"created_at"`
	IsCovidReport     *bool            `json:"is_covid_report"`
	VisibilityDisplay *string          `json:"visibility_display"`
	DTypeDetails      *namedDetails    `json:"dtype_details"`
	EventDetails      *namedDetails    `json:"event_details"`
	CountriesDetails  []CountryDetails `json:"countries_details"`
	RegionsDetails    []RegionDetails  `json:"regions_details"`
}

type namedDetails struct {
	Name *string `json:"name"`
}

// CountryDetails is one entry of a report's countries_details array.
type CountryDetails struct {
	ID   int64   `json:"id"`
	Name *string `json:"name"`
	ISO3 *string `json:"iso3"`
}

// RegionDetails is one entry of a report's regions_details array. The API sends name
// as the numeric region code and region_name as the label.
type RegionDetails struct {
	RegionName *string    `json:"region_name"`
	Name       FlexString `json:"name"`
}

// FlexString decodes a JSON string or number into its text form. A number 0 decodes
// as "0"; null leaves it empty.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode flexible string: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// Country is the subset of the GO API country payload used to build centroids.
type Country struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Centroid *Centroid `json:"centroid"`
}

// Centroid is a GeoJSON point; Coordinates are ordered [lon, lat].
type Centroid struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CountryCoords maps a GO country id to its centroid.
type CountryCoords map[int64]Coordinates

// Report is the simplified field-report record written by the fetch job and read by
// the aggregate job. Every field is optional.
type Report struct {
	ID                *int64   `json:"id"`
	DTypeName         *string  `json:"dtype_name"`
	Title             *string  `json:"title"`
	VisibilityDisplay *string  `json:"visibility_display"`
	EventName         *string  `json:"event_name"`
	IsCovidReport     *bool    `json:"is_covid_report"`
	CreatedAt         *string  `json:"created_at"`
	CountryName       *string  `json:"country_name,omitempty"`
	CountryISO3       *string  `json:"country_iso3,omitempty"`
	CountryID         *int64   `json:"country_id,omitempty"`
	Lat               *float64 `json:"lat,omitempty"`
	Lon               *float64 `json:"lon,omitempty"`
	RegionName        *string  `json:"region_name,omitempty"`
}

// LocationEntry summarises one month × location bucket.
type LocationEntry struct {
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	Count       int      `json:"count"`
	CountryName *string  `json:"country_name"`
	CountryISO3 *string  `json:"country_iso3"`
	RegionName  *string  `json:"region_name"`
	EventName   string   `json:"event_name"`
	DTypeName   string   `json:"dtype_name"`
	IsCovid     bool     `json:"is_covid"`
	Reports     []*int64 `json:"reports"`
	Titles      []string `json:"titles"`
}

// MonthEntry is one element of the aggregated output.
type MonthEntry struct {
	Month          string          `json:"month"`
	Date           string          `json:"date"`
	TotalReports   int             `json:"total_reports"`
	TotalLocations int             `json:"total_locations"`
	Locations      []LocationEntry `json:"locations"`
}
