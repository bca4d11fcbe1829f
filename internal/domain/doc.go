// Package domain models IFRC GO field reports and their month × location aggregation.
//
// # Data Source
//
// Field reports come from the IFRC GO API (https://goadmin.ifrc.org/api/v2/field-report/).
// Country centroids come from the country listing (/api/v2/country/). Both endpoints are
// paginated with limit/offset and wrap records in a {"results": [...]} envelope. The fetch
// job projects each raw report onto the flat [Report] shape and writes the list to disk;
// the aggregate job reads that file back.
//
// # GO API Conventions
//
// Multi-valued associations:
//
//	countries_details and regions_details are arrays. Only the first element is used,
//	so a report covering several countries is attributed to the first one listed.
//
// Coordinates:
//
//	Reports carry no coordinates of their own. The first country's centroid,
//	a GeoJSON point ordered [lon, lat], is used as the report location.
//	Countries without a centroid leave lat/lon unset.
//
// Timestamps:
//
//	created_at is ISO-8601 with microseconds, usually zulu-suffixed:
//	"2020-03-05T09:12:44.132895Z". Month keys use the year and month as written,
//	in the timestamp's own offset.
//
// # Aggregation Rules
//
// Admission: a report needs non-zero lat and lon and a parsable created_at in
// [2018-03, 2025-12]. January and February 2018 are excluded because they hold a
// bulk import of historical reports.
//
// Buckets: month key "YYYY-MM" × location key "lat,lon" with both coordinates rounded
// to 2 decimals. Each bucket becomes a [LocationEntry]; categorical fields take the
// mode (first seen wins ties), country and region come from the first report, and
// is_covid needs a strict majority.
//
// Truncation: locations are ordered by count descending and only the top
// [DefaultMaxLocations] survive. total_reports counts retained locations only.
package domain
