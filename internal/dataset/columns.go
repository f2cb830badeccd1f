// Package dataset reads historical road-incident records from XLSX and CSV exports.
package dataset

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// Canonical column names. Source headers are matched against aliases, so both
// the police-blotter headers ("Place of Accident") and snake_case exports work.
const (
	colStation          = "station"
	colPlace            = "place"
	colOffense          = "offense"
	colVehicles         = "vehicles"
	colDriverBehavior   = "driver_behavior"
	colSeverity         = "severity"
	colWeather          = "weather"
	colFrequentLocation = "frequent_location"
	colDateCommitted    = "date_committed"
	colTimeCommitted    = "time_committed"
)

// columnAliases lists normalized header prefixes per canonical column, most specific first.
var columnAliases = []struct {
	canonical string
	aliases   []string
}{
	{colPlace, []string{"place_of_accident", "place", "barangay"}},
	{colStation, []string{"station", "municipality"}},
	{colOffense, []string{"offense"}},
	{colVehicles, []string{"vehicles_involved", "vehicle_type", "vehicles"}},
	{colDriverBehavior, []string{"driver_s_behavior", "driver_behavior", "drivers_behavior"}},
	{colSeverity, []string{"severity_of_accident", "severity"}},
	{colWeather, []string{"weather_condition", "weather"}},
	{colFrequentLocation, []string{"frequent_location_of_accident", "frequent_location"}},
	{colDateCommitted, []string{"date_committed", "date"}},
	{colTimeCommitted, []string{"time_committed", "time"}},
}

var requiredColumns = []string{colPlace, colStation, colSeverity, colOffense, colDateCommitted}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Trim(nonAlnum.ReplaceAllString(h, "_"), "_")
}

// canonicalColumn maps a source header to its canonical column, or "" when unknown.
func canonicalColumn(header string) string {
	h := normalizeHeader(header)
	for _, c := range columnAliases {
		for _, a := range c.aliases {
			if h == a || strings.HasPrefix(h, a+"_") {
				return c.canonical
			}
		}
	}
	return ""
}

// canonicalHeader rewrites a header row to canonical names. Unknown columns
// become "" and the first occurrence of a duplicate wins.
func canonicalHeader(header []string) ([]string, error) {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		c := canonicalColumn(h)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out[i] = c
	}
	for _, req := range requiredColumns {
		if !seen[req] {
			return nil, eris.Errorf("dataset: missing required column %q", req)
		}
	}
	return out, nil
}
