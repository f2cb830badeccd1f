package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownStation is the station assumed when a lookup omits one.
const UnknownStation = "unknown"

// NormalizeName lowercases and trims a barangay or station name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LocationKey builds the composite "barangay, station" key used by the
// location table. Both parts are normalized, so the key is case- and
// whitespace-insensitive.
func LocationKey(barangay, station string) string {
	return NormalizeName(barangay) + ", " + NormalizeName(station)
}

// TitleCase renders a name for display ("san carlos city" -> "San Carlos City").
// Casers keep state, so one is built per call.
func TitleCase(name string) string {
	return cases.Title(language.Und).String(name)
}
