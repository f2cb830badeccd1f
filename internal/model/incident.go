package model

import "time"

// Incident is one historical road-accident record after ingest.
// Station is the raw station name; the deriver canonicalizes it.
type Incident struct {
	Station          string
	Place            string
	Offense          string
	Vehicles         string
	DriverBehavior   string
	Severity         string
	Weather          string
	FrequentLocation string

	Date    time.Time // calendar day the incident was committed
	HasDate bool
	Clock   time.Duration // time of day since midnight
	HasTime bool
}

// Month returns 1-12, or 0 when the date is unknown.
func (i Incident) Month() int {
	if !i.HasDate {
		return 0
	}
	return int(i.Date.Month())
}

// DayOfWeek returns 0 for Monday through 6 for Sunday, or 0 when the date is unknown.
func (i Incident) DayOfWeek() int {
	if !i.HasDate {
		return 0
	}
	return (int(i.Date.Weekday()) + 6) % 7
}

// Hour returns the hour of day, or 0 when the time is unknown.
func (i Incident) Hour() int {
	if !i.HasTime {
		return 0
	}
	return int(i.Clock / time.Hour)
}
