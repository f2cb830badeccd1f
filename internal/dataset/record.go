package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/accident-risk/internal/model"
)

// rawIncident is one source row keyed by canonical column name.
type rawIncident struct {
	Station          string `csv:"station"`
	Place            string `csv:"place"`
	Offense          string `csv:"offense"`
	Vehicles         string `csv:"vehicles"`
	DriverBehavior   string `csv:"driver_behavior"`
	Severity         string `csv:"severity"`
	Weather          string `csv:"weather"`
	FrequentLocation string `csv:"frequent_location"`
	DateCommitted    string `csv:"date_committed"`
	TimeCommitted    string `csv:"time_committed"`
}

func (r *rawIncident) set(column, value string) {
	switch column {
	case colStation:
		r.Station = value
	case colPlace:
		r.Place = value
	case colOffense:
		r.Offense = value
	case colVehicles:
		r.Vehicles = value
	case colDriverBehavior:
		r.DriverBehavior = value
	case colSeverity:
		r.Severity = value
	case colWeather:
		r.Weather = value
	case colFrequentLocation:
		r.FrequentLocation = value
	case colDateCommitted:
		r.DateCommitted = value
	case colTimeCommitted:
		r.TimeCommitted = value
	}
}

func (r rawIncident) toIncident(date1904 bool) model.Incident {
	inc := model.Incident{
		Station:          strings.TrimSpace(r.Station),
		Place:            strings.TrimSpace(r.Place),
		Offense:          strings.TrimSpace(r.Offense),
		Vehicles:         strings.TrimSpace(r.Vehicles),
		DriverBehavior:   strings.TrimSpace(r.DriverBehavior),
		Severity:         strings.TrimSpace(r.Severity),
		Weather:          strings.TrimSpace(r.Weather),
		FrequentLocation: strings.TrimSpace(r.FrequentLocation),
	}
	inc.Date, inc.HasDate = parseDate(r.DateCommitted, date1904)
	inc.Clock, inc.HasTime = parseClock(r.TimeCommitted, date1904)
	return inc
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
	"01/02/06",
	"January 2, 2006",
	"Jan 2, 2006",
	"02-Jan-2006",
	"2-Jan-06",
}

// parseDate accepts textual dates and Excel serial numbers.
func parseDate(s string, date1904 bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t := xlsx.TimeFromExcelTime(serial, date1904)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3:04PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseClock accepts "HH:MM:SS" style values and Excel day fractions.
func parseClock(s string, date1904 bool) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if frac, err := strconv.ParseFloat(s, 64); err == nil {
		t := xlsx.TimeFromExcelTime(frac, date1904)
		return sinceMidnight(t), true
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return sinceMidnight(t), true
		}
	}
	return 0, false
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}
