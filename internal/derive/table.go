package derive

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sells-group/accident-risk/internal/model"
)

// UnknownOffense is reported when a location has no recorded offense.
const UnknownOffense = "Unknown"

// Clean drops incidents without a place and canonicalizes station names.
// It returns the kept incidents and the number dropped.
func Clean(incidents []model.Incident, stations *StationNormalizer) ([]model.Incident, int) {
	kept := make([]model.Incident, 0, len(incidents))
	for _, inc := range incidents {
		inc.Place = strings.TrimSpace(inc.Place)
		if inc.Place == "" {
			continue
		}
		inc.Station = stations.Normalize(inc.Station)
		kept = append(kept, inc)
	}
	return kept, len(incidents) - len(kept)
}

// TableResult is the location table plus the per-key prone labels used to
// build classifier targets.
type TableResult struct {
	Table model.LocationTable
	// Percentile is the untruncated threshold; prone keys exceed it.
	Percentile float64
	Prone      map[string]bool
}

type locationGroup struct {
	barangay string
	station  string
	total    int
	fatal    int
	offenses map[string]int
}

// BuildTable groups cleaned incidents by location key and labels the keys
// whose incident count is strictly above the given percentile.
func BuildTable(incidents []model.Incident, percentile float64) TableResult {
	var order []string
	groups := make(map[string]*locationGroup)
	places := make(map[string]bool)

	for _, inc := range incidents {
		places[inc.Place] = true
		if inc.Station == "" {
			continue
		}

		key := model.LocationKey(inc.Place, inc.Station)
		g, ok := groups[key]
		if !ok {
			g = &locationGroup{
				barangay: inc.Place,
				station:  inc.Station,
				offenses: make(map[string]int),
			}
			groups[key] = g
			order = append(order, key)
		}
		g.total++
		if IsFatal(inc.Severity) {
			g.fatal++
		}
		if off := strings.TrimSpace(inc.Offense); off != "" {
			g.offenses[off]++
		}
	}

	counts := make([]int, len(order))
	for i, key := range order {
		counts[i] = groups[key].total
	}
	cutoff := Percentile(counts, percentile)

	res := TableResult{
		Percentile: cutoff,
		Prone:      make(map[string]bool),
		Table: model.LocationTable{
			Threshold:   int(cutoff),
			TotalPlaces: len(places),
		},
	}

	var proneKeys []string
	for _, key := range order {
		g := groups[key]
		prone := float64(g.total) > cutoff
		if prone {
			res.Prone[key] = true
			proneKeys = append(proneKeys, key)
		}
		res.Table.Statistics.Set(key, model.LocationStats{
			Barangay:          g.barangay,
			Station:           g.station,
			TotalAccidents:    g.total,
			FatalAccidents:    g.fatal,
			IsAccidentProne:   prone,
			MostCommonOffense: mode(g.offenses, UnknownOffense),
		})
	}

	// Most incidents first; SortStableFunc keeps first-seen order on ties.
	slices.SortStableFunc(proneKeys, func(a, b string) int {
		return cmp.Compare(groups[b].total, groups[a].total)
	})
	res.Table.Places = make([]string, len(proneKeys))
	for i, key := range proneKeys {
		g := groups[key]
		res.Table.Places[i] = g.barangay + ", " + g.station
	}

	return res
}

// IsFatal reports whether a severity label mentions a fatality. The match is
// a case-insensitive substring, so "Non Fatal" counts as well.
func IsFatal(severity string) bool {
	return strings.Contains(strings.ToLower(severity), "fatal")
}

// mode returns the most frequent value, breaking ties by the smallest value.
func mode(counts map[string]int, fallback string) string {
	best, bestN := fallback, 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best
}
