package derive

import (
	"regexp"
	"slices"
	"strings"

	"github.com/sells-group/accident-risk/internal/model"
)

// FeatureSet is a dense design matrix with ordered column names.
type FeatureSet struct {
	Names []string
	Rows  [][]float64
}

type categoricalColumn struct {
	name  string
	value func(model.Incident) string
}

var categoricalColumns = []categoricalColumn{
	{"Station", func(i model.Incident) string { return i.Station }},
	{"Place of Accident", func(i model.Incident) string { return i.Place }},
	{"Offense", func(i model.Incident) string { return i.Offense }},
	{"Vehicles involved", func(i model.Incident) string { return i.Vehicles }},
	{"Driver's Behavior", func(i model.Incident) string { return i.DriverBehavior }},
	{"Severity of Accident", func(i model.Incident) string { return i.Severity }},
	{"Weather Condition", func(i model.Incident) string { return i.Weather }},
	{"Frequent Location of Accident", func(i model.Incident) string { return i.FrequentLocation }},
}

var unsafeFeatureChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// SanitizeFeatureName replaces every run of characters outside [A-Za-z0-9_] with "_".
func SanitizeFeatureName(name string) string {
	return unsafeFeatureChars.ReplaceAllString(name, "_")
}

// EncodeFeatures builds the classifier inputs: month, day_of_week and hour,
// followed by one-hot columns for each categorical field. Blank categorical
// values take the column mode, and the smallest category of each column is
// dropped as the reference level.
func EncodeFeatures(incidents []model.Incident) FeatureSet {
	fs := FeatureSet{
		Names: []string{"month", "day_of_week", "hour"},
		Rows:  make([][]float64, len(incidents)),
	}
	for i, inc := range incidents {
		fs.Rows[i] = []float64{float64(inc.Month()), float64(inc.DayOfWeek()), float64(inc.Hour())}
	}

	for _, col := range categoricalColumns {
		values := make([]string, len(incidents))
		counts := make(map[string]int)
		for i, inc := range incidents {
			v := strings.TrimSpace(col.value(inc))
			values[i] = v
			if v != "" {
				counts[v]++
			}
		}
		fill := mode(counts, "")

		categories := make([]string, 0, len(counts))
		for v := range counts {
			categories = append(categories, v)
		}
		slices.Sort(categories)
		// A single category is all reference level and yields no columns.
		if len(categories) <= 1 {
			continue
		}

		index := make(map[string]int, len(categories)-1)
		for j, c := range categories[1:] {
			index[c] = j
			fs.Names = append(fs.Names, SanitizeFeatureName(col.name+"_"+c))
		}
		for i, v := range values {
			if v == "" {
				v = fill
			}
			onehot := make([]float64, len(categories)-1)
			if j, ok := index[v]; ok {
				onehot[j] = 1
			}
			fs.Rows[i] = append(fs.Rows[i], onehot...)
		}
	}

	return fs
}

// Labels returns 1 for incidents at an accident-prone location and 0 otherwise.
func Labels(incidents []model.Incident, prone map[string]bool) []int {
	labels := make([]int, len(incidents))
	for i, inc := range incidents {
		if prone[model.LocationKey(inc.Place, inc.Station)] {
			labels[i] = 1
		}
	}
	return labels
}
