package derive

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/accident-risk/internal/model"
)

func repeat(n int, inc model.Incident) []model.Incident {
	out := make([]model.Incident, n)
	for i := range out {
		out[i] = inc
	}
	return out
}

// sevenLocations yields per-location counts 1,1,2,3,5,8,13.
func sevenLocations() []model.Incident {
	var incs []model.Incident
	incs = append(incs, repeat(1, model.Incident{Place: "Alpha", Station: "Dagupan City", Offense: "Reckless", Severity: "Injured"})...)
	incs = append(incs, repeat(1, model.Incident{Place: "Bravo", Station: "Dagupan City", Offense: "Reckless", Severity: "Injured"})...)
	incs = append(incs, repeat(2, model.Incident{Place: "Charlie", Station: "Dagupan City", Offense: "Reckless", Severity: "Injured"})...)
	incs = append(incs, repeat(3, model.Incident{Place: "Delta", Station: "Mangaldan", Offense: "Reckless", Severity: "Injured"})...)
	incs = append(incs, repeat(5, model.Incident{Place: "Echo", Station: "Mangaldan", Offense: "Reckless", Severity: "Injured"})...)
	incs = append(incs, repeat(8, model.Incident{Place: "Foxtrot", Station: "Mangaldan", Offense: "Speeding", Severity: "Fatal"})...)
	incs = append(incs, repeat(13, model.Incident{Place: "Golf", Station: "Villasis", Offense: "Drunk Driving", Severity: "Non Fatal"})...)
	return incs
}

func TestBuildTable_Threshold(t *testing.T) {
	res := BuildTable(sevenLocations(), 75)

	assert.InDelta(t, 6.5, res.Percentile, 1e-9)
	assert.Equal(t, 6, res.Table.Threshold)
	assert.Equal(t, 7, res.Table.TotalPlaces)
	assert.Equal(t, []string{"Golf, Villasis", "Foxtrot, Mangaldan"}, res.Table.Places)
	assert.Equal(t, map[string]bool{"golf, villasis": true, "foxtrot, mangaldan": true}, res.Prone)

	assert.Equal(t, []string{
		"alpha, dagupan city", "bravo, dagupan city", "charlie, dagupan city",
		"delta, mangaldan", "echo, mangaldan", "foxtrot, mangaldan", "golf, villasis",
	}, res.Table.Statistics.Keys())

	golf, ok := res.Table.Statistics.Get("golf, villasis")
	require.True(t, ok)
	assert.Equal(t, model.LocationStats{
		Barangay:          "Golf",
		Station:           "Villasis",
		TotalAccidents:    13,
		FatalAccidents:    13, // "Non Fatal" contains "fatal"
		IsAccidentProne:   true,
		MostCommonOffense: "Drunk Driving",
	}, golf)

	echo, ok := res.Table.Statistics.Get("echo, mangaldan")
	require.True(t, ok)
	assert.False(t, echo.IsAccidentProne)
	assert.Zero(t, echo.FatalAccidents)
}

func TestBuildTable_CaseInsensitiveGrouping(t *testing.T) {
	incs := []model.Incident{
		{Place: "Poblacion", Station: "Dagupan City", Offense: "B"},
		{Place: "POBLACION", Station: "dagupan city", Offense: "A"},
		{Place: "Poblacion", Station: "Mangaldan", Offense: ""},
	}

	res := BuildTable(incs, 75)
	require.Equal(t, 2, res.Table.Statistics.Len())

	st, ok := res.Table.Statistics.Get("poblacion, dagupan city")
	require.True(t, ok)
	assert.Equal(t, "Poblacion", st.Barangay)
	assert.Equal(t, 2, st.TotalAccidents)
	assert.Equal(t, "A", st.MostCommonOffense, "ties go to the smallest offense")

	other, ok := res.Table.Statistics.Get("poblacion, mangaldan")
	require.True(t, ok)
	assert.Equal(t, UnknownOffense, other.MostCommonOffense)

	assert.Equal(t, 2, res.Table.TotalPlaces, "raw place spellings are counted separately")
}

func TestBuildTable_BlankStationNotALocation(t *testing.T) {
	incs := []model.Incident{
		{Place: "Bonuan", Station: ""},
		{Place: "Bonuan", Station: "Dagupan City"},
	}

	res := BuildTable(incs, 75)
	assert.Equal(t, 1, res.Table.Statistics.Len())
	assert.Equal(t, 1, res.Table.TotalPlaces)
}

func TestBuildTable_MarshalsInInsertionOrder(t *testing.T) {
	incs := []model.Incident{
		{Place: "Zeta", Station: "Villasis", Offense: "X"},
		{Place: "Alpha", Station: "Villasis", Offense: "X"},
	}

	data, err := json.Marshal(BuildTable(incs, 75).Table)
	require.NoError(t, err)
	assert.Regexp(t, `"statistics":\{"zeta, villasis":.*"alpha, villasis":`, string(data))
}

func TestClean(t *testing.T) {
	stations, err := DefaultStations()
	require.NoError(t, err)

	kept, dropped := Clean([]model.Incident{
		{Place: " Bonuan ", Station: "dagupan c"},
		{Place: "", Station: "Dagupan City"},
		{Place: "   ", Station: "Dagupan City"},
		{Place: "Bari", Station: "mangaldan m"},
	}, stations)

	assert.Equal(t, 2, dropped)
	require.Len(t, kept, 2)
	assert.Equal(t, "Bonuan", kept[0].Place)
	assert.Equal(t, "Dagupan City", kept[0].Station)
	assert.Equal(t, "Mangaldan", kept[1].Station)
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal("Fatal"))
	assert.True(t, IsFatal("FATAL INJURY"))
	assert.True(t, IsFatal("Non Fatal"))
	assert.False(t, IsFatal("Injured"))
	assert.False(t, IsFatal(""))
}
