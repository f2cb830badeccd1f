package lookup

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/accident-risk/internal/artifact"
	"github.com/sells-group/accident-risk/internal/classifier"
	"github.com/sells-group/accident-risk/internal/model"
)

var fixedNow = time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, table model.LocationTable) *Service {
	t.Helper()
	b := &artifact.Bundle{
		Table:    table,
		Features: []string{"month", "day_of_week", "hour"},
		Metadata: model.ModelMetadata{
			ModelType: classifier.ModelType, Accuracy: 0.87, TrainingSamples: 800, TestSamples: 200,
			FeatureCount: 3, AccidentProneThreshold: table.Threshold,
		},
		Model: &classifier.Model{Features: []string{"month", "day_of_week", "hour"}, Weights: make([]float64, 3)},
	}
	s, err := New(b, WithClock(clockwork.NewFakeClockAt(fixedNow)))
	require.NoError(t, err)
	return s
}

func sampleTable() model.LocationTable {
	var tbl model.LocationTable
	tbl.Places = []string{"Bonuan Gueset, Dagupan City", "Poblacion, Dagupan"}
	tbl.Threshold = 6
	tbl.TotalPlaces = 5
	set := func(key string, st model.LocationStats) { tbl.Statistics.Set(key, st) }
	set("bari, mangaldan", model.LocationStats{Barangay: "Bari", Station: "Mangaldan", TotalAccidents: 3, MostCommonOffense: "Speeding"})
	set("bonuan gueset, dagupan city", model.LocationStats{Barangay: "Bonuan Gueset", Station: "Dagupan City", TotalAccidents: 9, FatalAccidents: 2, IsAccidentProne: true, MostCommonOffense: "Reckless"})
	set("poblacion, dagupan", model.LocationStats{Barangay: "Poblacion", Station: "Dagupan", TotalAccidents: 12, FatalAccidents: 7, IsAccidentProne: true, MostCommonOffense: "Drunk Driving"})
	set("poblacion, mangaldan", model.LocationStats{Barangay: "Poblacion", Station: "mangaldan", TotalAccidents: 3, MostCommonOffense: "Speeding"})
	set("lucao, dagupan city", model.LocationStats{Barangay: "Lucao", Station: "Dagupan City", TotalAccidents: 5, FatalAccidents: 6, MostCommonOffense: "Hit and Run"})
	return tbl
}

func TestCheckLocation_CriticalEndToEnd(t *testing.T) {
	var tbl model.LocationTable
	tbl.Statistics.Set("poblacion, dagupan", model.LocationStats{
		Barangay: "Poblacion", Station: "Dagupan", TotalAccidents: 12, FatalAccidents: 7, IsAccidentProne: true,
	})
	s := newTestService(t, tbl)

	got, err := s.CheckLocation("Poblacion", "Dagupan")
	require.NoError(t, err)
	assert.Equal(t, model.RiskCritical, got.RiskLevel)
	assert.InDelta(t, 0.92, got.Confidence, 1e-9)
	assert.Equal(t, 12, got.AccidentCount)
	assert.True(t, got.IsAccidentProne)
}

func TestCheckLocation_EmptyTableEndToEnd(t *testing.T) {
	s := newTestService(t, model.LocationTable{})

	got, err := s.CheckLocation("unknown", "nowhere")
	require.NoError(t, err)
	assert.Equal(t, model.Assessment{
		Barangay:        "Unknown",
		Station:         "Nowhere",
		IsAccidentProne: false,
		AccidentCount:   0,
		FatalAccidents:  0,
		RiskLevel:       model.RiskLow,
		Confidence:      0.75,
		CommonOffense:   "Unknown",
		Message:         "✓ UNKNOWN has low accident risk with 0 incidents recorded.",
		Timestamp:       fixedNow,
	}, got)
}

func TestCheckLocation_NormalizesInput(t *testing.T) {
	s := newTestService(t, sampleTable())

	a, err := s.CheckLocation("Poblacion", "Dagupan")
	require.NoError(t, err)
	b, err := s.CheckLocation(" poblacion ", " DAGUPAN ")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCheckLocation_SameBarangayDifferentStations(t *testing.T) {
	s := newTestService(t, sampleTable())

	dagupan, err := s.CheckLocation("Poblacion", "Dagupan")
	require.NoError(t, err)
	mangaldan, err := s.CheckLocation("Poblacion", "Mangaldan")
	require.NoError(t, err)

	assert.Equal(t, 12, dagupan.AccidentCount)
	assert.Equal(t, 3, mangaldan.AccidentCount)
	assert.Equal(t, model.RiskLow, mangaldan.RiskLevel)
}

func TestCheckLocation_Messages(t *testing.T) {
	s := newTestService(t, sampleTable())

	got, err := s.CheckLocation("bonuan gueset", "dagupan city")
	require.NoError(t, err)
	assert.Equal(t, model.RiskHigh, got.RiskLevel)
	assert.Equal(t, "Bonuan Gueset", got.Barangay)
	assert.Equal(t, "Dagupan City", got.Station)
	assert.Equal(t, "Reckless", got.CommonOffense)
	assert.Equal(t, "⚠️ WARNING: BONUAN GUESET is an accident-prone area with 9 recorded incidents! 2 fatal accidents recorded.", got.Message)

	got, err = s.CheckLocation("bari", "mangaldan")
	require.NoError(t, err)
	assert.Equal(t, "✓ BARI has low accident risk with 3 incidents recorded.", got.Message)
}

func TestCheckLocation_ManyFatalitiesIsCriticalEvenIfNotProne(t *testing.T) {
	s := newTestService(t, sampleTable())

	got, err := s.CheckLocation("Lucao", "Dagupan City")
	require.NoError(t, err)
	assert.False(t, got.IsAccidentProne)
	assert.Equal(t, model.RiskCritical, got.RiskLevel)
	assert.NotContains(t, got.Message, "low accident risk")
	assert.Equal(t,
		fmt.Sprintf("⚠️ WARNING: LUCAO is below the accident-prone threshold with %d recorded incidents but is rated CRITICAL! %d fatal accidents recorded.",
			got.AccidentCount, got.FatalAccidents),
		got.Message)
}

func TestCheckLocation_DefaultStation(t *testing.T) {
	var tbl model.LocationTable
	tbl.Places = []string{"Centro, unknown"}
	tbl.Statistics.Set("centro, unknown", model.LocationStats{Barangay: "Centro", Station: "unknown", TotalAccidents: 8})
	s := newTestService(t, tbl)

	got, err := s.CheckLocation("centro", "  ")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", got.Station)
	assert.True(t, got.IsAccidentProne)
	assert.Equal(t, 8, got.AccidentCount)
}

func TestCheckLocation_EmptyBarangay(t *testing.T) {
	s := newTestService(t, sampleTable())

	for _, in := range []string{"", "   ", "\t"} {
		_, err := s.CheckLocation(in, "Dagupan")
		require.Error(t, err)
		ve, ok := AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "barangay", ve.Field)
		assert.Equal(t, "barangay is required", err.Error())
	}
}

func TestSafetyTips(t *testing.T) {
	s := newTestService(t, sampleTable())
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	high := s.SafetyTips("")
	assert.Equal(t, "HIGH", high.RiskLevel)
	assert.Equal(t, catalog.GeneralTips, high.Tips)
	assert.Len(t, high.Tips, 8)

	critical := s.SafetyTips("CRITICAL")
	assert.Equal(t, "CRITICAL", critical.RiskLevel)
	require.Len(t, critical.Tips, 13)
	assert.Equal(t, catalog.CriticalTips, critical.Tips[:5])
	assert.Equal(t, catalog.GeneralTips, critical.Tips[5:])

	lower := s.SafetyTips("critical")
	assert.Equal(t, "critical", lower.RiskLevel)
	assert.Equal(t, catalog.GeneralTips, lower.Tips)

	odd := s.SafetyTips("EXTREME")
	assert.Equal(t, "EXTREME", odd.RiskLevel)
	assert.Equal(t, catalog.GeneralTips, odd.Tips)
}

func TestAlternativeRoutes(t *testing.T) {
	s := newTestService(t, sampleTable())

	got := s.AlternativeRoutes("Bonuan Gueset")
	assert.Equal(t, "Bonuan Gueset", got.CurrentBarangay)
	require.Len(t, got.Routes, 3)
	assert.Equal(t, "Direct Route", got.Routes[2].Name)
	assert.Equal(t, model.RiskHigh, got.Routes[2].RiskLevel)
	assert.False(t, got.Routes[2].Recommended)
	assert.Equal(t, "Please drive carefully regardless of route chosen", got.Note)

	// Input does not change the routes.
	other := s.AlternativeRoutes("")
	assert.Equal(t, UnknownBarangay, other.CurrentBarangay)
	assert.Equal(t, got.Routes, other.Routes)
}

func TestStatistics(t *testing.T) {
	s := newTestService(t, sampleTable())

	assert.Equal(t, model.Overview{
		TotalPlaces:        5,
		AccidentProneCount: 2,
		Threshold:          6,
		ModelAccuracy:      0.87,
		TrainingSamples:    800,
		TestSamples:        200,
	}, s.Statistics())
}

func TestBarangays(t *testing.T) {
	s := newTestService(t, sampleTable())

	all := s.Barangays(false)
	require.Equal(t, 5, all.TotalCount)
	var totals []int
	for _, b := range all.Barangays {
		totals = append(totals, b.TotalAccidents)
	}
	assert.Equal(t, []int{12, 9, 5, 3, 3}, totals)
	// Equal totals keep table order.
	assert.Equal(t, "Mangaldan", all.Barangays[3].Station)
	assert.Equal(t, "Bari", all.Barangays[3].Name)
	assert.Equal(t, "Poblacion", all.Barangays[4].Name)
	assert.Equal(t, "Mangaldan", all.Barangays[4].Station)

	prone := s.Barangays(true)
	require.Equal(t, 2, prone.TotalCount)
	for _, b := range prone.Barangays {
		assert.True(t, b.IsAccidentProne)
	}
	assert.Equal(t, "Poblacion", prone.Barangays[0].Name)
	assert.Equal(t, "Bonuan Gueset", prone.Barangays[1].Name)
}

func TestMunicipalities(t *testing.T) {
	s := newTestService(t, sampleTable())

	got := s.Municipalities()
	assert.Equal(t, []string{"Dagupan", "Dagupan City", "Mangaldan"}, got.Municipalities)
	assert.Equal(t, 3, got.TotalCount)

	empty := newTestService(t, model.LocationTable{}).Municipalities()
	assert.Equal(t, []string{}, empty.Municipalities)
}

func TestBarangaysForMunicipality(t *testing.T) {
	s := newTestService(t, sampleTable())

	got, err := s.BarangaysForMunicipality("  MANGALDAN ")
	require.NoError(t, err)
	assert.Equal(t, model.MunicipalityBarangays{
		Municipality: "Mangaldan",
		Barangays:    []string{"Bari", "Poblacion"},
		TotalCount:   2,
	}, got)

	none, err := s.BarangaysForMunicipality("Lingayen")
	require.NoError(t, err)
	assert.Empty(t, none.Barangays)
	assert.Zero(t, none.TotalCount)

	_, err = s.BarangaysForMunicipality(" ")
	require.Error(t, err)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "municipality", ve.Field)
}

func TestHealth(t *testing.T) {
	s := newTestService(t, sampleTable())

	assert.Equal(t, model.Health{
		Status:                   "healthy",
		ModelLoaded:              true,
		ModelType:                classifier.ModelType,
		ModelAccuracy:            0.87,
		FeatureCount:             3,
		LocationsLoaded:          5,
		AccidentProneAreasLoaded: 2,
		Timestamp:                fixedNow,
	}, s.Health())
}

func TestNew_NilBundle(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestParseCatalog_UnknownRouteRisk(t *testing.T) {
	_, err := ParseCatalog([]byte("general_tips: [a]\nroutes:\n  - route_name: x\n    risk_level: MEDIUM\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown risk level")
}
