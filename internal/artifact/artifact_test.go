package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/accident-risk/internal/classifier"
	"github.com/sells-group/accident-risk/internal/model"
)

func testBundle() *Bundle {
	var table model.LocationTable
	table.Places = []string{"Bonuan Gueset, Dagupan City"}
	table.Threshold = 6
	table.TotalPlaces = 2
	table.Statistics.Set("bonuan gueset, dagupan city", model.LocationStats{
		Barangay: "Bonuan Gueset", Station: "Dagupan City",
		TotalAccidents: 12, FatalAccidents: 2, IsAccidentProne: true, MostCommonOffense: "Reckless",
	})
	table.Statistics.Set("bari, mangaldan", model.LocationStats{
		Barangay: "Bari", Station: "Mangaldan",
		TotalAccidents: 1, MostCommonOffense: "Unknown",
	})

	features := []string{"month", "day_of_week", "hour"}
	return &Bundle{
		Table:    table,
		Features: features,
		Metadata: model.ModelMetadata{
			ModelType: classifier.ModelType, Accuracy: 0.9, TrainingSamples: 8, TestSamples: 2,
			FeatureCount: 3, AccidentProneThreshold: 6, TotalAccidentProneAreas: 1,
		},
		Model: &classifier.Model{Features: features, Weights: []float64{0.1, -0.2, 0.3}, Intercept: -1},
	}
}

func TestWriteLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	want := testBundle()

	require.NoError(t, Write(context.Background(), dir, want))

	for _, name := range []string{TableFile, FeaturesFile, MetadataFile, ModelFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4, "no temp files left behind")

	got, err := Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, want.Table.Places, got.Table.Places)
	assert.Equal(t, want.Table.Threshold, got.Table.Threshold)
	assert.Equal(t, want.Table.TotalPlaces, got.Table.TotalPlaces)
	assert.Equal(t, want.Table.Statistics.Keys(), got.Table.Statistics.Keys())
	assert.Equal(t, want.Features, got.Features)
	assert.Equal(t, want.Metadata, got.Metadata)
	assert.Equal(t, want.Model.Weights, got.Model.Weights)
}

func TestWrite_TableIsIndentedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(context.Background(), dir, testBundle()))

	data, err := os.ReadFile(filepath.Join(dir, TableFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"threshold\": 6,")
}

func TestWrite_NoModel(t *testing.T) {
	err := Write(context.Background(), t.TempDir(), &Bundle{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model")
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(context.Background(), dir, testBundle()))
	require.NoError(t, os.Remove(filepath.Join(dir, MetadataFile)))

	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), MetadataFile)
}

func TestLoad_CorruptTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(context.Background(), dir, testBundle()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TableFile), []byte(`{"statistics": [1]}`), 0o600))

	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode "+TableFile)
}

func TestLoad_Cancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(context.Background(), dir, testBundle()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
