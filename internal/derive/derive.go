// Package derive builds the location table and reporting classifier from
// historical incident records.
package derive

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/accident-risk/internal/classifier"
	"github.com/sells-group/accident-risk/internal/model"
)

// Options tunes a derivation.
type Options struct {
	Percentile float64 // prone cutoff percentile, default 75
	TestRatio  float64 // held-out share, default 0.2
	Seed       uint64
	MaxIter    int
	C          float64 // inverse L2 strength
}

func (o Options) withDefaults() Options {
	if o.Percentile <= 0 || o.Percentile > 100 {
		o.Percentile = 75
	}
	if o.TestRatio <= 0 || o.TestRatio >= 1 {
		o.TestRatio = 0.2
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 1000
	}
	if o.C <= 0 {
		o.C = 1
	}
	return o
}

// Result is everything a derivation produces.
type Result struct {
	Table      model.LocationTable
	Features   []string
	Model      *classifier.Model
	Metadata   model.ModelMetadata
	Evaluation classifier.Evaluation

	RecordsRead int
	RecordsUsed int // incidents with both a place and a station
	Undated     int // incidents whose date or time could not be parsed
}

// Run cleans incidents, builds the location table and fits the classifier.
func Run(ctx context.Context, incidents []model.Incident, stations *StationNormalizer, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	log := zap.L().With(zap.String("component", "derive"))

	cleaned, dropped := Clean(incidents, stations)
	log.Info("cleaned incidents",
		zap.Int("read", len(incidents)),
		zap.Int("dropped_missing_place", dropped),
		zap.Int("remaining", len(cleaned)),
	)
	if len(cleaned) == 0 {
		return nil, eris.New("derive: no incidents with a place of accident")
	}

	tr := BuildTable(cleaned, opts.Percentile)
	log.Info("built location table",
		zap.Int("locations", tr.Table.Statistics.Len()),
		zap.Int("total_places", tr.Table.TotalPlaces),
		zap.Float64("percentile_value", tr.Percentile),
		zap.Int("threshold", tr.Table.Threshold),
		zap.Int("accident_prone", len(tr.Table.Places)),
	)

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "derive: cancelled after table")
	}

	keyed := make([]model.Incident, 0, len(cleaned))
	undated := 0
	for _, inc := range cleaned {
		if inc.Station == "" {
			continue
		}
		if !inc.HasDate || !inc.HasTime {
			undated++
		}
		keyed = append(keyed, inc)
	}
	if undated > 0 {
		log.Warn("incidents without a parseable date or time use zero calendar features",
			zap.Int("count", undated),
		)
	}
	if len(keyed) < 2 {
		return nil, eris.Errorf("derive: need at least 2 located incidents to fit a classifier, have %d", len(keyed))
	}

	features := EncodeFeatures(keyed)
	labels := Labels(keyed, tr.Prone)
	split := TrainTestSplit(len(keyed), opts.TestRatio, opts.Seed)

	xTrain, yTrain := gather(features.Rows, labels, split.Train)
	xTest, yTest := gather(features.Rows, labels, split.Test)

	log.Info("fitting classifier",
		zap.Int("features", len(features.Names)),
		zap.Int("train", len(xTrain)),
		zap.Int("test", len(xTest)),
	)
	m, err := classifier.Fit(xTrain, yTrain, features.Names, classifier.Options{C: opts.C, MaxIter: opts.MaxIter})
	if err != nil {
		return nil, eris.Wrap(err, "derive: fit classifier")
	}

	eval := classifier.Evaluate(yTest, m.PredictAll(xTest))
	cm := eval.ConfusionMatrix()
	log.Info("classifier evaluation",
		zap.Float64("accuracy", eval.Accuracy()),
		zap.Float64("precision", eval.Precision()),
		zap.Float64("recall", eval.Recall()),
		zap.Float64("f1", eval.F1()),
		zap.Ints("confusion_actual_0", cm[0][:]),
		zap.Ints("confusion_actual_1", cm[1][:]),
	)

	return &Result{
		Table:      tr.Table,
		Features:   features.Names,
		Model:      m,
		Evaluation: eval,
		Metadata: model.ModelMetadata{
			ModelType:               classifier.ModelType,
			Accuracy:                eval.Accuracy(),
			TrainingSamples:         len(xTrain),
			TestSamples:             len(xTest),
			FeatureCount:            len(features.Names),
			AccidentProneThreshold:  tr.Table.Threshold,
			TotalAccidentProneAreas: len(tr.Table.Places),
		},
		RecordsRead: len(incidents),
		RecordsUsed: len(keyed),
		Undated:     undated,
	}, nil
}

func gather(rows [][]float64, labels []int, idx []int) ([][]float64, []int) {
	x := make([][]float64, len(idx))
	y := make([]int, len(idx))
	for i, j := range idx {
		x[i] = rows[j]
		y[i] = labels[j]
	}
	return x, y
}
