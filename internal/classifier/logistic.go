// Package classifier fits and evaluates a binary L2-regularized logistic regression.
package classifier

import (
	"encoding/gob"
	"io"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// ModelType is the name recorded in model metadata.
const ModelType = "LogisticRegression"

// Options configures Fit.
type Options struct {
	// C is the inverse regularization strength; smaller values regularize more.
	C       float64
	MaxIter int
}

// Model is a fitted logistic regression. A model trained on a single class
// predicts that class for every input.
type Model struct {
	Features  []string
	Weights   []float64
	Intercept float64

	Constant      bool
	ConstantClass int
	Iterations    int
}

// Fit trains a model on rows x with 0/1 labels y.
func Fit(x [][]float64, y []int, features []string, opts Options) (*Model, error) {
	if len(x) == 0 {
		return nil, eris.New("classifier: no training rows")
	}
	if len(x) != len(y) {
		return nil, eris.Errorf("classifier: %d rows but %d labels", len(x), len(y))
	}
	dim := len(features)
	for i, row := range x {
		if len(row) != dim {
			return nil, eris.Errorf("classifier: row %d has %d features, want %d", i, len(row), dim)
		}
	}
	if opts.C <= 0 {
		opts.C = 1
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 1000
	}

	positives := 0
	for _, label := range y {
		if label != 0 && label != 1 {
			return nil, eris.Errorf("classifier: label %d is not binary", label)
		}
		positives += label
	}
	if positives == 0 || positives == len(y) {
		class := 0
		if positives > 0 {
			class = 1
		}
		zap.L().Warn("classifier: training labels contain a single class, using constant model",
			zap.Int("class", class),
			zap.Int("rows", len(y)),
		)
		return &Model{
			Features:      features,
			Weights:       make([]float64, dim),
			Constant:      true,
			ConstantClass: class,
		}, nil
	}

	// Parameters are [w_0 .. w_dim-1, b]; the intercept is not regularized.
	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			w, b := params[:dim], params[dim]
			loss := 0.5 * floats.Dot(w, w)
			for i, row := range x {
				z := floats.Dot(w, row) + b
				loss += opts.C * logLoss(z, y[i])
			}
			return loss
		},
		Grad: func(grad, params []float64) {
			w, b := params[:dim], params[dim]
			copy(grad[:dim], w)
			grad[dim] = 0
			for i, row := range x {
				z := floats.Dot(w, row) + b
				r := opts.C * (sigmoid(z) - float64(y[i]))
				floats.AddScaled(grad[:dim], r, row)
				grad[dim] += r
			}
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   opts.MaxIter,
		GradientThreshold: 1e-6,
	}
	result, err := optimize.Minimize(problem, make([]float64, dim+1), settings, &optimize.LBFGS{})
	if result == nil {
		return nil, eris.Wrap(err, "classifier: minimize")
	}
	if err != nil {
		// The last iterate is still a usable model; report and keep it.
		zap.L().Warn("classifier: optimizer stopped early",
			zap.String("status", result.Status.String()),
			zap.Error(err),
		)
	}

	return &Model{
		Features:   features,
		Weights:    append([]float64(nil), result.X[:dim]...),
		Intercept:  result.X[dim],
		Iterations: result.Stats.MajorIterations,
	}, nil
}

// PredictProba returns P(y=1 | row).
func (m *Model) PredictProba(row []float64) float64 {
	if m.Constant {
		return float64(m.ConstantClass)
	}
	return sigmoid(floats.Dot(m.Weights, row) + m.Intercept)
}

// Predict returns the 0/1 class for row.
func (m *Model) Predict(row []float64) int {
	if m.PredictProba(row) >= 0.5 {
		return 1
	}
	return 0
}

// PredictAll classifies every row.
func (m *Model) PredictAll(rows [][]float64) []int {
	out := make([]int, len(rows))
	for i, row := range rows {
		out[i] = m.Predict(row)
	}
	return out
}

// Save writes the model with encoding/gob.
func (m *Model) Save(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return eris.Wrap(err, "classifier: encode model")
	}
	return nil
}

// Load reads a model written by Save.
func Load(r io.Reader) (*Model, error) {
	var m Model
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, eris.Wrap(err, "classifier: decode model")
	}
	if !m.Constant && len(m.Weights) != len(m.Features) {
		return nil, eris.Errorf("classifier: model has %d weights for %d features", len(m.Weights), len(m.Features))
	}
	return &m, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// logLoss is the negative log-likelihood of label y under logit z, computed
// without overflow for large |z|.
func logLoss(z float64, y int) float64 {
	if y == 0 {
		z = -z
	}
	// -log(sigmoid(z)) = log(1 + exp(-z))
	if z > 0 {
		return math.Log1p(math.Exp(-z))
	}
	return -z + math.Log1p(math.Exp(z))
}
