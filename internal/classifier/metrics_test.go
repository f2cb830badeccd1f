package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	actual := []int{1, 1, 1, 0, 0, 0, 0, 1}
	predicted := []int{1, 1, 0, 0, 0, 1, 0, 1}

	e := Evaluate(actual, predicted)
	assert.Equal(t, 8, e.Total())
	assert.Equal(t, [2][2]int{{3, 1}, {1, 3}}, e.ConfusionMatrix())
	assert.InDelta(t, 0.75, e.Accuracy(), 1e-9)
	assert.InDelta(t, 0.75, e.Precision(), 1e-9)
	assert.InDelta(t, 0.75, e.Recall(), 1e-9)
	assert.InDelta(t, 0.75, e.F1(), 1e-9)
}

func TestEvaluate_Empty(t *testing.T) {
	e := Evaluate(nil, nil)
	assert.Equal(t, 0, e.Total())
	assert.Zero(t, e.Accuracy())
	assert.Zero(t, e.Precision())
	assert.Zero(t, e.Recall())
	assert.Zero(t, e.F1())
}
