package classifier

// Evaluation summarizes predictions against true labels.
type Evaluation struct {
	TruePositives  int
	TrueNegatives  int
	FalsePositives int
	FalseNegatives int
}

// Evaluate compares predicted and actual 0/1 labels. Extra entries in the
// longer slice are ignored.
func Evaluate(actual, predicted []int) Evaluation {
	var e Evaluation
	for i := 0; i < len(actual) && i < len(predicted); i++ {
		switch {
		case actual[i] == 1 && predicted[i] == 1:
			e.TruePositives++
		case actual[i] == 0 && predicted[i] == 0:
			e.TrueNegatives++
		case actual[i] == 0 && predicted[i] == 1:
			e.FalsePositives++
		default:
			e.FalseNegatives++
		}
	}
	return e
}

// Total returns the number of evaluated samples.
func (e Evaluation) Total() int {
	return e.TruePositives + e.TrueNegatives + e.FalsePositives + e.FalseNegatives
}

// Accuracy is the share of correct predictions, 0 for no samples.
func (e Evaluation) Accuracy() float64 {
	return ratio(e.TruePositives+e.TrueNegatives, e.Total())
}

// Precision is TP / (TP + FP), 0 when nothing was predicted positive.
func (e Evaluation) Precision() float64 {
	return ratio(e.TruePositives, e.TruePositives+e.FalsePositives)
}

// Recall is TP / (TP + FN), 0 when there are no positives.
func (e Evaluation) Recall() float64 {
	return ratio(e.TruePositives, e.TruePositives+e.FalseNegatives)
}

// F1 is the harmonic mean of precision and recall.
func (e Evaluation) F1() float64 {
	p, r := e.Precision(), e.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// ConfusionMatrix returns [[TN, FP], [FN, TP]], rows being the actual class.
func (e Evaluation) ConfusionMatrix() [2][2]int {
	return [2][2]int{
		{e.TrueNegatives, e.FalsePositives},
		{e.FalseNegatives, e.TruePositives},
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
