package derive

import (
	"math"
	"slices"
)

// Quantile returns the q-th quantile (0 <= q <= 1) of values using linear
// interpolation between closest ranks: index q*(n-1). Empty input yields 0.
func Quantile(values []int, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	q = math.Max(0, math.Min(1, q))
	index := q * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return float64(sorted[lower])
	}
	frac := index - float64(lower)
	return float64(sorted[lower]) + frac*float64(sorted[upper]-sorted[lower])
}

// Percentile returns the p-th percentile (0-100) of values.
func Percentile(values []int, p float64) float64 {
	return Quantile(values, p/100)
}
