package derive

import (
	"math"
	"math/rand/v2"
)

// Split holds row indices for the training and test partitions.
type Split struct {
	Train []int
	Test  []int
}

// TrainTestSplit shuffles n row indices with a seeded PCG source and holds out
// ceil(testRatio*n) of them for testing. The same seed always yields the same split.
func TrainTestSplit(n int, testRatio float64, seed uint64) Split {
	if n == 0 {
		return Split{}
	}
	testRatio = math.Max(0, math.Min(1, testRatio))
	nTest := int(math.Ceil(testRatio * float64(n)))
	if nTest >= n && n > 1 {
		nTest = n - 1
	}

	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	return Split{
		Test:  perm[:nTest],
		Train: perm[nTest:],
	}
}
