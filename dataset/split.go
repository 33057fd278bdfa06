package dataset

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// SplitIndices draws a uniform random partition of n indices into a train
// set of size round(p·n) and a test set of the remainder. The draw is
// deterministic for a given seed.
func SplitIndices(n int, p float64, seed int64) (trainIdx, testIdx []int, err error) {
	if n == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "SplitIndices")
	}
	if p <= 0 || p >= 1 {
		return nil, nil, errors.NewValidationError("prop", "must be in the open interval (0, 1)", p)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	nTrain := int(math.Round(p * float64(n)))
	trainIdx = indices[:nTrain]
	testIdx = indices[nTrain:]
	return trainIdx, testIdx, nil
}

// InitialSplit partitions a dataset into disjoint training and held-out
// evaluation subsets. Re-invoking with the same seed and input yields an
// identical split.
func InitialSplit(ds *Dataset, p float64, seed int64) (train, test *Dataset, err error) {
	trainIdx, testIdx, err := SplitIndices(ds.Len(), p, seed)
	if err != nil {
		return nil, nil, err
	}
	return ds.Subset(trainIdx), ds.Subset(testIdx), nil
}
