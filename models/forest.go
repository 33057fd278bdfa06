package models

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/core/parallel"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// RandomForestRegressor averages bootstrap-sampled CART trees with feature
// subsampling at every split.
type RandomForestRegressor struct {
	model.BaseEstimator

	Trees       int
	MTry        int // features sampled per split
	MinNodeSize int
	MaxDepth    int // <= 0 means unlimited
	Seed        int64

	trees     []*regressionTree
	nFeatures int
}

// NewRandomForestRegressor creates a forest with reference defaults.
func NewRandomForestRegressor() *RandomForestRegressor {
	return &RandomForestRegressor{
		Trees:       500,
		MTry:        3,
		MinNodeSize: 5,
		Seed:        42,
	}
}

// Fit grows the forest. Trees are independent, so they are fitted across
// the available cores.
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("RandomForestRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("RandomForestRegressor.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("RandomForestRegressor.Fit", "y must be a column vector")
	}
	if rf.Trees < 1 {
		return errors.NewValidationError("trees", "must be at least 1", rf.Trees)
	}

	Xd := mat.DenseCopyOf(X)
	yv := make([]float64, r)
	for i := 0; i < r; i++ {
		yv[i] = y.At(i, 0)
	}

	rf.nFeatures = c
	rf.trees = make([]*regressionTree, rf.Trees)

	params := treeParams{
		maxDepth:    rf.MaxDepth,
		minNodeSize: rf.MinNodeSize,
		mtry:        rf.MTry,
	}

	parallel.Parallelize(rf.Trees, func(start, end int) {
		for t := start; t < end; t++ {
			// Per-tree generator keeps the forest deterministic regardless
			// of how trees are scheduled across workers.
			rng := rand.New(rand.NewPCG(uint64(rf.Seed), uint64(t)))
			indices := make([]int, r)
			for i := range indices {
				indices[i] = rng.IntN(r)
			}
			rf.trees[t] = fitTree(Xd, yv, indices, params, rng)
		}
	})

	rf.SetFitted()
	return nil
}

// Predict returns the forest average for every row.
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestRegressor", "Predict")
	}
	r, c := X.Dims()
	if c != rf.nFeatures {
		return nil, errors.NewDimensionError("RandomForestRegressor.Predict", rf.nFeatures, c, 1)
	}

	Xd := mat.DenseCopyOf(X)
	out := mat.NewDense(r, 1, nil)
	parallel.ParallelizeWithThreshold(r, 512, func(start, end int) {
		for i := start; i < end; i++ {
			var sum float64
			for _, tree := range rf.trees {
				sum += tree.predictRow(Xd, i)
			}
			out.Set(i, 0, sum/float64(len(rf.trees)))
		}
	})
	return out, nil
}
