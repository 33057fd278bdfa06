package models

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// GBTRegressor is gradient boosting over CART trees with squared-error loss.
// One engine backs both boosting families: the "light" candidate leaves
// ColSample at 1 and Gamma at 0, the "xtree" candidate tunes them.
type GBTRegressor struct {
	model.BaseEstimator

	Trees       int
	LearnRate   float64
	MaxDepth    int
	MinNodeSize int
	Subsample   float64 // row fraction per iteration, without replacement
	ColSample   float64 // feature fraction per split
	Gamma       float64 // minimum loss reduction to accept a split
	Seed        int64

	initValue float64
	trees     []*regressionTree
	nFeatures int
}

// NewGBTRegressor creates a booster with reference defaults.
func NewGBTRegressor() *GBTRegressor {
	return &GBTRegressor{
		Trees:       300,
		LearnRate:   0.1,
		MaxDepth:    6,
		MinNodeSize: 10,
		Subsample:   1.0,
		ColSample:   1.0,
		Seed:        42,
	}
}

// Fit boosts trees against the running residual.
func (gb *GBTRegressor) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("GBTRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("GBTRegressor.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("GBTRegressor.Fit", "y must be a column vector")
	}
	if gb.Trees < 1 {
		return errors.NewValidationError("trees", "must be at least 1", gb.Trees)
	}
	if gb.Subsample <= 0 || gb.Subsample > 1 {
		return errors.NewValidationError("sample_size", "must be in (0, 1]", gb.Subsample)
	}
	if gb.ColSample <= 0 || gb.ColSample > 1 {
		return errors.NewValidationError("mtry_prop", "must be in (0, 1]", gb.ColSample)
	}

	Xd := mat.DenseCopyOf(X)
	gb.nFeatures = c

	var sum float64
	for i := 0; i < r; i++ {
		sum += y.At(i, 0)
	}
	gb.initValue = sum / float64(r)

	residual := make([]float64, r)
	for i := 0; i < r; i++ {
		residual[i] = y.At(i, 0) - gb.initValue
	}

	mtry := int(math.Round(gb.ColSample * float64(c)))
	if mtry < 1 {
		mtry = 1
	}
	params := treeParams{
		maxDepth:    gb.MaxDepth,
		minNodeSize: gb.MinNodeSize,
		mtry:        mtry,
		minGain:     gb.Gamma,
	}

	rng := rand.New(rand.NewPCG(uint64(gb.Seed), uint64(gb.Seed)+1))
	sampleSize := int(math.Round(gb.Subsample * float64(r)))
	if sampleSize < 1 {
		sampleSize = 1
	}

	gb.trees = make([]*regressionTree, 0, gb.Trees)
	all := make([]int, r)
	for i := range all {
		all[i] = i
	}

	for t := 0; t < gb.Trees; t++ {
		indices := all
		if sampleSize < r {
			perm := rng.Perm(r)
			indices = perm[:sampleSize]
		}

		tree := fitTree(Xd, residual, indices, params, rng)
		gb.trees = append(gb.trees, tree)

		for i := 0; i < r; i++ {
			residual[i] -= gb.LearnRate * tree.predictRow(Xd, i)
		}
	}

	gb.SetFitted()
	return nil
}

// Predict sums the shrunken tree contributions on top of the base value.
func (gb *GBTRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !gb.IsFitted() {
		return nil, errors.NewNotFittedError("GBTRegressor", "Predict")
	}
	r, c := X.Dims()
	if c != gb.nFeatures {
		return nil, errors.NewDimensionError("GBTRegressor.Predict", gb.nFeatures, c, 1)
	}

	Xd := mat.DenseCopyOf(X)
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := gb.initValue
		for _, tree := range gb.trees {
			pred += gb.LearnRate * tree.predictRow(Xd, i)
		}
		out.Set(i, 0, pred)
	}
	return out, nil
}
