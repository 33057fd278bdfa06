package models

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/core/parallel"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// KNNRegressor predicts the Gaussian-kernel weighted mean of the k nearest
// training rows. Neighbor distances are scaled by the distance of the
// farthest selected neighbor, so the kernel bandwidth adapts to local
// density. The weighting scheme is fixed; only the neighbor count is tuned.
type KNNRegressor struct {
	model.BaseEstimator

	Neighbors int

	trainX *mat.Dense
	trainY []float64
}

// NewKNNRegressor creates a k-nearest-neighbors regressor.
func NewKNNRegressor(neighbors int) *KNNRegressor {
	return &KNNRegressor{Neighbors: neighbors}
}

// Fit memorizes the training data.
func (kn *KNNRegressor) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("KNNRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("KNNRegressor.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("KNNRegressor.Fit", "y must be a column vector")
	}
	if kn.Neighbors < 1 {
		return errors.NewValidationError("neighbors", "must be at least 1", kn.Neighbors)
	}

	kn.trainX = mat.DenseCopyOf(X)
	kn.trainY = make([]float64, r)
	for i := 0; i < r; i++ {
		kn.trainY[i] = y.At(i, 0)
	}
	kn.SetFitted()
	return nil
}

// Predict computes weighted neighbor means for every query row.
func (kn *KNNRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !kn.IsFitted() {
		return nil, errors.NewNotFittedError("KNNRegressor", "Predict")
	}
	r, c := X.Dims()
	nTrain, cTrain := kn.trainX.Dims()
	if c != cTrain {
		return nil, errors.NewDimensionError("KNNRegressor.Predict", cTrain, c, 1)
	}

	k := kn.Neighbors
	if k > nTrain {
		k = nTrain
	}

	Xd := mat.DenseCopyOf(X)
	out := mat.NewDense(r, 1, nil)

	parallel.ParallelizeWithThreshold(r, 64, func(start, end int) {
		dists := make([]float64, nTrain)
		order := make([]int, nTrain)
		for q := start; q < end; q++ {
			for i := 0; i < nTrain; i++ {
				var d2 float64
				for j := 0; j < c; j++ {
					diff := Xd.At(q, j) - kn.trainX.At(i, j)
					d2 += diff * diff
				}
				dists[i] = math.Sqrt(d2)
				order[i] = i
			}
			sort.Slice(order, func(a, b int) bool { return dists[order[a]] < dists[order[b]] })

			bandwidth := dists[order[k-1]] + 1e-12
			var num, den float64
			for _, i := range order[:k] {
				w := math.Exp(-(dists[i] * dists[i]) / (bandwidth * bandwidth))
				num += w * kn.trainY[i]
				den += w
			}
			out.Set(q, 0, num/den)
		}
	})
	return out, nil
}
