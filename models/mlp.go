package models

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// MLPRegressor is a single-hidden-layer feed-forward network with sigmoid
// hidden units, a linear output, and L2 weight decay, trained by full-batch
// gradient descent for a fixed number of epochs.
type MLPRegressor struct {
	model.BaseEstimator

	Hidden      int
	WeightDecay float64
	Epochs      int
	LearnRate   float64
	Seed        int64

	w1 *mat.Dense    // input → hidden
	b1 *mat.VecDense // hidden bias
	w2 *mat.VecDense // hidden → output
	b2 float64

	nFeatures int
}

// NewMLPRegressor creates a network with reference defaults.
func NewMLPRegressor(hidden int) *MLPRegressor {
	return &MLPRegressor{
		Hidden:      hidden,
		WeightDecay: 1e-4,
		Epochs:      200,
		LearnRate:   0.01,
		Seed:        42,
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Fit trains the network weights.
func (nn *MLPRegressor) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MLPRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("MLPRegressor.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("MLPRegressor.Fit", "y must be a column vector")
	}
	if nn.Hidden < 1 {
		return errors.NewValidationError("hidden_units", "must be at least 1", nn.Hidden)
	}
	if nn.Epochs < 1 {
		return errors.NewValidationError("epochs", "must be at least 1", nn.Epochs)
	}

	nn.nFeatures = c
	h := nn.Hidden
	nf := float64(r)

	rng := rand.New(rand.NewPCG(uint64(nn.Seed), uint64(nn.Seed)+7))
	initRange := 0.7
	nn.w1 = mat.NewDense(c, h, nil)
	for i := 0; i < c; i++ {
		for j := 0; j < h; j++ {
			nn.w1.Set(i, j, (rng.Float64()*2-1)*initRange)
		}
	}
	nn.b1 = mat.NewVecDense(h, nil)
	nn.w2 = mat.NewVecDense(h, nil)
	for j := 0; j < h; j++ {
		nn.b1.SetVec(j, (rng.Float64()*2-1)*initRange)
		nn.w2.SetVec(j, (rng.Float64()*2-1)*initRange)
	}
	nn.b2 = 0

	Xd := mat.DenseCopyOf(X)
	hidden := mat.NewDense(r, h, nil)
	dOut := make([]float64, r)

	for epoch := 0; epoch < nn.Epochs; epoch++ {
		// Forward pass.
		hidden.Mul(Xd, nn.w1)
		for i := 0; i < r; i++ {
			for j := 0; j < h; j++ {
				hidden.Set(i, j, sigmoid(hidden.At(i, j)+nn.b1.AtVec(j)))
			}
		}

		var gradB2 float64
		for i := 0; i < r; i++ {
			pred := nn.b2
			for j := 0; j < h; j++ {
				pred += hidden.At(i, j) * nn.w2.AtVec(j)
			}
			dOut[i] = (pred - y.At(i, 0)) / nf
			gradB2 += dOut[i]
		}
		if math.IsNaN(gradB2) || math.IsInf(gradB2, 0) {
			return errors.NewNumericalInstabilityError("MLPRegressor.Fit", []float64{gradB2}, epoch)
		}

		// Backward pass: output layer, then hidden layer.
		gradW2 := make([]float64, h)
		for j := 0; j < h; j++ {
			var g float64
			for i := 0; i < r; i++ {
				g += hidden.At(i, j) * dOut[i]
			}
			gradW2[j] = g + nn.WeightDecay*nn.w2.AtVec(j)
		}

		gradW1 := mat.NewDense(c, h, nil)
		gradB1 := make([]float64, h)
		for i := 0; i < r; i++ {
			for j := 0; j < h; j++ {
				hij := hidden.At(i, j)
				dh := dOut[i] * nn.w2.AtVec(j) * hij * (1 - hij)
				gradB1[j] += dh
				for f := 0; f < c; f++ {
					gradW1.Set(f, j, gradW1.At(f, j)+Xd.At(i, f)*dh)
				}
			}
		}

		lr := nn.LearnRate
		for f := 0; f < c; f++ {
			for j := 0; j < h; j++ {
				w := nn.w1.At(f, j)
				nn.w1.Set(f, j, w-lr*(gradW1.At(f, j)+nn.WeightDecay*w))
			}
		}
		for j := 0; j < h; j++ {
			nn.b1.SetVec(j, nn.b1.AtVec(j)-lr*gradB1[j])
			nn.w2.SetVec(j, nn.w2.AtVec(j)-lr*gradW2[j])
		}
		nn.b2 -= lr * gradB2
	}

	nn.SetFitted()
	return nil
}

// Predict runs the forward pass.
func (nn *MLPRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !nn.IsFitted() {
		return nil, errors.NewNotFittedError("MLPRegressor", "Predict")
	}
	r, c := X.Dims()
	if c != nn.nFeatures {
		return nil, errors.NewDimensionError("MLPRegressor.Predict", nn.nFeatures, c, 1)
	}

	h := nn.Hidden
	hidden := mat.NewDense(r, h, nil)
	hidden.Mul(mat.DenseCopyOf(X), nn.w1)

	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := nn.b2
		for j := 0; j < h; j++ {
			pred += sigmoid(hidden.At(i, j)+nn.b1.AtVec(j)) * nn.w2.AtVec(j)
		}
		out.Set(i, 0, pred)
	}
	return out, nil
}
