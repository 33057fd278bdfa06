package models

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// ElasticNet is a penalized linear regressor solved by coordinate descent.
// The objective is
//
//	(1/2n)·||y − Xw − b||² + λ·(α·||w||₁ + (1−α)/2·||w||²)
//
// where λ is Penalty and α is Mixture (1 = lasso, 0 = ridge). With Positive
// set, coefficients are clamped at zero, which is the non-negative lasso the
// ensemble blender runs on out-of-fold predictions.
type ElasticNet struct {
	model.BaseEstimator

	Penalty      float64
	Mixture      float64
	FitIntercept bool
	Positive     bool
	MaxIter      int
	Tol          float64

	Coef       []float64
	Intercept_ float64
	nFeatures  int
}

// NewElasticNet creates a regressor with reference defaults.
func NewElasticNet(penalty, mixture float64) *ElasticNet {
	return &ElasticNet{
		Penalty:      penalty,
		Mixture:      mixture,
		FitIntercept: true,
		MaxIter:      1000,
		Tol:          1e-6,
	}
}

func softThreshold(x, threshold float64) float64 {
	if x > threshold {
		return x - threshold
	}
	if x < -threshold {
		return x + threshold
	}
	return 0
}

// Fit runs cyclic coordinate descent until the largest coefficient update
// falls below Tol.
func (en *ElasticNet) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("ElasticNet.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("ElasticNet.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("ElasticNet.Fit", "y must be a column vector")
	}
	if en.Penalty < 0 {
		return errors.NewValidationError("penalty", "must be non-negative", en.Penalty)
	}
	if en.Mixture < 0 || en.Mixture > 1 {
		return errors.NewValidationError("mixture", "must be in [0, 1]", en.Mixture)
	}

	maxIter := en.MaxIter
	if maxIter <= 0 {
		maxIter = 1000
	}
	tol := en.Tol
	if tol <= 0 {
		tol = 1e-6
	}

	nf := float64(r)
	en.nFeatures = c
	en.Coef = make([]float64, c)

	residual := make([]float64, r)
	var intercept float64
	if en.FitIntercept {
		var sum float64
		for i := 0; i < r; i++ {
			sum += y.At(i, 0)
		}
		intercept = sum / nf
	}
	for i := 0; i < r; i++ {
		residual[i] = y.At(i, 0) - intercept
	}

	// Per-column mean of squares, the curvature term of each update.
	colNorm := make([]float64, c)
	for j := 0; j < c; j++ {
		var sum float64
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			sum += v * v
		}
		colNorm[j] = sum / nf
	}

	l1 := en.Penalty * en.Mixture
	l2 := en.Penalty * (1 - en.Mixture)

	converged := false
	iterations := 0
	for iter := 0; iter < maxIter; iter++ {
		iterations = iter + 1
		maxChange := 0.0

		for j := 0; j < c; j++ {
			if colNorm[j] == 0 {
				continue
			}
			var rho float64
			for i := 0; i < r; i++ {
				rho += X.At(i, j) * residual[i]
			}
			rho = rho/nf + colNorm[j]*en.Coef[j]

			var updated float64
			if en.Positive {
				updated = math.Max(0, rho-l1) / (colNorm[j] + l2)
			} else {
				updated = softThreshold(rho, l1) / (colNorm[j] + l2)
			}

			if delta := updated - en.Coef[j]; delta != 0 {
				for i := 0; i < r; i++ {
					residual[i] -= X.At(i, j) * delta
				}
				if abs := math.Abs(delta); abs > maxChange {
					maxChange = abs
				}
				en.Coef[j] = updated
			}
		}

		if en.FitIntercept {
			var mean float64
			for i := 0; i < r; i++ {
				mean += residual[i]
			}
			mean /= nf
			if mean != 0 {
				intercept += mean
				for i := 0; i < r; i++ {
					residual[i] -= mean
				}
				if abs := math.Abs(mean); abs > maxChange {
					maxChange = abs
				}
			}
		}

		if maxChange < tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("ElasticNet", iterations, ""))
	}

	en.Intercept_ = intercept
	en.SetFitted()
	return nil
}

// Predict returns Xw + b for every row.
func (en *ElasticNet) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !en.IsFitted() {
		return nil, errors.NewNotFittedError("ElasticNet", "Predict")
	}
	r, c := X.Dims()
	if c != en.nFeatures {
		return nil, errors.NewDimensionError("ElasticNet.Predict", en.nFeatures, c, 1)
	}

	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := en.Intercept_
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * en.Coef[j]
		}
		out.Set(i, 0, pred)
	}
	return out, nil
}
