package models

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// SVR is epsilon-insensitive support-vector regression with a radial basis
// kernel, solved by coordinate descent on the dual coefficients
// beta_i = alpha_i − alpha*_i ∈ [−C, C]. The bias is absorbed by adding a
// constant to the kernel, which keeps every update a closed-form
// soft-threshold step.
type SVR struct {
	model.BaseEstimator

	Cost    float64 // box constraint C
	Sigma   float64 // RBF kernel k(x,z) = exp(−Sigma·||x−z||²)
	Epsilon float64 // insensitivity tube half-width
	MaxIter int
	Tol     float64

	beta   []float64
	trainX *mat.Dense
}

// NewSVR creates an RBF support-vector regressor.
func NewSVR(cost, sigma float64) *SVR {
	return &SVR{
		Cost:    cost,
		Sigma:   sigma,
		Epsilon: 0.1,
		MaxIter: 200,
		Tol:     1e-4,
	}
}

func (s *SVR) kernel(a, b *mat.Dense, i, j, c int) float64 {
	var d2 float64
	for f := 0; f < c; f++ {
		diff := a.At(i, f) - b.At(j, f)
		d2 += diff * diff
	}
	// +1 absorbs the bias term.
	return math.Exp(-s.Sigma*d2) + 1
}

// Fit solves the dual problem on the training data.
func (s *SVR) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SVR.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("SVR.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("SVR.Fit", "y must be a column vector")
	}
	if s.Cost <= 0 {
		return errors.NewValidationError("cost", "must be positive", s.Cost)
	}
	if s.Sigma <= 0 {
		return errors.NewValidationError("rbf_sigma", "must be positive", s.Sigma)
	}

	s.trainX = mat.DenseCopyOf(X)

	// Dense kernel matrix; training partitions stay small enough for this.
	K := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			K.SetSym(i, j, s.kernel(s.trainX, s.trainX, i, j, c))
		}
	}

	beta := make([]float64, r)
	// f_i = sum_j K_ij beta_j, maintained incrementally.
	f := make([]float64, r)

	converged := false
	iterations := 0
	for iter := 0; iter < s.MaxIter; iter++ {
		iterations = iter + 1
		maxChange := 0.0

		for i := 0; i < r; i++ {
			kii := K.At(i, i)
			if kii == 0 {
				continue
			}
			// Residual excluding i's own contribution.
			residual := y.At(i, 0) - (f[i] - kii*beta[i])
			updated := softThreshold(residual, s.Epsilon) / kii
			if updated > s.Cost {
				updated = s.Cost
			} else if updated < -s.Cost {
				updated = -s.Cost
			}

			if delta := updated - beta[i]; delta != 0 {
				for j := 0; j < r; j++ {
					f[j] += K.At(i, j) * delta
				}
				if abs := math.Abs(delta); abs > maxChange {
					maxChange = abs
				}
				beta[i] = updated
			}
		}

		if maxChange < s.Tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("SVR", iterations, ""))
	}

	s.beta = beta
	s.SetFitted()
	return nil
}

// Predict evaluates the kernel expansion at every query row.
func (s *SVR) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("SVR", "Predict")
	}
	r, c := X.Dims()
	nTrain, cTrain := s.trainX.Dims()
	if c != cTrain {
		return nil, errors.NewDimensionError("SVR.Predict", cTrain, c, 1)
	}

	Xd := mat.DenseCopyOf(X)
	out := mat.NewDense(r, 1, nil)
	for q := 0; q < r; q++ {
		var pred float64
		for i := 0; i < nTrain; i++ {
			if s.beta[i] == 0 {
				continue
			}
			pred += s.beta[i] * s.kernel(Xd, s.trainX, q, i, c)
		}
		out.Set(q, 0, pred)
	}
	return out, nil
}
