package recipe

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// YeoJohnson applies a monotonic power transform to every column. Unlike
// Box-Cox it is defined for zero and negative inputs. The shape parameter of
// each column is estimated by maximum likelihood during Fit and reused
// verbatim at Transform time.
type YeoJohnson struct {
	model.BaseEstimator

	// Lambdas holds the fitted shape parameter per column.
	Lambdas   []float64
	NFeatures int
}

// NewYeoJohnson creates an unfitted Yeo-Johnson transformer.
func NewYeoJohnson() *YeoJohnson {
	return &YeoJohnson{}
}

// yeoJohnsonValue transforms a single value with the given lambda.
func yeoJohnsonValue(x, lambda float64) float64 {
	if x >= 0 {
		if math.Abs(lambda) < 1e-10 {
			return math.Log1p(x)
		}
		return (math.Pow(x+1, lambda) - 1) / lambda
	}
	if math.Abs(lambda-2) < 1e-10 {
		return -math.Log1p(-x)
	}
	return -(math.Pow(1-x, 2-lambda) - 1) / (2 - lambda)
}

// logLikelihood evaluates the Yeo-Johnson profile log-likelihood of lambda
// for one column.
func yeoJohnsonLogLikelihood(column []float64, lambda float64) float64 {
	n := float64(len(column))

	transformed := make([]float64, len(column))
	var mean float64
	for i, x := range column {
		transformed[i] = yeoJohnsonValue(x, lambda)
		mean += transformed[i]
	}
	mean /= n

	var variance float64
	for _, t := range transformed {
		dev := t - mean
		variance += dev * dev
	}
	variance /= n
	if variance <= 0 {
		variance = 1e-300
	}

	// Jacobian term: (lambda-1) * sum sign(x) * log(|x|+1).
	var jacobian float64
	for _, x := range column {
		if x >= 0 {
			jacobian += math.Log1p(x)
		} else {
			jacobian -= math.Log1p(-x)
		}
	}

	return -n/2*math.Log(variance) + (lambda-1)*jacobian
}

// fitLambda finds the MLE of lambda for one column with Nelder-Mead.
func fitLambda(column []float64) float64 {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			lambda := x[0]
			// Keep the search inside the range recipes use in practice.
			if lambda < -5 || lambda > 5 {
				return math.Inf(1)
			}
			return -yeoJohnsonLogLikelihood(column, lambda)
		},
	}

	best := 1.0
	bestVal := problem.Func([]float64{best})
	// Nelder-Mead in one dimension is sensitive to the start; try a few.
	for _, start := range []float64{-1, 0, 1, 2} {
		result, err := optimize.Minimize(problem, []float64{start}, nil, &optimize.NelderMead{})
		if err != nil || result == nil {
			continue
		}
		if result.F < bestVal {
			bestVal = result.F
			best = result.X[0]
		}
	}
	return best
}

// Fit estimates one lambda per column by maximum likelihood.
func (yj *YeoJohnson) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "YeoJohnson.Fit")
	}

	yj.Lambdas = make([]float64, c)
	yj.NFeatures = c
	column := make([]float64, r)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			column[i] = X.At(i, j)
		}
		yj.Lambdas[j] = fitLambda(column)
	}
	yj.SetFitted()
	return nil
}

// Transform applies the fitted per-column transforms.
func (yj *YeoJohnson) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !yj.IsFitted() {
		return nil, errors.NewNotFittedError("YeoJohnson", "Transform")
	}
	r, c := X.Dims()
	if c != yj.NFeatures {
		return nil, errors.NewDimensionError("YeoJohnson.Transform", yj.NFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		lambda := yj.Lambdas[j]
		for i := 0; i < r; i++ {
			out.Set(i, j, yeoJohnsonValue(X.At(i, j), lambda))
		}
	}
	return out, nil
}

// FitTransform fits on X and transforms it.
func (yj *YeoJohnson) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := yj.Fit(X); err != nil {
		return nil, err
	}
	return yj.Transform(X)
}
