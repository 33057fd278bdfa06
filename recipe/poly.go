package recipe

import (
	"math"

	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// OrthogonalPoly expands one feature into an orthogonal second-degree
// polynomial basis (two derived columns replacing the raw feature). The
// recurrence coefficients are fixed at fit time, so applying the basis to
// new data uses the training geometry only.
type OrthogonalPoly struct {
	model.BaseEstimator

	// Alpha and Norm2 are the three-term recurrence coefficients,
	// the same parameterization R's poly() stores for predict().
	Alpha [2]float64
	Norm2 [3]float64
}

// NewOrthogonalPoly creates an unfitted basis.
func NewOrthogonalPoly() *OrthogonalPoly {
	return &OrthogonalPoly{}
}

// Fit computes the recurrence coefficients from one column of training
// values.
func (p *OrthogonalPoly) Fit(column []float64) error {
	n := len(column)
	if n < 3 {
		return errors.NewValueError("OrthogonalPoly.Fit", "need at least 3 values for a quadratic basis")
	}

	// p0 = 1, p1 = x - alpha0, p2 = (x - alpha1)*p1 - (norm2_1/norm2_0)*p0.
	nf := float64(n)
	p.Norm2[0] = nf

	var sum float64
	for _, x := range column {
		sum += x
	}
	p.Alpha[0] = sum / nf

	p1 := make([]float64, n)
	var norm1, xp1 float64
	for i, x := range column {
		p1[i] = x - p.Alpha[0]
		norm1 += p1[i] * p1[i]
		xp1 += x * p1[i] * p1[i]
	}
	if norm1 == 0 {
		return errors.NewValueError("OrthogonalPoly.Fit", "column is constant")
	}
	p.Norm2[1] = norm1
	p.Alpha[1] = xp1 / norm1

	var norm2 float64
	for i, x := range column {
		p2 := (x-p.Alpha[1])*p1[i] - (norm1/nf)
		norm2 += p2 * p2
	}
	if norm2 == 0 {
		return errors.NewValueError("OrthogonalPoly.Fit", "column has fewer than 3 distinct values")
	}
	p.Norm2[2] = norm2

	p.SetFitted()
	return nil
}

// Eval returns the two normalized basis values for a single input.
func (p *OrthogonalPoly) Eval(x float64) (b1, b2 float64, err error) {
	if !p.IsFitted() {
		return 0, 0, errors.NewNotFittedError("OrthogonalPoly", "Eval")
	}
	p1 := x - p.Alpha[0]
	p2 := (x-p.Alpha[1])*p1 - p.Norm2[1]/p.Norm2[0]
	return p1 / math.Sqrt(p.Norm2[1]), p2 / math.Sqrt(p.Norm2[2]), nil
}
