package recipe

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// OneHotEncoder turns a categorical column into indicator columns. The level
// set is fixed at fit time; a level never seen during Fit encodes to an
// all-zero row rather than an error.
type OneHotEncoder struct {
	model.BaseEstimator

	// Levels holds the fitted levels in sorted order, one output column each.
	Levels []string

	index map[string]int
}

// NewOneHotEncoder creates an unfitted encoder.
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit records the set of observed levels.
func (e *OneHotEncoder) Fit(labels []string) error {
	if len(labels) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "OneHotEncoder.Fit")
	}

	seen := make(map[string]bool)
	for _, l := range labels {
		seen[l] = true
	}
	e.Levels = make([]string, 0, len(seen))
	for l := range seen {
		e.Levels = append(e.Levels, l)
	}
	sort.Strings(e.Levels)

	e.index = make(map[string]int, len(e.Levels))
	for i, l := range e.Levels {
		e.index[l] = i
	}
	e.SetFitted()
	return nil
}

// Transform encodes labels as an n×len(Levels) indicator matrix.
func (e *OneHotEncoder) Transform(labels []string) (*mat.Dense, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}

	out := mat.NewDense(len(labels), len(e.Levels), nil)
	for i, l := range labels {
		if j, ok := e.index[l]; ok {
			out.Set(i, j, 1)
		}
		// Unseen level: row stays all-zero.
	}
	return out, nil
}

// LabelCode returns the integer code of a label, or -1 for an unseen level.
// Used by the raw recipe variant, which keeps the categorical feature as a
// single label column for tree models.
func (e *OneHotEncoder) LabelCode(label string) int {
	if j, ok := e.index[label]; ok {
		return j
	}
	return -1
}
