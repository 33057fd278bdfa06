// Package recipe implements the fit-once, apply-many preprocessing recipes
// used in front of each model family. A recipe learns every statistic it
// needs from the training partition during Fit; Transform never reads
// statistics from the data being transformed, which keeps evaluation data
// out of the preprocessing fit.
package recipe

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/dataset"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// Variant selects which preprocessing steps a recipe applies.
type Variant int

const (
	// Normalized is the full pipeline for distance- and gradient-based
	// models: Yeo-Johnson, standardization, one-hot sex, orthogonal
	// quadratic bases for the weight features.
	Normalized Variant = iota

	// Raw keeps features untouched and the categorical column as a single
	// integer label, for tree ensembles that need neither scaling nor
	// encoding.
	Raw

	// Encoded one-hot-encodes sex and expands the weight bases but skips
	// the power transform and standardization, for boosting models that
	// need purely numeric input.
	Encoded
)

func (v Variant) String() string {
	switch v {
	case Normalized:
		return "normalized"
	case Raw:
		return "raw"
	case Encoded:
		return "encoded"
	default:
		return "unknown"
	}
}

// Recipe is a deterministic preprocessing pipeline over the abalone schema.
// The identifier column is dropped implicitly: it never enters the design
// matrix.
type Recipe struct {
	model.BaseEstimator

	Variant Variant

	power   *YeoJohnson
	scaler  *StandardScaler
	encoder *OneHotEncoder
	polys   []*OrthogonalPoly // one per weight feature, in WeightFeatureIndices order
}

// New creates an unfitted recipe of the given variant.
func New(v Variant) *Recipe {
	return &Recipe{Variant: v}
}

// NumOutputFeatures returns the width of the transformed design matrix.
// Valid only after Fit.
func (rc *Recipe) NumOutputFeatures() int {
	switch rc.Variant {
	case Raw:
		return 1 + dataset.NumNumericFeatures
	default:
		nonWeight := dataset.NumNumericFeatures - len(dataset.WeightFeatureIndices)
		return nonWeight + 2*len(dataset.WeightFeatureIndices) + len(rc.encoder.Levels)
	}
}

// Fit learns the recipe state from the training partition.
func (rc *Recipe) Fit(ds *dataset.Dataset) error {
	if ds.Len() == 0 {
		return errors.Wrap(errors.ErrEmptyData, "Recipe.Fit")
	}

	X := ds.NumericMatrix()

	switch rc.Variant {
	case Normalized:
		rc.power = NewYeoJohnson()
		transformed, err := rc.power.FitTransform(X)
		if err != nil {
			return err
		}
		rc.scaler = NewStandardScaler()
		scaled, err := rc.scaler.FitTransform(transformed)
		if err != nil {
			return err
		}
		if err := rc.fitPolys(scaled.(*mat.Dense)); err != nil {
			return err
		}
		rc.encoder = NewOneHotEncoder()
		if err := rc.encoder.Fit(ds.SexLabels()); err != nil {
			return err
		}

	case Raw:
		rc.encoder = NewOneHotEncoder()
		if err := rc.encoder.Fit(ds.SexLabels()); err != nil {
			return err
		}

	case Encoded:
		if err := rc.fitPolys(X); err != nil {
			return err
		}
		rc.encoder = NewOneHotEncoder()
		if err := rc.encoder.Fit(ds.SexLabels()); err != nil {
			return err
		}

	default:
		return errors.NewValueError("Recipe.Fit", "unknown recipe variant")
	}

	rc.SetFitted()
	return nil
}

func (rc *Recipe) fitPolys(X *mat.Dense) error {
	r, _ := X.Dims()
	rc.polys = make([]*OrthogonalPoly, len(dataset.WeightFeatureIndices))
	column := make([]float64, r)
	for k, j := range dataset.WeightFeatureIndices {
		for i := 0; i < r; i++ {
			column[i] = X.At(i, j)
		}
		rc.polys[k] = NewOrthogonalPoly()
		if err := rc.polys[k].Fit(column); err != nil {
			return err
		}
	}
	return nil
}

// Transform applies the fitted recipe to any dataset with the training
// schema. The target column, when present, is ignored.
func (rc *Recipe) Transform(ds *dataset.Dataset) (*mat.Dense, error) {
	if !rc.IsFitted() {
		return nil, errors.NewNotFittedError("Recipe", "Transform")
	}

	X := ds.NumericMatrix()

	switch rc.Variant {
	case Normalized:
		transformed, err := rc.power.Transform(X)
		if err != nil {
			return nil, err
		}
		scaled, err := rc.scaler.Transform(transformed)
		if err != nil {
			return nil, err
		}
		return rc.assembleEncoded(scaled.(*mat.Dense), ds.SexLabels())

	case Raw:
		n := ds.Len()
		out := mat.NewDense(n, 1+dataset.NumNumericFeatures, nil)
		labels := ds.SexLabels()
		for i := 0; i < n; i++ {
			out.Set(i, 0, float64(rc.encoder.LabelCode(labels[i])))
			for j := 0; j < dataset.NumNumericFeatures; j++ {
				out.Set(i, j+1, X.At(i, j))
			}
		}
		return out, nil

	case Encoded:
		return rc.assembleEncoded(X, ds.SexLabels())

	default:
		return nil, errors.NewValueError("Recipe.Transform", "unknown recipe variant")
	}
}

// assembleEncoded lays out [non-weight numerics | weight poly pairs | sex
// indicators] from an already numeric-transformed matrix.
func (rc *Recipe) assembleEncoded(X *mat.Dense, labels []string) (*mat.Dense, error) {
	n, _ := X.Dims()

	hot, err := rc.encoder.Transform(labels)
	if err != nil {
		return nil, err
	}
	_, hotCols := hot.Dims()

	isWeight := make(map[int]bool, len(dataset.WeightFeatureIndices))
	for _, j := range dataset.WeightFeatureIndices {
		isWeight[j] = true
	}

	nonWeight := dataset.NumNumericFeatures - len(dataset.WeightFeatureIndices)
	width := nonWeight + 2*len(dataset.WeightFeatureIndices) + hotCols
	out := mat.NewDense(n, width, nil)

	for i := 0; i < n; i++ {
		col := 0
		for j := 0; j < dataset.NumNumericFeatures; j++ {
			if isWeight[j] {
				continue
			}
			out.Set(i, col, X.At(i, j))
			col++
		}
		for k, j := range dataset.WeightFeatureIndices {
			b1, b2, err := rc.polys[k].Eval(X.At(i, j))
			if err != nil {
				return nil, err
			}
			out.Set(i, col, b1)
			out.Set(i, col+1, b2)
			col += 2
		}
		for j := 0; j < hotCols; j++ {
			out.Set(i, col, hot.At(i, j))
			col++
		}
	}
	return out, nil
}

// FitTransform fits the recipe on ds and transforms it.
func (rc *Recipe) FitTransform(ds *dataset.Dataset) (*mat.Dense, error) {
	if err := rc.Fit(ds); err != nil {
		return nil, err
	}
	return rc.Transform(ds)
}
