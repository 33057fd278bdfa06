// Package dataset models the abalone table: one 3-level categorical feature
// (sex), seven continuous measurements, and an integer ring count as the
// regression target. Training files carry the target column; scoring files
// do not.
package dataset

import (
	"math"
	"os"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// Record is one row of the abalone table. Rings is zero for scoring data.
type Record struct {
	ID            int     `csv:"id"`
	Sex           string  `csv:"Sex"`
	Length        float64 `csv:"Length"`
	Diameter      float64 `csv:"Diameter"`
	Height        float64 `csv:"Height"`
	WholeWeight   float64 `csv:"Whole weight"`
	ShuckedWeight float64 `csv:"Shucked weight"`
	VisceraWeight float64 `csv:"Viscera weight"`
	ShellWeight   float64 `csv:"Shell weight"`
	Rings         int     `csv:"Rings"`
}

// NumericFeatureNames lists the continuous feature columns in matrix order.
var NumericFeatureNames = []string{
	"Length", "Diameter", "Height",
	"Whole weight", "Shucked weight", "Viscera weight", "Shell weight",
}

// WeightFeatureIndices are the positions of the weight columns within
// NumericFeatureNames. These are the features expanded into an orthogonal
// quadratic basis by the preprocessing recipe.
var WeightFeatureIndices = []int{3, 4, 5, 6}

// NumNumericFeatures is the width of the numeric design matrix.
const NumNumericFeatures = 7

// Dataset is an ordered collection of records. HasTarget distinguishes
// labeled training data from unlabeled scoring data.
type Dataset struct {
	Records   []Record
	HasTarget bool
}

// Load reads a delimited file into a Dataset. hasTarget states whether the
// file carries the Rings column.
func Load(path string, hasTarget bool) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: open %s", path)
	}
	defer func() { _ = f.Close() }()

	var records []Record
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, errors.Wrapf(err, "dataset: parse %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset: "+path)
	}
	return &Dataset{Records: records, HasTarget: hasTarget}, nil
}

// Len returns the number of records.
func (ds *Dataset) Len() int {
	return len(ds.Records)
}

// Subset returns a new Dataset holding copies of the records at the given
// indices, in the given order.
func (ds *Dataset) Subset(indices []int) *Dataset {
	records := make([]Record, len(indices))
	for i, idx := range indices {
		records[i] = ds.Records[idx]
	}
	return &Dataset{Records: records, HasTarget: ds.HasTarget}
}

// NumericMatrix materializes the seven continuous features as an n×7 dense
// matrix in NumericFeatureNames order.
func (ds *Dataset) NumericMatrix() *mat.Dense {
	n := ds.Len()
	X := mat.NewDense(n, NumNumericFeatures, nil)
	for i, r := range ds.Records {
		X.Set(i, 0, r.Length)
		X.Set(i, 1, r.Diameter)
		X.Set(i, 2, r.Height)
		X.Set(i, 3, r.WholeWeight)
		X.Set(i, 4, r.ShuckedWeight)
		X.Set(i, 5, r.VisceraWeight)
		X.Set(i, 6, r.ShellWeight)
	}
	return X
}

// SexLabels returns the categorical column as raw labels.
func (ds *Dataset) SexLabels() []string {
	labels := make([]string, ds.Len())
	for i, r := range ds.Records {
		labels[i] = r.Sex
	}
	return labels
}

// IDs returns the identifier column.
func (ds *Dataset) IDs() []int {
	ids := make([]int, ds.Len())
	for i, r := range ds.Records {
		ids[i] = r.ID
	}
	return ids
}

// Target returns the ring counts on the original scale.
func (ds *Dataset) Target() (*mat.VecDense, error) {
	if !ds.HasTarget {
		return nil, errors.NewValueError("Dataset.Target", "dataset has no target column")
	}
	y := mat.NewVecDense(ds.Len(), nil)
	for i, r := range ds.Records {
		y.SetVec(i, float64(r.Rings))
	}
	return y, nil
}

// TargetLog1p returns log1p-transformed ring counts, the scale every model
// is fitted and tuned on.
func (ds *Dataset) TargetLog1p() (*mat.VecDense, error) {
	y, err := ds.Target()
	if err != nil {
		return nil, err
	}
	for i := 0; i < y.Len(); i++ {
		y.SetVec(i, math.Log1p(y.AtVec(i)))
	}
	return y, nil
}
