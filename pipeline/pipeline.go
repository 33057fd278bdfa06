// Package pipeline composes a preprocessing recipe with a model into one
// fit/predict artifact. Models are fitted on the log1p-transformed target;
// predictions on the original ring scale go through expm1.
package pipeline

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/dataset"
	"github.com/YuminosukeSato/ringtune/metrics"
	"github.com/YuminosukeSato/ringtune/recipe"
)

// Pipeline chains one recipe and one model. Fit requires labeled data;
// prediction works on any dataset with the training schema, target present
// or not.
type Pipeline struct {
	model.BaseEstimator

	Recipe *recipe.Recipe
	Model  model.Regressor
}

// New creates an unfitted pipeline.
func New(rc *recipe.Recipe, m model.Regressor) *Pipeline {
	return &Pipeline{Recipe: rc, Model: m}
}

// Fit fits the recipe once on ds, then fits the model once on the
// transformed design matrix against the log1p target.
func (p *Pipeline) Fit(ds *dataset.Dataset) error {
	X, err := p.Recipe.FitTransform(ds)
	if err != nil {
		return err
	}
	y, err := ds.TargetLog1p()
	if err != nil {
		return err
	}

	n := y.Len()
	yCol := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		yCol.Set(i, 0, y.AtVec(i))
	}
	if err := p.Model.Fit(X, yCol); err != nil {
		return err
	}
	p.SetFitted()
	return nil
}

// PredictLog1p predicts on the log1p target scale.
func (p *Pipeline) PredictLog1p(ds *dataset.Dataset) (*mat.VecDense, error) {
	X, err := p.Recipe.Transform(ds)
	if err != nil {
		return nil, err
	}
	pred, err := p.Model.Predict(X)
	if err != nil {
		return nil, err
	}
	r, _ := pred.Dims()
	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		out.SetVec(i, pred.At(i, 0))
	}
	return out, nil
}

// PredictRings inverse-transforms predictions back to the original target
// scale.
func (p *Pipeline) PredictRings(ds *dataset.Dataset) (*mat.VecDense, error) {
	pred, err := p.PredictLog1p(ds)
	if err != nil {
		return nil, err
	}
	for i := 0; i < pred.Len(); i++ {
		pred.SetVec(i, math.Expm1(pred.AtVec(i)))
	}
	return pred, nil
}

// EvaluateRMSLE scores the pipeline on a labeled dataset, on the original
// target scale.
func (p *Pipeline) EvaluateRMSLE(ds *dataset.Dataset) (float64, error) {
	pred, err := p.PredictRings(ds)
	if err != nil {
		return 0, err
	}
	y, err := ds.Target()
	if err != nil {
		return 0, err
	}
	return metrics.RMSLE(y, pred)
}
