// Package ensemble blends tuned candidates into a weighted combination.
// Blending weights come from a non-negative lasso of the true log1p target
// on the candidates' out-of-fold predictions; the L1 penalty drives most
// weights to zero so the final ensemble stays small.
package ensemble

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/dataset"
	"github.com/YuminosukeSato/ringtune/metrics"
	"github.com/YuminosukeSato/ringtune/models"
	"github.com/YuminosukeSato/ringtune/pipeline"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
	"github.com/YuminosukeSato/ringtune/pkg/log"
)

// Candidate is one blending member: a complete out-of-fold prediction
// column (log1p scale) and a fresh, unfitted pipeline that can be refit on
// the full training data if the candidate earns a nonzero weight. The
// blender holds these read-only; it never mutates the OOF columns.
type Candidate struct {
	Name     string
	OOF      []float64
	Pipeline *pipeline.Pipeline
}

// Blender solves for the blend weights and refits the retained members.
type Blender struct {
	// Penalties is the sweep grid for the lasso penalty; the value with
	// the best held-out OOF error wins.
	Penalties []float64
	Seed      int64

	Logger log.Logger
}

// NewBlender creates a blender with the reference penalty grid.
func NewBlender(seed int64) *Blender {
	penalties := make([]float64, 0, 20)
	for i := 0; i < 20; i++ {
		// Log-spaced from 1e-6 to 1e-1.
		exp := -6 + 5*float64(i)/19
		penalties = append(penalties, math.Pow(10, exp))
	}
	return &Blender{
		Penalties: penalties,
		Seed:      seed,
		Logger:    log.GetLogger("ensemble"),
	}
}

// Ensemble is the fitted weighted combination.
type Ensemble struct {
	Names   []string
	Weights []float64
	Members []*pipeline.Pipeline
	Penalty float64
}

// Blend learns non-negative weights from the OOF matrix, drops zero-weight
// candidates, and refits the survivors on the full training data.
func (b *Blender) Blend(cands []Candidate, train *dataset.Dataset) (*Ensemble, error) {
	if len(cands) == 0 {
		return nil, errors.NewValidationError("candidates", "need at least one blending candidate", 0)
	}

	yLog, err := train.TargetLog1p()
	if err != nil {
		return nil, err
	}
	n := yLog.Len()

	usable := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if len(c.OOF) != n {
			return nil, errors.NewDimensionError("Blender.Blend", n, len(c.OOF), 0)
		}
		complete := true
		for _, v := range c.OOF {
			if math.IsNaN(v) {
				complete = false
				break
			}
		}
		if !complete {
			b.Logger.Warn("candidate skipped: incomplete out-of-fold column", log.ModelNameKey, c.Name)
			continue
		}
		usable = append(usable, c)
	}
	if len(usable) == 0 {
		return nil, errors.NewValidationError("candidates", "no candidate has a complete out-of-fold column", len(cands))
	}

	X := mat.NewDense(n, len(usable), nil)
	for j, c := range usable {
		for i := 0; i < n; i++ {
			X.Set(i, j, c.OOF[i])
		}
	}

	penalty, err := b.sweepPenalty(X, yLog)
	if err != nil {
		return nil, err
	}

	weights, err := fitNonNegLasso(X, yLog, penalty)
	if err != nil {
		return nil, err
	}

	var nonzero int
	for _, w := range weights {
		if w > 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		return nil, errors.NewValidationError("penalty", "blend degenerated: every candidate weight is zero", penalty)
	}

	ens := &Ensemble{Penalty: penalty}
	for j, c := range usable {
		if weights[j] == 0 {
			continue
		}
		b.Logger.Info("member retained",
			log.ModelNameKey, c.Name,
			"weight", weights[j],
		)
		if err := c.Pipeline.Fit(train); err != nil {
			return nil, errors.Wrapf(err, "ensemble: refit %s", c.Name)
		}
		ens.Names = append(ens.Names, c.Name)
		ens.Weights = append(ens.Weights, weights[j])
		ens.Members = append(ens.Members, c.Pipeline)
	}
	return ens, nil
}

// sweepPenalty picks the penalty whose blend best predicts a held-out slice
// of the OOF rows.
func (b *Blender) sweepPenalty(X *mat.Dense, y *mat.VecDense) (float64, error) {
	n, _ := X.Dims()
	trainIdx, testIdx, err := dataset.SplitIndices(n, 0.8, b.Seed)
	if err != nil {
		return 0, err
	}

	sub := func(indices []int) (*mat.Dense, *mat.VecDense) {
		_, c := X.Dims()
		xs := mat.NewDense(len(indices), c, nil)
		ys := mat.NewVecDense(len(indices), nil)
		for i, idx := range indices {
			for j := 0; j < c; j++ {
				xs.Set(i, j, X.At(idx, j))
			}
			ys.SetVec(i, y.AtVec(idx))
		}
		return xs, ys
	}
	xTrain, yTrain := sub(trainIdx)
	xTest, yTest := sub(testIdx)

	best := b.Penalties[0]
	bestScore := math.Inf(1)
	for _, penalty := range b.Penalties {
		weights, err := fitNonNegLasso(xTrain, yTrain, penalty)
		if err != nil {
			continue
		}
		pred := mat.NewVecDense(yTest.Len(), nil)
		for i := 0; i < yTest.Len(); i++ {
			var v float64
			for j, w := range weights {
				v += w * xTest.At(i, j)
			}
			pred.SetVec(i, v)
		}
		score, err := metrics.RMSE(yTest, pred)
		if err != nil || math.IsNaN(score) {
			continue
		}
		if score < bestScore {
			bestScore = score
			best = penalty
		}
	}
	if math.IsInf(bestScore, 1) {
		return 0, errors.NewValidationError("penalties", "no penalty produced a finite blend score", len(b.Penalties))
	}
	return best, nil
}

// fitNonNegLasso solves the non-negative lasso without an intercept: the
// blend is a pure weighted sum of member predictions.
func fitNonNegLasso(X *mat.Dense, y *mat.VecDense, penalty float64) ([]float64, error) {
	en := models.NewElasticNet(penalty, 1)
	en.FitIntercept = false
	en.Positive = true

	n := y.Len()
	yCol := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		yCol.Set(i, 0, y.AtVec(i))
	}
	if err := en.Fit(X, yCol); err != nil {
		return nil, err
	}
	return en.Coef, nil
}

// PredictLog1p is the weighted sum of member predictions on the log1p
// scale.
func (e *Ensemble) PredictLog1p(ds *dataset.Dataset) (*mat.VecDense, error) {
	var out *mat.VecDense
	for i, member := range e.Members {
		pred, err := member.PredictLog1p(ds)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = mat.NewVecDense(pred.Len(), nil)
		}
		out.AddScaledVec(out, e.Weights[i], pred)
	}
	return out, nil
}

// PredictRings inverse-transforms the blend back to the original target
// scale.
func (e *Ensemble) PredictRings(ds *dataset.Dataset) (*mat.VecDense, error) {
	pred, err := e.PredictLog1p(ds)
	if err != nil {
		return nil, err
	}
	for i := 0; i < pred.Len(); i++ {
		pred.SetVec(i, math.Expm1(pred.AtVec(i)))
	}
	return pred, nil
}

// EvaluateRMSLE scores the blend on a labeled dataset, original scale.
func (e *Ensemble) EvaluateRMSLE(ds *dataset.Dataset) (float64, error) {
	pred, err := e.PredictRings(ds)
	if err != nil {
		return 0, err
	}
	y, err := ds.Target()
	if err != nil {
		return 0, err
	}
	return metrics.RMSLE(y, pred)
}
