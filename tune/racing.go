package tune

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/ringtune/core/parallel"
	"github.com/YuminosukeSato/ringtune/dataset"
	"github.com/YuminosukeSato/ringtune/metrics"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
	"github.com/YuminosukeSato/ringtune/pkg/log"
	"github.com/YuminosukeSato/ringtune/recipe"
)

// RacingTuner runs cross-validated random search over one candidate's
// space. After every fold it eliminates configurations whose running mean
// metric is statistically significantly worse than the current best, so
// dominated configurations stop consuming fits.
type RacingTuner struct {
	Folds      []dataset.Fold
	GridSize   int
	Metric     metrics.Metric
	Confidence float64 // elimination confidence, e.g. 0.95
	Seed       int64
	Workers    int
	KeepOOF    bool

	Logger log.Logger
}

// NewRacingTuner creates a tuner with the reference settings: RMSE on the
// log1p target, 0.95 elimination confidence, 3 workers.
func NewRacingTuner(folds []dataset.Fold, gridSize int, seed int64) *RacingTuner {
	return &RacingTuner{
		Folds:      folds,
		GridSize:   gridSize,
		Metric:     metrics.RMSELog1p,
		Confidence: 0.95,
		Seed:       seed,
		Workers:    3,
		Logger:     log.GetLogger("tune"),
	}
}

// foldData is the per-fold transformed view shared read-only by every
// configuration's fit.
type foldData struct {
	xTrain, xTest *mat.Dense
	yTrain, yTest *mat.VecDense
	testIndices   []int
}

// Run tunes one candidate and returns every configuration's results,
// eliminated ones included. The worker pool is scoped to this call: it is
// acquired on entry and released before returning so no workers leak into
// the next phase.
func (rt *RacingTuner) Run(train *dataset.Dataset, cand Candidate) (*RaceResult, error) {
	if len(rt.Folds) < 2 {
		return nil, errors.NewValidationError("folds", "need at least 2 folds", len(rt.Folds))
	}
	if rt.Confidence <= 0 || rt.Confidence >= 1 {
		return nil, errors.NewValidationError("confidence", "must be in the open interval (0, 1)", rt.Confidence)
	}

	configs, err := cand.Space.Sample(rt.GridSize, rt.Seed)
	if err != nil {
		return nil, err
	}

	base := rt.Logger
	if base == nil {
		base = log.GetLogger("tune")
	}
	logger := base.With(
		log.ModelNameKey, cand.Family,
		log.OperationKey, "tune",
		log.MetricNameKey, rt.Metric.Name,
	)
	logger.Info("racing started",
		log.ConfigKey, len(configs),
		log.SamplesKey, train.Len(),
	)

	results := make([]*TuningResult, len(configs))
	for i, cfg := range configs {
		results[i] = &TuningResult{
			Family:      cand.Family,
			ConfigIndex: i,
			Config:      cfg,
			FoldMetrics: nan(len(rt.Folds)),
		}
		if rt.KeepOOF {
			results[i].OOF = nan(train.Len())
		}
	}

	survivors := make([]int, len(configs))
	for i := range survivors {
		survivors[i] = i
	}

	pool := parallel.NewPool(rt.Workers)
	defer pool.Release()

	history := make([][]int, 0, len(rt.Folds))
	for f, fold := range rt.Folds {
		fd, err := rt.prepareFold(train, cand.Variant, fold)
		if err != nil {
			return nil, errors.Wrapf(err, "tune: %s fold %d preprocessing", cand.Family, f)
		}

		// Independent (fold, configuration) fits; the only shared state is
		// the read-only fold view.
		fitErrs := make([]error, len(configs))
		for _, idx := range survivors {
			idx := idx
			result := results[idx]
			pool.Submit(func() {
				fitErrs[idx] = rt.fitOne(cand, result, f, fd)
			})
		}
		// Barrier: every surviving configuration's fold-f result must land
		// before elimination decides anything.
		pool.Wait()

		for _, idx := range survivors {
			if fitErrs[idx] != nil {
				logger.Warn("fit failed, recording missing metric",
					log.ConfigKey, idx,
					log.FoldKey, f,
					"error", fitErrs[idx],
				)
			}
		}

		if f < len(rt.Folds)-1 && len(survivors) > 1 {
			survivors = rt.eliminate(results, survivors, f+1)
		}
		history = append(history, append([]int(nil), survivors...))
		logger.Info("fold complete",
			log.FoldKey, f,
			log.SurvivorsKey, len(survivors),
		)
	}

	for i, r := range results {
		if r.FoldsEvaluated() < len(rt.Folds) {
			results[i].Eliminated = true
		}
	}

	logger.Info("racing finished", log.SurvivorsKey, len(survivors))
	return &RaceResult{Family: cand.Family, Results: results, SurvivorHistory: history}, nil
}

// prepareFold fits the recipe on the fold's training rows only and
// transforms both sides.
func (rt *RacingTuner) prepareFold(train *dataset.Dataset, variant recipe.Variant, fold dataset.Fold) (*foldData, error) {
	foldTrain := train.Subset(fold.TrainIndices)
	foldTest := train.Subset(fold.TestIndices)

	rec := recipe.New(variant)
	xTrain, err := rec.FitTransform(foldTrain)
	if err != nil {
		return nil, err
	}
	xTest, err := rec.Transform(foldTest)
	if err != nil {
		return nil, err
	}
	yTrain, err := foldTrain.TargetLog1p()
	if err != nil {
		return nil, err
	}
	yTest, err := foldTest.TargetLog1p()
	if err != nil {
		return nil, err
	}
	return &foldData{
		xTrain:      xTrain,
		xTest:       xTest,
		yTrain:      yTrain,
		yTest:       yTest,
		testIndices: fold.TestIndices,
	}, nil
}

// fitOne fits a single configuration on one fold and records the held-out
// metric. A failure is recorded as a missing cell, never propagated as
// fatal.
func (rt *RacingTuner) fitOne(cand Candidate, result *TuningResult, foldIdx int, fd *foldData) error {
	m := cand.Build(result.Config)
	if err := m.Fit(fd.xTrain, asColumn(fd.yTrain)); err != nil {
		return err
	}
	predMat, err := m.Predict(fd.xTest)
	if err != nil {
		return err
	}

	pred := columnVec(predMat)
	value, err := rt.Metric.Fn(fd.yTest, pred)
	if err != nil {
		return err
	}

	result.FoldMetrics[foldIdx] = value
	if result.OOF != nil {
		for i, row := range fd.testIndices {
			result.OOF[row] = pred.AtVec(i)
		}
	}
	return nil
}

// eliminate applies the racing rule after foldCount completed folds: a
// one-sided paired comparison of each survivor's per-fold metrics against
// the running best. The best configuration itself is never eliminated, so
// the survivor set only ever shrinks.
func (rt *RacingTuner) eliminate(results []*TuningResult, survivors []int, foldCount int) []int {
	best := -1
	bestMean := math.NaN()
	for _, idx := range survivors {
		mean := results[idx].Mean()
		if math.IsNaN(mean) {
			continue
		}
		if best == -1 || rt.Metric.Better(mean, bestMean) {
			best = idx
			bestMean = mean
		}
	}
	if best == -1 {
		// Nothing has a valid metric yet; keep racing.
		return survivors
	}

	alpha := 1 - rt.Confidence
	sign := 1.0
	if rt.Metric.Direction == metrics.Maximize {
		sign = -1.0
	}

	kept := survivors[:0]
	for _, idx := range survivors {
		if idx == best {
			kept = append(kept, idx)
			continue
		}
		r := results[idx]

		if foldCount >= 2 && r.FoldsEvaluated() == 0 {
			// Every fold failed so far; the configuration cannot recover a
			// competitive mean and is dropped with its missing cells.
			continue
		}

		diffs := pairedDiffs(r.FoldMetrics, results[best].FoldMetrics, sign)
		if len(diffs) < 2 {
			kept = append(kept, idx)
			continue
		}

		mean, sd := stat.MeanStdDev(diffs, nil)
		if sd == 0 {
			if mean > 0 {
				continue // uniformly worse on every common fold
			}
			kept = append(kept, idx)
			continue
		}

		t := mean / (sd / math.Sqrt(float64(len(diffs))))
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(len(diffs) - 1)}
		p := 1 - tDist.CDF(t) // H1: configuration is worse than best
		if p < alpha {
			continue
		}
		kept = append(kept, idx)
	}
	return kept
}

// pairedDiffs returns sign*(a-b) over folds where both metrics exist.
func pairedDiffs(a, b []float64, sign float64) []float64 {
	var diffs []float64
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		diffs = append(diffs, sign*(a[i]-b[i]))
	}
	return diffs
}

func nan(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func asColumn(v *mat.VecDense) *mat.Dense {
	n := v.Len()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, v.AtVec(i))
	}
	return out
}

func columnVec(m mat.Matrix) *mat.VecDense {
	r, _ := m.Dims()
	out := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		out.SetVec(i, m.At(i, 0))
	}
	return out
}
