package tune

import (
	"math"
)

// TuningResult aggregates one configuration's realized metric values across
// folds. A NaN cell marks a fold where the fit failed or where the
// configuration had already been eliminated.
type TuningResult struct {
	Family      string
	ConfigIndex int
	Config      Config

	// FoldMetrics has one slot per fold; NaN means missing.
	FoldMetrics []float64

	// OOF holds out-of-fold predictions on the log1p scale, indexed by
	// training-row position; NaN where the configuration produced none.
	// Nil unless the tuner was asked to keep them.
	OOF []float64

	// Eliminated is set when racing dropped the configuration before it
	// saw every fold.
	Eliminated bool
}

// FoldsEvaluated counts the non-missing cells.
func (tr *TuningResult) FoldsEvaluated() int {
	n := 0
	for _, m := range tr.FoldMetrics {
		if !math.IsNaN(m) {
			n++
		}
	}
	return n
}

// Mean returns the mean metric over evaluated folds, or NaN when every fold
// is missing (such configurations rank worst).
func (tr *TuningResult) Mean() float64 {
	var sum float64
	n := 0
	for _, m := range tr.FoldMetrics {
		if !math.IsNaN(m) {
			sum += m
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// StdErr returns the standard error of the fold metrics, or NaN with fewer
// than two evaluated folds.
func (tr *TuningResult) StdErr() float64 {
	mean := tr.Mean()
	if math.IsNaN(mean) {
		return math.NaN()
	}
	var ss float64
	n := 0
	for _, m := range tr.FoldMetrics {
		if !math.IsNaN(m) {
			dev := m - mean
			ss += dev * dev
			n++
		}
	}
	if n < 2 {
		return math.NaN()
	}
	sd := math.Sqrt(ss / float64(n-1))
	return sd / math.Sqrt(float64(n))
}

// CompleteOOF reports whether every training row received an out-of-fold
// prediction. Only complete columns are usable by the blender.
func (tr *TuningResult) CompleteOOF() bool {
	if tr.OOF == nil {
		return false
	}
	for _, v := range tr.OOF {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// RaceResult collects every configuration's TuningResult for one candidate,
// including eliminated ones with their partial metrics.
type RaceResult struct {
	Family  string
	Results []*TuningResult

	// SurvivorHistory records the surviving configuration indices after
	// each completed fold, in fold order.
	SurvivorHistory [][]int
}
