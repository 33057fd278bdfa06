package metrics

import "gonum.org/v1/gonum/mat"

// Direction states whether smaller or larger metric values are better. It is
// an explicit property of the metric rather than something inferred from the
// metric's name at runtime.
type Direction int

const (
	// Minimize means lower values are better (error metrics).
	Minimize Direction = iota
	// Maximize means higher values are better (score metrics).
	Maximize
)

// Metric pairs an evaluation function with its optimization direction.
type Metric struct {
	Name      string
	Direction Direction
	Fn        func(yTrue, yPred *mat.VecDense) (float64, error)
}

// Better reports whether metric value a beats b.
func (m Metric) Better(a, b float64) bool {
	if m.Direction == Minimize {
		return a < b
	}
	return a > b
}

// RMSELog1p is the tuning metric: plain RMSE evaluated on log1p-scale
// values. With the target modeled on the log1p scale this numerically
// matches RMSLE on the original scale, and downstream scores are calibrated
// against exactly this quantity, so it must not be replaced by a
// bias-adjusted variant.
var RMSELog1p = Metric{
	Name:      "rmse_log1p",
	Direction: Minimize,
	Fn:        RMSE,
}
