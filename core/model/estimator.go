package model

import "gonum.org/v1/gonum/mat"

// Fitter is implemented by anything that can be trained on labeled data.
type Fitter interface {
	// Fit trains the estimator on the design matrix X and target y.
	Fit(X, y mat.Matrix) error
}

// Predictor is implemented by anything that can predict from features.
type Predictor interface {
	// Predict returns one prediction row per input row.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor combines fitting and prediction for regression estimators.
type Regressor interface {
	Fitter
	Predictor
}
