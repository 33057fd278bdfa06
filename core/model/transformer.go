package model

import "gonum.org/v1/gonum/mat"

// Transformer is a fit-once, apply-many feature transformation.
type Transformer interface {
	// Fit learns the transformation parameters from X.
	Fit(X mat.Matrix) error

	// Transform applies the learned transformation to X. It must never use
	// statistics computed from X itself, only state learned during Fit.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits on X and transforms it in one call.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}
