package tune

import (
	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/recipe"
)

// Candidate declares one model family for tuning: its identifier, the
// preprocessing variant it requires, its search space, and a factory that
// turns a configuration into an unfitted estimator. Declaring a candidate
// performs no training.
type Candidate struct {
	Family  string
	Variant recipe.Variant
	Space   Space
	Build   func(cfg Config) model.Regressor
}
