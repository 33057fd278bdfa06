// Package tune implements randomized hyperparameter search with
// cross-validated racing: configurations that are statistically dominated
// after a fold are eliminated from the remaining folds.
package tune

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// ParamKind is the type of a tunable parameter.
type ParamKind int

const (
	// Continuous parameters take any value in [Min, Max].
	Continuous ParamKind = iota
	// Integer parameters are rounded to the nearest whole value.
	Integer
)

// ParamSpec declares one tunable parameter and its bounds. Log-scale
// parameters are sampled uniformly in log space, which is how penalty- and
// rate-like parameters are searched.
type ParamSpec struct {
	Name string
	Kind ParamKind
	Min  float64
	Max  float64
	Log  bool
}

// Space is a declared hyperparameter search space.
type Space []ParamSpec

// Config is one named hyperparameter assignment drawn from a Space.
// Integer parameters are stored as whole-valued floats.
type Config map[string]float64

// Int returns a parameter as an int.
func (c Config) Int(name string) int {
	return int(math.Round(c[name]))
}

// Float returns a parameter as a float64.
func (c Config) Float(name string) float64 {
	return c[name]
}

// Sample draws g configurations with a Latin hypercube design: each
// parameter's range is cut into g strata and every configuration lands in a
// distinct stratum per parameter. Deterministic for a given seed.
func (sp Space) Sample(g int, seed int64) ([]Config, error) {
	if len(sp) == 0 {
		return nil, errors.NewValidationError("space", "search space must not be empty", len(sp))
	}
	if g < 1 {
		return nil, errors.NewValidationError("grid_size", "must be at least 1", g)
	}
	for _, p := range sp {
		if p.Min >= p.Max {
			return nil, errors.NewValidationError(p.Name, "min must be below max", p)
		}
		if p.Log && p.Min <= 0 {
			return nil, errors.NewValidationError(p.Name, "log-scale bounds must be positive", p)
		}
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)+11))

	configs := make([]Config, g)
	for i := range configs {
		configs[i] = make(Config, len(sp))
	}

	for _, p := range sp {
		strata := rng.Perm(g)
		for i := 0; i < g; i++ {
			u := (float64(strata[i]) + rng.Float64()) / float64(g)
			var value float64
			if p.Log {
				lo, hi := math.Log(p.Min), math.Log(p.Max)
				value = math.Exp(lo + u*(hi-lo))
			} else {
				value = p.Min + u*(p.Max-p.Min)
			}
			if p.Kind == Integer {
				value = math.Round(value)
			}
			configs[i][p.Name] = value
		}
	}
	return configs, nil
}
