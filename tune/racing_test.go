package tune

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/core/model"
	"github.com/YuminosukeSato/ringtune/dataset"
	"github.com/YuminosukeSato/ringtune/models"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
	"github.com/YuminosukeSato/ringtune/recipe"
)

// racingDataset builds labeled records whose ring count follows the shell
// measurements, so penalized linear fits order cleanly by penalty.
func racingDataset(n int, seed uint64) *dataset.Dataset {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	sexes := []string{"M", "F", "I"}
	records := make([]dataset.Record, n)
	for i := range records {
		length := 0.1 + rng.Float64()*0.7
		shell := 0.05 + rng.Float64()*0.8
		rings := int(math.Round(2 + 20*length + 8*shell + rng.Float64()*2))
		if rings < 1 {
			rings = 1
		}
		if rings > 29 {
			rings = 29
		}
		records[i] = dataset.Record{
			ID:            i,
			Sex:           sexes[rng.IntN(3)],
			Length:        length,
			Diameter:      length * 0.8,
			Height:        length * 0.3,
			WholeWeight:   shell * 2.5,
			ShuckedWeight: shell * 1.1,
			VisceraWeight: shell * 0.5,
			ShellWeight:   shell,
			Rings:         rings,
		}
	}
	return &dataset.Dataset{Records: records, HasTarget: true}
}

func elasticNetCandidate() Candidate {
	return Candidate{
		Family:  "elasticnet",
		Variant: recipe.Raw,
		Space: Space{
			{Name: "penalty", Kind: Continuous, Min: 1e-8, Max: 10, Log: true},
			{Name: "mixture", Kind: Continuous, Min: 0.05, Max: 1},
		},
		Build: func(cfg Config) model.Regressor {
			return models.NewElasticNet(cfg.Float("penalty"), cfg.Float("mixture"))
		},
	}
}

func TestRacingTunerRun(t *testing.T) {
	train := racingDataset(1000, 3)
	folds := dataset.NewKFold(10, true, 3).Split(train.Len())

	rt := NewRacingTuner(folds, 10, 402)
	rt.KeepOOF = true

	rr, err := rt.Run(train, elasticNetCandidate())
	require.NoError(t, err)
	require.Len(t, rr.Results, 10)

	t.Run("one row per configuration", func(t *testing.T) {
		for i, res := range rr.Results {
			assert.Equal(t, i, res.ConfigIndex)
			assert.Equal(t, "elasticnet", res.Family)
			assert.Len(t, res.FoldMetrics, len(folds))
		}
	})

	t.Run("survivor sets only shrink", func(t *testing.T) {
		require.NotEmpty(t, rr.SurvivorHistory)
		prev := map[int]bool{}
		for i := 0; i < 10; i++ {
			prev[i] = true
		}
		for f, survivors := range rr.SurvivorHistory {
			assert.LessOrEqual(t, len(survivors), len(prev), "fold %d", f)
			next := map[int]bool{}
			for _, idx := range survivors {
				assert.True(t, prev[idx], "fold %d resurrected config %d", f, idx)
				next[idx] = true
			}
			prev = next
		}
		assert.NotEmpty(t, prev)
	})

	t.Run("best configuration survives every fold", func(t *testing.T) {
		best := -1
		bestMean := math.NaN()
		for _, res := range rr.Results {
			mean := res.Mean()
			if math.IsNaN(mean) {
				continue
			}
			if best == -1 || mean < bestMean {
				best = res.ConfigIndex
				bestMean = mean
			}
		}
		require.NotEqual(t, -1, best)
		assert.False(t, rr.Results[best].Eliminated)
		assert.Equal(t, len(folds), rr.Results[best].FoldsEvaluated())
	})

	t.Run("survivors carry complete out-of-fold columns", func(t *testing.T) {
		final := rr.SurvivorHistory[len(rr.SurvivorHistory)-1]
		for _, idx := range final {
			assert.True(t, rr.Results[idx].CompleteOOF(), "config %d", idx)
		}
	})

	t.Run("eliminated configurations keep their partial metrics", func(t *testing.T) {
		for _, res := range rr.Results {
			if !res.Eliminated {
				continue
			}
			assert.Less(t, res.FoldsEvaluated(), len(folds))
			assert.False(t, res.CompleteOOF())
		}
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		again := NewRacingTuner(folds, 10, 402)
		again.KeepOOF = true
		rr2, err := again.Run(train, elasticNetCandidate())
		require.NoError(t, err)
		for i := range rr.Results {
			assert.Equal(t, rr.Results[i].FoldMetrics, rr2.Results[i].FoldMetrics, "config %d", i)
		}
	})
}

// failingRegressor always errors so a fit failure can be injected into one
// configuration's cells.
type failingRegressor struct{}

func (f *failingRegressor) Fit(X, y mat.Matrix) error {
	return errors.New("synthetic fit failure")
}

func (f *failingRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	return nil, errors.New("synthetic predict failure")
}

func TestRacingTunerToleratesFitFailures(t *testing.T) {
	train := racingDataset(300, 5)
	folds := dataset.NewKFold(5, true, 5).Split(train.Len())

	cand := Candidate{
		Family:  "flaky",
		Variant: recipe.Raw,
		Space: Space{
			{Name: "penalty", Kind: Continuous, Min: 1e-6, Max: 1e-2, Log: true},
			{Name: "fail", Kind: Continuous, Min: 0, Max: 1},
		},
		Build: func(cfg Config) model.Regressor {
			if cfg.Float("fail") > 0.5 {
				return &failingRegressor{}
			}
			return models.NewElasticNet(cfg.Float("penalty"), 0.5)
		},
	}

	rt := NewRacingTuner(folds, 8, 11)
	rr, err := rt.Run(train, cand)
	require.NoError(t, err)

	var failed, healthy int
	for _, res := range rr.Results {
		if res.Config.Float("fail") > 0.5 {
			failed++
			// Every attempted fold stays a missing cell.
			assert.Equal(t, 0, res.FoldsEvaluated(), "config %d", res.ConfigIndex)
			assert.True(t, math.IsNaN(res.Mean()))
		} else {
			healthy++
		}
	}
	assert.NotZero(t, failed, "sampling covered no failing stratum")
	assert.NotZero(t, healthy)
}

func TestRacingTunerValidation(t *testing.T) {
	train := racingDataset(50, 9)

	t.Run("too few folds", func(t *testing.T) {
		rt := NewRacingTuner(dataset.NewKFold(2, true, 1).Split(train.Len())[:1], 4, 1)
		_, err := rt.Run(train, elasticNetCandidate())
		require.Error(t, err)
	})

	t.Run("confidence out of range", func(t *testing.T) {
		rt := NewRacingTuner(dataset.NewKFold(3, true, 1).Split(train.Len()), 4, 1)
		rt.Confidence = 1
		_, err := rt.Run(train, elasticNetCandidate())
		require.Error(t, err)
	})

	t.Run("empty space", func(t *testing.T) {
		cand := elasticNetCandidate()
		cand.Space = nil
		rt := NewRacingTuner(dataset.NewKFold(3, true, 1).Split(train.Len()), 4, 1)
		_, err := rt.Run(train, cand)
		require.Error(t, err)
	})
}
