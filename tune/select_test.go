package tune

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/ringtune/metrics"
)

func resultWith(family string, idx int, foldMetrics ...float64) *TuningResult {
	return &TuningResult{
		Family:      family,
		ConfigIndex: idx,
		Config:      Config{"penalty": float64(idx)},
		FoldMetrics: foldMetrics,
	}
}

func TestSelectorRank(t *testing.T) {
	nan := math.NaN()
	sel := NewSelector(metrics.RMSELog1p)
	sel.Add(&RaceResult{Family: "a", Results: []*TuningResult{
		resultWith("a", 0, 0.30, 0.32),
		resultWith("a", 1, 0.20, 0.22),
		resultWith("a", 2, nan, nan),
		resultWith("a", 3, 0.21, 0.21),
	}})

	t.Run("orders best first with missing last", func(t *testing.T) {
		ranked, err := sel.Rank("a")
		require.NoError(t, err)
		require.Len(t, ranked, 4)

		assert.Equal(t, 1, ranked[0].ConfigIndex)
		assert.Equal(t, 3, ranked[1].ConfigIndex)
		assert.Equal(t, 0, ranked[2].ConfigIndex)
		assert.Equal(t, 2, ranked[3].ConfigIndex)
		assert.True(t, math.IsNaN(ranked[3].Mean))
	})

	t.Run("means stay monotone over valid rows", func(t *testing.T) {
		ranked, err := sel.Rank("a")
		require.NoError(t, err)
		for i := 1; i < len(ranked); i++ {
			if math.IsNaN(ranked[i].Mean) {
				continue
			}
			assert.LessOrEqual(t, ranked[i-1].Mean, ranked[i].Mean)
		}
	})

	t.Run("equal means break by configuration order", func(t *testing.T) {
		tied := NewSelector(metrics.RMSELog1p)
		tied.Add(&RaceResult{Family: "t", Results: []*TuningResult{
			resultWith("t", 0, 0.5),
			resultWith("t", 1, 0.5),
		}})
		ranked, err := tied.Rank("t")
		require.NoError(t, err)
		assert.Equal(t, 0, ranked[0].ConfigIndex)
	})

	t.Run("unknown family", func(t *testing.T) {
		_, err := sel.Rank("nope")
		require.Error(t, err)
	})
}

func TestSelectorBestConfig(t *testing.T) {
	nan := math.NaN()
	sel := NewSelector(metrics.RMSELog1p)
	sel.Add(&RaceResult{Family: "a", Results: []*TuningResult{
		resultWith("a", 0, 0.4),
		resultWith("a", 1, 0.3),
	}})
	sel.Add(&RaceResult{Family: "broken", Results: []*TuningResult{
		resultWith("broken", 0, nan),
	}})

	t.Run("returns the winner", func(t *testing.T) {
		cfg, err := sel.BestConfig("a")
		require.NoError(t, err)
		assert.Equal(t, 1.0, cfg["penalty"])
	})

	t.Run("all-missing family has no winner", func(t *testing.T) {
		_, err := sel.BestConfig("broken")
		require.Error(t, err)
	})
}

func TestSelectorRankAll(t *testing.T) {
	sel := NewSelector(metrics.RMSELog1p)
	sel.Add(&RaceResult{Family: "a", Results: []*TuningResult{
		resultWith("a", 0, 0.4),
	}})
	sel.Add(&RaceResult{Family: "b", Results: []*TuningResult{
		resultWith("b", 0, 0.2),
		resultWith("b", 1, 0.6),
	}})

	all := sel.RankAll()
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[0].Family)
	assert.Equal(t, "a", all[1].Family)
	assert.Equal(t, "b", all[2].Family)

	assert.Equal(t, []string{"a", "b"}, sel.Families())
}

func TestTuningResultStatistics(t *testing.T) {
	nan := math.NaN()

	t.Run("mean ignores missing cells", func(t *testing.T) {
		res := resultWith("a", 0, 0.2, nan, 0.4)
		assert.InDelta(t, 0.3, res.Mean(), 1e-12)
		assert.Equal(t, 2, res.FoldsEvaluated())
	})

	t.Run("standard error needs two folds", func(t *testing.T) {
		res := resultWith("a", 0, 0.2, nan, nan)
		assert.True(t, math.IsNaN(res.StdErr()))

		res = resultWith("a", 0, 0.2, 0.4)
		sd := math.Sqrt(0.02)
		assert.InDelta(t, sd/math.Sqrt(2), res.StdErr(), 1e-12)
	})

	t.Run("complete OOF detection", func(t *testing.T) {
		res := resultWith("a", 0, 0.2)
		assert.False(t, res.CompleteOOF())

		res.OOF = []float64{1, 2, nan}
		assert.False(t, res.CompleteOOF())

		res.OOF = []float64{1, 2, 3}
		assert.True(t, res.CompleteOOF())
	})
}
