package tune

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpaceSample(t *testing.T) {
	space := Space{
		{Name: "penalty", Kind: Continuous, Min: 1e-5, Max: 1, Log: true},
		{Name: "mixture", Kind: Continuous, Min: 0.05, Max: 1},
		{Name: "trees", Kind: Integer, Min: 100, Max: 2000},
	}

	t.Run("respects bounds and kinds", func(t *testing.T) {
		configs, err := space.Sample(25, 7)
		require.NoError(t, err)
		require.Len(t, configs, 25)

		for _, cfg := range configs {
			assert.GreaterOrEqual(t, cfg["penalty"], 1e-5)
			assert.LessOrEqual(t, cfg["penalty"], 1.0)
			assert.GreaterOrEqual(t, cfg["mixture"], 0.05)
			assert.LessOrEqual(t, cfg["mixture"], 1.0)

			trees := cfg["trees"]
			assert.Equal(t, math.Round(trees), trees, "integer parameter must be whole")
			assert.GreaterOrEqual(t, trees, 100.0)
			assert.LessOrEqual(t, trees, 2000.0)
		}
	})

	t.Run("deterministic for a fixed seed", func(t *testing.T) {
		a, err := space.Sample(10, 42)
		require.NoError(t, err)
		b, err := space.Sample(10, 42)
		require.NoError(t, err)
		assert.Equal(t, a, b)

		c, err := space.Sample(10, 43)
		require.NoError(t, err)
		assert.NotEqual(t, a, c)
	})

	t.Run("stratifies each continuous parameter", func(t *testing.T) {
		g := 20
		configs, err := space.Sample(g, 1)
		require.NoError(t, err)

		// Each configuration lands in a distinct stratum of [0.05, 1], so
		// the stratum indices form a permutation of 0..g-1.
		seen := make(map[int]bool)
		for _, cfg := range configs {
			u := (cfg["mixture"] - 0.05) / (1 - 0.05)
			stratum := int(u * float64(g))
			if stratum == g {
				stratum = g - 1
			}
			seen[stratum] = true
		}
		assert.Len(t, seen, g)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		_, err := Space{}.Sample(5, 1)
		require.Error(t, err)

		_, err = space.Sample(0, 1)
		require.Error(t, err)

		bad := Space{{Name: "x", Min: 2, Max: 1}}
		_, err = bad.Sample(5, 1)
		require.Error(t, err)

		badLog := Space{{Name: "x", Min: 0, Max: 1, Log: true}}
		_, err = badLog.Sample(5, 1)
		require.Error(t, err)
	})
}

func TestConfigAccessors(t *testing.T) {
	cfg := Config{"trees": 500.0, "rate": 0.1}
	assert.Equal(t, 500, cfg.Int("trees"))
	assert.Equal(t, 0.1, cfg.Float("rate"))
}
