package models

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// stepData builds a piecewise-constant target that trees can fit exactly.
func stepData(n int, seed uint64) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		a := rng.Float64()
		b := rng.Float64()
		X.Set(i, 0, a)
		X.Set(i, 1, b)
		target := 1.0
		if a > 0.5 {
			target = 5.0
		}
		if b > 0.5 {
			target += 2.0
		}
		y.Set(i, 0, target)
	}
	return X, y
}

func TestRandomForestRegressor(t *testing.T) {
	X, y := stepData(300, 1)

	rf := NewRandomForestRegressor()
	rf.Trees = 50
	rf.MTry = 2
	rf.MinNodeSize = 2
	require.NoError(t, rf.Fit(X, y))

	t.Run("fits a step function", func(t *testing.T) {
		pred, err := rf.Predict(X)
		require.NoError(t, err)

		var sse float64
		r, _ := pred.Dims()
		for i := 0; i < r; i++ {
			diff := pred.At(i, 0) - y.At(i, 0)
			sse += diff * diff
		}
		assert.Less(t, math.Sqrt(sse/float64(r)), 0.5)
	})

	t.Run("deterministic for a fixed seed", func(t *testing.T) {
		other := NewRandomForestRegressor()
		other.Trees = 50
		other.MTry = 2
		other.MinNodeSize = 2
		require.NoError(t, other.Fit(X, y))

		p1, err := rf.Predict(X)
		require.NoError(t, err)
		p2, err := other.Predict(X)
		require.NoError(t, err)

		r, _ := p1.Dims()
		for i := 0; i < r; i++ {
			assert.Equal(t, p1.At(i, 0), p2.At(i, 0), "row %d", i)
		}
	})

	t.Run("validation", func(t *testing.T) {
		bad := NewRandomForestRegressor()
		bad.Trees = 0
		require.Error(t, bad.Fit(X, y))

		fresh := NewRandomForestRegressor()
		_, err := fresh.Predict(X)
		require.Error(t, err)
	})
}

func TestGBTRegressor(t *testing.T) {
	X, y := stepData(300, 2)

	t.Run("boosting drives training error down", func(t *testing.T) {
		shallow := NewGBTRegressor()
		shallow.Trees = 1
		shallow.MaxDepth = 2
		require.NoError(t, shallow.Fit(X, y))

		deep := NewGBTRegressor()
		deep.Trees = 100
		deep.MaxDepth = 3
		deep.MinNodeSize = 2
		require.NoError(t, deep.Fit(X, y))

		rmse := func(m *GBTRegressor) float64 {
			pred, err := m.Predict(X)
			require.NoError(t, err)
			var sse float64
			r, _ := pred.Dims()
			for i := 0; i < r; i++ {
				diff := pred.At(i, 0) - y.At(i, 0)
				sse += diff * diff
			}
			return math.Sqrt(sse / float64(r))
		}

		assert.Less(t, rmse(deep), rmse(shallow))
		assert.Less(t, rmse(deep), 0.3)
	})

	t.Run("row and feature subsampling still fit", func(t *testing.T) {
		gb := NewGBTRegressor()
		gb.Trees = 60
		gb.MaxDepth = 3
		gb.MinNodeSize = 2
		gb.Subsample = 0.7
		gb.ColSample = 0.5
		gb.Gamma = 0.001
		require.NoError(t, gb.Fit(X, y))

		pred, err := gb.Predict(X)
		require.NoError(t, err)
		r, _ := pred.Dims()
		assert.Equal(t, 300, r)
	})

	t.Run("validation", func(t *testing.T) {
		gb := NewGBTRegressor()
		gb.Subsample = 0
		require.Error(t, gb.Fit(X, y))

		gb = NewGBTRegressor()
		gb.ColSample = 1.5
		require.Error(t, gb.Fit(X, y))

		fresh := NewGBTRegressor()
		_, err := fresh.Predict(X)
		require.Error(t, err)
	})
}
