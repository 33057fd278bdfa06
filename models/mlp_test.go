package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

func TestMLPRegressor(t *testing.T) {
	X, y := linearData(200, []float64{0.5, -0.3}, 1, 0, 21)

	t.Run("learns a smooth mapping", func(t *testing.T) {
		nn := NewMLPRegressor(8)
		nn.Epochs = 2000
		nn.LearnRate = 0.05
		require.NoError(t, nn.Fit(X, y))

		pred, err := nn.Predict(X)
		require.NoError(t, err)

		var sse, ssTot float64
		var mean float64
		for i := 0; i < 200; i++ {
			mean += y.At(i, 0)
		}
		mean /= 200
		for i := 0; i < 200; i++ {
			diff := pred.At(i, 0) - y.At(i, 0)
			sse += diff * diff
			dev := y.At(i, 0) - mean
			ssTot += dev * dev
		}
		// The network must explain most of the variance.
		assert.Less(t, sse/ssTot, 0.2)
	})

	t.Run("deterministic for a fixed seed", func(t *testing.T) {
		a := NewMLPRegressor(4)
		a.Epochs = 50
		require.NoError(t, a.Fit(X, y))
		b := NewMLPRegressor(4)
		b.Epochs = 50
		require.NoError(t, b.Fit(X, y))

		pa, err := a.Predict(X)
		require.NoError(t, err)
		pb, err := b.Predict(X)
		require.NoError(t, err)
		for i := 0; i < 200; i++ {
			assert.Equal(t, pa.At(i, 0), pb.At(i, 0))
		}
	})

	t.Run("non-finite input surfaces as a numeric error", func(t *testing.T) {
		bad := mat.DenseCopyOf(X)
		bad.Set(0, 0, math.NaN())

		nn := NewMLPRegressor(4)
		err := nn.Fit(bad, y)
		require.Error(t, err)
		var numErr *errors.NumericalInstabilityError
		assert.True(t, errors.As(err, &numErr))
	})

	t.Run("validation", func(t *testing.T) {
		nn := NewMLPRegressor(0)
		require.Error(t, nn.Fit(X, y))

		nn = NewMLPRegressor(4)
		nn.Epochs = 0
		require.Error(t, nn.Fit(X, y))

		fresh := NewMLPRegressor(4)
		_, err := fresh.Predict(X)
		require.Error(t, err)
	})
}
