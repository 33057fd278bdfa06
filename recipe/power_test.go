package recipe

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestYeoJohnsonValue(t *testing.T) {
	t.Run("lambda zero is log1p on non-negatives", func(t *testing.T) {
		for _, x := range []float64{0, 0.5, 3, 100} {
			assert.InDelta(t, math.Log1p(x), yeoJohnsonValue(x, 0), 1e-12)
		}
	})

	t.Run("lambda one is identity", func(t *testing.T) {
		for _, x := range []float64{-3, -0.5, 0, 0.5, 3} {
			assert.InDelta(t, x, yeoJohnsonValue(x, 1), 1e-12)
		}
	})

	t.Run("lambda two mirrors log1p on negatives", func(t *testing.T) {
		for _, x := range []float64{-0.5, -2, -10} {
			assert.InDelta(t, -math.Log1p(-x), yeoJohnsonValue(x, 2), 1e-12)
		}
	})

	t.Run("monotone in x", func(t *testing.T) {
		for _, lambda := range []float64{-1, 0, 0.5, 1, 2, 3} {
			prev := math.Inf(-1)
			for x := -3.0; x <= 3.0; x += 0.25 {
				v := yeoJohnsonValue(x, lambda)
				assert.Greater(t, v, prev, "lambda=%v x=%v", lambda, x)
				prev = v
			}
		}
	})
}

func TestYeoJohnsonFit(t *testing.T) {
	rng := rand.New(rand.NewPCG(31, 32))
	n := 500

	t.Run("reduces skew of a log-normal column", func(t *testing.T) {
		X := mat.NewDense(n, 1, nil)
		raw := make([]float64, n)
		for i := 0; i < n; i++ {
			v := math.Exp(rng.NormFloat64())
			raw[i] = v
			X.Set(i, 0, v)
		}

		yj := NewYeoJohnson()
		out, err := yj.FitTransform(X)
		require.NoError(t, err)

		outCol := make([]float64, n)
		for i := 0; i < n; i++ {
			outCol[i] = out.At(i, 0)
		}
		rawSkew := stat.Skew(raw, nil)
		outSkew := stat.Skew(outCol, nil)
		assert.Less(t, math.Abs(outSkew), math.Abs(rawSkew))
		// The MLE for log-normal data sits near zero.
		assert.Less(t, yj.Lambdas[0], 0.5)
	})

	t.Run("near-symmetric data keeps lambda near one", func(t *testing.T) {
		X := mat.NewDense(n, 1, nil)
		for i := 0; i < n; i++ {
			X.Set(i, 0, rng.NormFloat64())
		}
		yj := NewYeoJohnson()
		require.NoError(t, yj.Fit(X))
		assert.InDelta(t, 1, yj.Lambdas[0], 0.5)
	})

	t.Run("transform before fit", func(t *testing.T) {
		yj := NewYeoJohnson()
		_, err := yj.Transform(mat.NewDense(2, 1, nil))
		require.Error(t, err)
	})

	t.Run("feature count must match fit", func(t *testing.T) {
		X := mat.NewDense(10, 2, nil)
		for i := 0; i < 10; i++ {
			X.Set(i, 0, float64(i))
			X.Set(i, 1, float64(i)*0.5)
		}
		yj := NewYeoJohnson()
		require.NoError(t, yj.Fit(X))
		_, err := yj.Transform(mat.NewDense(3, 5, nil))
		require.Error(t, err)
	})
}
