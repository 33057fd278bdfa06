package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypes(t *testing.T) {
	t.Run("not fitted", func(t *testing.T) {
		err := NewNotFittedError("ElasticNet", "Predict")
		assert.Contains(t, err.Error(), "ElasticNet")
		assert.Contains(t, err.Error(), "not fitted")

		var target *NotFittedError
		require.True(t, As(err, &target))
		assert.Equal(t, "Predict", target.Method)
	})

	t.Run("dimension mismatch names the axis", func(t *testing.T) {
		err := NewDimensionError("Fit", 10, 7, 1)
		assert.Contains(t, err.Error(), "features")
		assert.Contains(t, err.Error(), "Expected 10, got 7")

		rows := NewDimensionError("Fit", 3, 2, 0)
		assert.Contains(t, rows.Error(), "rows")
	})

	t.Run("validation carries the offending value", func(t *testing.T) {
		err := NewValidationError("penalty", "must be non-negative", -1.5)
		assert.Contains(t, err.Error(), "penalty")
		assert.Contains(t, err.Error(), "-1.5")

		var target *ValidationError
		require.True(t, As(err, &target))
		assert.Equal(t, -1.5, target.Value)
	})

	t.Run("model error unwraps its cause", func(t *testing.T) {
		err := NewModelError("Fit", "empty data", ErrEmptyData)
		assert.True(t, Is(err, ErrEmptyData))
	})

	t.Run("wrapping preserves sentinel identity", func(t *testing.T) {
		err := Wrap(ErrSingularMatrix, "solving normal equations")
		assert.True(t, Is(err, ErrSingularMatrix))
		assert.Contains(t, err.Error(), "solving normal equations")
	})

	t.Run("numerical instability truncates long value lists", func(t *testing.T) {
		err := NewNumericalInstabilityError("MLP", []float64{1, 2, 3, 4, 5, 6, 7}, 12)
		assert.Contains(t, err.Error(), "iteration 12")
		assert.Contains(t, err.Error(), "...")
	})
}

func TestWarnings(t *testing.T) {
	t.Run("convergence warning message", func(t *testing.T) {
		w := NewConvergenceWarning("SVR", 200, "")
		assert.Contains(t, w.Error(), "SVR")
		assert.Contains(t, w.Error(), "200")

		w = NewConvergenceWarning("SVR", 200, "increase cost")
		assert.Contains(t, w.Error(), "increase cost")
	})

	t.Run("warn routes through the installed sink", func(t *testing.T) {
		var got error
		SetZerologWarnFunc(func(warning error) { got = warning })
		defer SetZerologWarnFunc(nil)

		w := NewConvergenceWarning("ElasticNet", 1000, "")
		Warn(w)
		assert.Equal(t, w, got)
	})

	t.Run("handler is the fallback sink", func(t *testing.T) {
		SetZerologWarnFunc(nil)

		var got error
		SetWarningHandler(func(w error) { got = w })

		w := NewConvergenceWarning("MLP", 50, "")
		Warn(w)
		assert.Equal(t, w, got)
	})
}
