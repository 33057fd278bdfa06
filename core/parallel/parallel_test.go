package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelize(t *testing.T) {
	t.Run("covers every index exactly once", func(t *testing.T) {
		n := 1000
		var mu sync.Mutex
		seen := make([]int, n)

		Parallelize(n, func(start, end int) {
			mu.Lock()
			defer mu.Unlock()
			for i := start; i < end; i++ {
				seen[i]++
			}
		})

		for i, count := range seen {
			require.Equal(t, 1, count, "index %d", i)
		}
	})

	t.Run("zero items is a no-op", func(t *testing.T) {
		called := false
		Parallelize(0, func(start, end int) { called = true })
		assert.False(t, called)
	})

	t.Run("threshold forces sequential execution", func(t *testing.T) {
		var ranges [][2]int
		ParallelizeWithThreshold(10, 64, func(start, end int) {
			ranges = append(ranges, [2]int{start, end})
		})
		require.Len(t, ranges, 1)
		assert.Equal(t, [2]int{0, 10}, ranges[0])
	})
}

func TestPool(t *testing.T) {
	t.Run("runs every submitted task", func(t *testing.T) {
		p := NewPool(3)
		defer p.Release()

		var counter atomic.Int64
		for i := 0; i < 50; i++ {
			p.Submit(func() { counter.Add(1) })
		}
		p.Wait()
		assert.Equal(t, int64(50), counter.Load())
	})

	t.Run("wait is a reusable barrier", func(t *testing.T) {
		p := NewPool(2)
		defer p.Release()

		var counter atomic.Int64
		for round := 0; round < 3; round++ {
			for i := 0; i < 10; i++ {
				p.Submit(func() { counter.Add(1) })
			}
			p.Wait()
			assert.Equal(t, int64((round+1)*10), counter.Load(), "round %d", round)
		}
	})

	t.Run("release is idempotent", func(t *testing.T) {
		p := NewPool(2)
		p.Submit(func() {})
		p.Release()
		p.Release()
	})

	t.Run("width floors at one", func(t *testing.T) {
		p := NewPool(0)
		defer p.Release()
		assert.Equal(t, 1, p.Width())

		done := make(chan struct{})
		p.Submit(func() { close(done) })
		<-done
	})
}
