package coverage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/covscope/covscope/pkg/coverage"
)

func TestCounterAdd(t *testing.T) {
	t.Parallel()

	a := coverage.Counter{Missed: 3, Covered: 7}
	b := coverage.Counter{Missed: 1, Covered: 2}

	assert.Equal(t, coverage.Counter{Missed: 4, Covered: 9}, a.Add(b))
	assert.Equal(t, a.Add(b), b.Add(a), "addition is commutative")
	assert.Equal(t, a, a.Add(coverage.Counter{}), "zero counter is the identity")
}

func TestCounterRatios(t *testing.T) {
	t.Parallel()

	t.Run("covered_share", func(t *testing.T) {
		t.Parallel()

		c := coverage.Counter{Missed: 1, Covered: 3}
		assert.Equal(t, 4, c.Total())
		assert.InDelta(t, 0.75, c.CoveredRatio(), 1e-9)
		assert.InDelta(t, 75.0, c.CoveredPercent(), 1e-9)
	})

	t.Run("empty_counter", func(t *testing.T) {
		t.Parallel()

		var c coverage.Counter
		assert.Zero(t, c.Total())
		assert.Zero(t, c.CoveredRatio())
	})
}

func TestCountersMerge(t *testing.T) {
	t.Parallel()

	a := coverage.Counters{
		Instructions: coverage.Counter{Missed: 10, Covered: 20},
		Branches:     coverage.Counter{Missed: 2, Covered: 2},
		Lines:        coverage.Counter{Missed: 5, Covered: 15},
		Complexity:   coverage.Counter{Missed: 1, Covered: 3},
		Methods:      coverage.Counter{Missed: 0, Covered: 4},
	}
	b := coverage.Counters{
		Instructions: coverage.Counter{Missed: 1, Covered: 1},
		Lines:        coverage.Counter{Missed: 1, Covered: 1},
	}

	merged := a.Merge(b)

	assert.Equal(t, coverage.Counter{Missed: 11, Covered: 21}, merged.Instructions)
	assert.Equal(t, coverage.Counter{Missed: 6, Covered: 16}, merged.Lines)
	assert.Equal(t, a.Branches, merged.Branches)
	assert.Equal(t, merged, b.Merge(a), "merge is commutative")
}
