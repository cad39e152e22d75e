package coverage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covscope/covscope/pkg/coverage"
)

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	t.Run("new_unit", func(t *testing.T) {
		t.Parallel()

		reg := coverage.NewUnitRegistry()

		added, err := reg.Register(&coverage.UnitRecord{Name: "com/example/Foo", ID: 1})
		require.NoError(t, err)
		assert.True(t, added)
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("idempotent_reregistration", func(t *testing.T) {
		t.Parallel()

		reg := coverage.NewUnitRegistry()

		_, err := reg.Register(&coverage.UnitRecord{Name: "Foo", ID: 42})
		require.NoError(t, err)

		added, err := reg.Register(&coverage.UnitRecord{Name: "Foo", ID: 42})
		require.NoError(t, err)
		assert.False(t, added, "matching identity re-registers as a no-op")
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("identity_conflict", func(t *testing.T) {
		t.Parallel()

		reg := coverage.NewUnitRegistry()
		first := &coverage.UnitRecord{Name: "Foo", ID: 1}

		_, err := reg.Register(first)
		require.NoError(t, err)

		added, err := reg.Register(&coverage.UnitRecord{Name: "Foo", ID: 2})
		require.Error(t, err)
		assert.False(t, added)

		var conflict *coverage.ConflictError

		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, coverage.UnitID(1), conflict.Existing.ID)
		assert.Equal(t, coverage.UnitID(2), conflict.Attempted.ID)

		// The first-registered entry stays in place.
		units := reg.Units()
		require.Len(t, units, 1)
		assert.Same(t, first, units[0])
	})
}

func TestRegistryOrderIndependence(t *testing.T) {
	t.Parallel()

	a := &coverage.UnitRecord{Name: "B", ID: 2}
	b := &coverage.UnitRecord{Name: "A", ID: 1}

	forward := coverage.NewUnitRegistry()
	reverse := coverage.NewUnitRegistry()

	for _, rec := range []*coverage.UnitRecord{a, b} {
		_, err := forward.Register(rec)
		require.NoError(t, err)
	}

	for _, rec := range []*coverage.UnitRecord{b, a} {
		_, err := reverse.Register(rec)
		require.NoError(t, err)
	}

	assert.Equal(t, forward.Units(), reverse.Units(), "snapshots are name-sorted either way")
}

func TestRegistryNoMatchUnits(t *testing.T) {
	t.Parallel()

	reg := coverage.NewUnitRegistry()

	for _, rec := range []*coverage.UnitRecord{
		{Name: "Clean", ID: 1},
		{Name: "Stale", ID: 2, NoMatch: true},
		{Name: "Drift", ID: 3, NoMatch: true},
	} {
		_, err := reg.Register(rec)
		require.NoError(t, err)
	}

	noMatch := reg.NoMatchUnits()
	require.Len(t, noMatch, 2)
	assert.Equal(t, "Drift", noMatch[0].Name)
	assert.Equal(t, "Stale", noMatch[1].Name)
}

func TestConflictErrorMessage(t *testing.T) {
	t.Parallel()

	err := error(&coverage.ConflictError{
		Existing:  &coverage.UnitRecord{Name: "Foo", ID: 1},
		Attempted: &coverage.UnitRecord{Name: "Foo", ID: 2},
	})

	assert.Contains(t, err.Error(), `unit "Foo" identity conflict`)
	assert.Contains(t, err.Error(), "existing id 1, attempted id 2")
}
