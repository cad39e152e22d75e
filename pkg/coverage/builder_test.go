package coverage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covscope/covscope/pkg/coverage"
	"github.com/covscope/covscope/pkg/diffscope"
)

func unitFixture(name string, id coverage.UnitID) *coverage.UnitRecord {
	return &coverage.UnitRecord{
		Name:       name,
		ID:         id,
		Package:    "com/example",
		SourceFile: "Example.java",
		Counters: coverage.Counters{
			Lines: coverage.Counter{Missed: 1, Covered: 4},
		},
	}
}

func TestBuilderVisitMergesOnFirstRegistrationOnly(t *testing.T) {
	t.Parallel()

	builder := coverage.NewBuilder()

	require.NoError(t, builder.Visit(unitFixture("Foo", 7)))
	require.NoError(t, builder.Visit(unitFixture("Foo", 7)))

	units := builder.Units()
	require.Len(t, units, 1, "idempotent re-registration keeps one entry")

	file := builder.SourceFile("com/example", "Example.java")
	require.NotNil(t, file)
	assert.Equal(t, coverage.Counter{Missed: 1, Covered: 4}, file.Counters.Lines,
		"the aggregate reflects exactly one merge")
}

func TestBuilderVisitConflictLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	builder := coverage.NewBuilder()

	require.NoError(t, builder.Visit(unitFixture("Foo", 1)))

	err := builder.Visit(unitFixture("Foo", 2))
	require.Error(t, err)

	var conflict *coverage.ConflictError

	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Foo", conflict.Attempted.Name)

	units := builder.Units()
	require.Len(t, units, 1)
	assert.Equal(t, coverage.UnitID(1), units[0].ID, "first-registered entry survives")

	file := builder.SourceFile("com/example", "Example.java")
	require.NotNil(t, file)
	assert.Equal(t, coverage.Counter{Missed: 1, Covered: 4}, file.Counters.Lines,
		"the conflicting visit is never merged")

	// The builder stays usable for non-conflicting visits.
	require.NoError(t, builder.Visit(unitFixture("Bar", 3)))
	assert.Len(t, builder.Units(), 2)
}

func TestBuilderEmptyQueries(t *testing.T) {
	t.Parallel()

	builder := coverage.NewBuilder()

	assert.Empty(t, builder.Units())
	assert.Empty(t, builder.SourceFiles())
	assert.Empty(t, builder.NoMatchUnits())
	assert.Nil(t, builder.DiffIndex())

	bundle := builder.Bundle("empty")
	assert.Equal(t, "empty", bundle.Name)
	assert.Empty(t, bundle.Units)
	assert.Empty(t, bundle.SourceFiles)
	assert.Zero(t, bundle.Totals.Lines.Total())
}

func TestBuilderBundleSnapshots(t *testing.T) {
	t.Parallel()

	builder := coverage.NewBuilder()

	require.NoError(t, builder.Visit(unitFixture("Foo", 1)))

	other := unitFixture("Bar", 2)
	other.SourceFile = "Other.java"
	other.Counters.Lines = coverage.Counter{Missed: 3, Covered: 2}
	require.NoError(t, builder.Visit(other))

	first := builder.Bundle("report")
	second := builder.Bundle("report")

	assert.Equal(t, first, second, "repeated assembly with no visits in between is stable")
	assert.Equal(t, coverage.Counter{Missed: 4, Covered: 6}, first.Totals.Lines)
	assert.Len(t, first.SourceFiles, 2)

	// Bundles are snapshots: later visits do not appear in them.
	require.NoError(t, builder.Visit(unitFixture("Baz", 3)))
	assert.Len(t, first.Units, 2)
	assert.Len(t, builder.Bundle("report").Units, 3)
}

func TestNewBuilderWithDiff(t *testing.T) {
	t.Parallel()

	t.Run("valid_payload", func(t *testing.T) {
		t.Parallel()

		builder, err := coverage.NewBuilderWithDiff([]byte(
			`[{"unitPath": "com/example/Foo", "methodChanges": [{"methodName": "run"}]}]`))
		require.NoError(t, err)

		index := builder.DiffIndex()
		require.NotNil(t, index)
		assert.Len(t, index.Lookup("com/example/Foo", "run"), 1)
	})

	t.Run("malformed_payload_is_fatal", func(t *testing.T) {
		t.Parallel()

		builder, err := coverage.NewBuilderWithDiff([]byte(`{"not": "a list"}`))
		require.ErrorIs(t, err, diffscope.ErrMalformedPayload)
		assert.Nil(t, builder, "no usable instance on parse failure")
	})

	t.Run("empty_payload_means_full_coverage", func(t *testing.T) {
		t.Parallel()

		builder, err := coverage.NewBuilderWithDiff(nil)
		require.NoError(t, err)
		assert.Nil(t, builder.DiffIndex())
	})
}

func TestBuilderNoMatchPassthrough(t *testing.T) {
	t.Parallel()

	builder := coverage.NewBuilder()

	stale := unitFixture("Stale", 5)
	stale.NoMatch = true

	require.NoError(t, builder.Visit(unitFixture("Fresh", 4)))
	require.NoError(t, builder.Visit(stale))

	noMatch := builder.NoMatchUnits()
	require.Len(t, noMatch, 1)
	assert.Equal(t, "Stale", noMatch[0].Name)
}
