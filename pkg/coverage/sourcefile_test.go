package coverage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covscope/covscope/pkg/coverage"
)

func TestAggregatorRoutesByPackageAndFile(t *testing.T) {
	t.Parallel()

	agg := coverage.NewSourceFileAggregator()

	agg.Merge(&coverage.UnitRecord{
		Name: "com/example/Foo", ID: 1,
		Package: "com/example", SourceFile: "Foo.java",
		Counters: coverage.Counters{Lines: coverage.Counter{Missed: 2, Covered: 8}},
	})
	agg.Merge(&coverage.UnitRecord{
		Name: "com/example/Foo$Inner", ID: 2,
		Package: "com/example", SourceFile: "Foo.java",
		Counters: coverage.Counters{Lines: coverage.Counter{Missed: 1, Covered: 3}},
	})
	agg.Merge(&coverage.UnitRecord{
		Name: "com/example/Bar", ID: 3,
		Package: "com/example", SourceFile: "Bar.java",
		Counters: coverage.Counters{Lines: coverage.Counter{Missed: 0, Covered: 5}},
	})

	require.Equal(t, 2, agg.Len(), "units sharing (package, file) share one aggregate")

	foo := agg.Lookup("com/example", "Foo.java")
	require.NotNil(t, foo)
	assert.Equal(t, coverage.Counter{Missed: 3, Covered: 11}, foo.Counters.Lines,
		"aggregate counters combine every contributing unit")
	assert.Equal(t, "com/example/Foo.java", foo.Key())
}

func TestAggregatorSkipsRecordsWithoutSource(t *testing.T) {
	t.Parallel()

	agg := coverage.NewSourceFileAggregator()

	// Silent skip, not an error: synthetic units carry no source file.
	agg.Merge(&coverage.UnitRecord{Name: "com/example/Generated", ID: 9, Package: "com/example"})

	assert.Zero(t, agg.Len())
	assert.Empty(t, agg.SourceFiles())
}

func TestAggregatorKeySeparatorKeepsPairsDistinct(t *testing.T) {
	t.Parallel()

	agg := coverage.NewSourceFileAggregator()

	agg.Merge(&coverage.UnitRecord{Name: "A", ID: 1, Package: "", SourceFile: "a/b"})
	agg.Merge(&coverage.UnitRecord{Name: "B", ID: 2, Package: "a", SourceFile: "b"})

	assert.Equal(t, 2, agg.Len(), "(\"\", \"a/b\") and (\"a\", \"b\") are distinct keys")
}

func TestAggregatorMergesLineHits(t *testing.T) {
	t.Parallel()

	agg := coverage.NewSourceFileAggregator()

	agg.Merge(&coverage.UnitRecord{
		Name: "Foo", ID: 1, Package: "p", SourceFile: "f",
		Lines: []coverage.LineHit{
			{Nr: 10, Hits: 1},
			{Nr: 11, Hits: 0, Branches: coverage.Counter{Missed: 2}},
		},
	})
	agg.Merge(&coverage.UnitRecord{
		Name: "Bar", ID: 2, Package: "p", SourceFile: "f",
		Lines: []coverage.LineHit{
			{Nr: 11, Hits: 3, Branches: coverage.Counter{Covered: 2}},
			{Nr: 12, Hits: 1},
		},
	})

	file := agg.Lookup("p", "f")
	require.NotNil(t, file)

	lines := file.Lines()
	require.Len(t, lines, 3)

	assert.Equal(t, coverage.LineHit{Nr: 10, Hits: 1}, lines[0])
	assert.Equal(t, coverage.LineHit{Nr: 11, Hits: 3, Branches: coverage.Counter{Missed: 2, Covered: 2}}, lines[1])
	assert.Equal(t, coverage.LineHit{Nr: 12, Hits: 1}, lines[2])
}
