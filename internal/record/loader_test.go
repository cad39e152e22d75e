package record_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covscope/covscope/internal/record"
	"github.com/covscope/covscope/pkg/coverage"
)

func TestLoad_CountsAcceptedAndDuplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "first.ndjson")
	second := filepath.Join(dir, "second.ndjson")

	writeTestFile(t, first, "{\"name\":\"a\",\"id\":1}\n{\"name\":\"b\",\"id\":2}\n")
	writeTestFile(t, second, "{\"name\":\"b\",\"id\":2}\n{\"name\":\"c\",\"id\":3}\n")

	builder := coverage.NewBuilder()

	stats, err := record.Load(context.Background(), builder, []string{first, second}, record.FailOnConflict)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Accepted)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Empty(t, stats.Conflicts)
	assert.Equal(t, 3, builder.Len())
}

func TestLoad_FailOnConflict_Aborts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "records.ndjson")
	writeTestFile(t, path, "{\"name\":\"a\",\"id\":1}\n{\"name\":\"a\",\"id\":99}\n")

	builder := coverage.NewBuilder()

	stats, err := record.Load(context.Background(), builder, []string{path}, record.FailOnConflict)
	require.Error(t, err)
	assert.Nil(t, stats)

	var conflict *coverage.ConflictError

	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, coverage.UnitID(1), conflict.Existing.ID)
	assert.Equal(t, coverage.UnitID(99), conflict.Attempted.ID)
}

func TestLoad_SkipConflicts_CollectsAndContinues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "records.ndjson")
	writeTestFile(t, path, "{\"name\":\"a\",\"id\":1}\n{\"name\":\"a\",\"id\":99}\n{\"name\":\"b\",\"id\":2}\n")

	builder := coverage.NewBuilder()

	stats, err := record.Load(context.Background(), builder, []string{path}, record.SkipConflicts)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Accepted)
	assert.Equal(t, 0, stats.Duplicates)
	require.Len(t, stats.Conflicts, 1)
	assert.Equal(t, "a", stats.Conflicts[0].Existing.Name)

	// The first registration survives the conflict.
	units := builder.Units()
	require.Len(t, units, 2)
	assert.Equal(t, coverage.UnitID(1), units[0].ID)
}

func TestLoad_DiffScope_SkipsUnindexedUnits(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "records.ndjson")
	writeTestFile(t, path, "{\"name\":\"app/main\",\"id\":1}\n{\"name\":\"app/util\",\"id\":2}\n")

	payload := []byte(`[{"unitPath": "app/main", "methodChanges": [{"methodName": "run"}]}]`)

	builder, err := coverage.NewBuilderWithDiff(payload)
	require.NoError(t, err)

	stats, err := record.Load(context.Background(), builder, []string{path}, record.FailOnConflict)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Accepted)
	assert.Equal(t, 1, stats.Skipped)
	require.Equal(t, 1, builder.Len())
	assert.Equal(t, "app/main", builder.Units()[0].Name)
}

func TestLoad_MissingFile_ReturnsError(t *testing.T) {
	t.Parallel()

	builder := coverage.NewBuilder()

	stats, err := record.Load(context.Background(), builder, []string{"/nonexistent/records.ndjson"}, record.FailOnConflict)
	require.Error(t, err)
	assert.Nil(t, stats)
}
