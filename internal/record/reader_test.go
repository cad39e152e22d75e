package record_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covscope/covscope/internal/record"
	"github.com/covscope/covscope/pkg/coverage"
)

func collectRecords(t *testing.T, input string) ([]*coverage.UnitRecord, error) {
	t.Helper()

	var records []*coverage.UnitRecord

	err := record.Read(context.Background(), strings.NewReader(input), func(rec *coverage.UnitRecord) error {
		records = append(records, rec)

		return nil
	})

	return records, err
}

func TestRead_NDJSON_StreamsInOrder(t *testing.T) {
	t.Parallel()

	input := `{"name":"com/acme/Parser.parse(Ljava/lang/String;)V","id":17,"package":"com/acme","file":"Parser.java","counters":{"lines":{"missed":2,"covered":8}}}
{"name":"com/acme/Parser.reset()V","id":18,"package":"com/acme","file":"Parser.java"}
`

	records, err := collectRecords(t, input)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "com/acme/Parser.parse(Ljava/lang/String;)V", records[0].Name)
	assert.Equal(t, coverage.UnitID(17), records[0].ID)
	assert.Equal(t, "com/acme", records[0].Package)
	assert.Equal(t, "Parser.java", records[0].SourceFile)
	assert.Equal(t, 8, records[0].Counters.Lines.Covered)
	assert.Equal(t, "com/acme/Parser.reset()V", records[1].Name)
}

func TestRead_JSONArray_StreamsInOrder(t *testing.T) {
	t.Parallel()

	input := `  [
  {"name":"a","id":1},
  {"name":"b","id":2},
  {"name":"c","id":3}
]`

	records, err := collectRecords(t, input)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "a", records[0].Name)
	assert.Equal(t, "b", records[1].Name)
	assert.Equal(t, "c", records[2].Name)
}

func TestRead_BlankLines_Ignored(t *testing.T) {
	t.Parallel()

	input := "{\"name\":\"a\",\"id\":1}\n\n\n{\"name\":\"b\",\"id\":2}\n\n"

	records, err := collectRecords(t, input)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRead_EmptyStream_NoRecords(t *testing.T) {
	t.Parallel()

	records, err := collectRecords(t, "")
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = collectRecords(t, "   \n\t\n")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRead_UnknownFields_Ignored(t *testing.T) {
	t.Parallel()

	input := `{"name":"a","id":1,"sessions":["run-1"],"agent_version":"0.8.13"}`

	records, err := collectRecords(t, input)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Name)
}

func TestRead_MissingName_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := collectRecords(t, `{"id":1}`)
	assert.ErrorIs(t, err, record.ErrMissingName)
}

func TestRead_MissingID_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := collectRecords(t, `{"name":"a"}`)
	require.ErrorIs(t, err, record.ErrMissingID)
	assert.Contains(t, err.Error(), "a")
}

func TestRead_MalformedJSON_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := collectRecords(t, `{"name":"a","id":`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode record")
}

func TestRead_VisitError_StopsStream(t *testing.T) {
	t.Parallel()

	errStop := errors.New("stop")
	input := "{\"name\":\"a\",\"id\":1}\n{\"name\":\"b\",\"id\":2}\n"

	visited := 0
	err := record.Read(context.Background(), strings.NewReader(input), func(_ *coverage.UnitRecord) error {
		visited++

		return errStop
	})

	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, 1, visited)
}

func TestRead_CancelledContext_ReturnsError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := record.Read(ctx, strings.NewReader(`{"name":"a","id":1}`), func(_ *coverage.UnitRecord) error {
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadFile_MissingFile_ReturnsError(t *testing.T) {
	t.Parallel()

	err := record.ReadFile(context.Background(), "/nonexistent/records.ndjson", func(_ *coverage.UnitRecord) error {
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open records")
}

func TestReadFile_ErrorNamesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ndjson")
	writeTestFile(t, path, `{"id":9}`)

	err := record.ReadFile(context.Background(), path, func(_ *coverage.UnitRecord) error {
		return nil
	})

	require.ErrorIs(t, err, record.ErrMissingName)
	assert.Contains(t, err.Error(), path)
}
