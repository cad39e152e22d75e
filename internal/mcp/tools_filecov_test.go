package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/covscope/covscope/internal/report"
)

func TestHandleFileCoverage_QualifiedPath(t *testing.T) {
	t.Parallel()

	records := writeTempFile(t, "records.ndjson", sampleRecords)

	result, output, err := handleFileCoverage(context.Background(), &mcpsdk.CallToolRequest{}, FileCoverageInput{
		RecordFile: records,
		Path:       "com/example/Main.java",
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	row, ok := output.Data.(report.FileRow)
	require.True(t, ok)

	assert.Equal(t, "com/example", row.Package)
	assert.Equal(t, "Main.java", row.Name)
	assert.Equal(t, 8, row.Summary.Lines.Covered)
	assert.Equal(t, []int{4}, row.UncoveredLines)
}

func TestHandleFileCoverage_BareName(t *testing.T) {
	t.Parallel()

	records := writeTempFile(t, "records.ndjson", sampleRecords)

	result, output, err := handleFileCoverage(context.Background(), &mcpsdk.CallToolRequest{}, FileCoverageInput{
		RecordFile: records,
		Path:       "Util.java",
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	row, ok := output.Data.(report.FileRow)
	require.True(t, ok)
	assert.Equal(t, "Util.java", row.Name)
}

func TestHandleFileCoverage_UnknownPath(t *testing.T) {
	t.Parallel()

	records := writeTempFile(t, "records.ndjson", sampleRecords)

	result, _, err := handleFileCoverage(context.Background(), &mcpsdk.CallToolRequest{}, FileCoverageInput{
		RecordFile: records,
		Path:       "com/example/Absent.java",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "no coverage recorded")
}

func TestHandleFileCoverage_EmptyPath(t *testing.T) {
	t.Parallel()

	records := writeTempFile(t, "records.ndjson", sampleRecords)

	result, _, err := handleFileCoverage(context.Background(), &mcpsdk.CallToolRequest{}, FileCoverageInput{
		RecordFile: records,
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "path parameter is required")
}
