package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/covscope/covscope/internal/record"
	"github.com/covscope/covscope/internal/report"
	"github.com/covscope/covscope/pkg/coverage"
)

// handleFileCoverage processes file_coverage tool calls.
func handleFileCoverage(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input FileCoverageInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.RecordFile == "" {
		return errorResult(ErrEmptyRecordFile)
	}

	if input.Path == "" {
		return errorResult(ErrEmptyPath)
	}

	builder := coverage.NewBuilder()

	_, err := record.Load(ctx, builder, []string{input.RecordFile}, record.SkipConflicts)
	if err != nil {
		return errorResult(fmt.Errorf("load records: %w", err))
	}

	doc := report.BuildDocument(builder.Bundle(filepath.Base(input.RecordFile)))

	row, ok := findFileRow(doc, input.Path)
	if !ok {
		return errorResult(fmt.Errorf("%w: %s", ErrUnknownSourceFile, input.Path))
	}

	return jsonResult(row)
}

// findFileRow matches path against each row's package-qualified key, then
// its bare name. Rows are key-sorted, so a bare-name match on a file
// present in several packages resolves to the first package.
func findFileRow(doc *report.Document, path string) (report.FileRow, bool) {
	for _, row := range doc.SourceFiles {
		if row.Package+"/"+row.Name == path {
			return row, true
		}
	}

	for _, row := range doc.SourceFiles {
		if row.Name == path {
			return row, true
		}
	}

	return report.FileRow{}, false
}
