package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/covscope/covscope/internal/record"
	"github.com/covscope/covscope/internal/report"
)

// SummaryResult is the structured output of the coverage_summary tool.
type SummaryResult struct {
	Name       string              `json:"name"`
	Units      int                 `json:"units"`
	Skipped    int                 `json:"skipped,omitempty"`
	DiffScoped bool                `json:"diff_scoped,omitempty"`
	Totals     report.Summary      `json:"totals"`
	Packages   []report.PackageRow `json:"packages"`
}

// handleSummary processes coverage_summary tool calls.
func handleSummary(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input SummaryInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.RecordFile == "" {
		return errorResult(ErrEmptyRecordFile)
	}

	builder, err := newBuilder(input.DiffPayloadFile)
	if err != nil {
		return errorResult(err)
	}

	stats, err := record.Load(ctx, builder, []string{input.RecordFile}, record.SkipConflicts)
	if err != nil {
		return errorResult(fmt.Errorf("load records: %w", err))
	}

	doc := report.BuildDocument(builder.Bundle(filepath.Base(input.RecordFile)))

	return jsonResult(SummaryResult{
		Name:       doc.Name,
		Units:      doc.Units,
		Skipped:    stats.Skipped,
		DiffScoped: builder.DiffIndex() != nil,
		Totals:     doc.Totals,
		Packages:   doc.Packages,
	})
}
