package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/covscope/covscope/pkg/coverage"
)

// Tool name constants.
const (
	ToolNameSummary      = "coverage_summary"
	ToolNameFileCoverage = "file_coverage"
	ToolNameDiffMethods  = "diff_methods"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyRecordFile indicates the record_file parameter is empty.
	ErrEmptyRecordFile = errors.New("record_file parameter is required and must not be empty")
	// ErrEmptyPath indicates the path parameter is empty.
	ErrEmptyPath = errors.New("path parameter is required and must not be empty")
	// ErrEmptyPayloadFile indicates the payload_file parameter is empty.
	ErrEmptyPayloadFile = errors.New("payload_file parameter is required and must not be empty")
	// ErrEmptyUnitPath indicates the unit_path parameter is empty.
	ErrEmptyUnitPath = errors.New("unit_path parameter is required and must not be empty")
	// ErrUnknownSourceFile indicates no aggregate exists for the requested path.
	ErrUnknownSourceFile = errors.New("no coverage recorded for source file")
	// ErrUnknownUnitPath indicates the payload holds no changes for the unit path.
	ErrUnknownUnitPath = errors.New("unit path not present in payload")
)

// Input types (auto-generate JSON schemas via struct tags).

// SummaryInput is the input schema for the coverage_summary tool.
type SummaryInput struct {
	RecordFile      string `json:"record_file"                 jsonschema:"path to a unit record file (NDJSON or JSON array, optionally .lz4)"`
	DiffPayloadFile string `json:"diff_payload_file,omitempty" jsonschema:"optional diff payload restricting the summary to changed units"`
}

// FileCoverageInput is the input schema for the file_coverage tool.
type FileCoverageInput struct {
	RecordFile string `json:"record_file" jsonschema:"path to a unit record file (NDJSON or JSON array, optionally .lz4)"`
	Path       string `json:"path"        jsonschema:"source file path, either bare (Main.java) or package-qualified (com/example/Main.java)"`
}

// DiffMethodsInput is the input schema for the diff_methods tool.
type DiffMethodsInput struct {
	PayloadFile string `json:"payload_file"          jsonschema:"path to a diff payload JSON document"`
	UnitPath    string `json:"unit_path"             jsonschema:"unit path to inspect"`
	MethodName  string `json:"method_name,omitempty" jsonschema:"optional method name filter (default: every method of the unit)"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// newBuilder creates a coverage builder, parsing the diff payload file
// into its index when one is given.
func newBuilder(diffPayloadFile string) (*coverage.Builder, error) {
	if diffPayloadFile == "" {
		return coverage.NewBuilder(), nil
	}

	payload, err := os.ReadFile(diffPayloadFile)
	if err != nil {
		return nil, fmt.Errorf("read diff payload: %w", err)
	}

	builder, err := coverage.NewBuilderWithDiff(payload)
	if err != nil {
		return nil, fmt.Errorf("parse diff payload: %w", err)
	}

	return builder, nil
}
