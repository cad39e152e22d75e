package mcp

import (
	"context"
	"fmt"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/covscope/covscope/pkg/diffscope"
)

// MethodGroup carries every change descriptor sharing one method name
// within a unit: all overloads, in payload order.
type MethodGroup struct {
	MethodName string                 `json:"method_name"`
	Changes    []diffscope.Descriptor `json:"changes"`
}

// DiffMethodsResult is the structured output of the diff_methods tool.
type DiffMethodsResult struct {
	UnitPath string        `json:"unit_path"`
	Methods  []MethodGroup `json:"methods"`
}

// handleDiffMethods processes diff_methods tool calls.
func handleDiffMethods(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input DiffMethodsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.PayloadFile == "" {
		return errorResult(ErrEmptyPayloadFile)
	}

	if input.UnitPath == "" {
		return errorResult(ErrEmptyUnitPath)
	}

	raw, err := os.ReadFile(input.PayloadFile)
	if err != nil {
		return errorResult(fmt.Errorf("read payload: %w", err))
	}

	index, err := diffscope.ParseIndex(raw)
	if err != nil {
		return errorResult(err)
	}

	if !index.Contains(input.UnitPath) {
		return errorResult(fmt.Errorf("%w: %s", ErrUnknownUnitPath, input.UnitPath))
	}

	names := index.Methods(input.UnitPath)
	if input.MethodName != "" {
		names = []string{input.MethodName}
	}

	result := DiffMethodsResult{UnitPath: input.UnitPath}

	for _, name := range names {
		descriptors := index.Lookup(input.UnitPath, name)
		if len(descriptors) == 0 {
			continue
		}

		result.Methods = append(result.Methods, MethodGroup{
			MethodName: name,
			Changes:    descriptors,
		})
	}

	return jsonResult(result)
}
