package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/covscope/covscope/pkg/coverage"
)

// Format selects a report encoding.
type Format string

// Supported report formats.
const (
	FormatText   Format = "text"
	FormatTable  Format = "table"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatBinary Format = "binary"
	FormatHTML   Format = "html"
)

// ErrUnsupportedFormat indicates an unknown report format name.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// ParseFormat maps a format name to its Format value.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatText, FormatTable, FormatJSON, FormatYAML, FormatBinary, FormatHTML:
		return Format(name), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// Serialize projects bundle into a report document and renders it in
// the requested format.
func Serialize(bundle *coverage.Bundle, format Format, writer io.Writer) error {
	doc := BuildDocument(bundle)

	switch format {
	case FormatText:
		return writeText(doc, writer)
	case FormatTable:
		return writeTable(doc, writer)
	case FormatJSON:
		return marshalAndWrite(doc, json.Marshal, writer, "json")
	case FormatYAML:
		return marshalAndWrite(doc, yaml.Marshal, writer, "yaml")
	case FormatBinary:
		return EncodeBinaryEnvelope(doc, writer)
	case FormatHTML:
		return writeHTML(doc, writer)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// marshalAndWrite marshals data and writes the result to writer.
func marshalAndWrite(data any, marshal func(any) ([]byte, error), writer io.Writer, label string) error {
	encoded, err := marshal(data)
	if err != nil {
		return fmt.Errorf("%s encode: %w", label, err)
	}

	_, writeErr := writer.Write(encoded)
	if writeErr != nil {
		return fmt.Errorf("%s write: %w", label, writeErr)
	}

	return nil
}
