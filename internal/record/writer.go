package record

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/covscope/covscope/pkg/coverage"
)

// WriteFile writes records to path as NDJSON. A ".lz4" suffix selects
// transparent compression.
func WriteFile(path string, records []*coverage.UnitRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create records: %w", err)
	}

	writeErr := writeRecords(file, path, records)

	closeErr := file.Close()
	if writeErr != nil {
		return writeErr
	}

	if closeErr != nil {
		return fmt.Errorf("close records: %w", closeErr)
	}

	return nil
}

func writeRecords(file io.Writer, path string, records []*coverage.UnitRecord) error {
	if strings.HasSuffix(path, lz4Extension) {
		lzWriter := lz4.NewWriter(file)

		writeErr := Write(lzWriter, records)
		if writeErr != nil {
			return writeErr
		}

		closeErr := lzWriter.Close()
		if closeErr != nil {
			return fmt.Errorf("close lz4 stream: %w", closeErr)
		}

		return nil
	}

	return Write(file, records)
}

// Write emits records as NDJSON, one record per line.
func Write(w io.Writer, records []*coverage.UnitRecord) error {
	encoder := json.NewEncoder(w)

	for _, rec := range records {
		err := encoder.Encode(rec)
		if err != nil {
			return fmt.Errorf("encode record %q: %w", rec.Name, err)
		}
	}

	return nil
}
