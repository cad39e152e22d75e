// Package record reads and writes unit coverage record files: NDJSON or
// a single JSON array, optionally LZ4 compressed, as produced by the
// external coverage analyzer.
package record

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/covscope/covscope/pkg/coverage"
)

// lz4Extension selects transparent LZ4 frame compression on record files.
const lz4Extension = ".lz4"

// Sentinel errors for record stream handling.
var (
	// ErrMissingName indicates a record without the required name field.
	ErrMissingName = errors.New("record missing name")
	// ErrMissingID indicates a record without the required id field.
	ErrMissingID = errors.New("record missing id")
)

// VisitFunc receives each decoded record in stream order. Returning an
// error stops the read and surfaces the error to the caller.
type VisitFunc func(rec *coverage.UnitRecord) error

// ReadFile opens path and streams its records into visit. A ".lz4"
// suffix selects transparent decompression.
func ReadFile(ctx context.Context, path string, visit VisitFunc) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open records: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, lz4Extension) {
		reader = lz4.NewReader(file)
	}

	readErr := Read(ctx, reader, visit)
	if readErr != nil {
		return fmt.Errorf("%s: %w", path, readErr)
	}

	return nil
}

// Read streams unit records from r into visit. The stream is either
// NDJSON (one record per line, blank lines ignored) or a single JSON
// array of records; the first non-whitespace byte decides. Unknown
// fields are ignored. A record missing its name or id is malformed and
// aborts the read.
func Read(ctx context.Context, r io.Reader, visit VisitFunc) error {
	buffered := bufio.NewReader(r)

	first, peekErr := firstContentByte(buffered)
	if peekErr != nil {
		if errors.Is(peekErr, io.EOF) {
			return nil
		}

		return fmt.Errorf("read records: %w", peekErr)
	}

	decoder := json.NewDecoder(buffered)

	if first == '[' {
		return readArray(ctx, decoder, visit)
	}

	return readStream(ctx, decoder, visit)
}

// firstContentByte returns the first non-whitespace byte of r without
// consuming it.
func firstContentByte(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		if b == ' ' || b == '\t' || b == '\r' || b == '\n' {
			continue
		}

		unreadErr := r.UnreadByte()
		if unreadErr != nil {
			return 0, unreadErr
		}

		return b, nil
	}
}

func readArray(ctx context.Context, decoder *json.Decoder, visit VisitFunc) error {
	_, err := decoder.Token()
	if err != nil {
		return fmt.Errorf("decode records: %w", err)
	}

	for decoder.More() {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		visitErr := decodeNext(decoder, visit)
		if visitErr != nil {
			return visitErr
		}
	}

	_, err = decoder.Token()
	if err != nil {
		return fmt.Errorf("decode records: %w", err)
	}

	return nil
}

func readStream(ctx context.Context, decoder *json.Decoder, visit VisitFunc) error {
	for {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		visitErr := decodeNext(decoder, visit)
		if visitErr != nil {
			if errors.Is(visitErr, io.EOF) {
				return nil
			}

			return visitErr
		}
	}
}

// decodeNext decodes one record, validates its identity fields, and
// hands it to visit. A zero id counts as missing.
func decodeNext(decoder *json.Decoder, visit VisitFunc) error {
	var rec coverage.UnitRecord

	err := decoder.Decode(&rec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}

		return fmt.Errorf("decode record: %w", err)
	}

	if rec.Name == "" {
		return ErrMissingName
	}

	if rec.ID == 0 {
		return fmt.Errorf("%w: %s", ErrMissingID, rec.Name)
	}

	return visit(&rec)
}
