package report

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/covscope/covscope/pkg/safeconv"
)

const (
	// BinaryMagic marks covscope binary report envelopes.
	BinaryMagic = "CVB1"
	// binaryHeaderSize is magic bytes + payload length bytes.
	binaryHeaderSize = 8
)

var (
	// ErrInvalidBinaryEnvelope indicates a malformed or truncated binary report.
	ErrInvalidBinaryEnvelope = errors.New("invalid binary envelope")
	// ErrBinaryPayloadTooLarge indicates the payload exceeds the envelope limit.
	ErrBinaryPayloadTooLarge = errors.New("binary payload too large")
)

// EncodeBinaryEnvelope serializes value with msgpack and wraps it in a
// length-prefixed envelope.
func EncodeBinaryEnvelope(value any, writer io.Writer) error {
	payload, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal binary payload: %w", err)
	}

	if len(payload) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes", ErrBinaryPayloadTooLarge, len(payload))
	}

	header := make([]byte, binaryHeaderSize)
	copy(header[:4], BinaryMagic)
	binary.LittleEndian.PutUint32(header[4:], safeconv.MustIntToUint32(len(payload)))

	_, err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("write binary header: %w", err)
	}

	_, err = writer.Write(payload)
	if err != nil {
		return fmt.Errorf("write binary payload: %w", err)
	}

	return nil
}

// DecodeBinaryEnvelope extracts the msgpack payload from a binary
// envelope.
func DecodeBinaryEnvelope(reader io.Reader) ([]byte, error) {
	header := make([]byte, binaryHeaderSize)

	_, err := io.ReadFull(reader, header)
	if err != nil {
		return nil, errors.Join(ErrInvalidBinaryEnvelope, err)
	}

	if !bytes.Equal(header[:4], []byte(BinaryMagic)) {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidBinaryEnvelope)
	}

	payloadLen := binary.LittleEndian.Uint32(header[4:])
	payload := make([]byte, payloadLen)

	_, err = io.ReadFull(reader, payload)
	if err != nil {
		return nil, errors.Join(ErrInvalidBinaryEnvelope, err)
	}

	return payload, nil
}

// DecodeDocument reads one binary envelope and unmarshals the report
// document inside.
func DecodeDocument(reader io.Reader) (*Document, error) {
	payload, err := DecodeBinaryEnvelope(reader)
	if err != nil {
		return nil, err
	}

	var doc Document

	unmarshalErr := msgpack.Unmarshal(payload, &doc)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal binary document: %w", unmarshalErr)
	}

	return &doc, nil
}
