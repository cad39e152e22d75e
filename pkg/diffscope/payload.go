// Package diffscope builds the immutable lookup index that scopes
// incremental ("diff") coverage measurement to changed methods. The
// payload is supplied by an external diff provider as a flat list of
// unit changes; the index groups the method-level entries per unit so
// a coverage analyzer can ask "which changes touch this method?".
package diffscope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload reports a diff payload that cannot be decoded into
// the expected shape. The error is fatal for the construction that
// received the payload.
var ErrMalformedPayload = errors.New("malformed diff payload")

// LineSpan is an inclusive range of changed source lines.
type LineSpan struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

// Descriptor is one reported method-level change: the method name plus
// opaque change metadata (change kind, changed line spans). Descriptors
// are carried through the index untouched.
type Descriptor struct {
	MethodName string     `json:"methodName"      yaml:"methodName"`
	Kind       string     `json:"kind,omitempty"  yaml:"kind,omitempty"`
	Lines      []LineSpan `json:"lines,omitempty" yaml:"lines,omitempty"`
}

// UnitChange groups the method-level changes reported for one unit path.
// A nil or empty MethodChanges list carries no actionable information
// for incremental scoping and is dropped during index construction.
type UnitChange struct {
	UnitPath      string       `json:"unitPath"      yaml:"unitPath"`
	MethodChanges []Descriptor `json:"methodChanges" yaml:"methodChanges"`
}

// Payload is the externally supplied flat list of unit changes.
type Payload []UnitChange

// ParsePayload decodes a raw JSON diff payload. Syntactic errors, shape
// violations, and retained entries with an empty unit path or an unnamed
// method change all wrap ErrMalformedPayload: the caller must treat the
// payload, and anything constructed from it, as unusable.
func ParsePayload(raw []byte) (Payload, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedPayload)
	}

	var payload Payload

	err := json.Unmarshal(raw, &payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err)
	}

	err = payload.validate()
	if err != nil {
		return nil, err
	}

	return payload, nil
}

// validate rejects entries the index could not key deterministically.
// Entries with no method changes are legal here; construction drops them.
func (p Payload) validate() error {
	for i, entry := range p {
		if entry.UnitPath == "" {
			return fmt.Errorf("%w: entry %d has no unit path", ErrMalformedPayload, i)
		}

		for j, change := range entry.MethodChanges {
			if change.MethodName == "" {
				return fmt.Errorf("%w: entry %d change %d has no method name",
					ErrMalformedPayload, i, j)
			}
		}
	}

	return nil
}
