package diffscope

import (
	"slices"
	"strings"
)

// Index is the immutable lookup from (unit path, method name) to the
// change descriptors grouped under that name. Method names are not
// unique under overloading, so the grouped list holds every descriptor
// sharing the name within one unit, in payload order: consumers must
// treat a multi-entry result as "all overloads of this name", never as
// the one matching overload.
//
// An Index never changes after construction and is safe for concurrent
// reads.
type Index struct {
	units map[string]map[string][]Descriptor
}

// NewIndex groups the payload's method changes by unit path and method
// name. Top-level entries whose method-change list is nil or empty are
// dropped here and never appear in any query.
func NewIndex(payload Payload) *Index {
	units := make(map[string]map[string][]Descriptor, len(payload))

	for _, entry := range payload {
		if len(entry.MethodChanges) == 0 {
			continue
		}

		byName, ok := units[entry.UnitPath]
		if !ok {
			byName = make(map[string][]Descriptor, len(entry.MethodChanges))
			units[entry.UnitPath] = byName
		}

		for _, change := range entry.MethodChanges {
			byName[change.MethodName] = append(byName[change.MethodName], change)
		}
	}

	return &Index{units: units}
}

// ParseIndex builds an Index straight from a raw JSON payload. It fails
// with ErrMalformedPayload exactly as ParsePayload does.
func ParseIndex(raw []byte) (*Index, error) {
	payload, err := ParsePayload(raw)
	if err != nil {
		return nil, err
	}

	return NewIndex(payload), nil
}

// Lookup returns the descriptors grouped under methodName within
// unitPath, or nil when either key is absent. The returned slice is a
// copy; mutating it does not affect the index.
func (ix *Index) Lookup(unitPath, methodName string) []Descriptor {
	byName, ok := ix.units[unitPath]
	if !ok {
		return nil
	}

	return slices.Clone(byName[methodName])
}

// Contains reports whether unitPath holds at least one indexed method
// change.
func (ix *Index) Contains(unitPath string) bool {
	_, ok := ix.units[unitPath]

	return ok
}

// Units returns the sorted unit paths holding at least one indexed
// method change.
func (ix *Index) Units() []string {
	paths := make([]string, 0, len(ix.units))
	for path := range ix.units {
		paths = append(paths, path)
	}

	slices.SortFunc(paths, strings.Compare)

	return paths
}

// Methods returns the sorted method names indexed under unitPath, or
// nil when the unit path is absent.
func (ix *Index) Methods(unitPath string) []string {
	byName, ok := ix.units[unitPath]
	if !ok {
		return nil
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}

	slices.SortFunc(names, strings.Compare)

	return names
}

// Len returns the number of units with indexed changes.
func (ix *Index) Len() int {
	return len(ix.units)
}
