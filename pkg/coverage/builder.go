// Package coverage implements the unit -> source-file -> bundle
// aggregation engine at the heart of covscope: a conflict-detecting
// unit registry, source-file merge routing, and named bundle snapshots,
// optionally scoped by a diff index for incremental coverage runs.
//
// The engine is fully synchronous and performs no I/O. One external
// analyzer drives Visit calls sequentially; visit order never affects
// the outcome. Builders are not safe for concurrent use: complete all
// ingestion before running queries, or impose external locking. The
// diff index is immutable after construction and safe for concurrent
// reads.
package coverage

import (
	"github.com/covscope/covscope/pkg/diffscope"
)

// Builder is the aggregation facade. It owns one unit registry, one
// source-file aggregator, and at most one diff index built eagerly from
// the construction payload.
type Builder struct {
	registry   *UnitRegistry
	aggregator *SourceFileAggregator
	diff       *diffscope.Index
}

// NewBuilder creates a builder in full-coverage mode: no diff index, no
// incremental scoping.
func NewBuilder() *Builder {
	return &Builder{
		registry:   NewUnitRegistry(),
		aggregator: NewSourceFileAggregator(),
	}
}

// NewBuilderWithDiff creates a builder whose diff index is parsed
// eagerly from the raw JSON payload. A malformed payload fails
// construction with diffscope.ErrMalformedPayload and no usable builder
// is returned. An empty payload slice yields full-coverage mode.
func NewBuilderWithDiff(payload []byte) (*Builder, error) {
	builder := NewBuilder()

	if len(payload) == 0 {
		return builder, nil
	}

	index, err := diffscope.ParseIndex(payload)
	if err != nil {
		return nil, err
	}

	builder.diff = index

	return builder, nil
}

// Visit ingests one unit record. The record is registered and, on its
// first successful registration only, merged into the source-file
// aggregate for its (package, file) key. A duplicate visit with a
// matching identity is a no-op. A same-named record with a different
// identity returns the registry's *ConflictError: prior state is
// unaffected and the builder stays usable for subsequent visits.
func (b *Builder) Visit(rec *UnitRecord) error {
	added, err := b.registry.Register(rec)
	if err != nil {
		return err
	}

	if added {
		b.aggregator.Merge(rec)
	}

	return nil
}

// Len returns the number of distinct units registered so far.
func (b *Builder) Len() int {
	return b.registry.Len()
}

// Units returns a name-sorted snapshot of all visited units.
func (b *Builder) Units() []*UnitRecord {
	return b.registry.Units()
}

// SourceFiles returns a key-sorted snapshot of all source-file
// aggregates.
func (b *Builder) SourceFiles() []*SourceFileAggregate {
	return b.aggregator.SourceFiles()
}

// SourceFile returns the aggregate for the (pkg, file) key, or nil when
// no visited unit contributed to it.
func (b *Builder) SourceFile(pkg, file string) *SourceFileAggregate {
	return b.aggregator.Lookup(pkg, file)
}

// NoMatchUnits returns the visited units whose coverage data the
// analyzer flagged as non-matching.
func (b *Builder) NoMatchUnits() []*UnitRecord {
	return b.registry.NoMatchUnits()
}

// Bundle assembles a named snapshot of the current registry and
// aggregator contents.
func (b *Builder) Bundle(name string) *Bundle {
	return assembleBundle(name, b.registry, b.aggregator)
}

// DiffIndex returns the index built from the construction payload, or
// nil in full-coverage mode. The index is owned by this builder and
// passed explicitly to whatever analyzer scopes its measurement with
// it; there is no ambient shared handle.
func (b *Builder) DiffIndex() *diffscope.Index {
	return b.diff
}
