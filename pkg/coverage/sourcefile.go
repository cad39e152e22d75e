package coverage

import (
	"maps"
	"slices"
	"strings"
)

// sourceFileKeySeparator joins package name and file name into the
// aggregate addressing key.
const sourceFileKeySeparator = "/"

// SourceFileAggregate holds the merged coverage totals for all units
// sharing one source file. Aggregates are created lazily on the first
// contributing unit and never removed.
type SourceFileAggregate struct {
	Name     string   `json:"name"              yaml:"name"`
	Package  string   `json:"package,omitempty" yaml:"package,omitempty"`
	Counters Counters `json:"counters"          yaml:"counters"`

	lines map[int]LineHit
}

// Key returns the (package, file) addressing key. Exactly one aggregate
// exists per key.
func (a *SourceFileAggregate) Key() string {
	return sourceFileKey(a.Package, a.Name)
}

// Lines returns the merged per-line execution detail, ordered by line
// number. The returned slice is a fresh snapshot.
func (a *SourceFileAggregate) Lines() []LineHit {
	lines := make([]LineHit, 0, len(a.lines))
	for _, nr := range slices.Sorted(maps.Keys(a.lines)) {
		lines = append(lines, a.lines[nr])
	}

	return lines
}

// SourceFileAggregator routes unit records into per-source-file
// aggregates. It owns routing and aggregate lifecycle only: counter
// arithmetic lives on the counter types. Not safe for concurrent use.
type SourceFileAggregator struct {
	files map[string]*SourceFileAggregate
}

// NewSourceFileAggregator creates an empty aggregator.
func NewSourceFileAggregator() *SourceFileAggregator {
	return &SourceFileAggregator{files: make(map[string]*SourceFileAggregate)}
}

// Merge accumulates rec's counters into the aggregate addressed by rec's
// (package, file) key, creating the aggregate on first sight. Records
// without a source file are skipped silently: a unit may have no
// associated source, and that is not an error.
func (a *SourceFileAggregator) Merge(rec *UnitRecord) {
	if rec.SourceFile == "" {
		return
	}

	key := sourceFileKey(rec.Package, rec.SourceFile)

	agg, ok := a.files[key]
	if !ok {
		agg = &SourceFileAggregate{
			Name:    rec.SourceFile,
			Package: rec.Package,
			lines:   make(map[int]LineHit),
		}
		a.files[key] = agg
	}

	agg.Counters = agg.Counters.Merge(rec.Counters)
	mergeLineHits(agg.lines, rec.Lines)
}

// Len returns the number of aggregates.
func (a *SourceFileAggregator) Len() int {
	return len(a.files)
}

// SourceFiles returns a key-sorted snapshot of all aggregates.
func (a *SourceFileAggregator) SourceFiles() []*SourceFileAggregate {
	files := make([]*SourceFileAggregate, 0, len(a.files))
	for _, agg := range a.files {
		files = append(files, agg)
	}

	slices.SortFunc(files, func(x, y *SourceFileAggregate) int {
		return strings.Compare(x.Key(), y.Key())
	})

	return files
}

// Lookup returns the aggregate for the (pkg, file) key, or nil when no
// unit contributed to it.
func (a *SourceFileAggregator) Lookup(pkg, file string) *SourceFileAggregate {
	return a.files[sourceFileKey(pkg, file)]
}

// sourceFileKey is unconditional: an empty package still contributes
// the separator, so ("", "a/b") and ("a", "b") stay distinct keys.
func sourceFileKey(pkg, file string) string {
	return pkg + sourceFileKeySeparator + file
}
