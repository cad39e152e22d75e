package coverage

// Bundle is a named, read-only composite of the full unit set and the
// full source-file-aggregate set at the moment of assembly, with bundle
// totals computed once. A Bundle is a view, not a store: it has no
// lifecycle beyond the query that produced it and never observes later
// mutations of the builder it came from.
type Bundle struct {
	Name        string                 `json:"name"        yaml:"name"`
	Units       []*UnitRecord          `json:"units"       yaml:"units"`
	SourceFiles []*SourceFileAggregate `json:"sourceFiles" yaml:"sourceFiles"`
	Totals      Counters               `json:"totals"      yaml:"totals"`
}

// assembleBundle snapshots the registry and aggregator into a new
// Bundle value. Pure read: callable repeatedly, no mutation.
func assembleBundle(name string, registry *UnitRegistry, aggregator *SourceFileAggregator) *Bundle {
	units := registry.Units()

	var totals Counters
	for _, rec := range units {
		totals = totals.Merge(rec.Counters)
	}

	return &Bundle{
		Name:        name,
		Units:       units,
		SourceFiles: aggregator.SourceFiles(),
		Totals:      totals,
	}
}
