package record

import (
	"context"
	"errors"

	"github.com/covscope/covscope/pkg/coverage"
)

// ConflictPolicy selects how ingestion reacts to identity conflicts.
type ConflictPolicy int

const (
	// FailOnConflict aborts ingestion at the first identity conflict.
	FailOnConflict ConflictPolicy = iota
	// SkipConflicts continues past conflicting records and collects them
	// for reporting.
	SkipConflicts
)

// Stats counts the outcome of an ingestion run.
type Stats struct {
	// Accepted is the number of records registered as new units.
	Accepted int
	// Duplicates is the number of records re-presenting an already
	// registered identity.
	Duplicates int
	// Skipped is the number of records outside the builder's diff
	// scope.
	Skipped int
	// Conflicts holds the identity conflicts encountered under
	// SkipConflicts.
	Conflicts []*coverage.ConflictError
}

// Load streams every file in paths into builder and returns ingestion
// stats. When the builder carries a diff index, records whose unit path
// is not indexed are skipped, restricting aggregation to changed units.
// Under FailOnConflict the first identity conflict aborts the load with
// the conflict as the error.
func Load(ctx context.Context, builder *coverage.Builder, paths []string, policy ConflictPolicy) (*Stats, error) {
	stats := &Stats{}
	index := builder.DiffIndex()

	for _, path := range paths {
		err := ReadFile(ctx, path, func(rec *coverage.UnitRecord) error {
			if index != nil && !index.Contains(rec.Name) {
				stats.Skipped++

				return nil
			}

			return visitBuilder(builder, rec, policy, stats)
		})
		if err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func visitBuilder(builder *coverage.Builder, rec *coverage.UnitRecord, policy ConflictPolicy, stats *Stats) error {
	before := builder.Len()

	err := builder.Visit(rec)
	if err != nil {
		var conflict *coverage.ConflictError
		if errors.As(err, &conflict) && policy == SkipConflicts {
			stats.Conflicts = append(stats.Conflicts, conflict)

			return nil
		}

		return err
	}

	if builder.Len() > before {
		stats.Accepted++
	} else {
		stats.Duplicates++
	}

	return nil
}
