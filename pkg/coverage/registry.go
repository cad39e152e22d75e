package coverage

import (
	"fmt"
	"slices"
	"strings"
)

// ConflictError reports two visited units sharing a name but not an
// identity token. The first-registered record stays in place; the
// attempted record is rejected with no side effects. Callers inspect
// the conflict via errors.As.
type ConflictError struct {
	Existing  *UnitRecord
	Attempted *UnitRecord
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("unit %q identity conflict: existing id %d, attempted id %d",
		e.Existing.Name, e.Existing.ID, e.Attempted.ID)
}

// UnitRegistry deduplicates unit records by name and detects identity
// conflicts. Not safe for concurrent use; see Builder for the usage
// contract.
type UnitRegistry struct {
	units map[string]*UnitRecord
}

// NewUnitRegistry creates an empty registry.
func NewUnitRegistry() *UnitRegistry {
	return &UnitRegistry{units: make(map[string]*UnitRecord)}
}

// Register inserts rec and reports added=true when no entry existed for
// its name. A record matching an existing entry's identity is an
// idempotent re-registration: added=false, no error, no side effects.
// A record with a different identity under an existing name returns a
// *ConflictError and leaves the registry unchanged.
func (r *UnitRegistry) Register(rec *UnitRecord) (bool, error) {
	existing, ok := r.units[rec.Name]
	if !ok {
		r.units[rec.Name] = rec

		return true, nil
	}

	if existing.ID != rec.ID {
		return false, &ConflictError{Existing: existing, Attempted: rec}
	}

	return false, nil
}

// Len returns the number of registered units.
func (r *UnitRegistry) Len() int {
	return len(r.units)
}

// Units returns a name-sorted snapshot of all registered units.
func (r *UnitRegistry) Units() []*UnitRecord {
	units := make([]*UnitRecord, 0, len(r.units))
	for _, rec := range r.units {
		units = append(units, rec)
	}

	sortUnits(units)

	return units
}

// NoMatchUnits returns a name-sorted snapshot of the registered units
// flagged NoMatch by the analyzer. The flag is carried on the record,
// never computed here.
func (r *UnitRegistry) NoMatchUnits() []*UnitRecord {
	units := make([]*UnitRecord, 0)

	for _, rec := range r.units {
		if rec.NoMatch {
			units = append(units, rec)
		}
	}

	sortUnits(units)

	return units
}

func sortUnits(units []*UnitRecord) {
	slices.SortFunc(units, func(a, b *UnitRecord) int {
		return strings.Compare(a.Name, b.Name)
	})
}
