package coverage

// UnitID is the opaque identity token of an analyzed unit, typically a
// content fingerprint computed by the analyzer. IDs are compared for
// equality only, never ordered.
type UnitID uint64

// UnitRecord is the coverage measurement for one analyzed compiled unit
// (e.g. a class), produced by the external analyzer. A record is
// immutable once visited.
//
// Name is the unique registry key. Two records sharing a Name must
// share an ID, or registration fails with a ConflictError. SourceFile
// is empty when the unit has no associated source; such units are
// registered but never contribute to a source-file aggregate. NoMatch
// is a passthrough flag set by the analyzer when its execution data did
// not match the analyzed unit.
type UnitRecord struct {
	Name       string    `json:"name"              yaml:"name"`
	ID         UnitID    `json:"id"                yaml:"id"`
	Package    string    `json:"package,omitempty" yaml:"package,omitempty"`
	SourceFile string    `json:"file,omitempty"    yaml:"file,omitempty"`
	Counters   Counters  `json:"counters"          yaml:"counters"`
	Lines      []LineHit `json:"lines,omitempty"   yaml:"lines,omitempty"`
	NoMatch    bool      `json:"nomatch,omitempty" yaml:"nomatch,omitempty"`
}
