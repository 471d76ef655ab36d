// Package snapshot defines the immutable dataset snapshot the query core
// operates on, and a build-once cache of derived graph indexes.
package snapshot

import (
	"github.com/anythingbutmetric/abm/internal/edge"
	"github.com/anythingbutmetric/abm/internal/unit"
)

// Snapshot is one immutable (units, edges) pair for a named dataset
// variant. A snapshot never changes after construction; a data reload
// produces a fresh Snapshot rather than mutating an existing one.
type Snapshot struct {
	Name  string
	Units []unit.Unit
	Edges []edge.Edge
}

// New constructs a named snapshot. The slices are taken over by the
// snapshot and must not be mutated by the caller afterwards.
func New(name string, units []unit.Unit, edges []edge.Edge) *Snapshot {
	return &Snapshot{Name: name, Units: units, Edges: edges}
}

// UnitsByID returns an id -> unit lookup for the catalogue.
func (s *Snapshot) UnitsByID() map[string]unit.Unit {
	return unit.ByID(s.Units)
}
