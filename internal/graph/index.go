// Package graph implements the conversion graph core: the adjacency
// index built from a snapshot, all-shortest-path route finding, and
// connected-component (island) analysis.
package graph

import (
	"github.com/anythingbutmetric/abm/internal/edge"
	"github.com/anythingbutmetric/abm/internal/snapshot"
	"github.com/anythingbutmetric/abm/internal/unit"
)

// Arc is one traversable adjacency entry. Forward reports whether the
// underlying edge's factor applies as stored (the arc originates from
// edge.From) or must be inverted (the arc is the reverse direction).
type Arc struct {
	Neighbor string
	EdgeID   string
	Forward  bool
}

// pairKey is an unordered unit id pair.
type pairKey struct {
	a, b string
}

func newPairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Index is the read-only adjacency structure derived from one snapshot.
// Built once per snapshot and shared by all queries against it.
type Index struct {
	adj       map[string][]Arc
	edgesByID map[string]edge.Edge
	pairEdges map[pairKey][]edge.Edge
	unitsByID map[string]unit.Unit
}

// BuildIndex builds an Index from a snapshot. Every edge contributes two
// arcs, realizing undirected traversal. Edges referencing unknown unit
// ids still produce arcs; such ids participate in queries as opaque
// nodes and label resolution falls back to the raw id.
func BuildIndex(s *snapshot.Snapshot) *Index {
	idx := &Index{
		adj:       make(map[string][]Arc),
		edgesByID: make(map[string]edge.Edge, len(s.Edges)),
		pairEdges: make(map[pairKey][]edge.Edge),
		unitsByID: unit.ByID(s.Units),
	}
	for _, e := range s.Edges {
		idx.edgesByID[e.ID] = e
		key := newPairKey(e.From, e.To)
		idx.pairEdges[key] = append(idx.pairEdges[key], e)
		idx.adj[e.From] = append(idx.adj[e.From], Arc{Neighbor: e.To, EdgeID: e.ID, Forward: true})
		idx.adj[e.To] = append(idx.adj[e.To], Arc{Neighbor: e.From, EdgeID: e.ID, Forward: false})
	}
	return idx
}

// Arcs returns the adjacency entries for a unit id in insertion order.
// The returned slice is shared and must not be mutated.
func (idx *Index) Arcs(id string) []Arc {
	return idx.adj[id]
}

// HasNode reports whether the id participates in at least one edge.
func (idx *Index) HasNode(id string) bool {
	_, ok := idx.adj[id]
	return ok
}

// EdgeByID looks up an edge by id.
func (idx *Index) EdgeByID(id string) (edge.Edge, bool) {
	e, ok := idx.edgesByID[id]
	return e, ok
}

// EdgesForPair returns all edges between the unordered pair {a, b}, in
// the snapshot's original enumeration order. Multiple edges for one pair
// are conflicting claims and are all preserved; the first listed is the
// primary by convention.
func (idx *Index) EdgesForPair(a, b string) []edge.Edge {
	return idx.pairEdges[newPairKey(a, b)]
}

// Label resolves a unit id to its display label, falling back to the
// raw id for unknown units.
func (idx *Index) Label(id string) string {
	return unit.DisplayLabel(idx.unitsByID, id)
}
