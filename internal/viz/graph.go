package viz

import (
	"github.com/anythingbutmetric/abm/internal/graph"
	"github.com/anythingbutmetric/abm/internal/snapshot"
	"github.com/anythingbutmetric/abm/internal/unit"
)

// BuildGraph constructs the complete GraphData for a snapshot: one node
// per unit (including units referenced only by edges), sized by degree
// and tagged with its island rank.
func BuildGraph(s *snapshot.Snapshot) *GraphData {
	degrees := degreeCounts(s)
	islandRank := islandRanks(s)

	g := &GraphData{}

	// Catalogue units first, in catalogue order.
	added := make(map[string]bool, len(s.Units))
	for _, u := range s.Units {
		g.Nodes = append(g.Nodes, newUnitNode(u, degrees[u.ID], islandRank[u.ID]))
		added[u.ID] = true
	}

	// Edge endpoints with no catalogue record still get a node so every
	// edge renders; the raw id stands in for the label.
	for _, e := range s.Edges {
		for _, id := range []string{e.From, e.To} {
			if !added[id] {
				g.Nodes = append(g.Nodes, newUnitNode(unit.Unit{ID: id, Label: id}, degrees[id], islandRank[id]))
				added[id] = true
			}
		}
	}

	for _, e := range s.Edges {
		g.Edges = append(g.Edges, Edge{
			ID:       e.ID,
			Source:   e.From,
			Target:   e.To,
			Factor:   e.Factor,
			Quote:    e.SourceQuote,
			Verified: e.Verified,
		})
	}

	return g
}

// degreeCounts counts, per unit id, how many edges touch it.
func degreeCounts(s *snapshot.Snapshot) map[string]int {
	counts := make(map[string]int)
	for _, e := range s.Edges {
		counts[e.From]++
		counts[e.To]++
	}
	return counts
}

// islandRanks maps every unit id to the rank of its island (0 = main graph).
func islandRanks(s *snapshot.Snapshot) map[string]int {
	ranks := make(map[string]int)
	for rank, island := range graph.AllIslands(s) {
		for _, id := range island {
			ranks[id] = rank
		}
	}
	return ranks
}

func newUnitNode(u unit.Unit, degree, island int) Node {
	label := u.Label
	if u.Emoji != "" {
		label = u.Emoji + " " + u.Label
	}
	return Node{
		ID:     u.ID,
		Label:  label,
		Emoji:  u.Emoji,
		Degree: degree,
		Island: island,
	}
}
