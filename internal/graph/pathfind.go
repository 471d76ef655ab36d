package graph

import (
	"strings"

	"github.com/anythingbutmetric/abm/internal/edge"
)

// DefaultMaxRoutes caps how many alternative shortest routes a query returns.
const DefaultMaxRoutes = 5

// DirectLabel is the label for a single-hop route.
const DirectLabel = "Direct"

// Route is one materialized shortest path between a queried source and
// target, with the compounded conversion result and evidentiary detail.
type Route struct {
	RouteIndex int      `json:"route_index"` // 0-based rank; stable for color-coding
	Label      string   `json:"label"`       // "Direct" or "via X -> Y"
	Result     float64  `json:"result"`      // quantity x compounded factor
	NodeIDs    []string `json:"node_ids"`
	EdgeIDs    []string `json:"edge_ids"`
	Steps      []Step   `json:"steps"`
}

// Step is one hop of a Route. Factor is direction-resolved: already
// inverted when the hop traversed its edge backwards. Edges holds every
// edge for the hop's unordered pair so conflicting sources can be shown
// without re-running the search.
type Step struct {
	FromID string      `json:"from_id"`
	ToID   string      `json:"to_id"`
	Factor float64     `json:"factor"`
	Edges  []edge.Edge `json:"edges"`
}

// parentLink records one equally-shortest predecessor of a discovered node.
type parentLink struct {
	node string
	arc  Arc
}

// FindRoutes enumerates every shortest path between fromID and toID and
// materializes each into a Route, truncated to maxRoutes (DefaultMaxRoutes
// when maxRoutes <= 0). Self-queries, unknown ids, and unreachable targets
// all return an empty slice: the empty result is the Missing Link signal.
func FindRoutes(idx *Index, fromID, toID string, quantity float64, maxRoutes int) []Route {
	if maxRoutes <= 0 {
		maxRoutes = DefaultMaxRoutes
	}
	if fromID == toID {
		return nil
	}
	if !idx.HasNode(fromID) || !idx.HasNode(toID) {
		return nil
	}

	parents := bfsParents(idx, fromID, toID)
	if parents == nil {
		return nil
	}

	paths := enumeratePaths(parents, fromID, toID, maxRoutes)

	routes := make([]Route, 0, len(paths))
	for i, path := range paths {
		routes = append(routes, materializeRoute(idx, i, path, fromID, quantity))
	}
	return routes
}

// bfsParents runs a level-synchronous BFS from fromID recording, for each
// discovered node, every equally-shortest predecessor. One parent entry is
// kept per distinct predecessor node; when parallel edges connect a pair,
// the first-inserted edge is the one recorded, which keeps route
// enumeration deterministic and the primary-edge convention intact.
// Returns nil when toID is unreachable.
func bfsParents(idx *Index, fromID, toID string) map[string][]parentLink {
	dist := map[string]int{fromID: 0}
	parents := make(map[string][]parentLink)
	queue := []string{fromID}
	targetDist := -1

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := dist[cur]

		// Once the target's level is fixed, deeper frontier nodes cannot
		// contribute another shortest path.
		if targetDist >= 0 && d >= targetDist {
			continue
		}

		for _, arc := range idx.Arcs(cur) {
			nd, seen := dist[arc.Neighbor]
			switch {
			case !seen:
				dist[arc.Neighbor] = d + 1
				parents[arc.Neighbor] = append(parents[arc.Neighbor], parentLink{node: cur, arc: arc})
				queue = append(queue, arc.Neighbor)
				if arc.Neighbor == toID {
					targetDist = d + 1
				}
			case nd == d+1 && !hasParent(parents[arc.Neighbor], cur):
				parents[arc.Neighbor] = append(parents[arc.Neighbor], parentLink{node: cur, arc: arc})
			}
		}
	}

	if _, reached := dist[toID]; !reached {
		return nil
	}
	return parents
}

func hasParent(links []parentLink, node string) bool {
	for _, l := range links {
		if l.node == node {
			return true
		}
	}
	return false
}

// enumeratePaths backtracks from toID through every recorded parent
// combination, depth-first, producing up to maxPaths arc sequences in
// traversal order. Each returned path lists the arcs source-to-target.
func enumeratePaths(parents map[string][]parentLink, fromID, toID string, maxPaths int) [][]Arc {
	var paths [][]Arc
	var reversed []Arc

	var backtrack func(node string)
	backtrack = func(node string) {
		if len(paths) >= maxPaths {
			return
		}
		if node == fromID {
			path := make([]Arc, len(reversed))
			for i, arc := range reversed {
				path[len(reversed)-1-i] = arc
			}
			paths = append(paths, path)
			return
		}
		for _, link := range parents[node] {
			reversed = append(reversed, link.arc)
			backtrack(link.node)
			reversed = reversed[:len(reversed)-1]
			if len(paths) >= maxPaths {
				return
			}
		}
	}
	backtrack(toID)
	return paths
}

// materializeRoute turns one arc path into a Route with node ids, the
// compounded result, per-hop steps, and a display label.
func materializeRoute(idx *Index, rank int, path []Arc, fromID string, quantity float64) Route {
	nodeIDs := make([]string, 0, len(path)+1)
	edgeIDs := make([]string, 0, len(path))
	steps := make([]Step, 0, len(path))

	nodeIDs = append(nodeIDs, fromID)
	result := quantity
	cur := fromID
	for _, arc := range path {
		e, _ := idx.EdgeByID(arc.EdgeID)
		factor := e.Factor
		if !arc.Forward {
			factor = 1 / factor
		}
		result *= factor
		steps = append(steps, Step{
			FromID: cur,
			ToID:   arc.Neighbor,
			Factor: factor,
			Edges:  idx.EdgesForPair(cur, arc.Neighbor),
		})
		edgeIDs = append(edgeIDs, arc.EdgeID)
		nodeIDs = append(nodeIDs, arc.Neighbor)
		cur = arc.Neighbor
	}

	return Route{
		RouteIndex: rank,
		Label:      routeLabel(idx, nodeIDs),
		Result:     result,
		NodeIDs:    nodeIDs,
		EdgeIDs:    edgeIDs,
		Steps:      steps,
	}
}

// routeLabel names a route: "Direct" for one hop, otherwise the
// intermediate units joined by arrows.
func routeLabel(idx *Index, nodeIDs []string) string {
	if len(nodeIDs) == 2 {
		return DirectLabel
	}
	labels := make([]string, 0, len(nodeIDs)-2)
	for _, id := range nodeIDs[1 : len(nodeIDs)-1] {
		labels = append(labels, idx.Label(id))
	}
	return "via " + strings.Join(labels, " → ")
}
