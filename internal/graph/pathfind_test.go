package graph

import (
	"math"
	"testing"

	"github.com/anythingbutmetric/abm/internal/edge"
	"github.com/anythingbutmetric/abm/internal/snapshot"
	"github.com/anythingbutmetric/abm/internal/unit"
)

func testSnapshot(units []string, edges []edge.Edge) *snapshot.Snapshot {
	us := make([]unit.Unit, len(units))
	for i, id := range units {
		us[i] = unit.Unit{ID: id, Label: id}
	}
	return snapshot.New("test", us, edges)
}

func e(id, from, to string, factor float64) edge.Edge {
	return edge.Edge{
		ID:          id,
		From:        from,
		To:          to,
		Factor:      factor,
		SourceURL:   "https://example.com/" + id,
		SourceQuote: "as big as",
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func TestFindRoutes_Direct(t *testing.T) {
	snap := testSnapshot(
		[]string{"blue_whale", "double_decker_bus"},
		[]edge.Edge{e("e001", "blue_whale", "double_decker_bus", 3.5)},
	)
	idx := BuildIndex(snap)

	routes := FindRoutes(idx, "blue_whale", "double_decker_bus", 2, 0)
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
	r := routes[0]
	if r.Label != DirectLabel {
		t.Errorf("Label = %q, want %q", r.Label, DirectLabel)
	}
	if !approx(r.Result, 7) {
		t.Errorf("Result = %g, want 7", r.Result)
	}
	if len(r.Steps) != 1 || r.Steps[0].FromID != "blue_whale" || r.Steps[0].ToID != "double_decker_bus" {
		t.Errorf("unexpected steps: %+v", r.Steps)
	}
}

func TestFindRoutes_ReverseInvertsFactor(t *testing.T) {
	snap := testSnapshot(
		[]string{"blue_whale", "double_decker_bus"},
		[]edge.Edge{e("e001", "blue_whale", "double_decker_bus", 4)},
	)
	idx := BuildIndex(snap)

	routes := FindRoutes(idx, "double_decker_bus", "blue_whale", 1, 0)
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
	if !approx(routes[0].Result, 0.25) {
		t.Errorf("Result = %g, want 0.25", routes[0].Result)
	}
	if !approx(routes[0].Steps[0].Factor, 0.25) {
		t.Errorf("Step factor = %g, want 0.25", routes[0].Steps[0].Factor)
	}
}

// Conversion must be symmetric: the reverse query yields the reciprocal
// result over the same chain.
func TestFindRoutes_Symmetry(t *testing.T) {
	snap := testSnapshot(
		[]string{"a", "b", "c"},
		[]edge.Edge{
			e("e001", "a", "b", 2),
			e("e002", "b", "c", 5),
		},
	)
	idx := BuildIndex(snap)

	fwd := FindRoutes(idx, "a", "c", 1, 0)
	rev := FindRoutes(idx, "c", "a", 1, 0)
	if len(fwd) != 1 || len(rev) != 1 {
		t.Fatalf("got %d forward and %d reverse routes, want 1 each", len(fwd), len(rev))
	}
	if !approx(fwd[0].Result, 10) {
		t.Errorf("forward Result = %g, want 10", fwd[0].Result)
	}
	if !approx(rev[0].Result, 0.1) {
		t.Errorf("reverse Result = %g, want 0.1", rev[0].Result)
	}
	if !approx(fwd[0].Result*rev[0].Result, 1) {
		t.Errorf("forward x reverse = %g, want 1", fwd[0].Result*rev[0].Result)
	}
}

func TestFindRoutes_MultiHopCompounds(t *testing.T) {
	// 1 eiffel_tower = 2 washington_monument, 1 washington_monument =
	// 20001 banana: the chain compounds to 40002 bananas.
	snap := testSnapshot(
		[]string{"eiffel_tower", "washington_monument", "banana"},
		[]edge.Edge{
			e("e001", "eiffel_tower", "washington_monument", 2),
			e("e002", "washington_monument", "banana", 20001),
		},
	)
	idx := BuildIndex(snap)

	routes := FindRoutes(idx, "eiffel_tower", "banana", 1, 0)
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
	r := routes[0]
	if !approx(r.Result, 40002) {
		t.Errorf("Result = %g, want 40002", r.Result)
	}
	if r.Label != "via washington_monument" {
		t.Errorf("Label = %q, want %q", r.Label, "via washington_monument")
	}
	wantNodes := []string{"eiffel_tower", "washington_monument", "banana"}
	if len(r.NodeIDs) != len(wantNodes) {
		t.Fatalf("NodeIDs = %v, want %v", r.NodeIDs, wantNodes)
	}
	for i, id := range wantNodes {
		if r.NodeIDs[i] != id {
			t.Errorf("NodeIDs[%d] = %q, want %q", i, r.NodeIDs[i], id)
		}
	}
}

func TestFindRoutes_SelfQuery(t *testing.T) {
	snap := testSnapshot(
		[]string{"a", "b"},
		[]edge.Edge{e("e001", "a", "b", 2)},
	)
	idx := BuildIndex(snap)
	if routes := FindRoutes(idx, "a", "a", 1, 0); len(routes) != 0 {
		t.Errorf("self-query returned %d routes, want 0", len(routes))
	}
}

func TestFindRoutes_MissingLink(t *testing.T) {
	snap := testSnapshot(
		[]string{"a", "b", "mars_rover"},
		[]edge.Edge{e("e001", "a", "b", 2)},
	)
	idx := BuildIndex(snap)

	// mars_rover has no edges: unreachable from everything
	if routes := FindRoutes(idx, "a", "mars_rover", 1, 0); len(routes) != 0 {
		t.Errorf("got %d routes to edgeless unit, want 0", len(routes))
	}
	if routes := FindRoutes(idx, "a", "nonexistent", 1, 0); len(routes) != 0 {
		t.Errorf("got %d routes to unknown id, want 0", len(routes))
	}
}

func TestFindRoutes_DisconnectedComponents(t *testing.T) {
	snap := testSnapshot(
		[]string{"a", "b", "c", "d"},
		[]edge.Edge{
			e("e001", "a", "b", 2),
			e("e002", "c", "d", 3),
		},
	)
	idx := BuildIndex(snap)
	if routes := FindRoutes(idx, "a", "d", 1, 0); len(routes) != 0 {
		t.Errorf("got %d routes across islands, want 0", len(routes))
	}
}

// All returned routes are shortest: a longer detour never appears.
func TestFindRoutes_OnlyShortest(t *testing.T) {
	snap := testSnapshot(
		[]string{"a", "b", "c", "d"},
		[]edge.Edge{
			e("e001", "a", "b", 2), // direct
			e("e002", "a", "c", 3), // detour hop 1
			e("e003", "c", "d", 4), // detour hop 2
			e("e004", "d", "b", 5), // detour hop 3
		},
	)
	idx := BuildIndex(snap)

	routes := FindRoutes(idx, "a", "b", 1, 0)
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want only the direct one", len(routes))
	}
	if routes[0].Label != DirectLabel {
		t.Errorf("Label = %q, want %q", routes[0].Label, DirectLabel)
	}
}

func TestFindRoutes_AllEquallyShortRoutes(t *testing.T) {
	// Two distinct two-hop paths a-b-d and a-c-d.
	snap := testSnapshot(
		[]string{"a", "b", "c", "d"},
		[]edge.Edge{
			e("e001", "a", "b", 2),
			e("e002", "b", "d", 3),
			e("e003", "a", "c", 4),
			e("e004", "c", "d", 5),
		},
	)
	idx := BuildIndex(snap)

	routes := FindRoutes(idx, "a", "d", 1, 0)
	if len(routes) != 2 {
		t.Fatalf("got %d routes, want 2", len(routes))
	}
	// Same hop count on every route
	for _, r := range routes {
		if len(r.Steps) != 2 {
			t.Errorf("route %d has %d steps, want 2", r.RouteIndex, len(r.Steps))
		}
	}
	// Distinct intermediates, each route indexed by rank
	if routes[0].RouteIndex != 0 || routes[1].RouteIndex != 1 {
		t.Errorf("route indexes = %d, %d, want 0, 1", routes[0].RouteIndex, routes[1].RouteIndex)
	}
	mids := map[string]bool{routes[0].NodeIDs[1]: true, routes[1].NodeIDs[1]: true}
	if !mids["b"] || !mids["c"] {
		t.Errorf("intermediates = %v, want b and c", mids)
	}
}

func TestFindRoutes_MaxRoutesCap(t *testing.T) {
	// Six two-hop paths through m0..m5; the cap keeps only some.
	units := []string{"a", "z", "m0", "m1", "m2", "m3", "m4", "m5"}
	var edges []edge.Edge
	n := 1
	for _, mid := range []string{"m0", "m1", "m2", "m3", "m4", "m5"} {
		edges = append(edges, e(edge.FormatID(n), "a", mid, 2))
		n++
		edges = append(edges, e(edge.FormatID(n), mid, "z", 2))
		n++
	}
	snap := testSnapshot(units, edges)
	idx := BuildIndex(snap)

	if routes := FindRoutes(idx, "a", "z", 1, 0); len(routes) != DefaultMaxRoutes {
		t.Errorf("default cap: got %d routes, want %d", len(routes), DefaultMaxRoutes)
	}
	if routes := FindRoutes(idx, "a", "z", 1, 3); len(routes) != 3 {
		t.Errorf("explicit cap: got %d routes, want 3", len(routes))
	}
	if routes := FindRoutes(idx, "a", "z", 1, 20); len(routes) != 6 {
		t.Errorf("loose cap: got %d routes, want all 6", len(routes))
	}
}

// A step carries every edge recorded for its pair, so conflicting claims
// surface without a second query.
func TestFindRoutes_StepCarriesAllPairEdges(t *testing.T) {
	snap := testSnapshot(
		[]string{"a", "b"},
		[]edge.Edge{
			e("e001", "a", "b", 2),
			e("e002", "a", "b", 3),
			e("e003", "b", "a", 10),
		},
	)
	idx := BuildIndex(snap)

	routes := FindRoutes(idx, "a", "b", 1, 0)
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1 despite parallel edges", len(routes))
	}
	step := routes[0].Steps[0]
	if len(step.Edges) != 3 {
		t.Errorf("step carries %d edges, want all 3 for the pair", len(step.Edges))
	}
	// First-inserted edge supplies the factor
	if !approx(step.Factor, 2) {
		t.Errorf("step factor = %g, want 2 from the primary edge", step.Factor)
	}
	if !approx(routes[0].Result, 2) {
		t.Errorf("Result = %g, want 2", routes[0].Result)
	}
}

// Adding a conflicting parallel edge must not change the route count.
func TestFindRoutes_ConflictingEdgeDoesNotMultiplyRoutes(t *testing.T) {
	base := testSnapshot(
		[]string{"a", "b", "c"},
		[]edge.Edge{
			e("e001", "a", "b", 2),
			e("e002", "b", "c", 3),
		},
	)
	before := FindRoutes(BuildIndex(base), "a", "c", 1, 0)

	withConflict := testSnapshot(
		[]string{"a", "b", "c"},
		[]edge.Edge{
			e("e001", "a", "b", 2),
			e("e002", "b", "c", 3),
			e("e003", "a", "b", 7), // conflicting claim for the same pair
		},
	)
	after := FindRoutes(BuildIndex(withConflict), "a", "c", 1, 0)

	if len(before) != 1 || len(after) != 1 {
		t.Fatalf("got %d routes before and %d after, want 1 each", len(before), len(after))
	}
	if len(after[0].Steps[0].Edges) != 2 {
		t.Errorf("first step carries %d edges, want 2", len(after[0].Steps[0].Edges))
	}
	if !approx(after[0].Result, 6) {
		t.Errorf("Result = %g, want 6 (primary edge factor)", after[0].Result)
	}
}

// Self-loop edges load but never contribute routes.
func TestFindRoutes_SelfLoopInert(t *testing.T) {
	snap := testSnapshot(
		[]string{"a", "b"},
		[]edge.Edge{
			e("e001", "a", "a", 5),
			e("e002", "a", "b", 2),
		},
	)
	idx := BuildIndex(snap)

	routes := FindRoutes(idx, "a", "b", 1, 0)
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
	if len(routes[0].Steps) != 1 || !approx(routes[0].Result, 2) {
		t.Errorf("route = %+v, self-loop leaked into the path", routes[0])
	}
}

// Edges may reference units missing from the catalogue; they still route.
func TestFindRoutes_OrphanEndpointsRoute(t *testing.T) {
	snap := testSnapshot(
		[]string{"a"},
		[]edge.Edge{
			e("e001", "a", "phantom", 2),
			e("e002", "phantom", "ghost", 3),
		},
	)
	idx := BuildIndex(snap)

	routes := FindRoutes(idx, "a", "ghost", 1, 0)
	if len(routes) != 1 {
		t.Fatalf("got %d routes through uncatalogued units, want 1", len(routes))
	}
	if !approx(routes[0].Result, 6) {
		t.Errorf("Result = %g, want 6", routes[0].Result)
	}
	// Labels fall back to the raw ids
	if routes[0].Label != "via phantom" {
		t.Errorf("Label = %q, want %q", routes[0].Label, "via phantom")
	}
}
