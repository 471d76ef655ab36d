package viz

import (
	"strings"
	"testing"

	"github.com/anythingbutmetric/abm/internal/edge"
	"github.com/anythingbutmetric/abm/internal/snapshot"
	"github.com/anythingbutmetric/abm/internal/unit"
)

func vizSnapshot() *snapshot.Snapshot {
	return snapshot.New("test",
		[]unit.Unit{
			{ID: "blue_whale", Label: "Blue Whale", Emoji: "🐋"},
			{ID: "double_decker_bus", Label: "Double-Decker Bus"},
			{ID: "mars_rover", Label: "Mars Rover"},
		},
		[]edge.Edge{
			{ID: "e001", From: "blue_whale", To: "double_decker_bus", Factor: 3.5,
				SourceURL: "https://example.com", SourceQuote: "q", Verified: true},
			{ID: "e002", From: "blue_whale", To: "phantom", Factor: 2,
				SourceURL: "https://example.com", SourceQuote: "q"},
		},
	)
}

func TestBuildGraph(t *testing.T) {
	g := BuildGraph(vizSnapshot())

	// Three catalogue units plus the uncatalogued edge endpoint
	if len(g.Nodes) != 4 {
		t.Fatalf("got %d nodes, want 4", len(g.Nodes))
	}
	if len(g.Edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(g.Edges))
	}

	byID := make(map[string]Node)
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	whale := byID["blue_whale"]
	if whale.Degree != 2 {
		t.Errorf("blue_whale degree = %d, want 2", whale.Degree)
	}
	if !strings.HasPrefix(whale.Label, "🐋 ") {
		t.Errorf("emoji not prefixed: %q", whale.Label)
	}

	// The connected cluster is island 0; the edgeless unit is not
	if whale.Island != 0 {
		t.Errorf("blue_whale island = %d, want 0", whale.Island)
	}
	if byID["mars_rover"].Island == 0 {
		t.Error("edgeless unit assigned to the main island")
	}

	// Uncatalogued endpoints fall back to the raw id as label
	if byID["phantom"].Label != "phantom" {
		t.Errorf("phantom label = %q", byID["phantom"].Label)
	}
}

func TestToCytoscapeJSON(t *testing.T) {
	g := BuildGraph(vizSnapshot())
	out, err := g.ToCytoscapeJSON()
	if err != nil {
		t.Fatalf("ToCytoscapeJSON() error: %v", err)
	}
	for _, want := range []string{`"id":"blue_whale"`, `"source":"blue_whale"`, `"verified":true`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON missing %s", want)
		}
	}
}

func TestGenerateHTML(t *testing.T) {
	g := BuildGraph(vizSnapshot())

	html, err := GenerateHTML(g, DefaultOptions())
	if err != nil {
		t.Fatalf("GenerateHTML() error: %v", err)
	}
	if !strings.Contains(html, "cytoscape") {
		t.Error("generated page does not reference cytoscape")
	}
	if !strings.Contains(html, "blue_whale") {
		t.Error("generated page missing graph data")
	}
}

func TestGenerateHTML_InvalidLayout(t *testing.T) {
	g := BuildGraph(vizSnapshot())
	if _, err := GenerateHTML(g, HTMLOptions{Layout: "spiral"}); err == nil {
		t.Error("GenerateHTML() accepted invalid layout")
	}
}

func TestGenerateHTML_EmptyGraph(t *testing.T) {
	html, err := GenerateHTML(&GraphData{}, DefaultOptions())
	if err != nil {
		t.Fatalf("GenerateHTML() error: %v", err)
	}
	if html == "" {
		t.Error("empty graph produced no page")
	}
}
