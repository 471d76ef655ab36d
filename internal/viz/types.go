// Package viz renders the conversion graph as an interactive HTML page.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node represents a unit in the graph.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Emoji string `json:"emoji,omitempty"`

	// Sizing: how many edges touch this unit.
	Degree int `json:"degree"`

	// 0 is the main graph; higher values are smaller islands, tinted so
	// conversion gaps stand out.
	Island int `json:"island"`
}

// Edge represents one conversion claim between two units.
type Edge struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Factor   float64 `json:"factor"`
	Quote    string  `json:"quote"`
	Verified bool    `json:"verified"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
