package main

import (
	"fmt"
	"os"

	"github.com/anythingbutmetric/abm/internal/viz"
	"github.com/spf13/cobra"
)

var vizOutput string
var vizLayout string
var vizSeed bool

func init() {
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Output file path (default: stdout)")
	vizCmd.Flags().StringVar(&vizLayout, "layout", "force", "Layout algorithm: force, circle, or grid")
	vizCmd.Flags().BoolVar(&vizSeed, "seed", false, "Visualize the seed snapshot instead of the live dataset")
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Generate comparison graph visualization",
	Long: `Generate an interactive HTML visualization of the comparison graph.

Units in the main island are blue; units in smaller islands are orange,
so the conversion gaps stand out. Node size tracks edge count. Verified
edges are solid green, unverified ones dashed gray; each edge is labeled
with its conversion factor.

Examples:
  # Generate HTML to stdout
  abm viz > graph.html

  # Generate to file
  abm viz --output graph.html

  # Use circular layout
  abm viz --layout circle --output graph.html`,
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	snap := mustLoadSnapshot(repoRoot, vizSeed)

	graph := viz.BuildGraph(snap)

	// GenerateHTML validates options internally
	opts := viz.HTMLOptions{Layout: vizLayout}
	html, err := viz.GenerateHTML(graph, opts)
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}

	if vizOutput == "" {
		fmt.Print(html)
		return nil
	}
	if err := os.WriteFile(vizOutput, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if humanOutput {
		fmt.Printf("Visualization written to %s\n", vizOutput)
	} else {
		outputJSON(StatusResponse{Status: "written", Path: vizOutput})
	}
	return nil
}
