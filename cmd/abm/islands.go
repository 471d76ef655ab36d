package main

import (
	"strings"

	"github.com/anythingbutmetric/abm/internal/graph"
	"github.com/anythingbutmetric/abm/internal/unit"
	"github.com/spf13/cobra"
)

var islandsSeed bool

func init() {
	islandsCmd.Flags().BoolVar(&islandsSeed, "seed", false, "Inspect the seed snapshot instead of the live dataset")
	rootCmd.AddCommand(islandsCmd)
}

var islandsCmd = &cobra.Command{
	Use:   "islands",
	Short: "List the disconnected clusters of the comparison graph",
	Long: `List the connected components ("islands") of the comparison graph,
largest first. Units in different islands cannot be converted into each
other; a second island is a gap in the dataset waiting for a bridging
comparison.`,
	Args: cobra.NoArgs,
	RunE: runIslands,
}

// IslandsResult is the response for the islands command.
type IslandsResult struct {
	Count   int        `json:"count"`
	Islands [][]string `json:"islands"`
}

func runIslands(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	snap := mustLoadSnapshot(repoRoot, islandsSeed)

	islands := graph.AllIslands(snap)
	if islands == nil {
		islands = [][]string{}
	}

	if !humanOutput {
		return outputJSON(IslandsResult{Count: len(islands), Islands: islands})
	}

	if len(islands) == 0 {
		outputHuman("No units in the dataset.\n")
		return nil
	}
	byID := snap.UnitsByID()
	outputHuman("%d island(s):\n", len(islands))
	for i, isl := range islands {
		labels := make([]string, len(isl))
		for j, id := range isl {
			labels[j] = unit.DisplayLabel(byID, id)
		}
		outputHuman("  [%d] %d unit(s): %s\n", i, len(isl), strings.Join(labels, ", "))
	}
	return nil
}
