package main

import (
	"fmt"

	"github.com/anythingbutmetric/abm/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query layer from source data",
	Long: `Rebuild the SQLite query database from the JSON source files.

Use this after pulling changes from git or if the database becomes corrupted.
The JSON files are the source of truth; the database is a disposable cache.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status string `json:"status"`
	Units  int    `json:"units"`
	Edges  int    `json:"edges"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	unitsCount, err := db.RebuildUnitsFromJSON(config.UnitsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding units index: %v", err)
	}

	edgesCount, err := db.RebuildEdgesFromJSON(config.EdgesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding edges index: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database: %d units, %d edges\n", unitsCount, edgesCount)
		return nil
	}
	return outputJSON(RebuildResult{
		Status: "rebuilt",
		Units:  unitsCount,
		Edges:  edgesCount,
	})
}
