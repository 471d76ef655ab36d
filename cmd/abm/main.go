// Package main provides the abm CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/anythingbutmetric/abm/internal/config"
	"github.com/anythingbutmetric/abm/internal/snapshot"
	"github.com/anythingbutmetric/abm/internal/storage"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "abm",
	Short: "Convert between informal units via sourced journalistic comparisons",
	Long: `abm converts a quantity of one informal unit (e.g. "Blue Whale") into
another (e.g. "Double-Decker Bus") by chaining sourced journalistic
comparisons, and reports every alternative shortest chain with the
citations that justify each step.

Core features:
  - Conversion queries over the comparison graph, with all shortest routes
  - Island detection: disconnected clusters are conversion gaps to bridge
  - RSS scraping with LLM comparison extraction to grow the dataset
  - Interactive HTML visualization of the whole graph

Data is stored in git-versionable JSON with an ephemeral SQLite cache for
queries. Commands output JSON by default for scripting and automation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// getStartingDirectory returns the directory to start searching for a
// repository. Checks global config repo_path first, then current working
// directory.
func getStartingDirectory() (string, int) {
	if root := config.GetRepoPath(); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	repoRoot, err := config.FindRepository(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return repoRoot
}

// mustOpenDatabase opens the SQLite query cache, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadSnapshot loads the live (or, with seed=true, the seed)
// snapshot from the repository's JSON files, exits on error.
func mustLoadSnapshot(repoRoot string, seed bool) *snapshot.Snapshot {
	name := "live"
	unitsPath := config.UnitsPath(repoRoot)
	edgesPath := config.EdgesPath(repoRoot)
	if seed {
		name = "seed"
		unitsPath = config.SeedUnitsPath(repoRoot)
		edgesPath = config.SeedEdgesPath(repoRoot)
	}

	s, err := storage.LoadSnapshot(name, unitsPath, edgesPath)
	if err != nil {
		exitWithError(ExitDataError, "loading %s snapshot: %v", name, err)
	}
	return s
}
