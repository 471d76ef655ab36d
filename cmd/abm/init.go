package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/anythingbutmetric/abm/internal/config"
	"github.com/anythingbutmetric/abm/internal/edge"
	"github.com/anythingbutmetric/abm/internal/storage"
	"github.com/anythingbutmetric/abm/internal/unit"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Initialize a new unit repository",
	Long: `Initialize a new repository for units and comparison edges.

Creates the data directory with empty units.json and edges.json files,
an empty feeds.txt for scraper sources, and the cache directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err := filepath.Abs(config.ExpandTilde(target))
	if err != nil {
		exitWithError(ExitError, "resolving path: %v", err)
	}

	if config.IsRepository(target) {
		exitWithError(ExitError, "repository already exists at %s", target)
	}

	dataDir := filepath.Join(target, config.DataDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		exitWithError(ExitError, "creating data directory: %v", err)
	}
	if err := os.MkdirAll(config.CachePath(target), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	if err := storage.WriteUnits(config.UnitsPath(target), []unit.Unit{}); err != nil {
		exitWithError(ExitError, "writing units file: %v", err)
	}
	if err := storage.WriteEdges(config.EdgesPath(target), []edge.Edge{}); err != nil {
		exitWithError(ExitError, "writing edges file: %v", err)
	}

	feedsPath := config.FeedsPath(target)
	if _, err := os.Stat(feedsPath); os.IsNotExist(err) {
		header := "# One feed URL per line. Lines starting with # are ignored.\n"
		if err := os.WriteFile(feedsPath, []byte(header), 0644); err != nil {
			exitWithError(ExitError, "writing feeds file: %v", err)
		}
	}

	if humanOutput {
		fmt.Printf("Initialized empty repository at %s\n", target)
		return nil
	}
	return outputJSON(StatusResponse{Status: "initialized", Path: target})
}
