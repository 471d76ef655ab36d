package main

import (
	"strconv"

	"github.com/anythingbutmetric/abm/internal/graph"
	"github.com/spf13/cobra"
)

var (
	convertMaxRoutes int
	convertSeed      bool
)

func init() {
	convertCmd.Flags().IntVar(&convertMaxRoutes, "max-routes", graph.DefaultMaxRoutes, "Maximum number of alternative routes to return")
	convertCmd.Flags().BoolVar(&convertSeed, "seed", false, "Query the seed snapshot instead of the live dataset")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert FROM TO [AMOUNT]",
	Short: "Convert between two units via the comparison graph",
	Long: `Convert an amount of one unit into another by chaining sourced
comparisons. Every alternative shortest chain is reported, along with
all competing edges for each hop.

An empty route list means there is no chain of comparisons connecting
the two units (a "missing link"), or that one of the units has no edges.

Examples:
  abm convert eiffel_tower banana
  abm convert blue_whale double_decker_bus 3
  abm convert wales football_pitch --max-routes 10`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runConvert,
}

// ConvertResult is the response for the convert command.
type ConvertResult struct {
	From        string        `json:"from"`
	To          string        `json:"to"`
	Amount      float64       `json:"amount"`
	MissingLink bool          `json:"missing_link"`
	Routes      []graph.Route `json:"routes"`
}

func runConvert(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	fromID, toID := args[0], args[1]
	amount := 1.0
	if len(args) == 3 {
		var err error
		amount, err = strconv.ParseFloat(args[2], 64)
		if err != nil {
			exitWithError(ExitError, "invalid amount %q", args[2])
		}
	}

	snap := mustLoadSnapshot(repoRoot, convertSeed)
	idx := graph.BuildIndex(snap)
	routes := graph.FindRoutes(idx, fromID, toID, amount, convertMaxRoutes)
	if routes == nil {
		routes = []graph.Route{}
	}

	result := ConvertResult{
		From:        fromID,
		To:          toID,
		Amount:      amount,
		MissingLink: len(routes) == 0,
		Routes:      routes,
	}

	if !humanOutput {
		return outputJSON(result)
	}

	if result.MissingLink {
		outputHuman("No conversion chain found from %s to %s (missing link).\n", fromID, toID)
		return nil
	}
	for _, r := range routes {
		outputHuman("[%d] %s: %g %s = %g %s\n", r.RouteIndex, r.Label, amount, idx.Label(fromID), r.Result, idx.Label(toID))
		for _, s := range r.Steps {
			primary := s.Edges[0]
			outputHuman("    %s -> %s  ×%g  (%d source(s); e.g. %s)\n",
				idx.Label(s.FromID), idx.Label(s.ToID), s.Factor, len(s.Edges), primary.SourceURL)
		}
	}
	return nil
}
