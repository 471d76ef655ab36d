package main

import (
	"fmt"
	"strconv"

	"github.com/anythingbutmetric/abm/internal/config"
	"github.com/anythingbutmetric/abm/internal/edge"
	"github.com/anythingbutmetric/abm/internal/storage"
	"github.com/anythingbutmetric/abm/internal/unit"
	"github.com/spf13/cobra"
)

// Exit codes specific to edge commands (per CLI contract)
const (
	ExitEdgeUnitNotFound = 2 // Endpoint unit not found
	ExitEdgeInvalidArgs  = 3 // Invalid arguments or duplicate edge
)

func init() {
	rootCmd.AddCommand(edgeCmd)

	// abm edge add flags
	edgeAddCmd.Flags().StringP("from", "f", "", "Source unit ID (required)")
	edgeAddCmd.Flags().StringP("to", "t", "", "Target unit ID (required)")
	edgeAddCmd.Flags().Float64P("factor", "x", 0, "Conversion factor: one FROM equals FACTOR TO (required)")
	edgeAddCmd.Flags().StringP("source-url", "u", "", "URL of the article the comparison came from (required)")
	edgeAddCmd.Flags().StringP("quote", "q", "", "Quote from the article stating the comparison (required)")
	edgeAddCmd.Flags().Bool("verified", false, "Mark the edge as human-verified")
	edgeAddCmd.MarkFlagRequired("from")
	edgeAddCmd.MarkFlagRequired("to")
	edgeAddCmd.MarkFlagRequired("factor")
	edgeAddCmd.MarkFlagRequired("source-url")
	edgeAddCmd.MarkFlagRequired("quote")
	edgeCmd.AddCommand(edgeAddCmd)

	// abm edge list flags
	edgeListCmd.Flags().StringP("unit", "n", "", "Only list edges touching this unit")
	edgeListCmd.Flags().Bool("unverified", false, "Only list edges awaiting verification")
	edgeCmd.AddCommand(edgeListCmd)
}

var edgeCmd = &cobra.Command{
	Use:   "edge",
	Short: "Manage comparison edges",
	Long:  `Commands for managing the sourced comparison edges of the graph.`,
}

// EdgeAddResult is the response for the edge add command.
type EdgeAddResult struct {
	Status string    `json:"status"`
	Edge   edge.Edge `json:"edge"`
}

var edgeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a comparison edge",
	Long: `Add a sourced comparison between two units. The factor states how
many of the target unit one source unit is worth.`,
	RunE: runEdgeAdd,
}

func runEdgeAdd(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	fromID, _ := cmd.Flags().GetString("from")
	toID, _ := cmd.Flags().GetString("to")
	factor, _ := cmd.Flags().GetFloat64("factor")
	sourceURL, _ := cmd.Flags().GetString("source-url")
	quote, _ := cmd.Flags().GetString("quote")
	verified, _ := cmd.Flags().GetBool("verified")

	units, err := storage.ReadUnits(config.UnitsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading units: %v", err)
	}
	ids := unit.IDSet(units)
	if !ids[fromID] {
		exitWithError(ExitEdgeUnitNotFound, "unit %q not found", fromID)
	}
	if !ids[toID] {
		exitWithError(ExitEdgeUnitNotFound, "unit %q not found", toID)
	}

	edgesPath := config.EdgesPath(repoRoot)
	edges, err := storage.ReadEdges(edgesPath)
	if err != nil {
		exitWithError(ExitDataError, "reading edges: %v", err)
	}

	e := edge.Edge{
		ID:          edge.NextID(edges),
		From:        fromID,
		To:          toID,
		Factor:      factor,
		SourceURL:   sourceURL,
		SourceQuote: quote,
		Verified:    verified,
	}
	e.SetDateScraped()

	if err := e.ValidateForCreate(); err != nil {
		exitWithError(ExitEdgeInvalidArgs, "invalid edge: %v", err)
	}

	// Reject exact re-submissions of the same comparison
	if edge.KeySet(edges)[e.Key()] {
		exitWithError(ExitEdgeInvalidArgs, "edge %s -> %s (×%g, %s) already exists", fromID, toID, factor, sourceURL)
	}

	edges = append(edges, e)
	if err := storage.WriteEdges(edgesPath, edges); err != nil {
		exitWithError(ExitDataError, "writing edges: %v", err)
	}

	// Update SQLite index
	db := mustOpenDatabase(repoRoot)
	defer db.Close()
	if _, err := db.RebuildEdgesFromJSON(edgesPath); err != nil {
		exitWithError(ExitDataError, "updating index: %v", err)
	}

	if humanOutput {
		fmt.Printf("Created edge: %s\n", e.ID)
		printEdge(e)
	} else {
		outputJSON(EdgeAddResult{Status: "created", Edge: e})
	}

	return nil
}

// EdgeListResult is the response for the edge list command.
type EdgeListResult struct {
	Edges []edge.Edge `json:"edges"`
	Count int         `json:"count"`
}

var edgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List comparison edges",
	Long:  `List the comparison edges of the graph, optionally filtered by unit.`,
	RunE:  runEdgeList,
}

func runEdgeList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	unitID, _ := cmd.Flags().GetString("unit")
	unverified, _ := cmd.Flags().GetBool("unverified")

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	var edges []edge.Edge
	var err error
	switch {
	case unitID != "":
		edges, err = db.GetEdgesForUnit(unitID)
	case unverified:
		edges, err = db.GetUnverifiedEdges()
	default:
		edges, err = db.GetAllEdges()
	}
	if err != nil {
		exitWithError(ExitDataError, "querying edges: %v", err)
	}

	if humanOutput {
		if len(edges) == 0 {
			fmt.Println("No edges found")
			return nil
		}
		for i, e := range edges {
			if i > 0 {
				fmt.Println()
			}
			fmt.Println(e.ID)
			printEdge(e)
		}
		fmt.Printf("\nTotal: %d edges\n", len(edges))
		return nil
	}

	if edges == nil {
		edges = []edge.Edge{}
	}
	return outputJSON(EdgeListResult{Edges: edges, Count: len(edges)})
}

func printEdge(e edge.Edge) {
	fmt.Printf("  %s -> %s  ×%s\n", e.From, e.To, strconv.FormatFloat(e.Factor, 'g', -1, 64))
	fmt.Printf("  Source: %s\n", e.SourceURL)
	if e.SourceQuote != "" {
		fmt.Printf("  Quote: %q\n", e.SourceQuote)
	}
	if e.DateScraped != "" {
		fmt.Printf("  Scraped: %s\n", e.DateScraped)
	}
	fmt.Printf("  Verified: %t\n", e.Verified)
}
