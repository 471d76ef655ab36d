package main

import (
	"fmt"
	"sort"

	"github.com/anythingbutmetric/abm/internal/edge"
	"github.com/anythingbutmetric/abm/internal/graph"
	"github.com/anythingbutmetric/abm/internal/unit"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the dataset and flag integrity issues",
	Long: `Summarize the dataset: unit and edge counts, island structure,
unverified edges, and integrity issues (orphaned edges referencing
unknown units, exact duplicate comparisons).`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

// StatsResult is the response for the stats command.
type StatsResult struct {
	Units       int               `json:"units"`
	Edges       int               `json:"edges"`
	Unverified  int               `json:"unverified"`
	Islands     int               `json:"islands"`
	IslandSizes []int             `json:"island_sizes"`
	TopDegrees  []DegreeEntry     `json:"top_degrees"`
	Orphans     []edge.OrphanInfo `json:"orphans"`
	Duplicates  []DuplicateEntry  `json:"duplicates"`
}

// DegreeEntry pairs a unit with its edge count.
type DegreeEntry struct {
	UnitID string `json:"unit_id"`
	Degree int    `json:"degree"`
}

// DuplicateEntry reports a comparison recorded more than once.
type DuplicateEntry struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Factor    float64 `json:"factor"`
	SourceURL string  `json:"source_url"`
	Count     int     `json:"count"`
}

const topDegreeCount = 5

func runStats(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	snap := mustLoadSnapshot(repoRoot, false)

	unverified := 0
	for _, e := range snap.Edges {
		if !e.Verified {
			unverified++
		}
	}

	islands := graph.AllIslands(snap)
	sizes := make([]int, len(islands))
	for i, isl := range islands {
		sizes[i] = len(isl)
	}

	idx := graph.BuildIndex(snap)
	var degrees []DegreeEntry
	for _, u := range snap.Units {
		degrees = append(degrees, DegreeEntry{UnitID: u.ID, Degree: len(idx.Arcs(u.ID))})
	}
	sort.SliceStable(degrees, func(i, j int) bool { return degrees[i].Degree > degrees[j].Degree })
	if len(degrees) > topDegreeCount {
		degrees = degrees[:topDegreeCount]
	}

	orphans := edge.DetectOrphans(snap.Edges, unit.IDSet(snap.Units))
	if orphans == nil {
		orphans = []edge.OrphanInfo{}
	}

	var duplicates []DuplicateEntry
	for key, count := range edge.FindDuplicates(snap.Edges) {
		duplicates = append(duplicates, DuplicateEntry{
			From:      key.From,
			To:        key.To,
			Factor:    key.Factor,
			SourceURL: key.SourceURL,
			Count:     count,
		})
	}
	sort.Slice(duplicates, func(i, j int) bool {
		if duplicates[i].From != duplicates[j].From {
			return duplicates[i].From < duplicates[j].From
		}
		return duplicates[i].To < duplicates[j].To
	})
	if duplicates == nil {
		duplicates = []DuplicateEntry{}
	}

	result := StatsResult{
		Units:       len(snap.Units),
		Edges:       len(snap.Edges),
		Unverified:  unverified,
		Islands:     len(islands),
		IslandSizes: sizes,
		TopDegrees:  degrees,
		Orphans:     orphans,
		Duplicates:  duplicates,
	}

	if !humanOutput {
		return outputJSON(result)
	}

	fmt.Printf("Units: %d\n", result.Units)
	fmt.Printf("Edges: %d (%d unverified)\n", result.Edges, result.Unverified)
	fmt.Printf("Islands: %d %v\n", result.Islands, result.IslandSizes)
	if len(result.TopDegrees) > 0 {
		fmt.Println("Most connected:")
		byID := snap.UnitsByID()
		for _, d := range result.TopDegrees {
			fmt.Printf("  %s (%d edges)\n", unit.DisplayLabel(byID, d.UnitID), d.Degree)
		}
	}
	for _, o := range result.Orphans {
		fmt.Printf("orphaned edge %s: %s -> %s (%s)\n", o.EdgeID, o.From, o.To, o.Reason)
	}
	for _, d := range result.Duplicates {
		fmt.Printf("duplicate edge %s -> %s ×%g from %s (%d copies)\n", d.From, d.To, d.Factor, d.SourceURL, d.Count)
	}
	return nil
}
