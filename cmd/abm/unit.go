package main

import (
	"fmt"
	"strings"

	"github.com/anythingbutmetric/abm/internal/config"
	"github.com/anythingbutmetric/abm/internal/storage"
	"github.com/anythingbutmetric/abm/internal/unit"
	"github.com/spf13/cobra"
)

// Exit codes for unit commands (per CLI contract)
const (
	ExitUnitNotFound   = 2 // Unit not found
	ExitUnitValidation = 3 // Validation error (invalid ID, duplicate)
)

func init() {
	rootCmd.AddCommand(unitCmd)

	// unit add flags
	unitAddCmd.Flags().StringP("label", "l", "", "Display label (required)")
	unitAddCmd.Flags().StringP("emoji", "e", "", "Emoji for visualization")
	unitAddCmd.Flags().StringP("aliases", "a", "", "Comma-separated aliases")
	unitAddCmd.Flags().StringP("tags", "t", "", "Comma-separated tags")
	unitAddCmd.MarkFlagRequired("label")
	unitCmd.AddCommand(unitAddCmd)

	// unit show - no extra flags
	unitCmd.AddCommand(unitShowCmd)

	// unit list - no extra flags
	unitCmd.AddCommand(unitListCmd)

	// unit search - no extra flags
	unitCmd.AddCommand(unitSearchCmd)
}

var unitCmd = &cobra.Command{
	Use:   "unit",
	Short: "Manage units",
	Long:  `Commands for managing the units of the comparison graph.`,
}

// splitCSV splits a comma-separated flag value into trimmed parts.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// UnitAddResult is the response for the unit add command.
type UnitAddResult struct {
	Status string    `json:"status"`
	Unit   unit.Unit `json:"unit"`
}

var unitAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a new unit",
	Long:  `Add a new unit to the catalogue.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUnitAdd,
}

func runUnitAdd(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	unitID := args[0]

	label, _ := cmd.Flags().GetString("label")
	emoji, _ := cmd.Flags().GetString("emoji")
	aliasesStr, _ := cmd.Flags().GetString("aliases")
	tagsStr, _ := cmd.Flags().GetString("tags")

	u := unit.Unit{
		ID:      unitID,
		Label:   label,
		Emoji:   emoji,
		Aliases: splitCSV(aliasesStr),
		Tags:    splitCSV(tagsStr),
	}

	if err := u.ValidateForCreate(); err != nil {
		exitWithError(ExitUnitValidation, "invalid unit: %v", err)
	}

	unitsPath := config.UnitsPath(repoRoot)
	units, err := storage.ReadUnits(unitsPath)
	if err != nil {
		exitWithError(ExitDataError, "reading units: %v", err)
	}

	if unit.IDSet(units)[unitID] {
		exitWithError(ExitUnitValidation, "unit with id %q already exists", unitID)
	}

	units = append(units, u)
	if err := storage.WriteUnits(unitsPath, units); err != nil {
		exitWithError(ExitDataError, "writing units: %v", err)
	}

	// Update SQLite index
	db := mustOpenDatabase(repoRoot)
	defer db.Close()
	if _, err := db.RebuildUnitsFromJSON(unitsPath); err != nil {
		exitWithError(ExitDataError, "updating index: %v", err)
	}

	if humanOutput {
		fmt.Printf("Created unit: %s\n", unitID)
		printUnit(u)
	} else {
		outputJSON(UnitAddResult{Status: "created", Unit: u})
	}

	return nil
}

var unitShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a unit by ID",
	Long:  `Retrieve a unit from the catalogue by its ID.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUnitShow,
}

func runUnitShow(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	unitID := args[0]

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	u, err := db.GetUnitByID(unitID)
	if err != nil {
		exitWithError(ExitDataError, "querying unit: %v", err)
	}
	if u == nil {
		exitWithError(ExitUnitNotFound, "unit %q not found", unitID)
	}

	if humanOutput {
		fmt.Println(u.ID)
		printUnit(*u)
	} else {
		outputJSON(u)
	}

	return nil
}

// UnitListResult is the response for the unit list and unit search commands.
type UnitListResult struct {
	Units []unit.Unit `json:"units"`
	Count int         `json:"count"`
}

var unitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all units",
	Long:  `List all units in the catalogue.`,
	RunE:  runUnitList,
}

func runUnitList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	units, err := db.GetAllUnits()
	if err != nil {
		exitWithError(ExitDataError, "querying units: %v", err)
	}

	outputUnitList(units)
	return nil
}

var unitSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search units by id, label, or alias",
	Long:  `Search the catalogue for units whose id, label, or aliases contain the query.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUnitSearch,
}

func runUnitSearch(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	units, err := db.SearchUnits(args[0])
	if err != nil {
		exitWithError(ExitDataError, "searching units: %v", err)
	}

	outputUnitList(units)
	return nil
}

func outputUnitList(units []unit.Unit) {
	if humanOutput {
		if len(units) == 0 {
			fmt.Println("No units found")
			return
		}
		for i, u := range units {
			if i > 0 {
				fmt.Println()
			}
			fmt.Println(u.ID)
			printUnit(u)
		}
		fmt.Printf("\nTotal: %d units\n", len(units))
		return
	}
	if units == nil {
		units = []unit.Unit{}
	}
	outputJSON(UnitListResult{Units: units, Count: len(units)})
}

func printUnit(u unit.Unit) {
	fmt.Printf("  Label: %s\n", u.Label)
	if u.Emoji != "" {
		fmt.Printf("  Emoji: %s\n", u.Emoji)
	}
	if len(u.Aliases) > 0 {
		fmt.Printf("  Aliases: %s\n", strings.Join(u.Aliases, ", "))
	}
	if len(u.Tags) > 0 {
		fmt.Printf("  Tags: %s\n", strings.Join(u.Tags, ", "))
	}
}
