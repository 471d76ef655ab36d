// Package storage handles data persistence: the git-versionable JSON
// data files and an ephemeral SQLite cache for queries.
package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/anythingbutmetric/abm/internal/edge"
	"github.com/anythingbutmetric/abm/internal/snapshot"
	"github.com/anythingbutmetric/abm/internal/unit"
)

// ReadUnits reads the unit catalogue from a JSON array file.
// A missing file returns an empty slice. Each unit is structurally
// validated (fail-fast).
func ReadUnits(path string) ([]unit.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading units file: %w", err)
	}

	var units []unit.Unit
	if err := json.Unmarshal(data, &units); err != nil {
		return nil, fmt.Errorf("parsing units file: %w", err)
	}

	for i, u := range units {
		if err := u.ValidateForCreate(); err != nil {
			return nil, fmt.Errorf("invalid unit at index %d (%q): %w", i, u.ID, err)
		}
	}
	return units, nil
}

// ReadEdges reads the edge list from a JSON array file.
// A missing file returns an empty slice. Each edge is structurally
// validated (fail-fast).
func ReadEdges(path string) ([]edge.Edge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading edges file: %w", err)
	}

	var edges []edge.Edge
	if err := json.Unmarshal(data, &edges); err != nil {
		return nil, fmt.Errorf("parsing edges file: %w", err)
	}

	for i, e := range edges {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("invalid edge at index %d (%q): %w", i, e.ID, err)
		}
	}
	return edges, nil
}

// WriteUnits writes the unit catalogue as an indented JSON array,
// replacing existing content. The trailing newline keeps diffs clean.
func WriteUnits(path string, units []unit.Unit) error {
	return writeJSONArray(path, units, "units")
}

// WriteEdges writes the edge list as an indented JSON array, replacing
// existing content.
func WriteEdges(path string, edges []edge.Edge) error {
	return writeJSONArray(path, edges, "edges")
}

func writeJSONArray(path string, v interface{}, what string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", what, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s file: %w", what, err)
	}
	return nil
}

// LoadSnapshot reads a named snapshot from its units and edges files.
// The result is immutable by convention: a reload produces a new snapshot.
func LoadSnapshot(name, unitsPath, edgesPath string) (*snapshot.Snapshot, error) {
	units, err := ReadUnits(unitsPath)
	if err != nil {
		return nil, err
	}
	edges, err := ReadEdges(edgesPath)
	if err != nil {
		return nil, err
	}
	return snapshot.New(name, units, edges), nil
}
