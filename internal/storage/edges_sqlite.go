package storage

import (
	"fmt"

	"github.com/anythingbutmetric/abm/internal/edge"
)

// RebuildEdgesFromJSON clears the edges table and rebuilds it from an
// edges.json file. Returns the number of edges loaded.
func (d *DB) RebuildEdgesFromJSON(jsonPath string) (int, error) {
	edges, err := ReadEdges(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("reading edges JSON: %w", err)
	}

	if _, err := d.db.Exec("DELETE FROM edges"); err != nil {
		return 0, fmt.Errorf("clearing edges table: %w", err)
	}

	stmt, err := d.db.Prepare(`
		INSERT INTO edges (id, from_id, to_id, factor, source_url, source_quote, date_scraped, verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing edges insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range edges {
		verified := 0
		if e.Verified {
			verified = 1
		}
		if _, err := stmt.Exec(e.ID, e.From, e.To, e.Factor, e.SourceURL, e.SourceQuote, e.DateScraped, verified); err != nil {
			return 0, fmt.Errorf("inserting edge %s: %w", e.ID, err)
		}
	}

	return len(edges), nil
}

// GetAllEdges returns all edges ordered by id.
func (d *DB) GetAllEdges() ([]edge.Edge, error) {
	return d.queryEdges(`
		SELECT id, from_id, to_id, factor, source_url, source_quote, date_scraped, verified
		FROM edges ORDER BY id
	`)
}

// GetEdgesForUnit returns all edges where the unit appears on either
// side, ordered by id.
func (d *DB) GetEdgesForUnit(unitID string) ([]edge.Edge, error) {
	return d.queryEdges(`
		SELECT id, from_id, to_id, factor, source_url, source_quote, date_scraped, verified
		FROM edges
		WHERE from_id = ? OR to_id = ?
		ORDER BY id
	`, unitID, unitID)
}

// GetUnverifiedEdges returns edges still awaiting human verification.
func (d *DB) GetUnverifiedEdges() ([]edge.Edge, error) {
	return d.queryEdges(`
		SELECT id, from_id, to_id, factor, source_url, source_quote, date_scraped, verified
		FROM edges WHERE verified = 0 ORDER BY id
	`)
}

// CountEdges returns the total number of edges.
func (d *DB) CountEdges() (int, error) {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM edges").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting edges: %w", err)
	}
	return n, nil
}

// CountUnits returns the total number of units.
func (d *DB) CountUnits() (int, error) {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM units").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting units: %w", err)
	}
	return n, nil
}

// DegreeCounts returns, per unit id, how many edges touch it.
// Only edge-bearing ids appear in the map.
func (d *DB) DegreeCounts() (map[string]int, error) {
	rows, err := d.db.Query(`
		SELECT unit_id, COUNT(*) FROM (
			SELECT from_id AS unit_id FROM edges
			UNION ALL
			SELECT to_id AS unit_id FROM edges
		) GROUP BY unit_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying degree counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scanning degree count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func (d *DB) queryEdges(query string, args ...interface{}) ([]edge.Edge, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var edges []edge.Edge
	for rows.Next() {
		var e edge.Edge
		var verified int
		if err := rows.Scan(&e.ID, &e.From, &e.To, &e.Factor, &e.SourceURL, &e.SourceQuote, &e.DateScraped, &verified); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		e.Verified = verified != 0
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
