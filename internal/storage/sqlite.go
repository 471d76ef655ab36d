package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/anythingbutmetric/abm/internal/unit"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection. The database is an ephemeral
// query cache rebuilt from the JSON data files; the JSON files remain
// the source of truth.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS units (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			emoji TEXT,
			aliases_json TEXT,
			tags_json TEXT
		);

		CREATE TABLE IF NOT EXISTS edges (
			id TEXT PRIMARY KEY,
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			factor REAL NOT NULL,
			source_url TEXT NOT NULL,
			source_quote TEXT NOT NULL,
			date_scraped TEXT,
			verified INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id);
		CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id);
	`
	_, err := db.Exec(schema)
	return err
}

// RebuildUnitsFromJSON clears the units table and rebuilds it from a
// units.json file. Returns the number of units loaded.
func (d *DB) RebuildUnitsFromJSON(jsonPath string) (int, error) {
	units, err := ReadUnits(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("reading units JSON: %w", err)
	}

	if _, err := d.db.Exec("DELETE FROM units"); err != nil {
		return 0, fmt.Errorf("clearing units table: %w", err)
	}

	stmt, err := d.db.Prepare(`
		INSERT INTO units (id, label, emoji, aliases_json, tags_json)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing units insert: %w", err)
	}
	defer stmt.Close()

	for _, u := range units {
		aliasesJSON, err := json.Marshal(u.Aliases)
		if err != nil {
			return 0, fmt.Errorf("encoding aliases for %s: %w", u.ID, err)
		}
		tagsJSON, err := json.Marshal(u.Tags)
		if err != nil {
			return 0, fmt.Errorf("encoding tags for %s: %w", u.ID, err)
		}
		if _, err := stmt.Exec(u.ID, u.Label, u.Emoji, string(aliasesJSON), string(tagsJSON)); err != nil {
			return 0, fmt.Errorf("inserting unit %s: %w", u.ID, err)
		}
	}

	return len(units), nil
}

// GetUnitByID retrieves a unit by id. Returns nil if not found.
func (d *DB) GetUnitByID(id string) (*unit.Unit, error) {
	row := d.db.QueryRow(`
		SELECT id, label, emoji, aliases_json, tags_json
		FROM units WHERE id = ?
	`, id)

	u, err := scanUnit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying unit %s: %w", id, err)
	}
	return u, nil
}

// GetAllUnits returns all units ordered by id.
func (d *DB) GetAllUnits() ([]unit.Unit, error) {
	rows, err := d.db.Query(`
		SELECT id, label, emoji, aliases_json, tags_json
		FROM units ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying units: %w", err)
	}
	defer rows.Close()

	var units []unit.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning unit: %w", err)
		}
		units = append(units, *u)
	}
	return units, rows.Err()
}

// SearchUnits returns units whose id or label contains the query string
// (case-insensitive via LIKE), ordered by id.
func (d *DB) SearchUnits(query string) ([]unit.Unit, error) {
	pattern := "%" + query + "%"
	rows, err := d.db.Query(`
		SELECT id, label, emoji, aliases_json, tags_json
		FROM units
		WHERE id LIKE ? OR label LIKE ?
		ORDER BY id
	`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching units: %w", err)
	}
	defer rows.Close()

	var units []unit.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning unit: %w", err)
		}
		units = append(units, *u)
	}
	return units, rows.Err()
}

// scannable abstracts sql.Row and sql.Rows for shared scan logic.
type scannable interface {
	Scan(dest ...interface{}) error
}

func scanUnit(row scannable) (*unit.Unit, error) {
	var u unit.Unit
	var emoji sql.NullString
	var aliasesJSON, tagsJSON sql.NullString

	if err := row.Scan(&u.ID, &u.Label, &emoji, &aliasesJSON, &tagsJSON); err != nil {
		return nil, err
	}

	u.Emoji = emoji.String
	if aliasesJSON.Valid && aliasesJSON.String != "" && aliasesJSON.String != "null" {
		if err := json.Unmarshal([]byte(aliasesJSON.String), &u.Aliases); err != nil {
			return nil, fmt.Errorf("decoding aliases: %w", err)
		}
	}
	if tagsJSON.Valid && tagsJSON.String != "" && tagsJSON.String != "null" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &u.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
	}
	return &u, nil
}
