// Package unit defines the core domain type for convertible units.
package unit

import (
	"errors"
	"regexp"
)

// Unit represents a named thing that quantities can be expressed in,
// e.g. "Blue Whale" or "Double-Decker Bus".
type Unit struct {
	ID      string   `json:"id"`                // Required, unique, snake_case slug
	Label   string   `json:"label"`             // Required, human-readable display name
	Emoji   string   `json:"emoji,omitempty"`   // Optional, single-glyph icon
	Aliases []string `json:"aliases,omitempty"` // Optional, alternative match strings
	Tags    []string `json:"tags,omitempty"`    // Optional, classification strings
}

// IDPattern is the regex pattern for valid unit IDs.
// Snake_case: must start with lowercase alphanumeric, followed by
// alphanumerics and underscores.
var IDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)

// Validation errors.
var (
	ErrEmptyID      = errors.New("id is required")
	ErrInvalidID    = errors.New("id must be snake_case: lowercase alphanumeric and underscores, starting with alphanumeric")
	ErrEmptyLabel   = errors.New("label is required")
	ErrDuplicateID  = errors.New("unit with this id already exists")
	ErrUnitNotFound = errors.New("unit not found")
)

// ValidateForCreate validates a unit for creation.
// Returns an error if any required field is missing or invalid.
func (u *Unit) ValidateForCreate() error {
	if u.ID == "" {
		return ErrEmptyID
	}
	if !IDPattern.MatchString(u.ID) {
		return ErrInvalidID
	}
	if u.Label == "" {
		return ErrEmptyLabel
	}
	return nil
}

// ValidateID validates just the ID field (useful for lookup operations).
func ValidateID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if !IDPattern.MatchString(id) {
		return ErrInvalidID
	}
	return nil
}

// ByID builds an id -> unit lookup map from a unit catalogue.
func ByID(units []Unit) map[string]Unit {
	m := make(map[string]Unit, len(units))
	for _, u := range units {
		m[u.ID] = u
	}
	return m
}

// IDSet builds a set of unit ids for O(1) membership checks.
func IDSet(units []Unit) map[string]bool {
	set := make(map[string]bool, len(units))
	for _, u := range units {
		set[u.ID] = true
	}
	return set
}

// DisplayLabel returns the unit's label from the catalogue, falling back
// to the raw id when the unit record is missing. Edges may reference ids
// with no unit record; presentation fails soft rather than erroring.
func DisplayLabel(byID map[string]Unit, id string) string {
	if u, ok := byID[id]; ok && u.Label != "" {
		return u.Label
	}
	return id
}
