package unit

import (
	"regexp"
	"strings"
)

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	underscorePattern = regexp.MustCompile(`_+`)
)

// Slugify converts a display label to a snake_case id:
// "Double-Decker Bus" -> "doubledecker_bus".
func Slugify(label string) string {
	s := strings.ToLower(label)
	s = nonWordPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(strings.TrimSpace(s), "_")
	s = underscorePattern.ReplaceAllString(s, "_")
	return s
}

// TermIndex maps every lowercased id, label, and alias to its canonical
// unit id. Used to match extracted references that use a label or alias
// instead of the exact id.
type TermIndex map[string]string

// NewTermIndex builds a TermIndex from a unit catalogue.
// Earlier units win on term collisions, matching catalogue order.
func NewTermIndex(units []Unit) TermIndex {
	idx := make(TermIndex)
	for _, u := range units {
		idx.Add(u)
	}
	return idx
}

// Add makes a unit's id, label, and aliases resolvable. Existing term
// mappings are never overwritten.
func (idx TermIndex) Add(u Unit) {
	idx.add(strings.ToLower(u.ID), u.ID)
	idx.add(strings.ToLower(u.Label), u.ID)
	for _, alias := range u.Aliases {
		idx.add(strings.ToLower(alias), u.ID)
	}
}

func (idx TermIndex) add(term, id string) {
	if term == "" {
		return
	}
	if _, exists := idx[term]; !exists {
		idx[term] = id
	}
}

// Resolve looks up a term (id, label, or alias, case-insensitive) and
// returns the canonical unit id, or "" if no unit matches.
func (idx TermIndex) Resolve(term string) string {
	return idx[strings.ToLower(term)]
}
