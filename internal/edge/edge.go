// Package edge defines the core domain type for sourced conversion edges.
package edge

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Edge represents one sourced journalistic claim that Factor units of To
// equal one unit of From. Edges are directed on disk but traversable in
// both directions: used in reverse the factor inverts.
type Edge struct {
	ID     string  `json:"id"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Factor float64 `json:"factor"` // How many To per one From; must be > 0

	// Provenance
	SourceURL   string `json:"source_url"`
	SourceQuote string `json:"source_quote"`
	DateScraped string `json:"date_scraped,omitempty"` // ISO date (YYYY-MM-DD)
	Verified    bool   `json:"verified"`               // Informational only; never gates traversal
}

// Validation errors.
var (
	ErrEmptyID           = errors.New("id is required")
	ErrEmptyFrom         = errors.New("from is required")
	ErrEmptyTo           = errors.New("to is required")
	ErrNonPositiveFactor = errors.New("factor must be a positive number")
	ErrSelfEdge          = errors.New("from and to cannot be the same unit")
	ErrEmptySourceURL    = errors.New("source_url is required")
	ErrEmptySourceQuote  = errors.New("source_quote is required")
)

// Validate checks structural validity: ids present, positive factor,
// provenance recorded. Self-loops pass; they are inert in the graph and
// already-persisted data containing one must still load.
func (e *Edge) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.From == "" {
		return ErrEmptyFrom
	}
	if e.To == "" {
		return ErrEmptyTo
	}
	if e.Factor <= 0 {
		return ErrNonPositiveFactor
	}
	if e.SourceURL == "" {
		return ErrEmptySourceURL
	}
	if e.SourceQuote == "" {
		return ErrEmptySourceQuote
	}
	return nil
}

// ValidateForCreate validates an edge for ingestion. Unlike Validate it
// rejects self-edges: nothing upstream should create one.
func (e *Edge) ValidateForCreate() error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.From == e.To {
		return ErrSelfEdge
	}
	return nil
}

// SetDateScraped sets DateScraped to today (UTC) if not already set.
func (e *Edge) SetDateScraped() {
	if e.DateScraped == "" {
		e.DateScraped = time.Now().UTC().Format("2006-01-02")
	}
}

// Key returns the dedup identity of an edge: the same claim from the
// same article is a duplicate even if it was extracted twice.
func (e *Edge) Key() Key {
	return Key{From: e.From, To: e.To, Factor: e.Factor, SourceURL: e.SourceURL}
}

// Key is the dedup identity tuple for an edge.
type Key struct {
	From      string
	To        string
	Factor    float64
	SourceURL string
}

// KeySet builds the set of dedup keys for a collection of edges.
func KeySet(edges []Edge) map[Key]bool {
	set := make(map[Key]bool, len(edges))
	for _, e := range edges {
		set[e.Key()] = true
	}
	return set
}

// SourceURLSet builds the set of source URLs already present in the
// dataset. The scraper skips articles it has ingested before, so a
// daily run never re-fetches or re-extracts yesterday's stories.
func SourceURLSet(edges []Edge) map[string]bool {
	set := make(map[string]bool, len(edges))
	for _, e := range edges {
		if e.SourceURL != "" {
			set[e.SourceURL] = true
		}
	}
	return set
}

var idPattern = regexp.MustCompile(`^e(\d+)$`)

// MaxIDNum returns the highest numeric component among "eNNN" edge ids.
// Ids in other shapes are ignored.
func MaxIDNum(edges []Edge) int {
	max := 0
	for _, e := range edges {
		m := idPattern.FindStringSubmatch(e.ID)
		if m == nil {
			continue
		}
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		if n > max {
			max = n
		}
	}
	return max
}

// FormatID renders a numeric edge id as "e042"; the width grows past
// e999 without wrapping.
func FormatID(n int) string {
	return fmt.Sprintf("e%03d", n)
}

// NextID returns the next sequential edge id for a collection.
func NextID(edges []Edge) string {
	return FormatID(MaxIDNum(edges) + 1)
}

// OrphanInfo describes an edge referencing a unit id with no catalogue record.
type OrphanInfo struct {
	EdgeID string `json:"edge_id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"` // "missing_from", "missing_to", or "missing_both"
}

// DetectOrphans finds edges whose endpoints are not in the valid unit id
// set. Orphaned edges are reported, not removed: the query core treats
// unknown ids as opaque graph nodes.
func DetectOrphans(edges []Edge, validIDs map[string]bool) []OrphanInfo {
	var orphans []OrphanInfo
	for _, e := range edges {
		fromOK := validIDs[e.From]
		toOK := validIDs[e.To]
		if fromOK && toOK {
			continue
		}
		info := OrphanInfo{EdgeID: e.ID, From: e.From, To: e.To}
		switch {
		case !fromOK && !toOK:
			info.Reason = "missing_both"
		case !fromOK:
			info.Reason = "missing_from"
		default:
			info.Reason = "missing_to"
		}
		orphans = append(orphans, info)
	}
	return orphans
}

// FindDuplicates finds dedup keys that appear more than once in the list.
func FindDuplicates(edges []Edge) map[Key]int {
	counts := make(map[Key]int)
	for _, e := range edges {
		counts[e.Key()]++
	}
	duplicates := make(map[Key]int)
	for key, count := range counts {
		if count > 1 {
			duplicates[key] = count
		}
	}
	return duplicates
}
