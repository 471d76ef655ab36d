package extract

import (
	"fmt"
	"strings"

	"github.com/anythingbutmetric/abm/internal/unit"
)

// Resolver maps extracted unit references onto the catalogue, creating
// new units when no existing unit matches. One Resolver accumulates the
// new units queued across a whole scraper run so the same new unit is
// never created twice.
type Resolver struct {
	existingIDs map[string]bool
	terms       unit.TermIndex
	newUnits    map[string]unit.Unit
	newOrder    []string
}

// NewResolver creates a resolver over the current unit catalogue.
func NewResolver(units []unit.Unit) *Resolver {
	return &Resolver{
		existingIDs: unit.IDSet(units),
		terms:       unit.NewTermIndex(units),
		newUnits:    make(map[string]unit.Unit),
		newOrder:    nil,
	}
}

// Resolve returns the canonical unit id for a reference, queueing a new
// unit when nothing matches. Returns "" when the reference is unusable.
func (r *Resolver) Resolve(ref UnitRef) string {
	if !ref.IsNew {
		return r.resolveString(ref.ID)
	}
	return r.resolveObject(ref)
}

// resolveString handles a plain id reference: known id, queued new id,
// term-index match, or, when the model returned a plausible-looking
// unknown id instead of an object, a synthesized new unit.
func (r *Resolver) resolveString(id string) string {
	if id == "" {
		return ""
	}
	if r.existingIDs[id] {
		return id
	}
	if _, queued := r.newUnits[id]; queued {
		return id
	}
	if canonical := r.terms.Resolve(id); canonical != "" {
		return canonical
	}

	human := strings.ReplaceAll(id, "_", " ")
	return r.queue(unit.Unit{
		ID:      unit.Slugify(id),
		Label:   titleCase(human),
		Aliases: []string{human},
	})
}

// resolveObject handles a proposed new unit: its label and aliases are
// checked against the catalogue first so near-duplicates collapse onto
// the existing unit.
func (r *Resolver) resolveObject(ref UnitRef) string {
	terms := make([]string, 0, len(ref.Aliases)+1)
	if ref.Label != "" {
		terms = append(terms, ref.Label)
	}
	terms = append(terms, ref.Aliases...)
	for _, term := range terms {
		if canonical := r.terms.Resolve(term); canonical != "" {
			return canonical
		}
	}

	suggested := ref.ID
	if suggested == "" {
		suggested = unit.Slugify(ref.Label)
	}
	suggested = unit.Slugify(suggested)
	if suggested == "" {
		return ""
	}

	// Same article can reference a new unit twice; reuse the queued one.
	if _, queued := r.newUnits[suggested]; queued {
		return suggested
	}

	// Deduplicate against existing unit ids only.
	finalID := suggested
	for counter := 2; r.existingIDs[finalID]; counter++ {
		finalID = fmt.Sprintf("%s_%d", suggested, counter)
	}

	u := unit.Unit{
		ID:      finalID,
		Label:   ref.Label,
		Emoji:   ref.Emoji,
		Aliases: ref.Aliases,
		Tags:    ref.Tags,
	}
	if u.Label == "" {
		u.Label = titleCase(strings.ReplaceAll(finalID, "_", " "))
	}
	return r.queue(u)
}

// queue records a new unit and makes its terms resolvable for the rest
// of the run.
func (r *Resolver) queue(u unit.Unit) string {
	if err := u.ValidateForCreate(); err != nil {
		return ""
	}
	r.newUnits[u.ID] = u
	r.newOrder = append(r.newOrder, u.ID)
	r.terms.Add(u)
	return u.ID
}

// IsNewUnit reports whether an id was created during this run.
func (r *Resolver) IsNewUnit(id string) bool {
	_, ok := r.newUnits[id]
	return ok
}

// NewUnits returns the units created during this run, in creation order.
func (r *Resolver) NewUnits() []unit.Unit {
	units := make([]unit.Unit, 0, len(r.newOrder))
	for _, id := range r.newOrder {
		units = append(units, r.newUnits[id])
	}
	return units
}

// AllKnownUnits returns the catalogue plus queued new units, for building
// the known-units prompt block mid-run.
func (r *Resolver) AllKnownUnits(catalogue []unit.Unit) []unit.Unit {
	return append(append([]unit.Unit{}, catalogue...), r.NewUnits()...)
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
