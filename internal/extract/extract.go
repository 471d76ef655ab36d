// Package extract turns article text into candidate conversion edges:
// LLM extraction, hard keyword gating, and unit resolution.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// comparisonKeywords is the hard gate on source quotes: a comparison is
// only accepted when its verbatim quote contains explicit size/weight/
// area/volume comparative language. This catches LLM hallucinations that
// pass structural validation.
var comparisonKeywords = []string{
	"times the size", "times the area", "times the weight", "times the height",
	"times the length", "times the volume", "times larger than", "times bigger than", "times smaller than",
	"the size of", "the area of", "the weight of", "the height of",
	"as big as", "as heavy as", "as tall as", "as wide as", "as long as",
	"weighs as much as",
	"equivalent to",
}

// HasComparisonPhrase reports whether a quote contains a recognised
// comparison phrase.
func HasComparisonPhrase(quote string) bool {
	q := strings.ToLower(quote)
	for _, kw := range comparisonKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// UnitRef is one side of an extracted comparison: either the id of a
// known unit (JSON string) or a proposed new unit (JSON object).
type UnitRef struct {
	ID      string   // Set when the reference was a plain id string
	Label   string
	Emoji   string
	Aliases []string
	Tags    []string
	IsNew   bool     // True when the reference was a full object
}

// UnmarshalJSON accepts both the string and object forms.
func (r *UnitRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.ID = s
		return nil
	}

	var obj struct {
		ID      string   `json:"id"`
		Label   string   `json:"label"`
		Emoji   string   `json:"emoji"`
		Aliases []string `json:"aliases"`
		Tags    []string `json:"tags"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unit reference is neither string nor object: %w", err)
	}
	r.ID = obj.ID
	r.Label = obj.Label
	r.Emoji = obj.Emoji
	r.Aliases = obj.Aliases
	r.Tags = obj.Tags
	r.IsNew = true
	return nil
}

// Comparison is one extracted claim before unit resolution.
type Comparison struct {
	From        UnitRef `json:"from"`
	To          UnitRef `json:"to"`
	Factor      float64 `json:"factor"`
	SourceQuote string  `json:"source_quote"`
}

// Valid reports whether a comparison is structurally sound and passes
// the keyword gate. Invalid comparisons are dropped, not errors: most
// articles legitimately yield nothing.
func (c Comparison) Valid() bool {
	if c.From.ID == "" && c.From.Label == "" {
		return false
	}
	if c.To.ID == "" && c.To.Label == "" {
		return false
	}
	if c.Factor <= 0 {
		return false
	}
	if c.SourceQuote == "" {
		return false
	}
	return HasComparisonPhrase(c.SourceQuote)
}
