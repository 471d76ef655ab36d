package edge

import (
	"errors"
	"testing"
)

func validEdge() Edge {
	return Edge{
		ID:          "e001",
		From:        "blue_whale",
		To:          "double_decker_bus",
		Factor:      3.5,
		SourceURL:   "https://example.com/whales",
		SourceQuote: "the whale was as long as three and a half double-decker buses",
	}
}

func TestEdge_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Edge)
		wantErr error
	}{
		{"valid edge", func(e *Edge) {}, nil},
		{"empty id", func(e *Edge) { e.ID = "" }, ErrEmptyID},
		{"empty from", func(e *Edge) { e.From = "" }, ErrEmptyFrom},
		{"empty to", func(e *Edge) { e.To = "" }, ErrEmptyTo},
		{"zero factor", func(e *Edge) { e.Factor = 0 }, ErrNonPositiveFactor},
		{"negative factor", func(e *Edge) { e.Factor = -2 }, ErrNonPositiveFactor},
		{"empty source url", func(e *Edge) { e.SourceURL = "" }, ErrEmptySourceURL},
		{"empty quote", func(e *Edge) { e.SourceQuote = "" }, ErrEmptySourceQuote},
		// Self-loops load; they are inert in the graph
		{"self loop passes", func(e *Edge) { e.To = e.From }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEdge()
			tt.mutate(&e)
			err := e.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEdge_ValidateForCreate_RejectsSelfEdge(t *testing.T) {
	e := validEdge()
	e.To = e.From
	if err := e.ValidateForCreate(); !errors.Is(err, ErrSelfEdge) {
		t.Errorf("ValidateForCreate() = %v, want ErrSelfEdge", err)
	}

	e = validEdge()
	if err := e.ValidateForCreate(); err != nil {
		t.Errorf("ValidateForCreate() = %v, want nil", err)
	}
}

func TestSetDateScraped(t *testing.T) {
	e := validEdge()
	e.SetDateScraped()
	if e.DateScraped == "" {
		t.Error("SetDateScraped() left DateScraped empty")
	}

	e.DateScraped = "2020-01-01"
	e.SetDateScraped()
	if e.DateScraped != "2020-01-01" {
		t.Errorf("SetDateScraped() overwrote existing date: %q", e.DateScraped)
	}
}

func TestKey(t *testing.T) {
	a := validEdge()
	b := validEdge()
	b.ID = "e002"
	b.SourceQuote = "different wording, same claim"

	// Key ignores id and quote
	if a.Key() != b.Key() {
		t.Error("Key() differs for same claim from same article")
	}

	b.Factor = 4
	if a.Key() == b.Key() {
		t.Error("Key() equal despite different factors")
	}
}

func TestMaxIDNum(t *testing.T) {
	tests := []struct {
		name  string
		edges []Edge
		want  int
	}{
		{"empty", nil, 0},
		{"sequential", []Edge{{ID: "e001"}, {ID: "e002"}, {ID: "e003"}}, 3},
		{"gaps", []Edge{{ID: "e001"}, {ID: "e073"}}, 73},
		{"ignores other shapes", []Edge{{ID: "e005"}, {ID: "manual-1"}, {ID: "x9"}}, 5},
		{"only other shapes", []Edge{{ID: "manual-1"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxIDNum(tt.edges); got != tt.want {
				t.Errorf("MaxIDNum() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextID(t *testing.T) {
	if got := NextID(nil); got != "e001" {
		t.Errorf("NextID(nil) = %q, want e001", got)
	}
	edges := []Edge{{ID: "e009"}, {ID: "e010"}}
	if got := NextID(edges); got != "e011" {
		t.Errorf("NextID() = %q, want e011", got)
	}
	// Width grows past three digits
	if got := FormatID(1234); got != "e1234" {
		t.Errorf("FormatID(1234) = %q, want e1234", got)
	}
}

func TestDetectOrphans(t *testing.T) {
	valid := map[string]bool{"blue_whale": true, "double_decker_bus": true}
	edges := []Edge{
		{ID: "e001", From: "blue_whale", To: "double_decker_bus"},
		{ID: "e002", From: "blue_whale", To: "ghost"},
		{ID: "e003", From: "phantom", To: "double_decker_bus"},
		{ID: "e004", From: "phantom", To: "ghost"},
	}

	orphans := DetectOrphans(edges, valid)
	if len(orphans) != 3 {
		t.Fatalf("DetectOrphans() returned %d orphans, want 3", len(orphans))
	}

	wantReasons := map[string]string{
		"e002": "missing_to",
		"e003": "missing_from",
		"e004": "missing_both",
	}
	for _, o := range orphans {
		if want := wantReasons[o.EdgeID]; o.Reason != want {
			t.Errorf("orphan %s reason = %q, want %q", o.EdgeID, o.Reason, want)
		}
	}
}

func TestFindDuplicates(t *testing.T) {
	a := validEdge()
	b := validEdge()
	b.ID = "e002"
	c := validEdge()
	c.ID = "e003"
	c.Factor = 99

	dups := FindDuplicates([]Edge{a, b, c})
	if len(dups) != 1 {
		t.Fatalf("FindDuplicates() returned %d keys, want 1", len(dups))
	}
	if count := dups[a.Key()]; count != 2 {
		t.Errorf("duplicate count = %d, want 2", count)
	}
}

func TestSourceURLSet(t *testing.T) {
	a := validEdge()
	b := validEdge()
	b.ID = "e002"
	b.SourceURL = "https://example.com/buses"
	c := validEdge() // same URL as a
	c.ID = "e003"
	d := validEdge()
	d.ID = "e004"
	d.SourceURL = ""

	set := SourceURLSet([]Edge{a, b, c, d})
	if len(set) != 2 {
		t.Fatalf("SourceURLSet() has %d URLs, want 2", len(set))
	}
	if !set["https://example.com/whales"] || !set["https://example.com/buses"] {
		t.Errorf("SourceURLSet() = %v, missing expected URLs", set)
	}
	if set[""] {
		t.Error("SourceURLSet() contains the empty URL")
	}
}
