package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/anythingbutmetric/abm/internal/snapshot"
	"github.com/anythingbutmetric/abm/internal/unit"
)

func loaderFixture(t *testing.T) (*Loader, string, string) {
	t.Helper()
	dir := t.TempDir()
	unitsPath := filepath.Join(dir, "units.json")
	edgesPath := filepath.Join(dir, "edges.json")
	if err := WriteUnits(unitsPath, testUnits()); err != nil {
		t.Fatal(err)
	}
	if err := WriteEdges(edgesPath, testEdges()); err != nil {
		t.Fatal(err)
	}
	l, err := NewLoader("live", unitsPath, edgesPath)
	if err != nil {
		t.Fatalf("NewLoader() error: %v", err)
	}
	return l, unitsPath, edgesPath
}

func TestLoader_InitialLoad(t *testing.T) {
	l, _, _ := loaderFixture(t)

	s := l.Snapshot()
	if s.Name != "live" {
		t.Errorf("Name = %q, want live", s.Name)
	}
	if len(s.Units) != 2 || len(s.Edges) != 1 {
		t.Errorf("snapshot has %d units, %d edges", len(s.Units), len(s.Edges))
	}
}

func TestLoader_ReloadSwapsSnapshot(t *testing.T) {
	l, unitsPath, _ := loaderFixture(t)
	before := l.Snapshot()

	units := append(testUnits(), unit.Unit{ID: "banana", Label: "Banana"})
	if err := WriteUnits(unitsPath, units); err != nil {
		t.Fatal(err)
	}
	if err := l.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}

	after := l.Snapshot()
	if after == before {
		t.Error("Reload() did not produce a fresh snapshot")
	}
	if len(after.Units) != 3 {
		t.Errorf("reloaded snapshot has %d units, want 3", len(after.Units))
	}
	// The old snapshot is untouched
	if len(before.Units) != 2 {
		t.Errorf("previous snapshot mutated: %d units", len(before.Units))
	}
}

func TestLoader_OnSwap(t *testing.T) {
	l, _, _ := loaderFixture(t)

	var gotOld, gotNew *snapshot.Snapshot
	l.OnSwap(func(old, new *snapshot.Snapshot) {
		gotOld, gotNew = old, new
	})

	before := l.Snapshot()
	if err := l.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if gotOld != before {
		t.Error("OnSwap old != previous snapshot")
	}
	if gotNew != l.Snapshot() {
		t.Error("OnSwap new != current snapshot")
	}
}

func TestLoader_BadReloadKeepsOldSnapshot(t *testing.T) {
	l, unitsPath, _ := loaderFixture(t)
	before := l.Snapshot()

	if err := os.WriteFile(unitsPath, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := l.Reload(); err == nil {
		t.Fatal("Reload() expected error for malformed file")
	}
	if l.Snapshot() != before {
		t.Error("failed reload replaced the live snapshot")
	}
}
