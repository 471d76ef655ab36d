package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/repo"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"DataPath", DataPath, "/test/repo/data"},
		{"UnitsPath", UnitsPath, "/test/repo/data/units.json"},
		{"EdgesPath", EdgesPath, "/test/repo/data/edges.json"},
		{"SeedUnitsPath", SeedUnitsPath, "/test/repo/data/seed/units.json"},
		{"SeedEdgesPath", SeedEdgesPath, "/test/repo/data/seed/edges.json"},
		{"CachePath", CachePath, "/test/repo/data/cache"},
		{"DBPath", DBPath, "/test/repo/data/cache/abm.db"},
		{"FeedsPath", FeedsPath, "/test/repo/data/feeds.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestIsRepository(t *testing.T) {
	tmpDir := t.TempDir()

	// Not a repository initially
	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true for non-repo directory")
	}

	// Still not a repository with just the data directory
	if err := os.MkdirAll(DataPath(tmpDir), 0755); err != nil {
		t.Fatal(err)
	}
	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true without units file")
	}

	// Becomes a repository once units.json exists
	if err := os.WriteFile(UnitsPath(tmpDir), []byte("[]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if !IsRepository(tmpDir) {
		t.Error("IsRepository() = false with units file present")
	}
}

func TestFindRepository(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.MkdirAll(DataPath(tmpDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(UnitsPath(tmpDir), []byte("[]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// Find from repo root itself
	got, err := FindRepository(tmpDir)
	if err != nil {
		t.Fatalf("FindRepository(%q) error: %v", tmpDir, err)
	}
	if got != tmpDir {
		t.Errorf("FindRepository(%q) = %q, want %q", tmpDir, got, tmpDir)
	}

	// Find from a nested directory
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	got, err = FindRepository(nested)
	if err != nil {
		t.Fatalf("FindRepository(%q) error: %v", nested, err)
	}
	if got != tmpDir {
		t.Errorf("FindRepository(%q) = %q, want %q", nested, got, tmpDir)
	}
}

func TestFindRepository_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	if _, err := FindRepository(tmpDir); err == nil {
		t.Error("FindRepository() expected error for non-repo tree")
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/data", filepath.Join(home, "data")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~weird", "~weird"},
	}
	for _, tt := range tests {
		if got := ExpandTilde(tt.in); got != tt.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
