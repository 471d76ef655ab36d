// Package config handles repository and global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File layout inside a dataset repository.
const (
	DataDir   = "data"
	UnitsFile = "units.json"
	EdgesFile = "edges.json"
	SeedDir   = "seed"
	CacheDir  = "cache"
	DBFile    = "abm.db"
	FeedsFile = "feeds.txt"
)

// DataPath returns the path to the data directory from a root path.
func DataPath(root string) string {
	return filepath.Join(root, DataDir)
}

// UnitsPath returns the path to the live units.json from a root path.
func UnitsPath(root string) string {
	return filepath.Join(root, DataDir, UnitsFile)
}

// EdgesPath returns the path to the live edges.json from a root path.
func EdgesPath(root string) string {
	return filepath.Join(root, DataDir, EdgesFile)
}

// SeedUnitsPath returns the path to the seed snapshot's units.json.
func SeedUnitsPath(root string) string {
	return filepath.Join(root, DataDir, SeedDir, UnitsFile)
}

// SeedEdgesPath returns the path to the seed snapshot's edges.json.
func SeedEdgesPath(root string) string {
	return filepath.Join(root, DataDir, SeedDir, EdgesFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, DataDir, CacheDir)
}

// DBPath returns the path to the SQLite query cache from a root path.
func DBPath(root string) string {
	return filepath.Join(root, DataDir, CacheDir, DBFile)
}

// FeedsPath returns the path to feeds.txt from a root path.
func FeedsPath(root string) string {
	return filepath.Join(root, DataDir, FeedsFile)
}

// IsRepository checks if the given path contains a dataset repository
// (a data directory with a units file).
func IsRepository(root string) bool {
	info, err := os.Stat(UnitsPath(root))
	return err == nil && !info.IsDir()
}

// FindRepository walks up from the given path to find a dataset repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("no dataset repository found from %s upward", start)
		}
		abs = parent
	}
}

// ExpandTilde expands a leading ~ in a path to the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
