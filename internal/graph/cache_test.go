package graph

import (
	"sync"
	"testing"

	"github.com/anythingbutmetric/abm/internal/edge"
)

func TestCache_BuildOnce(t *testing.T) {
	snap := testSnapshot([]string{"a", "b"}, []edge.Edge{e("e001", "a", "b", 2)})
	cache := NewCache()

	first := cache.Index(snap)
	second := cache.Index(snap)
	if first != second {
		t.Error("Cache.Index() rebuilt the index for the same snapshot")
	}
}

func TestCache_NewSnapshotNewIndex(t *testing.T) {
	cache := NewCache()
	snapA := testSnapshot([]string{"a", "b"}, []edge.Edge{e("e001", "a", "b", 2)})
	snapB := testSnapshot([]string{"a", "b"}, []edge.Edge{e("e001", "a", "b", 2)})

	// Identity is the pointer, not the contents
	if cache.Index(snapA) == cache.Index(snapB) {
		t.Error("distinct snapshots shared an index")
	}
}

func TestCache_Evict(t *testing.T) {
	cache := NewCache()
	snap := testSnapshot([]string{"a", "b"}, []edge.Edge{e("e001", "a", "b", 2)})

	first := cache.Index(snap)
	cache.Evict(snap)
	second := cache.Index(snap)
	if first == second {
		t.Error("Cache.Index() returned the evicted index")
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := NewCache()
	snap := testSnapshot([]string{"a", "b"}, []edge.Edge{e("e001", "a", "b", 2)})

	var wg sync.WaitGroup
	results := make([]*Index, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Index(snap)
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent Index() calls returned different indexes")
		}
	}
}
