package graph

import (
	"sort"

	"github.com/anythingbutmetric/abm/internal/snapshot"
)

// AllIslands partitions the snapshot's units into connected components of
// the edge-induced undirected graph, sorted largest-first (stable, so
// equal-sized components keep discovery order). Units with no edges are
// appended after the sorted components as singleton islands, in catalogue
// order. Every unit id appears in exactly one island.
func AllIslands(s *snapshot.Snapshot) [][]string {
	adj := make(map[string][]string)
	var edgeBearing []string
	seen := make(map[string]bool)
	for _, e := range s.Edges {
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
		for _, id := range []string{e.From, e.To} {
			if !seen[id] {
				seen[id] = true
				edgeBearing = append(edgeBearing, id)
			}
		}
	}

	visited := make(map[string]bool)
	var islands [][]string
	for _, start := range edgeBearing {
		if visited[start] {
			continue
		}
		islands = append(islands, collectComponent(adj, visited, start))
	}

	sort.SliceStable(islands, func(i, j int) bool {
		return len(islands[i]) > len(islands[j])
	})

	for _, u := range s.Units {
		if !seen[u.ID] {
			islands = append(islands, []string{u.ID})
		}
	}
	return islands
}

// collectComponent BFS-walks one connected component from start, marking
// members visited. Member order is discovery order.
func collectComponent(adj map[string][]string, visited map[string]bool, start string) []string {
	component := []string{start}
	visited[start] = true
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range adj[cur] {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			component = append(component, nb)
			queue = append(queue, nb)
		}
	}
	return component
}
