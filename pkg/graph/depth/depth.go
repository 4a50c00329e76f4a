// Package depth computes topological depth for DAG-aware layouts.
//
// Depth is the length of the longest path ending at a node: sources sit at
// depth 0 and every node sits strictly below all of its parents. The
// computation is Kahn's algorithm: a queue of nodes whose parents are all
// resolved, relaxing each child's depth to one more than its deepest parent.
// A depth only ever increases while a node waits in the queue.
//
// Nodes on or below a cycle never reach in-degree zero. Any node left
// unresolved, self-loops included, marks the whole result invalid. Layouts that pin nodes by depth must check [Result.Invalid] and
// drop their depth-based forces when it is set.
package depth

import "github.com/matzehuels/graphscape/pkg/graph"

// Unvisited is the depth of a node the traversal never resolved.
const Unvisited = -1

// Entry holds the depth and adjacency of one node.
type Entry struct {
	Depth    int
	Outbound []string
	Inbound  []string
}

// Result is the outcome of [Analyze].
type Result struct {
	// Invalid is set when the graph contains a cycle. Depths are then
	// incomplete and must not be used for positioning.
	Invalid bool

	// Entries maps node IDs to their depth entry.
	Entries map[string]*Entry

	// MaxDepth is the deepest resolved depth, or 1 when no node sits
	// below depth 0.
	MaxDepth int
}

// Depth returns the depth of id, or [Unvisited] when unknown.
func (r Result) Depth(id string) int {
	if e, ok := r.Entries[id]; ok {
		return e.Depth
	}
	return Unvisited
}

// Analyze computes per-node depth from a node list and an edge list.
//
// Edges whose endpoints are not in the node list are ignored. Parallel edges
// count once. Traversal order does not affect the outcome: an acyclic graph
// always yields the same depths, and a cyclic one is always invalid.
func Analyze(nodes []graph.RawNode, edges []graph.RawEdge) Result {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return analyze(ids, edges)
}

// AnalyzeStructure runs [Analyze] over a built structure.
func AnalyzeStructure(s *graph.Structure) Result {
	return analyze(s.NodeIDs(), s.Edges())
}

func analyze(ids []string, edges []graph.RawEdge) Result {
	entries := make(map[string]*Entry, len(ids))
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := entries[id]; ok {
			continue
		}
		entries[id] = &Entry{Depth: Unvisited}
		order = append(order, id)
	}

	type pair struct{ from, to string }
	seen := make(map[pair]bool, len(edges))
	inDegree := make(map[string]int, len(order))
	for _, e := range edges {
		src, ok := entries[e.Source]
		if !ok {
			continue
		}
		dst, ok := entries[e.Target]
		if !ok {
			continue
		}
		p := pair{e.Source, e.Target}
		if seen[p] {
			continue
		}
		seen[p] = true
		src.Outbound = append(src.Outbound, e.Target)
		dst.Inbound = append(dst.Inbound, e.Source)
		inDegree[e.Target]++
	}

	queue := make([]string, 0, len(order))
	for _, id := range order {
		if inDegree[id] == 0 {
			entries[id].Depth = 0
			queue = append(queue, id)
		}
	}

	resolved := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		resolved++

		next := entries[curr].Depth + 1
		for _, child := range entries[curr].Outbound {
			if c := entries[child]; next > c.Depth {
				c.Depth = next
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	maxDepth := 0
	for _, e := range entries {
		maxDepth = max(maxDepth, e.Depth)
	}
	if maxDepth <= 0 {
		maxDepth = 1
	}

	return Result{
		Invalid:  resolved < len(order),
		Entries:  entries,
		MaxDepth: maxDepth,
	}
}
