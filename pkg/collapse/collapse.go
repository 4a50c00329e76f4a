// Package collapse resolves which nodes and edges a set of collapsed nodes
// hides.
//
// Collapsing a node hides its outbound edges. A node becomes hidden once
// every inbound edge it has (self-loops aside) comes from a collapsed or
// hidden node; its own outbound edges are then hidden too, and the rule is
// applied again until nothing changes. The hidden sets are the smallest ones
// satisfying the rule, so collapsing more nodes can only hide more. A
// collapsed node is hidden only by other collapsed nodes, never by a cycle
// leading back to itself.
//
// [Resolution.ExpandPath] answers the inverse question: which collapsed
// nodes must be expanded for a hidden node to reappear.
package collapse

import (
	"maps"
	"slices"

	"github.com/matzehuels/graphscape/pkg/graph"
)

// Resolution is the outcome of [Resolve].
type Resolution struct {
	// Nodes and Edges are the visible records, in input order.
	Nodes []graph.RawNode
	Edges []graph.RawEdge

	g           *adjacency
	collapsed   map[string]bool
	hiddenNodes map[string]bool
	hiddenEdges map[string]bool
}

// adjacency is the edge structure the hiding rule runs on. Self-loops and
// edges with unknown endpoints are left out.
type adjacency struct {
	out      map[string][]string
	inbound  map[string][]string
	inDegree map[string]int
}

func newAdjacency(exists map[string]bool, edges []graph.RawEdge) *adjacency {
	g := &adjacency{
		out:      make(map[string][]string),
		inbound:  make(map[string][]string),
		inDegree: make(map[string]int),
	}
	for _, e := range edges {
		if !exists[e.Source] || !exists[e.Target] || e.Source == e.Target {
			continue
		}
		g.out[e.Source] = append(g.out[e.Source], e.Target)
		g.inbound[e.Target] = append(g.inbound[e.Target], e.Source)
		g.inDegree[e.Target]++
	}
	return g
}

// spread returns the least set of nodes whose every inbound edge comes from
// a collapsed node or a node in the set. Collapsed nodes may land in it.
func (g *adjacency) spread(collapsed map[string]bool) map[string]bool {
	hidden := make(map[string]bool)
	covered := make(map[string]int)
	done := make(map[string]bool)
	var queue []string
	cover := func(src string) {
		if done[src] {
			return
		}
		done[src] = true
		for _, tgt := range g.out[src] {
			covered[tgt]++
			if covered[tgt] == g.inDegree[tgt] && !hidden[tgt] {
				hidden[tgt] = true
				queue = append(queue, tgt)
			}
		}
	}
	for id := range collapsed {
		cover(id)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		cover(id)
	}
	return hidden
}

// hide applies the hiding rule for collapsed. A collapsed node is hidden
// only when the other collapsed nodes hide it, so it never hides itself
// through a cycle.
func (g *adjacency) hide(collapsed map[string]bool) map[string]bool {
	hidden := g.spread(collapsed)
	for c := range collapsed {
		if !hidden[c] {
			continue
		}
		others := maps.Clone(collapsed)
		delete(others, c)
		if !g.spread(others)[c] {
			delete(hidden, c)
		}
	}
	return hidden
}

// Resolve computes the hidden node and edge sets for collapsed. Collapsed IDs
// that are not nodes are ignored, as are edges whose endpoints are not nodes.
func Resolve(collapsed []string, nodes []graph.RawNode, edges []graph.RawEdge) *Resolution {
	exists := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		exists[n.ID] = true
	}

	r := &Resolution{
		g:           newAdjacency(exists, edges),
		collapsed:   make(map[string]bool),
		hiddenEdges: make(map[string]bool),
	}
	for _, id := range collapsed {
		if exists[id] {
			r.collapsed[id] = true
		}
	}
	r.hiddenNodes = r.g.hide(r.collapsed)

	for _, n := range nodes {
		if !r.hiddenNodes[n.ID] {
			r.Nodes = append(r.Nodes, n)
		}
	}
	for _, e := range edges {
		if r.hides(e.Source) {
			r.hiddenEdges[edgeKey(e)] = true
			continue
		}
		r.Edges = append(r.Edges, e)
	}
	return r
}

func (r *Resolution) hides(id string) bool {
	return r.collapsed[id] || r.hiddenNodes[id]
}

// edgeKey identifies an edge in the hidden edge set. Edges without an ID
// use the "source-target" form the graph builder assigns first.
func edgeKey(e graph.RawEdge) string {
	if e.ID != "" {
		return e.ID
	}
	return e.Source + "-" + e.Target
}

// HiddenNodes returns the hidden node IDs, sorted.
func (r *Resolution) HiddenNodes() []string {
	return slices.Sorted(maps.Keys(r.hiddenNodes))
}

// HiddenEdges returns the hidden edge IDs, sorted.
func (r *Resolution) HiddenEdges() []string {
	return slices.Sorted(maps.Keys(r.hiddenEdges))
}

// IsHidden reports whether node id is hidden.
func (r *Resolution) IsHidden(id string) bool { return r.hiddenNodes[id] }

// IsCollapsed reports whether node id is collapsed.
func (r *Resolution) IsCollapsed(id string) bool { return r.collapsed[id] }

// ExpandPath returns the collapsed nodes that must be expanded for id to
// become visible again, nearest first. A visible or unknown id yields nil.
//
// Each round searches inbound edges backward from id through hidden nodes
// for the nearest collapsed node still in the set, and removes it, until id
// is visible.
func (r *Resolution) ExpandPath(id string) []string {
	if !r.hiddenNodes[id] {
		return nil
	}
	remaining := maps.Clone(r.collapsed)
	hidden := r.hiddenNodes
	var path []string
	for hidden[id] {
		c, ok := r.nearestCollapsed(id, remaining, hidden)
		if !ok {
			break
		}
		path = append(path, c)
		delete(remaining, c)
		hidden = r.g.hide(remaining)
	}
	return path
}

func (r *Resolution) nearestCollapsed(id string, collapsed, hidden map[string]bool) (string, bool) {
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, src := range r.g.inbound[cur] {
			if seen[src] {
				continue
			}
			seen[src] = true
			if collapsed[src] {
				return src, true
			}
			if hidden[src] {
				queue = append(queue, src)
			}
		}
	}
	return "", false
}

// Ancestors returns the first-inbound ancestor chain of id, nearest first,
// regardless of visibility. The walk stops at a root or on revisiting a node.
func (r *Resolution) Ancestors(id string) []string {
	var chain []string
	seen := map[string]bool{id: true}
	for cur := id; ; {
		in := r.g.inbound[cur]
		if len(in) == 0 || seen[in[0]] {
			return chain
		}
		cur = in[0]
		seen[cur] = true
		chain = append(chain, cur)
	}
}
