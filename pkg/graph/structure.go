package graph

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
)

// Structure is a directed multigraph keyed by node ID.
//
// Edges are keyed by (source, target, edge ID), so any number of parallel
// edges between the same pair of nodes may coexist. Every stored edge has both
// endpoints present. The zero value is not usable; create one with [New] or
// [Build].
type Structure struct {
	logger *log.Logger

	g     *multi.DirectedGraph
	ids   map[string]int64
	names map[int64]string

	nodes map[string]RawNode
	order []string

	edges   []RawEdge
	edgeIdx map[string]int
	out     map[string][]int
	in      map[string][]int
}

// New returns an empty structure. A nil logger discards warnings.
func New(logger *log.Logger) *Structure {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Structure{logger: logger}
	s.reset()
	return s
}

// Build creates a structure from raw nodes and edges. See [Structure.Load].
func Build(nodes []RawNode, edges []RawEdge, logger *log.Logger) (*Structure, BuildReport) {
	s := New(logger)
	report := s.Load(nodes, edges)
	return s, report
}

func (s *Structure) reset() {
	s.g = multi.NewDirectedGraph()
	s.ids = make(map[string]int64)
	s.names = make(map[int64]string)
	s.nodes = make(map[string]RawNode)
	s.order = nil
	s.edges = nil
	s.edgeIdx = make(map[string]int)
	s.out = make(map[string][]int)
	s.in = make(map[string][]int)
}

// Load clears the structure and inserts nodes, then edges.
//
// Nodes with an empty or already-seen ID are skipped. Edges whose source or
// target is not a node, or whose ID was already used, are skipped. Edges
// without an ID get one derived from their endpoints. Every skip is logged at
// warn level and listed in the returned report.
func (s *Structure) Load(nodes []RawNode, edges []RawEdge) BuildReport {
	s.reset()
	var report BuildReport

	for _, n := range nodes {
		if err := s.addNode(n); err != nil {
			s.logger.Warn("skipping node", "node", n.ID, "err", err)
			report.SkippedNodes = append(report.SkippedNodes, Fault{ID: n.ID, Err: err})
		}
	}
	for _, e := range edges {
		if err := s.addEdge(e); err != nil {
			s.logger.Warn("skipping edge", "edge", e.ID, "source", e.Source, "target", e.Target, "err", err)
			report.SkippedEdges = append(report.SkippedEdges, Fault{ID: e.ID, Err: err})
		}
	}
	return report
}

func (s *Structure) addNode(n RawNode) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, ok := s.nodes[n.ID]; ok {
		return ErrDuplicateNodeID
	}
	gn := s.g.NewNode()
	s.g.AddNode(gn)
	s.ids[n.ID] = gn.ID()
	s.names[gn.ID()] = n.ID
	if n.Data != nil {
		n.Data = n.Data.Clone()
	}
	s.nodes[n.ID] = n
	s.order = append(s.order, n.ID)
	return nil
}

func (s *Structure) addEdge(e RawEdge) error {
	src, ok := s.ids[e.Source]
	if !ok {
		return ErrUnknownSourceNode
	}
	dst, ok := s.ids[e.Target]
	if !ok {
		return ErrUnknownTargetNode
	}
	if e.ID == "" {
		e.ID = s.edgeID(e.Source, e.Target)
	}
	if _, ok := s.edgeIdx[e.ID]; ok {
		return ErrDuplicateEdgeID
	}

	s.g.SetLine(s.g.NewLine(s.g.Node(src), s.g.Node(dst)))

	if e.Data != nil {
		e.Data = e.Data.Clone()
	}
	idx := len(s.edges)
	s.edges = append(s.edges, e)
	s.edgeIdx[e.ID] = idx
	s.out[e.Source] = append(s.out[e.Source], idx)
	s.in[e.Target] = append(s.in[e.Target], idx)
	return nil
}

func (s *Structure) edgeID(source, target string) string {
	id := source + "-" + target
	for i := 2; ; i++ {
		if _, ok := s.edgeIdx[id]; !ok {
			return id
		}
		id = fmt.Sprintf("%s-%s-%d", source, target, i)
	}
}

// =============================================================================
// Queries
// =============================================================================

// NodeCount returns the number of nodes.
func (s *Structure) NodeCount() int { return len(s.order) }

// EdgeCount returns the number of edges, counting parallel edges separately.
func (s *Structure) EdgeCount() int { return len(s.edges) }

// NodeIDs returns node IDs in insertion order.
func (s *Structure) NodeIDs() []string {
	return append([]string(nil), s.order...)
}

// HasNode reports whether a node with the given ID exists.
func (s *Structure) HasNode(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// Node returns the raw node with the given ID.
func (s *Structure) Node(id string) (RawNode, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns all raw nodes in insertion order.
func (s *Structure) Nodes() []RawNode {
	out := make([]RawNode, len(s.order))
	for i, id := range s.order {
		out[i] = s.nodes[id]
	}
	return out
}

// Edges returns all edges in insertion order.
func (s *Structure) Edges() []RawEdge {
	return append([]RawEdge(nil), s.edges...)
}

// Edge returns the edge with the given ID.
func (s *Structure) Edge(id string) (RawEdge, bool) {
	idx, ok := s.edgeIdx[id]
	if !ok {
		return RawEdge{}, false
	}
	return s.edges[idx], true
}

// Outbound returns the edges leaving id, including parallel edges.
func (s *Structure) Outbound(id string) []RawEdge {
	return s.collect(s.out[id])
}

// Inbound returns the edges entering id, including parallel edges.
func (s *Structure) Inbound(id string) []RawEdge {
	return s.collect(s.in[id])
}

func (s *Structure) collect(idx []int) []RawEdge {
	if len(idx) == 0 {
		return nil
	}
	out := make([]RawEdge, len(idx))
	for i, j := range idx {
		out[i] = s.edges[j]
	}
	return out
}

// InboundNeighbors returns the distinct source IDs of edges entering id, in
// edge insertion order.
func (s *Structure) InboundNeighbors(id string) []string {
	return s.neighbors(s.in[id], func(e RawEdge) string { return e.Source })
}

// OutboundNeighbors returns the distinct target IDs of edges leaving id, in
// edge insertion order.
func (s *Structure) OutboundNeighbors(id string) []string {
	return s.neighbors(s.out[id], func(e RawEdge) string { return e.Target })
}

func (s *Structure) neighbors(idx []int, end func(RawEdge) string) []string {
	var out []string
	seen := make(map[string]bool, len(idx))
	for _, j := range idx {
		id := end(s.edges[j])
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Degree returns the number of edges touching id, counting parallel edges
// and counting a self-loop twice.
func (s *Structure) Degree(id string) int {
	return len(s.in[id]) + len(s.out[id])
}

// =============================================================================
// gonum Interop
// =============================================================================

// Directed returns the underlying gonum graph. Callers must not modify it.
func (s *Structure) Directed() gonum.Directed { return s.g }

// GraphID returns the gonum node ID for a node ID.
func (s *Structure) GraphID(id string) (int64, bool) {
	gid, ok := s.ids[id]
	return gid, ok
}

// NodeName returns the node ID for a gonum node ID.
func (s *Structure) NodeName(gid int64) (string, bool) {
	id, ok := s.names[gid]
	return id, ok
}
