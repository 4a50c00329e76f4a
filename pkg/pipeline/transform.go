package pipeline

import (
	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/label"
	"github.com/matzehuels/graphscape/pkg/layout"
	"github.com/matzehuels/graphscape/pkg/sizing"
)

// defaultEdgeSize is used for edges without an explicit size.
const defaultEdgeSize = 1.0

// Transform assembles render-ready nodes and edges from a structure and a
// positioned strategy.
//
// Non-finite positions become zero. Nodes missing from sizes get
// [sizing.DefaultSize]. cam may be nil, in which case label distance
// cutoffs do not apply. Edges whose endpoints are not among the output
// nodes are dropped.
func Transform(s *graph.Structure, strat layout.Strategy, sizes map[string]float64, policy label.Policy, cam label.Camera, clusterAttr string) ([]graph.Node, []graph.Edge) {
	raw := s.Nodes()
	nodes := make([]graph.Node, 0, len(raw))
	present := make(map[string]bool, len(raw))

	for _, n := range raw {
		pos := strat.NodePosition(n.ID).Finite()
		size, ok := sizes[n.ID]
		if !ok {
			size = sizing.DefaultSize
		}
		out := graph.Node{
			ID:           n.ID,
			Label:        n.Label,
			Fill:         n.Fill,
			Icon:         n.Icon,
			Position:     pos,
			Size:         size,
			LabelVisible: policy.Node(size, pos.Z, len(raw), cam),
			Data:         n.Data.Clone(),
			Parents:      s.InboundNeighbors(n.ID),
		}
		if c, ok := n.Data.Cluster(clusterAttr); ok {
			out.Cluster = c
		}
		nodes = append(nodes, out)
		present[n.ID] = true
	}

	edgeLabels := policy.Edge()
	var edges []graph.Edge
	for _, e := range s.Edges() {
		if !present[e.Source] || !present[e.Target] {
			continue
		}
		size := e.Size
		if size == 0 {
			size = defaultEdgeSize
		}
		edges = append(edges, graph.Edge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			Label:        e.Label,
			Size:         size,
			LabelVisible: edgeLabels,
			Data:         e.Data.Clone(),
		})
	}
	return nodes, edges
}
