// Package cluster derives presentation regions from positioned nodes.
//
// Nodes are grouped by the value of a clustering attribute in their data
// bag. For each group [Bounds] computes the axis-aligned box enclosing every
// member, each expanded by the member's size. Nodes without the attribute do
// not belong to any group.
package cluster

import (
	"math"
	"slices"

	"github.com/matzehuels/graphscape/pkg/graph"
)

// Group is the bounding region of one cluster.
type Group struct {
	Label  string         `json:"label"`
	Nodes  []string       `json:"nodes"`
	Center graph.Position `json:"center"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Depth  float64        `json:"depth"`
}

type box struct {
	min, max [3]float64
}

func (b *box) add(p graph.Position, r float64) {
	for i, v := range [3]float64{p.X, p.Y, p.Z} {
		b.min[i] = math.Min(b.min[i], v-r)
		b.max[i] = math.Max(b.max[i], v+r)
	}
}

// Bounds groups nodes by attr and returns each group's bounding region keyed
// by cluster label. An empty attr yields an empty map. 2D layouts produce a
// zero Depth only when every member has zero size.
func Bounds(nodes []graph.Node, attr string) map[string]Group {
	groups := make(map[string]Group)
	if attr == "" {
		return groups
	}

	boxes := make(map[string]*box)
	for _, n := range nodes {
		key, ok := clusterOf(n, attr)
		if !ok {
			continue
		}
		b, ok := boxes[key]
		if !ok {
			inf := math.Inf(1)
			b = &box{min: [3]float64{inf, inf, inf}, max: [3]float64{-inf, -inf, -inf}}
			boxes[key] = b
		}
		b.add(n.Position.Finite(), math.Abs(n.Size))

		g := groups[key]
		g.Label = key
		g.Nodes = append(g.Nodes, n.ID)
		groups[key] = g
	}

	for key, b := range boxes {
		g := groups[key]
		g.Center = graph.Position{
			X: (b.min[0] + b.max[0]) / 2,
			Y: (b.min[1] + b.max[1]) / 2,
			Z: (b.min[2] + b.max[2]) / 2,
		}
		g.Width = b.max[0] - b.min[0]
		g.Height = b.max[1] - b.min[1]
		g.Depth = b.max[2] - b.min[2]
		groups[key] = g
	}
	return groups
}

func clusterOf(n graph.Node, attr string) (string, bool) {
	if n.Cluster != "" {
		return n.Cluster, true
	}
	return n.Data.Cluster(attr)
}

// Labels returns the cluster labels of groups, sorted.
func Labels(groups map[string]Group) []string {
	labels := make([]string, 0, len(groups))
	for k := range groups {
		labels = append(labels, k)
	}
	slices.Sort(labels)
	return labels
}
