package layout

import (
	"math"

	"github.com/matzehuels/graphscape/pkg/graph"
)

// buildCircular places node i of n at angle 2πi/n on a circle around the
// origin, in node order.
func buildCircular(o Options, p Params) Strategy {
	r := o.circularOptions().Radius
	ids := p.Structure.NodeIDs()
	out := make(positions, len(ids))
	n := float64(len(ids))
	for i, id := range ids {
		a := 2 * math.Pi * float64(i) / n
		out[id] = graph.Position{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	return out
}
