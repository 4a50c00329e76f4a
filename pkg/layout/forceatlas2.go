package layout

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/graphscape/pkg/graph"
)

// =============================================================================
// ForceAtlas2
// =============================================================================

// fa2Node is one ForceAtlas2 body. It satisfies barneshut.Particle2.
type fa2Node struct {
	x, y         float64
	dx, dy       float64
	oldDx, oldDy float64
	mass         float64
	convergence  float64
}

func (n *fa2Node) Coord2() r2.Vec { return r2.Vec{X: n.x, Y: n.y} }
func (n *fa2Node) Mass() float64 { return n.mass }

type fa2Edge struct{ source, target *fa2Node }

// buildForceAtlas2 runs the ForceAtlas2 model for a fixed number of
// iterations. Node mass is 1 + degree; repulsion is mass-weighted and falls
// off with distance; gravity pulls toward the origin; attraction follows
// edges (optionally log-scaled). Each node moves at its own adaptive speed
// derived from its swinging and traction.
func buildForceAtlas2(o Options, p Params) Strategy {
	opts := o.forceAtlas2Options()
	s := p.Structure
	ids := s.NodeIDs()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef))

	spread := math.Sqrt(float64(len(ids))) * 10
	nodes := make([]*fa2Node, len(ids))
	index := make(map[string]*fa2Node, len(ids))
	for i, id := range ids {
		n := &fa2Node{mass: 1 + float64(s.Degree(id)), convergence: 1}
		if pos, ok := p.Seed[id]; ok {
			n.x, n.y = pos.X, pos.Y
		} else {
			n.x = (rng.Float64() - 0.5) * spread
			n.y = (rng.Float64() - 0.5) * spread
		}
		nodes[i] = n
		index[id] = n
	}
	var edges []fa2Edge
	for _, e := range s.Edges() {
		if e.Source == e.Target {
			continue
		}
		edges = append(edges, fa2Edge{index[e.Source], index[e.Target]})
	}

	sim := &fa2{opts: opts, nodes: nodes, edges: edges}
	for i := 0; i < opts.Iterations; i++ {
		sim.iterate()
	}

	out := make(positions, len(ids))
	for i, id := range ids {
		out[id] = graph.Position{X: nodes[i].x, Y: nodes[i].y}
	}
	return out
}

type fa2 struct {
	opts  ForceAtlas2Options
	nodes []*fa2Node
	edges []fa2Edge
}

func (f *fa2) iterate() {
	for _, n := range f.nodes {
		n.oldDx, n.oldDy = n.dx, n.dy
		n.dx, n.dy = 0, 0
	}
	if !f.opts.BarnesHut || !f.repulseBarnesHut() {
		f.repulseExact()
	}
	f.gravity()
	f.attract()
	f.move()
}

func (f *fa2) repulseExact() {
	k := f.opts.ScalingRatio
	for i, a := range f.nodes {
		for _, b := range f.nodes[i+1:] {
			xd, yd := a.x-b.x, a.y-b.y
			d2 := xd*xd + yd*yd
			if d2 == 0 {
				continue
			}
			factor := k * a.mass * b.mass / d2
			a.dx += xd * factor
			a.dy += yd * factor
			b.dx -= xd * factor
			b.dy -= yd * factor
		}
	}
}

// repulseBarnesHut approximates repulsion with a gonum quadtree. It reports
// false when the tree cannot be built.
func (f *fa2) repulseBarnesHut() bool {
	particles := make([]barneshut.Particle2, len(f.nodes))
	for i, n := range f.nodes {
		particles[i] = n
	}
	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		return false
	}
	k := f.opts.ScalingRatio
	repel := func(_, _ barneshut.Particle2, m1, m2 float64, v r2.Vec) r2.Vec {
		d2 := v.X*v.X + v.Y*v.Y
		if d2 == 0 {
			return r2.Vec{}
		}
		return r2.Scale(-k*m1*m2/d2, v)
	}
	for _, n := range f.nodes {
		dv := plane.ForceOn(n, f.opts.BarnesHutTheta, repel)
		n.dx += dv.X
		n.dy += dv.Y
	}
	return true
}

func (f *fa2) gravity() {
	k := f.opts.ScalingRatio
	g := f.opts.Gravity / k
	for _, n := range f.nodes {
		d := math.Hypot(n.x, n.y)
		var factor float64
		switch {
		case f.opts.StrongGravity:
			factor = k * n.mass * g
		case d > 0:
			factor = k * n.mass * g / d
		}
		n.dx -= n.x * factor
		n.dy -= n.y * factor
	}
}

func (f *fa2) attract() {
	coefficient := 1.0
	if f.opts.OutboundAttractionDistribution {
		total := 0.0
		for _, n := range f.nodes {
			total += n.mass
		}
		if len(f.nodes) > 0 {
			coefficient = total / float64(len(f.nodes))
		}
	}
	for _, e := range f.edges {
		s, t := e.source, e.target
		xd, yd := s.x-t.x, s.y-t.y
		var factor float64
		if f.opts.LinLog {
			d := math.Hypot(xd, yd)
			if d == 0 {
				continue
			}
			factor = -coefficient * math.Log(1+d) / d
		} else {
			factor = -coefficient
		}
		if f.opts.OutboundAttractionDistribution {
			factor /= s.mass
		}
		s.dx += xd * factor
		s.dy += yd * factor
		t.dx -= xd * factor
		t.dy -= yd * factor
	}
}

func (f *fa2) move() {
	for _, n := range f.nodes {
		swinging := n.mass * math.Hypot(n.oldDx-n.dx, n.oldDy-n.dy)
		traction := math.Hypot(n.oldDx+n.dx, n.oldDy+n.dy) / 2
		speed := n.convergence * math.Log(1+traction) / (1 + math.Sqrt(swinging))
		n.convergence = math.Min(1, math.Sqrt(speed*(n.dx*n.dx+n.dy*n.dy)/(1+math.Sqrt(swinging))))
		n.x += n.dx * speed / f.opts.SlowDown
		n.y += n.dy * speed / f.opts.SlowDown
	}
}
