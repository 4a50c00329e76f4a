package force

import (
	"io"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/graph/depth"
)

// Params carries the graph-specific inputs of a force layout.
type Params struct {
	Structure *graph.Structure
	Depth     depth.Result

	// ClusterAttribute enables the clustering force when non-empty.
	ClusterAttribute string

	// Pinned bodies are fixed at the given position on every axis.
	Pinned map[string]graph.Position

	Logger *log.Logger
}

// Layout is a force-directed layout over a [graph.Structure].
type Layout struct {
	sim        *Simulation
	opts       Options
	manyBody   *ManyBody
	clustering *Clustering
	dag        bool
}

// New assembles a simulation with link, many-body, centering and
// positioning forces, plus DAG positioning, clustering and collision when
// configured. opts should already carry defaults.
func New(opts Options, p Params) *Layout {
	logger := p.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := p.Structure
	sim := NewSimulation(s.NodeIDs(), opts.Dimensions, opts.Seed)
	for _, b := range sim.bodies {
		b.Radius = DefaultNodeSize
		if n, _ := s.Node(b.ID); n.Size > 0 {
			b.Radius = n.Size
		}
	}

	clusterOf := func(b *Body) (string, bool) {
		n, _ := s.Node(b.ID)
		return n.Data.Cluster(p.ClusterAttribute)
	}

	var links []*Link
	var pairs [][2]*Body
	for _, e := range s.Edges() {
		src, _ := sim.Body(e.Source)
		tgt, _ := sim.Body(e.Target)
		l := &Link{Source: src, Target: tgt, Distance: opts.LinkDistance}
		if p.ClusterAttribute != "" {
			cs, okS := clusterOf(src)
			ct, okT := clusterOf(tgt)
			if okS == okT && cs == ct {
				l.Strength = opts.LinkStrengthIntra
			} else {
				l.Strength = opts.LinkStrengthInter
			}
		}
		links = append(links, l)
		pairs = append(pairs, [2]*Body{src, tgt})
	}

	l := &Layout{sim: sim, opts: opts}
	l.manyBody = NewManyBody(sim, opts.NodeStrength, opts.BarnesHut, opts.Theta)

	sim.AddForce(NewLinks(sim, links))
	sim.AddForce(l.manyBody)
	sim.AddForce(Center(sim))
	for ax := 0; ax < sim.dims; ax++ {
		sim.AddForce(Position(sim, ax, 0, DefaultPositionStrength))
	}

	if opts.DagMode != DagNone {
		l.dag = ApplyDag(sim, p.Depth, opts.DagMode, opts.LevelRatio)
		if !l.dag {
			logger.Debug("skipping DAG positioning", "mode", opts.DagMode, "invalid", p.Depth.Invalid)
		}
	}

	if p.ClusterAttribute != "" {
		l.clustering = NewClustering(sim, clusterOf, pairs, opts.ClusterType, opts.ClusterStrength, opts.Seed)
		sim.AddForce(l.clustering)
	}

	if opts.CollideRadius > 0 {
		sim.AddForce(Collide(sim, 1, opts.CollideRadius))
	}

	for id, pos := range p.Pinned {
		if b, ok := sim.Body(id); ok {
			b.FixAll(r3.Vec{X: pos.X, Y: pos.Y, Z: pos.Z})
		}
	}
	sim.SettleFixed()
	return l
}

// Step runs the simulation until alpha drops below [DefaultStopAlpha] or
// the tick budget is spent. It always reports true: the layout is read only
// after it settles.
func (l *Layout) Step() bool {
	l.sim.Run(DefaultStopAlpha, l.opts.MaxTicks)
	return true
}

// Position returns the simulated position of id.
func (l *Layout) Position(id string) (graph.Position, bool) {
	b, ok := l.sim.Body(id)
	if !ok {
		return graph.Position{}, false
	}
	p := graph.Position{X: b.Pos.X, Y: b.Pos.Y}
	if l.sim.dims == 3 {
		p.Z = b.Pos.Z
	}
	return p, true
}

// Simulation exposes the underlying simulation.
func (l *Layout) Simulation() *Simulation { return l.sim }

// DagApplied reports whether depth-based positioning is active.
func (l *Layout) DagApplied() bool { return l.dag }

// Clusters returns the clusters of the clustering force, if any.
func (l *Layout) Clusters() []*Cluster {
	if l.clustering == nil {
		return nil
	}
	return l.clustering.Clusters()
}
