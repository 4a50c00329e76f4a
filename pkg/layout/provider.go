package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/graph/depth"
	"github.com/matzehuels/graphscape/pkg/layout/force"
)

// Params carries the graph and engine state a strategy is built from.
type Params struct {
	Structure *graph.Structure
	Depth     depth.Result

	// Drags and PositionFunc override algorithm output, in that order of
	// increasing precedence.
	Drags        *Drags
	PositionFunc PositionFunc

	// ClusterAttribute enables clustering on force-directed layouts.
	ClusterAttribute string

	// Seed holds positions from a previous run. No-overlap relaxation and
	// ForceAtlas2 start from them.
	Seed map[string]graph.Position

	Logger *log.Logger
}

type builder func(o Options, p Params) Strategy

var builders = map[Type]builder{
	ForceDirected2D: buildForce,
	ForceDirected3D: buildForce,
	TreeTd2D:        buildForce,
	TreeLr2D:        buildForce,
	TreeTd3D:        buildForce,
	TreeLr3D:        buildForce,
	RadialOut2D:     buildForce,
	RadialOut3D:     buildForce,
	Circular2D:      buildCircular,
	HierarchicalTd:  buildHierarchical,
	HierarchicalLr:  buildHierarchical,
	NoOverlap:       buildNoOverlap,
	ForceAtlas2:     buildForceAtlas2,
	Custom:          buildCustom,
}

// New validates opts and builds the strategy for its type. Configuration
// faults are returned before any layout work starts.
func New(opts Options, p Params) (Strategy, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	t := opts.ResolvedType()
	if p.ClusterAttribute != "" && !t.SupportsClustering() {
		return nil, errors.New(errors.ErrCodeUnsupportedClustering,
			"clustering is not supported by layout type %q", t)
	}
	if t == Custom && p.PositionFunc == nil {
		return nil, errors.New(errors.ErrCodeInvalidOptions, "custom layout requires a position function")
	}
	if p.Structure == nil {
		p.Structure = graph.New(nil)
	}
	if p.Logger == nil {
		p.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	p.Logger.Debug("building layout", "type", t, "nodes", p.Structure.NodeCount(), "edges", p.Structure.EdgeCount())
	return withOverrides(builders[t](opts, p), p), nil
}

// NewStatic returns a strategy serving fixed positions, such as a layout
// restored from cache. Overrides from p still apply.
func NewStatic(pos map[string]graph.Position, p Params) Strategy {
	return withOverrides(positions(pos), p)
}

// =============================================================================
// Builders
// =============================================================================

type forceStrategy struct {
	l *force.Layout
}

func (f forceStrategy) Step() bool { return f.l.Step() }

func (f forceStrategy) NodePosition(id string) graph.Position {
	p, _ := f.l.Position(id)
	return p
}

func buildForce(o Options, p Params) Strategy {
	fo := o.forceOptions(p.Structure.EdgeCount())
	return forceStrategy{force.New(fo, force.Params{
		Structure:        p.Structure,
		Depth:            p.Depth,
		ClusterAttribute: p.ClusterAttribute,
		Pinned:           p.Drags.Snapshot(),
		Logger:           p.Logger,
	})}
}

func buildCustom(Options, Params) Strategy {
	return positions(nil)
}
