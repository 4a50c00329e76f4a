package layout

import (
	"sync"

	"github.com/matzehuels/graphscape/pkg/graph"
)

// Type tags a layout algorithm.
type Type string

const (
	ForceDirected2D Type = "forceDirected2d"
	ForceDirected3D Type = "forceDirected3d"
	TreeTd2D        Type = "treeTd2d"
	TreeLr2D        Type = "treeLr2d"
	TreeTd3D        Type = "treeTd3d"
	TreeLr3D        Type = "treeLr3d"
	RadialOut2D     Type = "radialOut2d"
	RadialOut3D     Type = "radialOut3d"
	Circular2D      Type = "circular2d"
	HierarchicalTd  Type = "hierarchicalTd"
	HierarchicalLr  Type = "hierarchicalLr"
	NoOverlap       Type = "nooverlap"
	ForceAtlas2     Type = "forceatlas2"
	Custom          Type = "custom"
)

// DefaultType is used when no layout type is configured.
const DefaultType = ForceDirected2D

// ValidTypes is the set of supported layout types.
var ValidTypes = map[Type]bool{
	ForceDirected2D: true,
	ForceDirected3D: true,
	TreeTd2D:        true,
	TreeLr2D:        true,
	TreeTd3D:        true,
	TreeLr3D:        true,
	RadialOut2D:     true,
	RadialOut3D:     true,
	Circular2D:      true,
	HierarchicalTd:  true,
	HierarchicalLr:  true,
	NoOverlap:       true,
	ForceAtlas2:     true,
	Custom:          true,
}

// IsForce reports whether t is built on the force-directed simulation.
func (t Type) IsForce() bool {
	switch t {
	case ForceDirected2D, ForceDirected3D, TreeTd2D, TreeLr2D, TreeTd3D, TreeLr3D, RadialOut2D, RadialOut3D:
		return true
	}
	return false
}

// SupportsClustering reports whether t accepts a clustering attribute.
func (t Type) SupportsClustering() bool {
	return t == ForceDirected2D || t == ForceDirected3D
}

// Strategy computes node positions for one graph.
//
// Step advances the layout and reports true once positions are stable.
// Every strategy in this package finishes its work inside the first Step
// (or at construction), so Step returns true on its first call.
// NodePosition returns the zero position for unknown ids.
type Strategy interface {
	Step() bool
	NodePosition(id string) graph.Position
}

// =============================================================================
// Overrides
// =============================================================================

// Drags holds externally pinned node positions. It is owned by one engine and
// survives across runs until cleared. A nil *Drags reads as empty and ignores
// Set, Delete and Clear. Drags is safe for concurrent use.
type Drags struct {
	mu sync.RWMutex
	m  map[string]graph.Position
}

// NewDrags returns an empty drag map.
func NewDrags() *Drags {
	return &Drags{m: make(map[string]graph.Position)}
}

// Get returns the pinned position of id.
func (d *Drags) Get(id string) (graph.Position, bool) {
	if d == nil {
		return graph.Position{}, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.m[id]
	return p, ok
}

// Set pins id at p.
func (d *Drags) Set(id string, p graph.Position) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.m == nil {
		d.m = make(map[string]graph.Position)
	}
	d.m[id] = p
}

// Delete unpins id.
func (d *Drags) Delete(id string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.m, id)
}

// Clear unpins every node.
func (d *Drags) Clear() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.m)
}

// Len returns the number of pinned nodes.
func (d *Drags) Len() int {
	if d == nil {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.m)
}

// Snapshot returns a copy of the pinned positions.
func (d *Drags) Snapshot() map[string]graph.Position {
	out := make(map[string]graph.Position)
	if d == nil {
		return out
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for id, p := range d.m {
		out[id] = p
	}
	return out
}

// PositionContext is passed to a [PositionFunc].
type PositionContext struct {
	Structure *graph.Structure
	Drags     *Drags
}

// PositionFunc overrides the position of id. Returning false falls through
// to the drag map and then to the algorithm.
type PositionFunc func(id string, ctx PositionContext) (graph.Position, bool)

// overridden applies the fixed precedence PositionFunc > Drags > algorithm
// on top of a base strategy.
type overridden struct {
	base Strategy
	fn   PositionFunc
	ctx  PositionContext
}

func withOverrides(base Strategy, p Params) Strategy {
	return &overridden{
		base: base,
		fn:   p.PositionFunc,
		ctx:  PositionContext{Structure: p.Structure, Drags: p.Drags},
	}
}

func (o *overridden) Step() bool { return o.base.Step() }

func (o *overridden) NodePosition(id string) graph.Position {
	if o.fn != nil {
		if p, ok := o.fn(id, o.ctx); ok {
			return p
		}
	}
	if p, ok := o.ctx.Drags.Get(id); ok {
		return p
	}
	return o.base.NodePosition(id)
}

// =============================================================================
// Convergence
// =============================================================================

// DefaultMaxSteps bounds [Converge] when no limit is given.
const DefaultMaxSteps = 100

// Convergence reports how a strategy was driven to stability.
type Convergence struct {
	Steps     int  `json:"steps"`
	Converged bool `json:"converged"`
}

// Converge calls Step until it reports true or maxSteps calls were made.
// A non-positive maxSteps uses [DefaultMaxSteps].
func Converge(s Strategy, maxSteps int) Convergence {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	var c Convergence
	for c.Steps < maxSteps {
		c.Steps++
		if s.Step() {
			c.Converged = true
			break
		}
	}
	return c
}

// positions is a precomputed position table shared by the one-shot
// strategies.
type positions map[string]graph.Position

func (p positions) Step() bool { return true }

func (p positions) NodePosition(id string) graph.Position { return p[id] }
