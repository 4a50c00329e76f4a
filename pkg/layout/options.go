package layout

import (
	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/layout/force"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultCircularRadius = 300.0

	DefaultNodeSeparation = 1.0
	DefaultTreeNodeWidth  = 50.0
	DefaultTreeNodeHeight = 50.0

	DefaultNoOverlapMargin        = 10.0
	DefaultNoOverlapRatio         = 10.0
	DefaultNoOverlapGridSize      = 20
	DefaultNoOverlapMaxIterations = 50
	DefaultNoOverlapSpeed         = 3.0

	DefaultFA2Iterations     = 50
	DefaultFA2Gravity        = 10.0
	DefaultFA2ScalingRatio   = 100.0
	DefaultFA2SlowDown       = 1.0
	DefaultFA2BarnesHutTheta = 0.5
)

// denseEdgeCount is the edge count above which 2D force layouts halve their
// default repulsion.
const denseEdgeCount = 25

// =============================================================================
// Options
// =============================================================================

// CircularOptions configures [Circular2D].
type CircularOptions struct {
	Radius float64 `json:"radius,omitempty" toml:"radius" yaml:"radius,omitempty"`
}

// HierarchicalOptions configures [HierarchicalTd] and [HierarchicalLr].
type HierarchicalOptions struct {
	NodeSeparation float64    `json:"node_separation,omitempty" toml:"node_separation" yaml:"node_separation,omitempty"`
	NodeSize       [2]float64 `json:"node_size,omitempty" toml:"node_size" yaml:"node_size,omitempty"`
}

// NoOverlapOptions configures [NoOverlap].
type NoOverlapOptions struct {
	Margin        float64 `json:"margin,omitempty" toml:"margin" yaml:"margin,omitempty"`
	Ratio         float64 `json:"ratio,omitempty" toml:"ratio" yaml:"ratio,omitempty"`
	GridSize      int     `json:"grid_size,omitempty" toml:"grid_size" yaml:"grid_size,omitempty"`
	MaxIterations int     `json:"max_iterations,omitempty" toml:"max_iterations" yaml:"max_iterations,omitempty"`
	Speed         float64 `json:"speed,omitempty" toml:"speed" yaml:"speed,omitempty"`
}

// ForceAtlas2Options configures [ForceAtlas2].
type ForceAtlas2Options struct {
	Iterations     int     `json:"iterations,omitempty" toml:"iterations" yaml:"iterations,omitempty"`
	Gravity        float64 `json:"gravity,omitempty" toml:"gravity" yaml:"gravity,omitempty"`
	ScalingRatio   float64 `json:"scaling_ratio,omitempty" toml:"scaling_ratio" yaml:"scaling_ratio,omitempty"`
	SlowDown       float64 `json:"slow_down,omitempty" toml:"slow_down" yaml:"slow_down,omitempty"`
	BarnesHut      bool    `json:"barnes_hut,omitempty" toml:"barnes_hut" yaml:"barnes_hut,omitempty"`
	BarnesHutTheta float64 `json:"barnes_hut_theta,omitempty" toml:"barnes_hut_theta" yaml:"barnes_hut_theta,omitempty"`
	LinLog         bool    `json:"lin_log,omitempty" toml:"lin_log" yaml:"lin_log,omitempty"`
	StrongGravity  bool    `json:"strong_gravity,omitempty" toml:"strong_gravity" yaml:"strong_gravity,omitempty"`

	// OutboundAttractionDistribution divides attraction by source mass,
	// pushing hubs to the periphery.
	OutboundAttractionDistribution bool `json:"outbound_attraction_distribution,omitempty" toml:"outbound_attraction_distribution" yaml:"outbound_attraction_distribution,omitempty"`

	Seed uint64 `json:"seed,omitempty" toml:"seed" yaml:"seed,omitempty"`
}

// Options selects a layout type and carries the settings of that type. At
// most the member matching Type may be set; nil members take the per-type
// defaults.
type Options struct {
	Type Type `json:"type" toml:"type" yaml:"type"`

	Force        *force.Options       `json:"force,omitempty" toml:"force" yaml:"force,omitempty"`
	Circular     *CircularOptions     `json:"circular,omitempty" toml:"circular" yaml:"circular,omitempty"`
	Hierarchical *HierarchicalOptions `json:"hierarchical,omitempty" toml:"hierarchical" yaml:"hierarchical,omitempty"`
	NoOverlap    *NoOverlapOptions    `json:"nooverlap,omitempty" toml:"nooverlap" yaml:"nooverlap,omitempty"`
	ForceAtlas2  *ForceAtlas2Options  `json:"forceatlas2,omitempty" toml:"forceatlas2" yaml:"forceatlas2,omitempty"`
}

// Validate checks the layout type and that the populated option member
// belongs to it.
func (o Options) Validate() error {
	t := o.Type
	if t == "" {
		t = DefaultType
	}
	if !ValidTypes[t] {
		return errors.New(errors.ErrCodeInvalidLayoutType, "unknown layout type %q", o.Type)
	}

	mismatch := func(member string) error {
		return errors.New(errors.ErrCodeInvalidOptions, "%s options do not apply to layout type %q", member, t)
	}
	if o.Force != nil && !t.IsForce() {
		return mismatch("force")
	}
	if o.Circular != nil && t != Circular2D {
		return mismatch("circular")
	}
	if o.Hierarchical != nil && t != HierarchicalTd && t != HierarchicalLr {
		return mismatch("hierarchical")
	}
	if o.NoOverlap != nil && t != NoOverlap {
		return mismatch("nooverlap")
	}
	if o.ForceAtlas2 != nil && t != ForceAtlas2 {
		return mismatch("forceatlas2")
	}

	if f := o.Force; f != nil {
		if f.Dimensions != 0 && f.Dimensions != 2 && f.Dimensions != 3 {
			return errors.New(errors.ErrCodeInvalidOptions, "dimensions must be 2 or 3, got %d", f.Dimensions)
		}
		if !force.ValidDagModes[f.DagMode] {
			return errors.New(errors.ErrCodeInvalidOptions, "unknown dag mode %q", f.DagMode)
		}
		if f.ClusterType != "" && !force.ValidClusterTypes[f.ClusterType] {
			return errors.New(errors.ErrCodeInvalidOptions, "unknown cluster type %q", f.ClusterType)
		}
		if f.MaxTicks < 0 || f.LinkDistance < 0 || f.CollideRadius < 0 {
			return errors.New(errors.ErrCodeInvalidOptions, "force options must not be negative")
		}
	}
	if c := o.Circular; c != nil && c.Radius < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "circular radius must not be negative")
	}
	if h := o.Hierarchical; h != nil && (h.NodeSeparation < 0 || h.NodeSize[0] < 0 || h.NodeSize[1] < 0) {
		return errors.New(errors.ErrCodeInvalidOptions, "hierarchical options must not be negative")
	}
	if n := o.NoOverlap; n != nil && (n.Margin < 0 || n.Ratio < 0 || n.GridSize < 0 || n.MaxIterations < 0 || n.Speed < 0) {
		return errors.New(errors.ErrCodeInvalidOptions, "nooverlap options must not be negative")
	}
	if f := o.ForceAtlas2; f != nil && (f.Iterations < 0 || f.ScalingRatio < 0 || f.SlowDown < 0 || f.BarnesHutTheta < 0) {
		return errors.New(errors.ErrCodeInvalidOptions, "forceatlas2 options must not be negative")
	}
	return nil
}

// ResolvedType returns Type, or [DefaultType] when unset.
func (o Options) ResolvedType() Type {
	if o.Type == "" {
		return DefaultType
	}
	return o.Type
}

// =============================================================================
// Per-Type Defaults
// =============================================================================

// ForceDefaults returns the force settings a force-based layout type starts
// from. Types that are not force-based return the plain 2D defaults.
func ForceDefaults(t Type) force.Options {
	var d force.Options
	switch t {
	case ForceDirected3D:
		d = force.Options{Dimensions: 3, NodeStrength: -250, LevelRatio: 2, LinkDistance: 50}
	case TreeTd2D:
		d = force.Options{Dimensions: 2, DagMode: force.DagTopDown, LevelRatio: 5, NodeStrength: -250, LinkDistance: 50}
	case TreeLr2D:
		d = force.Options{Dimensions: 2, DagMode: force.DagLeftRight, LevelRatio: 5, NodeStrength: -250, LinkDistance: 50}
	case TreeTd3D:
		d = force.Options{Dimensions: 3, DagMode: force.DagTopDown, LevelRatio: 5, NodeStrength: -500, LinkDistance: 50}
	case TreeLr3D:
		d = force.Options{Dimensions: 3, DagMode: force.DagLeftRight, LevelRatio: 5, NodeStrength: -500, LinkDistance: 50}
	case RadialOut2D:
		d = force.Options{Dimensions: 2, DagMode: force.DagRadialOut, LevelRatio: 5, NodeStrength: -500, LinkDistance: 100}
	case RadialOut3D:
		d = force.Options{Dimensions: 3, DagMode: force.DagRadialOut, LevelRatio: 5, NodeStrength: -500, LinkDistance: 100}
	default:
		d = force.Options{Dimensions: 2, NodeStrength: -250, LevelRatio: 2, LinkDistance: 50}
	}
	return d.WithDefaults(force.Options{})
}

// forceOptions merges the user's force settings over the type defaults.
// Repulsion is halved for dense 2D graphs unless the caller set it.
func (o Options) forceOptions(edgeCount int) force.Options {
	var user force.Options
	if o.Force != nil {
		user = *o.Force
	}
	opts := user.WithDefaults(ForceDefaults(o.ResolvedType()))
	if user.NodeStrength == 0 && opts.Dimensions == 2 && edgeCount > denseEdgeCount {
		opts.NodeStrength /= 2
	}
	return opts
}

func (o Options) circularOptions() CircularOptions {
	c := CircularOptions{Radius: DefaultCircularRadius}
	if o.Circular != nil && o.Circular.Radius > 0 {
		c.Radius = o.Circular.Radius
	}
	return c
}

func (o Options) hierarchicalOptions() HierarchicalOptions {
	h := HierarchicalOptions{
		NodeSeparation: DefaultNodeSeparation,
		NodeSize:       [2]float64{DefaultTreeNodeWidth, DefaultTreeNodeHeight},
	}
	if u := o.Hierarchical; u != nil {
		if u.NodeSeparation > 0 {
			h.NodeSeparation = u.NodeSeparation
		}
		if u.NodeSize[0] > 0 {
			h.NodeSize[0] = u.NodeSize[0]
		}
		if u.NodeSize[1] > 0 {
			h.NodeSize[1] = u.NodeSize[1]
		}
	}
	return h
}

func (o Options) noOverlapOptions() NoOverlapOptions {
	n := NoOverlapOptions{
		Margin:        DefaultNoOverlapMargin,
		Ratio:         DefaultNoOverlapRatio,
		GridSize:      DefaultNoOverlapGridSize,
		MaxIterations: DefaultNoOverlapMaxIterations,
		Speed:         DefaultNoOverlapSpeed,
	}
	if u := o.NoOverlap; u != nil {
		if u.Margin > 0 {
			n.Margin = u.Margin
		}
		if u.Ratio > 0 {
			n.Ratio = u.Ratio
		}
		if u.GridSize > 0 {
			n.GridSize = u.GridSize
		}
		if u.MaxIterations > 0 {
			n.MaxIterations = u.MaxIterations
		}
		if u.Speed > 0 {
			n.Speed = u.Speed
		}
	}
	return n
}

func (o Options) forceAtlas2Options() ForceAtlas2Options {
	f := ForceAtlas2Options{
		Iterations:     DefaultFA2Iterations,
		Gravity:        DefaultFA2Gravity,
		ScalingRatio:   DefaultFA2ScalingRatio,
		SlowDown:       DefaultFA2SlowDown,
		BarnesHutTheta: DefaultFA2BarnesHutTheta,
		Seed:           force.DefaultSeed,
	}
	if u := o.ForceAtlas2; u != nil {
		if u.Iterations > 0 {
			f.Iterations = u.Iterations
		}
		if u.Gravity > 0 {
			f.Gravity = u.Gravity
		}
		if u.ScalingRatio > 0 {
			f.ScalingRatio = u.ScalingRatio
		}
		if u.SlowDown > 0 {
			f.SlowDown = u.SlowDown
		}
		if u.BarnesHutTheta > 0 {
			f.BarnesHutTheta = u.BarnesHutTheta
		}
		if u.Seed != 0 {
			f.Seed = u.Seed
		}
		f.BarnesHut = u.BarnesHut
		f.LinLog = u.LinLog
		f.StrongGravity = u.StrongGravity
		f.OutboundAttractionDistribution = u.OutboundAttractionDistribution
	}
	return f
}
