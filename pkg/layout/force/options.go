package force

import "math"

// DagMode selects how depth is mapped onto space. The empty mode disables
// depth-based positioning.
type DagMode string

const (
	DagNone      DagMode = ""
	DagTopDown   DagMode = "td"
	DagBottomUp  DagMode = "bu"
	DagLeftRight DagMode = "lr"
	DagRightLeft DagMode = "rl"
	DagZIn       DagMode = "zin"
	DagZOut      DagMode = "zout"
	DagRadialIn  DagMode = "radialin"
	DagRadialOut DagMode = "radialout"
)

// ValidDagModes is the set of supported DAG modes.
var ValidDagModes = map[DagMode]bool{
	DagNone:      true,
	DagTopDown:   true,
	DagBottomUp:  true,
	DagLeftRight: true,
	DagRightLeft: true,
	DagZIn:       true,
	DagZOut:      true,
	DagRadialIn:  true,
	DagRadialOut: true,
}

// IsRadial reports whether the mode places depth levels on concentric rings.
func (m DagMode) IsRadial() bool {
	return m == DagRadialIn || m == DagRadialOut
}

// ClusterType selects how cluster centroids are computed.
type ClusterType string

const (
	// ClusterForce runs a secondary simulation over one body per cluster.
	ClusterForce ClusterType = "force"
	// ClusterTreemap places clusters in a squarified treemap.
	ClusterTreemap ClusterType = "treemap"
)

// ValidClusterTypes is the set of supported cluster centroid strategies.
var ValidClusterTypes = map[ClusterType]bool{
	ClusterForce:   true,
	ClusterTreemap: true,
}

// Simulation constants.
const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4
	DefaultStopAlpha     = 0.01
	DefaultMaxTicks      = 300
	DefaultTheta         = 0.9
	DefaultSeed          = uint64(42)
)

// DefaultAlphaDecay cools the simulation from 1 to [DefaultAlphaMin] in 300 ticks.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

// Force and clustering defaults.
const (
	DefaultNodeStrength      = -250.0
	DefaultLinkDistance      = 50.0
	DefaultLevelRatio        = 2.0
	DefaultPositionStrength  = 0.1
	DefaultClusterStrength   = 0.5
	DefaultLinkStrengthIntra = 0.5
	DefaultLinkStrengthInter = 0.01
	DefaultClusterCharge     = -2.0
	DefaultClusterLinkDist   = 100.0
	DefaultClusterLinkForce  = 0.1
	DefaultNodeSize          = 7.0
)

// Options configures a force-directed layout. Zero fields take defaults via
// [Options.WithDefaults].
type Options struct {
	Dimensions int     `json:"dimensions,omitempty" toml:"dimensions" yaml:"dimensions,omitempty"`
	DagMode    DagMode `json:"dag_mode,omitempty" toml:"dag_mode" yaml:"dag_mode,omitempty"`

	// LevelRatio scales the distance between depth levels in DAG mode.
	LevelRatio float64 `json:"level_ratio,omitempty" toml:"level_ratio" yaml:"level_ratio,omitempty"`

	// NodeStrength is the many-body strength. Negative values repel.
	NodeStrength float64 `json:"node_strength,omitempty" toml:"node_strength" yaml:"node_strength,omitempty"`
	LinkDistance float64 `json:"link_distance,omitempty" toml:"link_distance" yaml:"link_distance,omitempty"`

	// CollideRadius enables collision avoidance when positive. The radius
	// of each body is its node size times CollideRadius.
	CollideRadius float64 `json:"collide_radius,omitempty" toml:"collide_radius" yaml:"collide_radius,omitempty"`

	// BarnesHut approximates many-body repulsion with a quadtree (2D) or
	// octree (3D) using opening angle Theta.
	BarnesHut bool    `json:"barnes_hut,omitempty" toml:"barnes_hut" yaml:"barnes_hut,omitempty"`
	Theta     float64 `json:"theta,omitempty" toml:"theta" yaml:"theta,omitempty"`

	ClusterType       ClusterType `json:"cluster_type,omitempty" toml:"cluster_type" yaml:"cluster_type,omitempty"`
	ClusterStrength   float64     `json:"cluster_strength,omitempty" toml:"cluster_strength" yaml:"cluster_strength,omitempty"`
	LinkStrengthIntra float64     `json:"link_strength_intra,omitempty" toml:"link_strength_intra" yaml:"link_strength_intra,omitempty"`
	LinkStrengthInter float64     `json:"link_strength_inter,omitempty" toml:"link_strength_inter" yaml:"link_strength_inter,omitempty"`

	MaxTicks int    `json:"max_ticks,omitempty" toml:"max_ticks" yaml:"max_ticks,omitempty"`
	Seed     uint64 `json:"seed,omitempty" toml:"seed" yaml:"seed,omitempty"`
}

// WithDefaults returns o with every zero field taken from d, then from the
// package defaults.
func (o Options) WithDefaults(d Options) Options {
	pickInt := func(v, dv, fallback int) int {
		if v != 0 {
			return v
		}
		if dv != 0 {
			return dv
		}
		return fallback
	}
	pick := func(v, dv, fallback float64) float64 {
		if v != 0 {
			return v
		}
		if dv != 0 {
			return dv
		}
		return fallback
	}

	o.Dimensions = pickInt(o.Dimensions, d.Dimensions, 2)
	if o.DagMode == DagNone {
		o.DagMode = d.DagMode
	}
	o.LevelRatio = pick(o.LevelRatio, d.LevelRatio, DefaultLevelRatio)
	o.NodeStrength = pick(o.NodeStrength, d.NodeStrength, DefaultNodeStrength)
	o.LinkDistance = pick(o.LinkDistance, d.LinkDistance, DefaultLinkDistance)
	o.CollideRadius = pick(o.CollideRadius, d.CollideRadius, 0)
	o.BarnesHut = o.BarnesHut || d.BarnesHut
	o.Theta = pick(o.Theta, d.Theta, DefaultTheta)
	if o.ClusterType == "" {
		o.ClusterType = d.ClusterType
	}
	if o.ClusterType == "" {
		o.ClusterType = ClusterForce
	}
	o.ClusterStrength = pick(o.ClusterStrength, d.ClusterStrength, DefaultClusterStrength)
	o.LinkStrengthIntra = pick(o.LinkStrengthIntra, d.LinkStrengthIntra, DefaultLinkStrengthIntra)
	o.LinkStrengthInter = pick(o.LinkStrengthInter, d.LinkStrengthInter, DefaultLinkStrengthInter)
	o.MaxTicks = pickInt(o.MaxTicks, d.MaxTicks, DefaultMaxTicks)
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	return o
}
