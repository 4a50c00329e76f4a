// Package label decides which node and edge labels are shown.
//
// A [Policy] combines a display [Mode] with distance and size thresholds.
// Modes that cover a shape always show its labels. In [Auto] mode a node
// label shows when the node is larger than SizeThreshold or the camera is
// within NearDistance of it; edge labels stay hidden. Labels not covered by
// the mode are hidden once the camera is farther than FarDistance. Without a
// camera every node counts as near: the far cutoff never applies and auto
// mode shows every node label.
package label

import (
	"github.com/matzehuels/graphscape/pkg/errors"
)

// Mode selects which labels are shown.
type Mode string

const (
	All   Mode = "all"
	None  Mode = "none"
	Nodes Mode = "nodes"
	Edges Mode = "edges"
	Auto  Mode = "auto"
)

// ValidModes is the set of supported label modes.
var ValidModes = map[Mode]bool{
	All:   true,
	None:  true,
	Nodes: true,
	Edges: true,
	Auto:  true,
}

const (
	DefaultMode          = Auto
	DefaultFarDistance   = 6000.0
	DefaultNearDistance  = 3000.0
	DefaultSizeThreshold = 7.0
)

// Camera reports the distance from the viewer to the scene origin along the
// view axis, already divided by zoom.
type Camera interface {
	Distance() float64
}

// Distance is a fixed camera distance.
type Distance float64

// Distance implements [Camera].
func (d Distance) Distance() float64 { return float64(d) }

// Policy configures label visibility. Zero fields take defaults.
type Policy struct {
	Mode          Mode    `json:"mode,omitempty" toml:"mode" yaml:"mode,omitempty"`
	FarDistance   float64 `json:"far_distance,omitempty" toml:"far_distance" yaml:"far_distance,omitempty"`
	NearDistance  float64 `json:"near_distance,omitempty" toml:"near_distance" yaml:"near_distance,omitempty"`
	SizeThreshold float64 `json:"size_threshold,omitempty" toml:"size_threshold" yaml:"size_threshold,omitempty"`

	// SmallGraphNodes shows every label in auto mode for graphs with at most
	// this many nodes. Zero disables it.
	SmallGraphNodes int `json:"small_graph_nodes,omitempty" toml:"small_graph_nodes" yaml:"small_graph_nodes,omitempty"`
}

// WithDefaults returns p with zero fields replaced by package defaults.
func (p Policy) WithDefaults() Policy {
	if p.Mode == "" {
		p.Mode = DefaultMode
	}
	if p.FarDistance == 0 {
		p.FarDistance = DefaultFarDistance
	}
	if p.NearDistance == 0 {
		p.NearDistance = DefaultNearDistance
	}
	if p.SizeThreshold == 0 {
		p.SizeThreshold = DefaultSizeThreshold
	}
	return p
}

// Validate checks the mode and thresholds.
func (p Policy) Validate() error {
	p = p.WithDefaults()
	if !ValidModes[p.Mode] {
		return errors.New(errors.ErrCodeInvalidLabelType, "unknown label mode %q", p.Mode)
	}
	if p.FarDistance < 0 || p.NearDistance < 0 || p.SizeThreshold < 0 || p.SmallGraphNodes < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "label thresholds must not be negative")
	}
	return nil
}

// Node reports whether the label of a node with the given size and depth
// coordinate z is visible. nodeCount is the size of the rendered graph; cam
// may be nil.
func (p Policy) Node(size, z float64, nodeCount int, cam Camera) bool {
	p = p.WithDefaults()
	if p.Mode == All || p.Mode == Nodes {
		return true
	}
	if cam != nil && cam.Distance()-z > p.FarDistance {
		return false
	}
	if p.Mode != Auto {
		return false
	}
	if p.SmallGraphNodes > 0 && nodeCount <= p.SmallGraphNodes {
		return true
	}
	if size > p.SizeThreshold {
		return true
	}
	return cam == nil || cam.Distance()-z < p.NearDistance
}

// Edge reports whether an edge label is visible. Edge labels show only when
// the mode covers edges.
func (p Policy) Edge() bool {
	p = p.WithDefaults()
	return p.Mode == All || p.Mode == Edges
}
