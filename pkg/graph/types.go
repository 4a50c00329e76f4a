package graph

import (
	"errors"
	"fmt"
	"maps"
	"math"
)

var (
	// ErrInvalidNodeID is reported when a raw node has an empty ID.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is reported when two raw nodes share an ID.
	// The first occurrence wins.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateEdgeID is reported when two raw edges share an ID.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownSourceNode is reported when an edge's source is not a node.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is reported when an edge's target is not a node.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Data is the free-form attribute bag carried by nodes and edges.
type Data map[string]any

// RawNode is a node as supplied by the caller.
type RawNode struct {
	ID    string  `json:"id" yaml:"id"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty"`
	Size  float64 `json:"size,omitempty" yaml:"size,omitempty"`
	Fill  string  `json:"fill,omitempty" yaml:"fill,omitempty"`
	Icon  string  `json:"icon,omitempty" yaml:"icon,omitempty"`
	Data  Data    `json:"data,omitempty" yaml:"data,omitempty"`
}

// RawEdge is an edge as supplied by the caller. Source and Target must name
// existing node IDs.
type RawEdge struct {
	ID     string  `json:"id" yaml:"id"`
	Source string  `json:"source" yaml:"source"`
	Target string  `json:"target" yaml:"target"`
	Label  string  `json:"label,omitempty" yaml:"label,omitempty"`
	Size   float64 `json:"size,omitempty" yaml:"size,omitempty"`
	Data   Data    `json:"data,omitempty" yaml:"data,omitempty"`
}

// Document is a graph as exchanged with callers: flat node and edge lists.
type Document struct {
	Nodes []RawNode `json:"nodes" yaml:"nodes"`
	Edges []RawEdge `json:"edges" yaml:"edges"`
}

// Position is a point in layout space. 2D layouts leave Z at zero.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Finite returns p with every NaN or infinite coordinate replaced by zero.
func (p Position) Finite() Position {
	return Position{X: finite(p.X), Y: finite(p.Y), Z: finite(p.Z)}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Node is a render-ready node produced by one engine run.
type Node struct {
	ID           string   `json:"id"`
	Label        string   `json:"label,omitempty"`
	Fill         string   `json:"fill,omitempty"`
	Icon         string   `json:"icon,omitempty"`
	Position     Position `json:"position"`
	Size         float64  `json:"size"`
	LabelVisible bool     `json:"labelVisible"`
	Data         Data     `json:"data,omitempty"`

	// Parents lists the IDs of inbound neighbours.
	Parents []string `json:"parents,omitempty"`

	// Cluster is the value of the clustering attribute, when configured
	// and present on the node.
	Cluster string `json:"cluster,omitempty"`
}

// Edge is a render-ready edge produced by one engine run.
type Edge struct {
	ID           string  `json:"id"`
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Label        string  `json:"label,omitempty"`
	Size         float64 `json:"size"`
	LabelVisible bool    `json:"labelVisible"`
	Data         Data    `json:"data,omitempty"`
}

// Fault is a data-integrity problem found while building a [Structure].
type Fault struct {
	ID  string
	Err error
}

// BuildReport lists the raw records that [Build] skipped.
type BuildReport struct {
	SkippedNodes []Fault
	SkippedEdges []Fault
}

// HasFaults reports whether any record was skipped.
func (r BuildReport) HasFaults() bool {
	return len(r.SkippedNodes) > 0 || len(r.SkippedEdges) > 0
}

// Clone returns a shallow copy of d. A nil bag stays nil.
func (d Data) Clone() Data {
	return maps.Clone(d)
}

// Cluster returns the value of attribute attr formatted as a cluster key.
// Missing and nil values report false.
func (d Data) Cluster(attr string) (string, bool) {
	if attr == "" {
		return "", false
	}
	v, ok := d[attr]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}
