// Package pipeline turns raw node and edge lists into render-ready graphs.
//
// A run filters collapsed subtrees out of the input, builds the graph
// structure, analyzes depth, drives the selected layout strategy to
// convergence, computes node sizes, assembles nodes and edges with label
// visibility, and derives cluster regions. The order is fixed:
//
//  1. Collapse: hide nodes whose every parent is collapsed or hidden
//  2. Structure: build the directed multigraph from the visible records
//  3. Depth: compute per-node depth for DAG-aware layouts
//  4. Layout: build the strategy and step it until stable
//  5. Sizing: score and rescale node sizes
//  6. Transform: assemble nodes and edges with label visibility
//  7. Clusters: bound each cluster's nodes
//
// # Engine
//
// [Engine] is the stateful entry point for interactive hosts. It keeps the
// drag map and the last built layout between runs:
//
//   - changed nodes, edges or collapsed set rebuild everything
//   - a changed layout type clears drags, then rebuilds
//   - changed layout options rebuild and keep drags
//   - changed sizing or label options reuse the layout
//
// Each [Result] is complete when returned; a later run supersedes it.
//
// # Runner
//
// [Runner] serves one-shot requests, such as the CLI and the stateless API
// endpoint. It caches computed positions by graph and layout options:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Layout: layout.Options{Type: layout.TreeTd2D},
//	    Sizing: sizing.Options{Type: sizing.PageRank},
//	})
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscape/pkg/cache"
	"github.com/matzehuels/graphscape/pkg/cluster"
	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/label"
	"github.com/matzehuels/graphscape/pkg/layout"
	"github.com/matzehuels/graphscape/pkg/sizing"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON, TOML and YAML serialization.
type Options struct {
	Layout layout.Options `json:"layout" toml:"layout" yaml:"layout"`
	Sizing sizing.Options `json:"sizing" toml:"sizing" yaml:"sizing"`
	Labels label.Policy   `json:"labels" toml:"labels" yaml:"labels"`

	// Cluster names the data attribute nodes are grouped by. Only
	// force-directed layouts accept it.
	Cluster string `json:"cluster,omitempty" toml:"cluster" yaml:"cluster,omitempty"`

	// Collapsed lists node IDs whose descendants are hidden.
	Collapsed []string `json:"collapsed,omitempty" toml:"collapsed" yaml:"collapsed,omitempty"`

	// MaxSteps bounds the convergence loop.
	MaxSteps int `json:"max_steps,omitempty" toml:"max_steps" yaml:"max_steps,omitempty"`

	// Runtime options (not serialized)
	Logger       *log.Logger         `json:"-" toml:"-" yaml:"-"`
	PositionFunc layout.PositionFunc `json:"-" toml:"-" yaml:"-"`
	Camera       label.Camera        `json:"-" toml:"-" yaml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks every option group and applies defaults.
// All configuration faults are reported here, before any layout work.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if err := o.Sizing.Validate(); err != nil {
		return err
	}
	if err := o.Labels.Validate(); err != nil {
		return err
	}
	if err := errors.ValidateAttributeName(o.Cluster); err != nil {
		return err
	}

	t := o.Layout.ResolvedType()
	if o.Cluster != "" && !t.SupportsClustering() {
		return errors.New(errors.ErrCodeUnsupportedClustering,
			"clustering is not supported by layout type %q", t)
	}
	if t == layout.Custom && o.PositionFunc == nil {
		return errors.New(errors.ErrCodeInvalidOptions, "custom layout requires a position function")
	}
	if o.MaxSteps < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "max_steps must not be negative")
	}

	o.Layout.Type = t
	o.Sizing = o.Sizing.WithDefaults()
	o.Labels = o.Labels.WithDefaults()
	if o.MaxSteps == 0 {
		o.MaxSteps = layout.DefaultMaxSteps
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// collapsedSet returns Collapsed sorted and deduplicated.
func (o *Options) collapsedSet() []string {
	ids := slices.Clone(o.Collapsed)
	slices.Sort(ids)
	return slices.Compact(ids)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Type:      string(o.Layout.ResolvedType()),
		Options:   o.Layout,
		Collapsed: o.collapsedSet(),
		Cluster:   o.Cluster,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result is the render-ready output of one run.
type Result struct {
	// RunID identifies this run; Generation counts runs of one engine.
	RunID      string `json:"run_id"`
	Generation uint64 `json:"generation"`

	Nodes    []graph.Node             `json:"nodes"`
	Edges    []graph.Edge             `json:"edges"`
	Clusters map[string]cluster.Group `json:"clusters,omitempty"`
	Hidden   Hidden                   `json:"hidden"`

	Depth       DepthSummary       `json:"depth"`
	Convergence layout.Convergence `json:"convergence"`

	// Rebuilt is false when the run reused the previous layout.
	Rebuilt bool `json:"rebuilt"`

	// Faults lists the input records the structure builder skipped.
	Faults []Fault `json:"faults,omitempty"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache"`
}

// Hidden holds the node and edge IDs removed by collapsing.
type Hidden struct {
	Nodes []string `json:"nodes,omitempty"`
	Edges []string `json:"edges,omitempty"`
}

// DepthSummary reports the depth analysis a run used.
type DepthSummary struct {
	// Invalid is set when the graph has a cycle and DAG forces were omitted.
	Invalid  bool `json:"invalid"`
	MaxDepth int  `json:"max_depth"`
}

// Fault is a skipped input record.
type Fault struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Stats contains run statistics.
type Stats struct {
	NodeCount  int           `json:"node_count"`
	EdgeCount  int           `json:"edge_count"`
	LayoutTime time.Duration `json:"layout_time"`
	TotalTime  time.Duration `json:"total_time"`
}

// CacheInfo tracks whether positions came from the cache.
type CacheInfo struct {
	LayoutHit bool `json:"layout_hit"`
}

// Positions returns the node positions of r keyed by node ID.
func (r *Result) Positions() map[string]graph.Position {
	pos := make(map[string]graph.Position, len(r.Nodes))
	for _, n := range r.Nodes {
		pos[n.ID] = n.Position
	}
	return pos
}

// Node returns the node with the given ID.
func (r *Result) Node(id string) (graph.Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return graph.Node{}, false
}

func faults(report graph.BuildReport) []Fault {
	var out []Fault
	for _, f := range report.SkippedNodes {
		out = append(out, Fault{Kind: "node", ID: f.ID, Error: f.Err.Error()})
	}
	for _, f := range report.SkippedEdges {
		out = append(out, Fault{Kind: "edge", ID: f.ID, Error: f.Err.Error()})
	}
	return out
}
