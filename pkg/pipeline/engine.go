package pipeline

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/graphscape/pkg/cache"
	"github.com/matzehuels/graphscape/pkg/cluster"
	"github.com/matzehuels/graphscape/pkg/collapse"
	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/graph/depth"
	"github.com/matzehuels/graphscape/pkg/layout"
	"github.com/matzehuels/graphscape/pkg/observability"
	"github.com/matzehuels/graphscape/pkg/sizing"
)

// Engine runs the pipeline repeatedly over changing input, keeping the
// drag map and the last layout between runs. It is safe for concurrent use;
// runs are serialized.
type Engine struct {
	mu     sync.Mutex
	logger *log.Logger
	drags  *layout.Drags

	generation uint64
	lastType   layout.Type
	dataHash   string
	layoutHash string

	structure   *graph.Structure
	depth       depth.Result
	resolution  *collapse.Resolution
	strategy    layout.Strategy
	convergence layout.Convergence
	faults      []Fault

	// positionFunc is the override of the current run. Strategies call it
	// through position so a new function does not force a rebuild.
	positionFunc layout.PositionFunc

	// last holds the previous run's positions, used to seed no-overlap and
	// ForceAtlas2 layouts.
	last map[string]graph.Position

	// static, when set, replaces the next built layout with fixed positions.
	static map[string]graph.Position
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{logger: logger, drags: layout.NewDrags()}
}

// Drags returns the engine's drag map. Entries set between runs pin nodes
// in the next result.
func (e *Engine) Drags() *layout.Drags { return e.drags }

// Generation returns the number of successful runs.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// Reset forgets the cached layout and all drags.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drags.Clear()
	e.lastType = ""
	e.dataHash, e.layoutHash = "", ""
	e.strategy = nil
	e.last = nil
}

// ExpandPath returns the collapsed nodes that must be expanded for the
// hidden node id to reappear, based on the last run.
func (e *Engine) ExpandPath(id string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resolution == nil {
		return nil
	}
	return e.resolution.ExpandPath(id)
}

func (e *Engine) position(id string, ctx layout.PositionContext) (graph.Position, bool) {
	if e.positionFunc == nil {
		return graph.Position{}, false
	}
	return e.positionFunc(id, ctx)
}

// fingerprints hash the inputs that invalidate the data and layout caches.
func fingerprints(doc graph.Document, opts *Options) (data, lay string, err error) {
	data, err = cache.HashJSON(struct {
		Doc       graph.Document `json:"doc"`
		Collapsed []string       `json:"collapsed"`
	}{doc, opts.collapsedSet()})
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeInvalidInput, err, "fingerprint graph data")
	}
	lay, err = cache.HashJSON(struct {
		Layout  layout.Options `json:"layout"`
		Cluster string         `json:"cluster"`
		Func    bool           `json:"func"`
	}{opts.Layout, opts.Cluster, opts.PositionFunc != nil})
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeInvalidOptions, err, "fingerprint layout options")
	}
	return data, lay, nil
}

// Run executes the pipeline on doc. Configuration faults are returned before
// any state changes. The returned result is never modified afterwards.
func (e *Engine) Run(ctx context.Context, doc graph.Document, opts Options) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	hooks := observability.Engine()
	hooks.OnRunStart(ctx, string(opts.Layout.ResolvedType()), len(doc.Nodes))

	res, err := e.run(ctx, doc, opts, start)
	if err != nil {
		hooks.OnRunComplete(ctx, string(opts.Layout.ResolvedType()), observability.RunStats{Duration: time.Since(start)}, err)
		return nil, err
	}
	hooks.OnRunComplete(ctx, string(opts.Layout.Type), observability.RunStats{
		Rebuilt:   res.Rebuilt,
		Converged: res.Convergence.Converged,
		Steps:     res.Convergence.Steps,
		Nodes:     len(res.Nodes),
		Edges:     len(res.Edges),
		Hidden:    len(res.Hidden.Nodes),
		Duration:  res.Stats.TotalTime,
	}, nil)
	return res, nil
}

func (e *Engine) run(ctx context.Context, doc graph.Document, opts Options, start time.Time) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = e.logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	dataHash, layoutHash, err := fingerprints(doc, &opts)
	if err != nil {
		return nil, err
	}

	t := opts.Layout.Type
	typeChanged := e.lastType != "" && e.lastType != t
	rebuild := e.strategy == nil || typeChanged || e.static != nil ||
		dataHash != e.dataHash || layoutHash != e.layoutHash

	// Drags from another layout type must not reach the new strategy.
	if typeChanged {
		logger.Debug("layout type changed, clearing drags", "from", e.lastType, "to", t, "drags", e.drags.Len())
		e.drags.Clear()
	}

	// Build into locals; engine state changes only once the run succeeds.
	s, dep, res, strat, conv, fs := e.structure, e.depth, e.resolution, e.strategy, e.convergence, e.faults
	var layoutTime time.Duration
	if rebuild {
		res = collapse.Resolve(opts.Collapsed, doc.Nodes, doc.Edges)
		var report graph.BuildReport
		s, report = graph.Build(res.Nodes, res.Edges, logger)
		fs = faults(report)
		for _, f := range fs {
			observability.Engine().OnDataFault(ctx, f.Kind)
		}
		dep = depth.AnalyzeStructure(s)
		if dep.Invalid {
			logger.Debug("graph has a cycle, depth is unavailable", "layout", t)
		}

		params := layout.Params{
			Structure:        s,
			Depth:            dep,
			Drags:            e.drags,
			ClusterAttribute: opts.Cluster,
			Seed:             e.last,
			Logger:           logger,
		}
		if opts.PositionFunc != nil {
			params.PositionFunc = e.position
		}

		layoutStart := time.Now()
		if e.static != nil {
			strat = layout.NewStatic(e.static, params)
		} else {
			strat, err = layout.New(opts.Layout, params)
			if err != nil {
				return nil, err
			}
		}
		conv = layout.Converge(strat, opts.MaxSteps)
		layoutTime = time.Since(layoutStart)
		logger.Debug("layout built", "type", t, "steps", conv.Steps, "converged", conv.Converged, "duration", layoutTime)
	}

	sizes, err := sizing.Compute(s, opts.Sizing, logger)
	if err != nil {
		return nil, err
	}

	e.positionFunc = opts.PositionFunc

	nodes, edges := Transform(s, strat, sizes, opts.Labels, opts.Camera, opts.Cluster)
	result := &Result{
		RunID:       uuid.NewString(),
		Generation:  e.generation + 1,
		Nodes:       nodes,
		Edges:       edges,
		Clusters:    cluster.Bounds(nodes, opts.Cluster),
		Hidden:      Hidden{Nodes: res.HiddenNodes(), Edges: res.HiddenEdges()},
		Depth:       DepthSummary{Invalid: dep.Invalid, MaxDepth: dep.MaxDepth},
		Convergence: conv,
		Rebuilt:     rebuild,
		Faults:      fs,
		Stats: Stats{
			NodeCount:  len(nodes),
			EdgeCount:  len(edges),
			LayoutTime: layoutTime,
		},
	}

	e.generation++
	e.lastType = t
	e.dataHash, e.layoutHash = dataHash, layoutHash
	e.structure, e.depth, e.resolution = s, dep, res
	e.strategy, e.convergence, e.faults = strat, conv, fs
	e.static = nil
	e.last = result.Positions()

	result.Stats.TotalTime = time.Since(start)
	logger.Debug("run complete",
		"generation", result.Generation,
		"nodes", len(nodes),
		"edges", len(edges),
		"hidden", len(result.Hidden.Nodes),
		"rebuilt", rebuild)
	return result, nil
}
