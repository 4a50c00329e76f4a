package pipeline

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/layout"
	"github.com/matzehuels/graphscape/pkg/sizing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func doc(ids []string, pairs ...[2]string) graph.Document {
	var d graph.Document
	for _, id := range ids {
		d.Nodes = append(d.Nodes, graph.RawNode{ID: id})
	}
	for _, p := range pairs {
		d.Edges = append(d.Edges, graph.RawEdge{ID: p[0] + "-" + p[1], Source: p[0], Target: p[1]})
	}
	return d
}

func circular(radius float64) Options {
	opts := Options{Layout: layout.Options{Type: layout.Circular2D}}
	if radius > 0 {
		opts.Layout.Circular = &layout.CircularOptions{Radius: radius}
	}
	return opts
}

func position(t *testing.T, r *Result, id string) graph.Position {
	t.Helper()
	n, ok := r.Node(id)
	if !ok {
		t.Fatalf("node %s missing from result", id)
	}
	return n.Position
}

func TestEngine_CircularTwoNodes(t *testing.T) {
	e := NewEngine(nil)
	res, err := e.Run(context.Background(), doc([]string{"a", "b"}), circular(0))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	a, b := position(t, res, "a"), position(t, res, "b")
	if !near(a.X, 300) || !near(a.Y, 0) || !near(b.X, -300) || !near(b.Y, 0) {
		t.Errorf("positions = %v, %v, want (300,0) and (-300,0)", a, b)
	}
	if !res.Rebuilt || res.Generation != 1 || res.RunID == "" {
		t.Errorf("Result = rebuilt %v, generation %d, run %q", res.Rebuilt, res.Generation, res.RunID)
	}
	if !res.Convergence.Converged || res.Convergence.Steps != 1 {
		t.Errorf("Convergence = %+v, want one converged step", res.Convergence)
	}
	for _, n := range res.Nodes {
		if n.Size != 10 {
			t.Errorf("size[%s] = %v, want midpoint 10", n.ID, n.Size)
		}
	}
}

func TestEngine_SizingChangeReusesLayout(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(nil)
	d := doc([]string{"hub", "x", "y"}, [2]string{"x", "hub"}, [2]string{"y", "hub"})

	first, err := e.Run(ctx, d, circular(0))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	opts := circular(0)
	opts.Sizing = sizing.Options{Type: sizing.Centrality}
	second, err := e.Run(ctx, d, opts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if second.Rebuilt {
		t.Error("sizing-only change rebuilt the layout")
	}
	if second.Generation != 2 || second.RunID == first.RunID {
		t.Errorf("second run = generation %d, run %q", second.Generation, second.RunID)
	}
	if position(t, second, "x") != position(t, first, "x") {
		t.Error("positions changed without a rebuild")
	}
	if hub, _ := second.Node("hub"); hub.Size != sizing.DefaultMaxSize {
		t.Errorf("hub size = %v, want %v", hub.Size, sizing.DefaultMaxSize)
	}
}

func TestEngine_Drags(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(nil)
	d := doc([]string{"a", "b"})
	if _, err := e.Run(ctx, d, circular(0)); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	pinned := graph.Position{X: 1, Y: 2}
	e.Drags().Set("a", pinned)

	res, _ := e.Run(ctx, d, circular(0))
	if res.Rebuilt {
		t.Error("drag alone rebuilt the layout")
	}
	if got := position(t, res, "a"); got != pinned {
		t.Errorf("dragged a = %v, want %v", got, pinned)
	}

	// Same type, new options: rebuilt, drags kept.
	res, _ = e.Run(ctx, d, circular(100))
	if !res.Rebuilt {
		t.Error("option change did not rebuild")
	}
	if got := position(t, res, "a"); got != pinned {
		t.Errorf("dragged a after option change = %v, want %v", got, pinned)
	}
	if got := position(t, res, "b"); !near(got.X, -100) {
		t.Errorf("b = %v, want x -100", got)
	}

	// New type: drags cleared.
	res, err := e.Run(ctx, d, Options{Layout: layout.Options{Type: layout.HierarchicalTd}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if e.Drags().Len() != 0 {
		t.Errorf("Drags().Len() = %d after type change, want 0", e.Drags().Len())
	}
	if got := position(t, res, "a"); got == pinned {
		t.Error("stale drag applied after type change")
	}
}

func TestEngine_ConfigFaultKeepsState(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(nil)
	d := doc([]string{"a"})
	if _, err := e.Run(ctx, d, circular(0)); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	e.Drags().Set("a", graph.Position{X: 9})

	_, err := e.Run(ctx, d, Options{Layout: layout.Options{Type: "spiral"}})
	if !errors.Is(err, errors.ErrCodeInvalidLayoutType) {
		t.Fatalf("Run() error = %v, want %s", err, errors.ErrCodeInvalidLayoutType)
	}
	if e.Generation() != 1 {
		t.Errorf("Generation() = %d after failed run, want 1", e.Generation())
	}
	if e.Drags().Len() != 1 {
		t.Error("failed run cleared drags")
	}

	res, err := e.Run(ctx, d, circular(0))
	if err != nil || res.Rebuilt {
		t.Errorf("Run() after fault = rebuilt %v, err %v, want cached layout", res != nil && res.Rebuilt, err)
	}
}

func TestEngine_Collapse(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(nil)
	d := doc([]string{"1", "2", "3"}, [2]string{"1", "2"}, [2]string{"2", "3"})

	opts := circular(0)
	opts.Collapsed = []string{"1"}
	res, err := e.Run(ctx, d, opts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.Nodes) != 1 || res.Nodes[0].ID != "1" || len(res.Edges) != 0 {
		t.Errorf("visible = %v / %v, want only node 1", res.Nodes, res.Edges)
	}
	if !slices.Equal(res.Hidden.Nodes, []string{"2", "3"}) || !slices.Equal(res.Hidden.Edges, []string{"1-2", "2-3"}) {
		t.Errorf("Hidden = %+v", res.Hidden)
	}
	if got := e.ExpandPath("3"); !slices.Equal(got, []string{"1"}) {
		t.Errorf("ExpandPath(3) = %v, want [1]", got)
	}

	opts.Collapsed = nil
	res, _ = e.Run(ctx, d, opts)
	if !res.Rebuilt || len(res.Nodes) != 3 {
		t.Errorf("expanding = rebuilt %v with %d nodes, want rebuilt with 3", res.Rebuilt, len(res.Nodes))
	}
}

func TestEngine_PositionFuncPrecedence(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(nil)
	d := doc([]string{"a", "b"})
	e.Drags().Set("a", graph.Position{X: 7})
	e.Drags().Set("b", graph.Position{X: 8})

	opts := Options{
		Layout: layout.Options{Type: layout.Custom},
		PositionFunc: func(id string, ctx layout.PositionContext) (graph.Position, bool) {
			if id == "a" {
				return graph.Position{X: 100}, true
			}
			return graph.Position{}, false
		},
	}
	res, err := e.Run(ctx, d, opts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := position(t, res, "a"); got.X != 100 {
		t.Errorf("a = %v, want position function to win", got)
	}
	if got := position(t, res, "b"); got.X != 8 {
		t.Errorf("b = %v, want drag to win over algorithm", got)
	}
}

func TestEngine_ClustersAndDepth(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(nil)
	d := graph.Document{
		Nodes: []graph.RawNode{
			{ID: "a", Data: graph.Data{"team": "red"}},
			{ID: "b", Data: graph.Data{"team": "red"}},
			{ID: "c", Data: graph.Data{"team": "blue"}},
			{ID: "d"},
		},
		Edges: []graph.RawEdge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}, {Source: "c", Target: "d"}},
	}
	res, err := e.Run(ctx, d, Options{Layout: layout.Options{Type: layout.ForceDirected2D}, Cluster: "team"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.Clusters) != 2 || len(res.Clusters["red"].Nodes) != 2 || len(res.Clusters["blue"].Nodes) != 1 {
		t.Errorf("Clusters = %+v, want red(2) and blue(1)", res.Clusters)
	}
	if res.Depth.Invalid || res.Depth.MaxDepth != 3 {
		t.Errorf("Depth = %+v, want valid with max depth 3", res.Depth)
	}
	for _, n := range res.Nodes {
		if n.Position.Z != 0 || math.IsNaN(n.Position.X) {
			t.Errorf("node %s at %v, want finite 2D position", n.ID, n.Position)
		}
	}
}

func TestEngine_CycleMarksDepthInvalid(t *testing.T) {
	e := NewEngine(nil)
	d := doc([]string{"a", "b"}, [2]string{"a", "b"}, [2]string{"b", "a"})
	res, err := e.Run(context.Background(), d, Options{Layout: layout.Options{Type: layout.TreeTd2D}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !res.Depth.Invalid {
		t.Error("Depth.Invalid = false for a cycle")
	}
	if len(res.Nodes) != 2 {
		t.Errorf("len(Nodes) = %d, want 2", len(res.Nodes))
	}
}

func TestEngine_DataFaults(t *testing.T) {
	e := NewEngine(nil)
	d := graph.Document{
		Nodes: []graph.RawNode{{ID: "a"}, {ID: "a"}, {ID: ""}},
		Edges: []graph.RawEdge{{ID: "e1", Source: "a", Target: "ghost"}},
	}
	res, err := e.Run(context.Background(), d, circular(0))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.Nodes) != 1 || len(res.Edges) != 0 {
		t.Errorf("Run() = %d nodes, %d edges, want 1 and 0", len(res.Nodes), len(res.Edges))
	}
	if len(res.Faults) != 3 {
		t.Errorf("Faults = %+v, want 3", res.Faults)
	}
}

func TestEngine_Reset(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(nil)
	d := doc([]string{"a"})
	_, _ = e.Run(ctx, d, circular(0))
	e.Drags().Set("a", graph.Position{X: 1})
	e.Reset()

	if e.Drags().Len() != 0 {
		t.Error("Reset() kept drags")
	}
	res, _ := e.Run(ctx, d, circular(0))
	if !res.Rebuilt {
		t.Error("Run() after Reset() reused a layout")
	}
}
