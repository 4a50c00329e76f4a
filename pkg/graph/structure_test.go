package graph

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name         string
		nodes        []RawNode
		edges        []RawEdge
		wantNodes    []string
		wantEdges    int
		skippedNodes int
		skippedEdges int
	}{
		{
			name:      "Empty",
			wantNodes: nil,
		},
		{
			name:      "Chain",
			nodes:     []RawNode{{ID: "1"}, {ID: "2"}, {ID: "3"}},
			edges:     []RawEdge{{ID: "1-2", Source: "1", Target: "2"}, {ID: "2-3", Source: "2", Target: "3"}},
			wantNodes: []string{"1", "2", "3"},
			wantEdges: 2,
		},
		{
			name:         "DuplicateNode",
			nodes:        []RawNode{{ID: "a", Label: "first"}, {ID: "a", Label: "second"}, {ID: "b"}},
			wantNodes:    []string{"a", "b"},
			skippedNodes: 1,
		},
		{
			name:         "EmptyNodeID",
			nodes:        []RawNode{{ID: ""}, {ID: "b"}},
			wantNodes:    []string{"b"},
			skippedNodes: 1,
		},
		{
			name:         "MissingEndpoint",
			nodes:        []RawNode{{ID: "a"}, {ID: "b"}},
			edges:        []RawEdge{{ID: "a-x", Source: "a", Target: "x"}, {ID: "x-b", Source: "x", Target: "b"}, {ID: "a-b", Source: "a", Target: "b"}},
			wantNodes:    []string{"a", "b"},
			wantEdges:    1,
			skippedEdges: 2,
		},
		{
			name:      "ParallelEdges",
			nodes:     []RawNode{{ID: "a"}, {ID: "b"}},
			edges:     []RawEdge{{ID: "e1", Source: "a", Target: "b"}, {ID: "e2", Source: "a", Target: "b"}},
			wantNodes: []string{"a", "b"},
			wantEdges: 2,
		},
		{
			name:         "DuplicateEdgeID",
			nodes:        []RawNode{{ID: "a"}, {ID: "b"}},
			edges:        []RawEdge{{ID: "e", Source: "a", Target: "b"}, {ID: "e", Source: "b", Target: "a"}},
			wantNodes:    []string{"a", "b"},
			wantEdges:    1,
			skippedEdges: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, report := Build(tt.nodes, tt.edges, nil)
			if got := s.NodeIDs(); !slices.Equal(got, tt.wantNodes) {
				t.Errorf("NodeIDs() = %v, want %v", got, tt.wantNodes)
			}
			if got := s.EdgeCount(); got != tt.wantEdges {
				t.Errorf("EdgeCount() = %d, want %d", got, tt.wantEdges)
			}
			if got := len(report.SkippedNodes); got != tt.skippedNodes {
				t.Errorf("SkippedNodes = %d, want %d", got, tt.skippedNodes)
			}
			if got := len(report.SkippedEdges); got != tt.skippedEdges {
				t.Errorf("SkippedEdges = %d, want %d", got, tt.skippedEdges)
			}
			for _, e := range s.Edges() {
				if !s.HasNode(e.Source) || !s.HasNode(e.Target) {
					t.Errorf("edge %s has missing endpoint", e.ID)
				}
			}
		})
	}
}

func TestBuild_FirstDuplicateWins(t *testing.T) {
	s, report := Build([]RawNode{{ID: "a", Label: "first"}, {ID: "a", Label: "second"}}, nil, nil)
	n, _ := s.Node("a")
	if n.Label != "first" {
		t.Errorf("Label = %q, want first", n.Label)
	}
	if !errors.Is(report.SkippedNodes[0].Err, ErrDuplicateNodeID) {
		t.Errorf("Err = %v, want ErrDuplicateNodeID", report.SkippedNodes[0].Err)
	}
}

func TestBuild_FaultErrors(t *testing.T) {
	_, report := Build(
		[]RawNode{{ID: "a"}},
		[]RawEdge{{ID: "1", Source: "x", Target: "a"}, {ID: "2", Source: "a", Target: "x"}},
		nil,
	)
	if !errors.Is(report.SkippedEdges[0].Err, ErrUnknownSourceNode) {
		t.Errorf("first fault = %v, want ErrUnknownSourceNode", report.SkippedEdges[0].Err)
	}
	if !errors.Is(report.SkippedEdges[1].Err, ErrUnknownTargetNode) {
		t.Errorf("second fault = %v, want ErrUnknownTargetNode", report.SkippedEdges[1].Err)
	}
	if !report.HasFaults() {
		t.Error("HasFaults() = false, want true")
	}
}

func TestLoad_ClearsPriorStructure(t *testing.T) {
	s, _ := Build([]RawNode{{ID: "a"}, {ID: "b"}}, []RawEdge{{ID: "e", Source: "a", Target: "b"}}, nil)
	s.Load([]RawNode{{ID: "c"}}, nil)

	if got := s.NodeIDs(); !slices.Equal(got, []string{"c"}) {
		t.Errorf("NodeIDs() = %v, want [c]", got)
	}
	if s.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", s.EdgeCount())
	}
	if s.Directed().Nodes().Len() != 1 {
		t.Errorf("gonum nodes = %d, want 1", s.Directed().Nodes().Len())
	}
}

func TestStructure_SynthesizedEdgeIDs(t *testing.T) {
	s, _ := Build(
		[]RawNode{{ID: "a"}, {ID: "b"}},
		[]RawEdge{{Source: "a", Target: "b"}, {Source: "a", Target: "b"}},
		nil,
	)
	var ids []string
	for _, e := range s.Edges() {
		ids = append(ids, e.ID)
	}
	if want := []string{"a-b", "a-b-2"}; !slices.Equal(ids, want) {
		t.Errorf("edge IDs = %v, want %v", ids, want)
	}
}

func TestStructure_Neighbors(t *testing.T) {
	s, _ := Build(
		[]RawNode{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[]RawEdge{
			{ID: "1", Source: "a", Target: "c"},
			{ID: "2", Source: "b", Target: "c"},
			{ID: "3", Source: "a", Target: "c"},
			{ID: "4", Source: "c", Target: "a"},
		},
		nil,
	)

	if got := s.InboundNeighbors("c"); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("InboundNeighbors(c) = %v, want [a b]", got)
	}
	if got := s.OutboundNeighbors("a"); !slices.Equal(got, []string{"c"}) {
		t.Errorf("OutboundNeighbors(a) = %v, want [c]", got)
	}
	if got := len(s.Inbound("c")); got != 3 {
		t.Errorf("len(Inbound(c)) = %d, want 3", got)
	}
	if got := s.Degree("c"); got != 4 {
		t.Errorf("Degree(c) = %d, want 4", got)
	}
	if got := s.Degree("missing"); got != 0 {
		t.Errorf("Degree(missing) = %d, want 0", got)
	}
}

func TestStructure_GonumView(t *testing.T) {
	s, _ := Build(
		[]RawNode{{ID: "a"}, {ID: "b"}},
		[]RawEdge{{ID: "1", Source: "a", Target: "b"}, {ID: "2", Source: "a", Target: "b"}},
		nil,
	)
	ga, _ := s.GraphID("a")
	gb, _ := s.GraphID("b")
	if !s.Directed().HasEdgeFromTo(ga, gb) {
		t.Error("HasEdgeFromTo(a, b) = false, want true")
	}
	if s.Directed().HasEdgeFromTo(gb, ga) {
		t.Error("HasEdgeFromTo(b, a) = true, want false")
	}
	if name, _ := s.NodeName(gb); name != "b" {
		t.Errorf("NodeName() = %q, want b", name)
	}
}

func TestBuild_CopiesData(t *testing.T) {
	data := Data{"team": "core"}
	s, _ := Build([]RawNode{{ID: "a", Data: data}}, nil, nil)
	data["team"] = "changed"

	n, _ := s.Node("a")
	if n.Data["team"] != "core" {
		t.Errorf("Data[team] = %v, want core", n.Data["team"])
	}
}

func TestPosition_Finite(t *testing.T) {
	p := Position{X: math.NaN(), Y: math.Inf(1), Z: 3}.Finite()
	if p != (Position{Z: 3}) {
		t.Errorf("Finite() = %+v, want {0 0 3}", p)
	}
}
