package sizing

import (
	"bytes"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
)

func star(leaves int) *graph.Structure {
	nodes := []graph.RawNode{{ID: "hub"}}
	var edges []graph.RawEdge
	for i := 0; i < leaves; i++ {
		id := fmt.Sprintf("leaf%d", i)
		nodes = append(nodes, graph.RawNode{ID: id})
		edges = append(edges, graph.RawEdge{Source: id, Target: "hub"})
	}
	s, _ := graph.Build(nodes, edges, nil)
	return s
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name string
		s    *graph.Structure
		opts Options
		want map[string]float64
	}{
		{
			name: "DefaultDegenerate",
			s:    star(2),
			opts: Options{},
			want: map[string]float64{"hub": 10, "leaf0": 10, "leaf1": 10},
		},
		{
			name: "NoneKeepsRawSizes",
			s: func() *graph.Structure {
				s, _ := graph.Build([]graph.RawNode{{ID: "a", Size: 42}, {ID: "b"}}, nil, nil)
				return s
			}(),
			opts: Options{Type: None},
			want: map[string]float64{"a": 42, "b": DefaultSize},
		},
		{
			name: "DefaultRescalesOwnSizes",
			s: func() *graph.Structure {
				s, _ := graph.Build([]graph.RawNode{{ID: "a", Size: 1}, {ID: "b", Size: 3}}, nil, nil)
				return s
			}(),
			opts: Options{Type: Default},
			want: map[string]float64{"a": 5, "b": 15},
		},
		{
			name: "Centrality",
			s:    star(3),
			opts: Options{Type: Centrality},
			want: map[string]float64{"hub": 15, "leaf0": 5, "leaf1": 5, "leaf2": 5},
		},
		{
			name: "CentralitySingleNode",
			s:    star(0),
			opts: Options{Type: Centrality, MinSize: 2, MaxSize: 4},
			want: map[string]float64{"hub": 3},
		},
		{
			name: "PageRankHubIsLargest",
			s:    star(4),
			opts: Options{Type: PageRank},
			want: map[string]float64{"hub": 15, "leaf0": 5, "leaf1": 5, "leaf2": 5, "leaf3": 5},
		},
		{
			name: "Attribute",
			s: func() *graph.Structure {
				s, _ := graph.Build([]graph.RawNode{
					{ID: "a", Data: graph.Data{"weight": 1}},
					{ID: "b", Data: graph.Data{"weight": 2.0}},
					{ID: "c", Data: graph.Data{"weight": "3"}},
				}, nil, nil)
				return s
			}(),
			opts: Options{Type: Attribute, Attribute: "weight"},
			want: map[string]float64{"a": 5, "b": 10, "c": 15},
		},
		{
			name: "AttributeFallsBackToDefault",
			s: func() *graph.Structure {
				s, _ := graph.Build([]graph.RawNode{
					{ID: "a", Data: graph.Data{"weight": 10}},
					{ID: "b", Data: graph.Data{"weight": 20}},
					{ID: "c", Data: graph.Data{"weight": "heavy"}},
				}, nil, nil)
				return s
			}(),
			opts: Options{Type: Attribute, Attribute: "weight"},
			want: map[string]float64{"a": 7, "b": 15, "c": 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.s, tt.opts, nil)
			if err != nil {
				t.Fatalf("Compute() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Compute() = %v, want %v", got, tt.want)
			}
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("size[%s] = %v, want %v", id, got[id], want)
				}
			}
		})
	}
}

func TestCompute_WarnsOnNonNumeric(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	s, _ := graph.Build([]graph.RawNode{{ID: "a"}, {ID: "b", Data: graph.Data{"w": 1}}}, nil, nil)

	if _, err := Compute(s, Options{Type: Attribute, Attribute: "w"}, logger); err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if !strings.Contains(buf.String(), "non-numeric size attribute") {
		t.Errorf("log = %q, want a warning", buf.String())
	}
}

func TestCompute_Errors(t *testing.T) {
	s := star(1)
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"UnknownType", Options{Type: "volume"}, errors.ErrCodeInvalidSizingType},
		{"AttributeWithoutName", Options{Type: Attribute}, errors.ErrCodeInvalidOptions},
		{"BadAttributeName", Options{Type: Attribute, Attribute: "has space"}, errors.ErrCodeInvalidOptions},
		{"InvertedRange", Options{MinSize: 20, MaxSize: 10}, errors.ErrCodeInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(s, tt.opts, nil)
			if !errors.Is(err, tt.code) {
				t.Errorf("Compute() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRescale_BoundsAndMaximum(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 100; trial++ {
		scores := make(map[string]float64)
		best, bestID := -1.0, ""
		for i := 0; i < 2+rng.IntN(20); i++ {
			id := fmt.Sprint(i)
			v := rng.Float64() * 1000
			scores[id] = v
			if v > best {
				best, bestID = v, id
			}
		}
		lo, hi := 3.0, 3+float64(1+rng.IntN(30))
		if trial%2 == 1 {
			lo, hi = rng.Float64(), 1+rng.Float64()*5
		}
		Rescale(scores, lo, hi)
		for id, v := range scores {
			if v < lo || v > hi {
				t.Fatalf("trial %d: size[%s] = %v outside [%v, %v]", trial, id, v, lo, hi)
			}
		}
		if scores[bestID] != hi {
			t.Fatalf("trial %d: highest score mapped to %v, want %v", trial, scores[bestID], hi)
		}
	}
}

func TestRescale_FractionalBounds(t *testing.T) {
	scores := map[string]float64{"a": 0, "b": 0.5, "c": 1}
	Rescale(scores, 0.2, 0.8)
	want := map[string]float64{"a": 0.2, "b": 0.5, "c": 0.8}
	for id, w := range want {
		if math.Abs(scores[id]-w) > 1e-12 {
			t.Errorf("Rescale()[%s] = %v, want %v", id, scores[id], w)
		}
	}
	if scores["c"] != 0.8 || scores["a"] != 0.2 {
		t.Errorf("Rescale() endpoints = %v, %v, want exactly 0.2 and 0.8", scores["a"], scores["c"])
	}
}

func TestRescale_Empty(t *testing.T) {
	scores := map[string]float64{}
	Rescale(scores, 1, 2)
	if len(scores) != 0 {
		t.Errorf("Rescale(empty) = %v", scores)
	}
}
