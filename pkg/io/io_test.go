package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
)

const jsonGraph = `{
  "nodes": [
    {"id": "api", "label": "API", "data": {"team": "core", "weight": 3}},
    {"id": "db", "size": 12}
  ],
  "edges": [
    {"source": "api", "target": "db", "label": "reads"}
  ]
}`

const yamlGraph = `
nodes:
  - id: api
    label: API
    data:
      team: core
      weight: 3
  - id: db
    size: 12
edges:
  - source: api
    target: db
    label: reads
`

func checkDoc(t *testing.T, doc graph.Document) {
	t.Helper()
	if len(doc.Nodes) != 2 || len(doc.Edges) != 1 {
		t.Fatalf("doc = %d nodes, %d edges, want 2 and 1", len(doc.Nodes), len(doc.Edges))
	}
	if doc.Nodes[0].Label != "API" || doc.Nodes[1].Size != 12 {
		t.Errorf("nodes = %+v", doc.Nodes)
	}
	if team, _ := doc.Nodes[0].Data.Cluster("team"); team != "core" {
		t.Errorf("team = %q, want core", team)
	}
	if e := doc.Edges[0]; e.Source != "api" || e.Target != "db" || e.Label != "reads" {
		t.Errorf("edge = %+v", e)
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
	}{
		{"JSON", FormatJSON, jsonGraph},
		{"DefaultIsJSON", "", jsonGraph},
		{"YAML", FormatYAML, yamlGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ReadGraph(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadGraph() error: %v", err)
			}
			checkDoc(t, doc)
		})
	}
}

func TestReadGraph_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
		code   errors.Code
	}{
		{"MalformedJSON", FormatJSON, `{"nodes": [`, errors.ErrCodeInvalidInput},
		{"MalformedYAML", FormatYAML, "nodes: [a", errors.ErrCodeInvalidInput},
		{"UnknownFormat", "xml", "<graph/>", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadGraph() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadYAML_Empty(t *testing.T) {
	doc, err := ReadYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadYAML() error: %v", err)
	}
	if len(doc.Nodes) != 0 {
		t.Errorf("ReadYAML() = %+v, want empty document", doc)
	}
}

func TestImportGraph(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{"g.json": jsonGraph, "g.yml": yamlGraph} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		doc, err := ImportGraph(path)
		if err != nil {
			t.Fatalf("ImportGraph(%s) error: %v", name, err)
		}
		checkDoc(t, doc)
	}

	if _, err := ImportGraph(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportGraph(missing) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	doc, err := ReadJSON(strings.NewReader(jsonGraph))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteYAML(doc, &buf); err != nil {
		t.Fatalf("WriteYAML() error: %v", err)
	}
	back, err := ReadYAML(&buf)
	if err != nil {
		t.Fatalf("ReadYAML() error: %v", err)
	}
	checkDoc(t, back)
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportJSON(map[string]int{"nodes": 2}, path); err != nil {
		t.Fatalf("ExportJSON() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "{\n  \"nodes\": 2\n}\n"; got != want {
		t.Errorf("ExportJSON() wrote %q, want %q", got, want)
	}
}

func TestPaths(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"graph.json", "graph.layout.json"},
		{"dir/graph.yaml", "dir/graph.layout.json"},
		{"graph", "graph.layout.json"},
	}
	for _, tt := range tests {
		if got := LayoutPath(tt.in); got != tt.want {
			t.Errorf("LayoutPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := OutputPath("g.json", ".svg"); got != "g.svg" {
		t.Errorf("OutputPath() = %q, want g.svg", got)
	}
	if got := FormatOf("G.YML"); got != FormatYAML {
		t.Errorf("FormatOf(G.YML) = %q, want yaml", got)
	}
}
