package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/graphscape/pkg/pipeline"
)

const pairYAML = `nodes:
  - id: a
  - id: b
edges:
  - source: a
    target: b
`

// runCLI executes the root command with args and an isolated cache.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func writeGraph(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"layout", "render", "watch", "explore", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Find(%q) = %v, %v, want the %s command", name, cmd, err, name)
		}
	}
}

func TestLayoutCommand(t *testing.T) {
	input := writeGraph(t, "pair.yaml", pairYAML)
	if err := runCLI(t, "layout", input, "-t", "circular2d", "--sizing", "centrality"); err != nil {
		t.Fatalf("layout error: %v", err)
	}

	data, err := os.ReadFile(strings.TrimSuffix(input, ".yaml") + ".layout.json")
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	var res pipeline.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(res.Nodes) != 2 || len(res.Edges) != 1 {
		t.Fatalf("result has %d nodes and %d edges, want 2 and 1", len(res.Nodes), len(res.Edges))
	}
	a, _ := res.Node("a")
	if math.Abs(a.Position.X-300) > 1e-9 || math.Abs(a.Position.Y) > 1e-9 {
		t.Errorf("a.Position = %+v, want (300, 0)", a.Position)
	}
	for _, n := range res.Nodes {
		if n.Size != 10 {
			t.Errorf("%s.Size = %v, want 10 for equal centrality", n.ID, n.Size)
		}
	}
}

func TestLayoutCommand_Output(t *testing.T) {
	input := writeGraph(t, "pair.yaml", pairYAML)
	output := filepath.Join(t.TempDir(), "out.json")
	if err := runCLI(t, "layout", input, "-o", output, "--collapse", "a"); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	var res pipeline.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(res.Nodes) != 1 || len(res.Hidden.Nodes) != 1 || res.Hidden.Nodes[0] != "b" {
		t.Errorf("nodes = %d, hidden = %v, want a alone with b hidden", len(res.Nodes), res.Hidden.Nodes)
	}
}

func TestLayoutCommand_Errors(t *testing.T) {
	input := writeGraph(t, "pair.yaml", pairYAML)
	if err := runCLI(t, "layout", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("layout of a missing file succeeded, want error")
	}
	if err := runCLI(t, "layout", input, "-t", "spiral"); err == nil {
		t.Error("layout with an unknown type succeeded, want error")
	}
}

func TestRenderCommand_DOT(t *testing.T) {
	input := writeGraph(t, "pair.json", `{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"source":"a","target":"b"}]}`)
	if err := runCLI(t, "render", input, "-f", "dot", "-t", "treeTd2d"); err != nil {
		t.Fatalf("render error: %v", err)
	}
	data, err := os.ReadFile(strings.TrimSuffix(input, ".json") + ".dot")
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("digraph")) {
		t.Errorf("artifact starts with %q, want digraph", data[:min(len(data), 20)])
	}
}

func TestRenderCommand_OutputNeedsSingleFormat(t *testing.T) {
	input := writeGraph(t, "pair.yaml", pairYAML)
	if err := runCLI(t, "render", input, "-f", "dot,svg", "-o", "x"); err == nil {
		t.Error("render with -o and two formats succeeded, want error")
	}
}

func TestCompletionCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.Execute(); err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(buf.String(), "graphscape") {
		t.Error("bash completion does not mention graphscape")
	}
}
