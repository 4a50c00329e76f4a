package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscape/pkg/config"
	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/label"
	"github.com/matzehuels/graphscape/pkg/layout"
	"github.com/matzehuels/graphscape/pkg/layout/force"
	"github.com/matzehuels/graphscape/pkg/sizing"
)

func parseFlags(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var f pipelineFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v) error: %v", args, err)
	}
	return f.load(cmd)
}

func TestPipelineFlags_Unset(t *testing.T) {
	cfg, err := parseFlags(t)
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	opts := cfg.Pipeline
	if opts.Layout.Type != "" || opts.Sizing.Type != "" || opts.Labels.Mode != "" {
		t.Errorf("options = %+v, want zero values for unset flags", opts)
	}
	if opts.Layout.Force != nil || opts.Collapsed != nil {
		t.Errorf("options = %+v, want no force options or collapsed set", opts)
	}
	if cfg.Cache.Backend != config.BackendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, config.BackendFile)
	}
}

func TestPipelineFlags_Apply(t *testing.T) {
	cfg, err := parseFlags(t,
		"-t", "forceDirected3d",
		"--sizing", "pagerank",
		"--min-size", "2",
		"--max-size", "20",
		"--labels", "all",
		"--cluster", "team",
		"--cluster-type", "treemap",
		"--collapse", "a,b",
	)
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	opts := cfg.Pipeline
	if opts.Layout.Type != layout.ForceDirected3D {
		t.Errorf("Layout.Type = %q, want %q", opts.Layout.Type, layout.ForceDirected3D)
	}
	if opts.Sizing.Type != sizing.PageRank || opts.Sizing.MinSize != 2 || opts.Sizing.MaxSize != 20 {
		t.Errorf("Sizing = %+v, want pagerank in [2, 20]", opts.Sizing)
	}
	if opts.Labels.Mode != label.All {
		t.Errorf("Labels.Mode = %q, want %q", opts.Labels.Mode, label.All)
	}
	if opts.Cluster != "team" {
		t.Errorf("Cluster = %q, want team", opts.Cluster)
	}
	if opts.Layout.Force == nil || opts.Layout.Force.ClusterType != force.ClusterTreemap {
		t.Errorf("Layout.Force = %+v, want treemap clustering", opts.Layout.Force)
	}
	if !slices.Equal(opts.Collapsed, []string{"a", "b"}) {
		t.Errorf("Collapsed = %v, want [a b]", opts.Collapsed)
	}
}

func TestPipelineFlags_SizeAttrImpliesAttributeSizing(t *testing.T) {
	cfg, err := parseFlags(t, "--size-attr", "weight")
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if got := cfg.Pipeline.Sizing; got.Type != sizing.Attribute || got.Attribute != "weight" {
		t.Errorf("Sizing = %+v, want attribute sizing by weight", got)
	}
}

func TestPipelineFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want errors.Code
	}{
		{"UnknownLayout", []string{"-t", "spiral"}, errors.ErrCodeInvalidLayoutType},
		{"UnknownSizing", []string{"--sizing", "huge"}, errors.ErrCodeInvalidSizingType},
		{"UnknownLabels", []string{"--labels", "some"}, errors.ErrCodeInvalidLabelType},
		{"ClusterOnCircular", []string{"-t", "circular2d", "--cluster", "team"}, errors.ErrCodeUnsupportedClustering},
		{"ClusterTypeOnCircular", []string{"-t", "circular2d", "--cluster-type", "treemap"}, errors.ErrCodeInvalidOptions},
		{"InvertedSizeRange", []string{"--min-size", "10", "--max-size", "5"}, errors.ErrCodeInvalidOptions},
		{"CustomLayout", []string{"-t", "custom"}, errors.ErrCodeInvalidOptions},
		{"MissingConfig", []string{"--config", "/nonexistent/graphscape.toml"}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("load() error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestPipelineFlags_OverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphscape.toml")
	data := "[pipeline.layout]\ntype = \"treeTd2d\"\n\n[pipeline.sizing]\ntype = \"pagerank\"\nmax_size = 30.0\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := parseFlags(t, "--config", path, "--sizing", "centrality")
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	opts := cfg.Pipeline
	if opts.Layout.Type != layout.TreeTd2D {
		t.Errorf("Layout.Type = %q, want %q from the file", opts.Layout.Type, layout.TreeTd2D)
	}
	if opts.Sizing.Type != sizing.Centrality {
		t.Errorf("Sizing.Type = %q, want %q from the flag", opts.Sizing.Type, sizing.Centrality)
	}
	if opts.Sizing.MaxSize != 30 {
		t.Errorf("Sizing.MaxSize = %v, want 30 from the file", opts.Sizing.MaxSize)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{nil, []string{"svg"}},
		{[]string{"SVG", " png ", "svg"}, []string{"svg", "png"}},
		{[]string{"dot", ""}, []string{"dot"}},
	}
	for _, tt := range tests {
		got, err := parseFormats(tt.in)
		if err != nil {
			t.Errorf("parseFormats(%v) error: %v", tt.in, err)
			continue
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("parseFormats(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := parseFormats([]string{"gif"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("parseFormats([gif]) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}
