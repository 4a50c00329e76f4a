package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscape/pkg/errors"
	graphio "github.com/matzehuels/graphscape/pkg/io"
	"github.com/matzehuels/graphscape/pkg/pipeline"
	"github.com/matzehuels/graphscape/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (single format only)
	formats  []string // output formats: "svg", "png", "pdf", "dot"
	scale    float64  // coordinate scale factor
	detailed bool     // add data attributes to visible labels
	noCache  bool     // disable layout and artifact caching
}

// renderCommand creates the render command for drawing a laid-out graph.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts  renderOpts
		flags pipelineFlags
	)

	cmd := &cobra.Command{
		Use:   "render [graph.json|graph.yaml]",
		Short: "Render a graph to SVG, PNG, PDF or DOT",
		Long: `Render a graph to SVG, PNG, PDF or DOT.

The graph is laid out exactly as by 'layout', then every node is pinned at its
computed position and drawn with Graphviz. Node sizes become circle diameters
and visible labels are drawn next to their nodes.

Outputs are written next to the input as <input>.<format>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &flags, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format only)")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", []string{nodelink.FormatSVG}, "output formats: svg, png, pdf, dot")
	cmd.Flags().Float64Var(&opts.scale, "scale", 1, "multiply layout coordinates")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "add node data to visible labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runRender lays out the graph and writes one artifact per format.
func (c *CLI) runRender(cmd *cobra.Command, input string, flags *pipelineFlags, opts renderOpts) error {
	ctx := cmd.Context()

	formats, err := parseFormats(opts.formats)
	if err != nil {
		return err
	}
	if opts.output != "" && len(formats) > 1 {
		return errors.New(errors.ErrCodeInvalidOptions, "--output requires a single format")
	}

	cfg, err := flags.load(cmd)
	if err != nil {
		return err
	}
	doc, err := graphio.Open(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := c.execute(ctx, runner, cfg.Pipeline, doc)
	if err != nil {
		return err
	}

	var written []string
	for _, format := range formats {
		data, _, err := runner.Render(ctx, res, pipeline.RenderOptions{
			Format:   format,
			Scale:    opts.scale,
			Detailed: opts.detailed,
		})
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}

		path := opts.output
		if path == "" {
			path = graphio.OutputPath(graphio.LocalName(input), "."+format)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		c.Logger.Debug("wrote artifact", "format", format, "bytes", len(data))
		written = append(written, path)
	}

	printSuccess("Render complete")
	for _, path := range written {
		printFile(path)
	}
	printResult(res)
	return nil
}

// parseFormats normalizes and validates the requested output formats.
// Duplicates are dropped; an empty list means SVG.
func parseFormats(in []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if !nodelink.ValidFormats[f] {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q", f)
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		out = []string{nodelink.FormatSVG}
	}
	return out, nil
}
