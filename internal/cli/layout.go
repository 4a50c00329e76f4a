package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscape/pkg/graph"
	graphio "github.com/matzehuels/graphscape/pkg/io"
	"github.com/matzehuels/graphscape/pkg/pipeline"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		flags   pipelineFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json|graph.yaml|url]",
		Short: "Compute node positions and sizes for a graph",
		Long: `Compute node positions and sizes for a graph.

The layout command reads a graph document (JSON or YAML with "nodes" and
"edges" lists), runs the selected layout to convergence, sizes the nodes and
writes the render-ready result to <input>.layout.json. The input may be an
http(s) URL, in which case the result is written to the working directory.

Flags override values from the --config file. Positions are cached locally,
so re-running with different sizing or label settings is fast.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], &flags, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, input string, flags *pipelineFlags, output string, noCache bool) error {
	ctx := cmd.Context()

	cfg, err := flags.load(cmd)
	if err != nil {
		return err
	}
	doc, err := graphio.Open(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := c.execute(ctx, runner, cfg.Pipeline, doc)
	if err != nil {
		return err
	}

	if output == "" {
		output = graphio.LayoutPath(graphio.LocalName(input))
	}
	if err := graphio.ExportJSON(res, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printResult(res)
	printNewline()
	printNextStep("Render", "graphscape render "+input)

	return nil
}

// execute runs the pipeline once with a spinner.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, doc graph.Document) (*pipeline.Result, error) {
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Layout.ResolvedType()))
	spinner.Start()

	res, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return res, nil
}
