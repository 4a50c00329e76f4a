package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscape/pkg/config"
	"github.com/matzehuels/graphscape/pkg/errors"
	graphio "github.com/matzehuels/graphscape/pkg/io"
	"github.com/matzehuels/graphscape/pkg/session"
)

// watchCommand creates the watch command for re-running on file changes.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		output string
		flags  pipelineFlags
	)

	cmd := &cobra.Command{
		Use:   "watch [graph.json|graph.yaml]",
		Short: "Recompute the layout whenever the graph changes",
		Long: `Recompute the layout whenever the graph or config file changes.

watch keeps one layout engine alive between runs, so only what changed is
recomputed: editing node sizes or label settings reuses the positions, while
editing nodes or edges rebuilds the layout. The collapsed set and pinned
positions saved by 'explore' are picked up when --collapse is not given.

The result is rewritten to <input>.layout.json after every run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd, args[0], &flags, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runWatch runs once, then again on every change until the context ends.
func (c *CLI) runWatch(cmd *cobra.Command, input string, flags *pipelineFlags, output string) error {
	ctx := cmd.Context()
	if graphio.IsRemote(input) {
		return errors.New(errors.ErrCodeInvalidPath, "watch needs a local file, got %s", input)
	}
	if output == "" {
		output = graphio.LayoutPath(input)
	}

	sess, collapsed := openSnapshots(c.Logger).resume(ctx, input)
	if cmd.Flags().Changed("collapse") {
		collapsed = nil
	}
	if err := c.watchRun(ctx, cmd, sess, input, flags, collapsed, output); err != nil {
		printError("%s", errors.UserMessage(err))
	}

	paths := []string{input}
	if flags.configPath != "" {
		paths = append(paths, flags.configPath)
	}
	changes := make(chan string, 1)
	stop, err := config.WatchFiles(paths, c.Logger, func(path string) {
		select {
		case changes <- path:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer stop()

	printInfo("Watching %s (Ctrl+C to stop)", input)
	for {
		select {
		case <-ctx.Done():
			printNewline()
			return nil
		case path := <-changes:
			c.Logger.Debug("change detected", "path", path)
			if err := c.watchRun(ctx, cmd, sess, input, flags, collapsed, output); err != nil {
				printError("%s", errors.UserMessage(err))
			}
		}
	}
}

// watchRun reloads config and graph and runs the session engine once.
// Errors leave the previous output in place.
func (c *CLI) watchRun(ctx context.Context, cmd *cobra.Command, sess *session.Session, input string, flags *pipelineFlags, collapsed []string, output string) error {
	cfg, err := flags.load(cmd)
	if err != nil {
		return err
	}
	if len(collapsed) > 0 {
		cfg.Pipeline.Collapsed = collapsed
	}
	doc, err := graphio.ImportGraph(input)
	if err != nil {
		return err
	}

	opts := cfg.Pipeline
	opts.Logger = c.Logger
	res, err := sess.Run(ctx, doc, opts)
	if err != nil {
		return err
	}
	if err := graphio.ExportJSON(res, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	verb := "Reused layout"
	if res.Rebuilt {
		verb = "Rebuilt layout"
	}
	printSuccess("%s (run %d)", verb, res.Generation)
	printFile(output)
	printResult(res)
	return nil
}
