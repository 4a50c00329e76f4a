package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphscape/pkg/config"
	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/metrics"
	"github.com/matzehuels/graphscape/pkg/pipeline"
	"github.com/matzehuels/graphscape/pkg/server"
	"github.com/matzehuels/graphscape/pkg/session"
)

const (
	// sessionCleanupInterval is how often expired server sessions are dropped.
	sessionCleanupInterval = time.Minute

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 15 * time.Second
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	configPath string
	addr       string
	noCache    bool
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout engine over HTTP",
		Long: `Serve the layout engine over HTTP.

Stateless requests go to POST /v1/layout and share the layout cache. Clients
that drag nodes or expand collapsed paths create a session with
POST /v1/sessions; each session keeps its own engine until it is deleted or
stays idle longer than the configured session TTL.

Prometheus metrics are exposed on GET /metrics. With --config, the pipeline
defaults are reloaded whenever the file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts, cmd.Flags().Changed("addr"))
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "configuration file (toml, yaml or json)")
	cmd.Flags().StringVar(&opts.addr, "addr", config.DefaultAddr, "HTTP listen address")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe starts the server and shuts it down gracefully when ctx ends.
func (c *CLI) runServe(ctx context.Context, opts serveOpts, addrSet bool) error {
	cfg := config.Default()
	defaults := func() pipeline.Options { return cfg.Pipeline }

	if opts.configPath != "" {
		loader, err := config.NewLoader(opts.configPath, c.Logger)
		if err != nil {
			return err
		}
		initial := loader.Config()
		cfg = initial
		defaults = func() pipeline.Options { return loader.Config().Pipeline }

		loader.OnChange(func(next config.Config) {
			if next.Cache != initial.Cache || next.Server != initial.Server {
				c.Logger.Warn("cache and server settings change on restart only")
			}
		})
		stopWatch, err := loader.Watch()
		if err != nil {
			c.Logger.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
		} else {
			defer stopWatch()
		}
	}
	if addrSet || cfg.Server.Addr == "" {
		cfg.Server.Addr = opts.addr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	resetHooks := metrics.Register(reg)
	defer resetHooks()

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	sessions := session.NewRegistry(cfg.SessionTTL(), c.Logger)
	sessions.StartCleanup(ctx, sessionCleanupInterval)

	api := server.New(server.Options{
		Runner:   runner,
		Sessions: sessions,
		Defaults: defaults,
		Gatherer: reg,
		Logger:   c.Logger,
	})
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("server starting", "addr", cfg.Server.Addr, "cache", cfg.Cache.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", cfg.Server.Addr)
		}
		return nil
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, err, "shutdown")
	}
	c.Logger.Info("goodbye", "sessions", sessions.Len())
	return nil
}
