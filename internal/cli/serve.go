package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/soundchunk/internal/metrics"
	"github.com/matzehuels/soundchunk/internal/server"
	"github.com/matzehuels/soundchunk/pkg/layout"
)

type serveOpts struct {
	addr      string
	direction string
	strict    bool
	noCache   bool
	noMetrics bool
}

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph and editor session API over HTTP",
		Long: `Serve the graph and editor session API over HTTP.

Graphs are kept in the store selected by [store] in the config (memory,
redis or mongo). Each session mounts an editor over a stored graph; accepted
connect and remove gestures are written back to the store. Prometheus
metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				opts.addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("strict") {
				opts.strict = c.Config.Editor.Strict
			}
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address (default: server.addr from config)")
	cmd.Flags().StringVarP(&opts.direction, "direction", "d", "", "initial rank direction: TB, LR (default: layout.direction from config)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "reject self-loops and duplicate edges (default: editor.strict from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not serve /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	dir := c.defaultDirection()
	if opts.direction != "" {
		var err error
		if dir, err = layout.ParseDirection(opts.direction); err != nil {
			return err
		}
	}

	st, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	solver, lc, err := c.newSolver(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer lc.Close()

	logger := loggerFromContext(ctx)
	serverOpts := []server.Option{
		server.WithLogger(logger),
		server.WithSolver(solver),
		server.WithStrict(opts.strict),
		server.WithDirection(dir),
	}
	if !opts.noMetrics {
		collector := metrics.NewCollector(true)
		collector.Register()
		serverOpts = append(serverOpts, server.WithMetrics(collector.Handler()))
	}

	logger.Info("starting server",
		"addr", opts.addr,
		"store", c.Config.Store.Kind,
		"cache", c.Config.Cache.Kind,
		"strict", opts.strict)
	printInfo("Serving on %s", StyleHighlight.Render(opts.addr))
	printKeyValue("store", c.Config.Store.Kind)
	printKeyValue("cache", c.Config.Cache.Kind)
	printKeyValue("direction", string(dir))

	return server.New(st, serverOpts...).Run(ctx, opts.addr)
}
