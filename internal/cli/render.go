package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/soundchunk/pkg/cache"
	"github.com/matzehuels/soundchunk/pkg/chunk"
	"github.com/matzehuels/soundchunk/pkg/layout"
	"github.com/matzehuels/soundchunk/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string
	format    string
	input     string
	direction string
	detailed  bool
	noCache   bool
}

// renderCommand creates the render command for node-link diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render [graph.json|-]",
		Short: "Render a signal graph as a node-link diagram",
		Long: `Render a signal graph as a Graphviz node-link diagram.

Nodes are shaped by role: outputs as double octagons, generators as ellipses
and modifiers as boxes. With --detailed, labels list roles and ports.

Output is DOT source (-f dot) or SVG (-f svg, the default). SVG output is
cached locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateRenderFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot")
	cmd.Flags().StringVar(&opts.input, "input-format", "", "input format: json, yaml (default: from extension)")
	cmd.Flags().StringVarP(&opts.direction, "direction", "d", "", "rank direction: TB, LR (default: layout.direction from config)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show roles and ports in labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func validateRenderFormat(f string) error {
	switch strings.ToLower(f) {
	case formatDOT, formatSVG:
		return nil
	}
	return fmt.Errorf("invalid format %q (must be svg or dot)", f)
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	g, err := readGraph(input, opts.input)
	if err != nil {
		return err
	}

	dir := c.defaultDirection()
	if opts.direction != "" {
		if dir, err = layout.ParseDirection(opts.direction); err != nil {
			return err
		}
	}

	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.detailed, Direction: dir})
	if strings.ToLower(opts.format) == formatDOT {
		return c.writeOutput(opts.output, []byte(dot))
	}

	svg, cached, err := c.renderSVG(ctx, g, dot, opts)
	if err != nil {
		return err
	}
	if err := c.writeOutput(opts.output, svg); err != nil {
		return err
	}
	printStats(len(g.Nodes), len(g.Edges), cached)
	return nil
}

// renderSVG renders dot, serving repeated renders from the artifact cache.
func (c *CLI) renderSVG(ctx context.Context, g chunk.Elements, dot string, opts renderOpts) ([]byte, bool, error) {
	store, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return nil, false, fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	style := "simple"
	if opts.detailed {
		style = "detailed"
	}
	key := c.keyer().ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{Format: formatSVG, Style: style})

	if data, ok, err := store.Get(ctx, key); err == nil && ok {
		loggerFromContext(ctx).Debug("render served from cache", "key", key)
		return data, true, nil
	}

	prog := newProgress(loggerFromContext(ctx))
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, false, fmt.Errorf("render svg: %w", err)
	}
	prog.done(fmt.Sprintf("Rendered %d nodes", len(g.Nodes)))

	if err := store.Set(ctx, key, svg, c.Config.Cache.TTL.Duration); err != nil {
		c.Logger.Warn("cache write failed", "err", err)
	}
	return svg, false, nil
}
