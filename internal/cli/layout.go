package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/soundchunk/pkg/flow"
	"github.com/matzehuels/soundchunk/pkg/layout"
	"github.com/matzehuels/soundchunk/pkg/observability"
	"github.com/matzehuels/soundchunk/pkg/render/canvas"
)

type layoutOpts struct {
	output    string
	svg       string
	format    string
	direction string
	noCache   bool
	noJitter  bool
}

// layoutCommand creates the layout command for computing canvas positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [graph.json|-]",
		Short: "Lay out a signal graph and print positioned canvas elements",
		Long: `Lay out a signal graph with Graphviz and print the positioned canvas
elements as JSON.

Direction TB ranks nodes top to bottom with handles on the top and bottom
sides; LR ranks left to right with handles on the left and right sides.
With --svg the laid-out canvas is also drawn to an SVG file.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file for elements (default: stdout)")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "also draw the canvas to this SVG file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "input format: json, yaml (default: from extension)")
	cmd.Flags().StringVarP(&opts.direction, "direction", "d", "", "rank direction: TB, LR (default: layout.direction from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.noJitter, "no-jitter", false, "emit exact solver positions")

	return cmd
}

// runLayout loads the graph, computes positions and writes the elements.
func (c *CLI) runLayout(ctx context.Context, input string, opts layoutOpts) error {
	g, err := readGraph(input, opts.format)
	if err != nil {
		return err
	}

	dir := c.defaultDirection()
	if opts.direction != "" {
		if dir, err = layout.ParseDirection(opts.direction); err != nil {
			return err
		}
	}

	solver, lc, err := c.newSolver(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer lc.Close()

	hits := &hitCounter{}
	observability.SetCacheHooks(hits)

	jitter := flow.DefaultJitter
	if opts.noJitter {
		jitter = flow.NoJitter
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", dir))
	spinner.Start()
	elements, err := flow.Layout(ctx, flow.Project(g), dir, flow.WithSolver(solver), flow.WithJitter(jitter))
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.StopWithSuccess(fmt.Sprintf("Layout %s complete", dir))

	data, err := marshalElements(elements)
	if err != nil {
		return err
	}
	if err := c.writeOutput(opts.output, data); err != nil {
		return err
	}

	if opts.svg != "" {
		svg := canvas.RenderSVG(elements, canvas.WithTitle(baseName(input)))
		if err := os.WriteFile(opts.svg, svg, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.svg, err)
		}
		printFile(opts.svg)
	}

	printStats(len(g.Nodes), len(g.Edges), hits.hit)
	if input != "-" {
		printNewline()
		printNextStep("Edit", appName+" edit "+input)
	}
	return nil
}

// hitCounter records whether the layout came from the cache.
type hitCounter struct {
	observability.NoopCacheHooks
	hit bool
}

func (h *hitCounter) OnCacheHit(context.Context, string) { h.hit = true }
