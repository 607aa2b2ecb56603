package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/soundchunk/pkg/editor"
	"github.com/matzehuels/soundchunk/pkg/flow"
	"github.com/matzehuels/soundchunk/pkg/layout"
)

type editOpts struct {
	output    string
	format    string
	direction string
	strict    bool
	noCache   bool
}

// editCommand opens the interactive editor on a graph file.
func (c *CLI) editCommand() *cobra.Command {
	var opts editOpts

	cmd := &cobra.Command{
		Use:   "edit [graph.json]",
		Short: "Edit a signal graph interactively",
		Long: `Edit a signal graph in the terminal.

Select a node and press enter to start a connection, then select the target
and press enter again. Press d to disconnect the selected node's outgoing
edges, t or l to lay out top-to-bottom or left-to-right, a to allow and
resume audio, s to suspend it and w to write the graph back.

Without an argument the seed graph is opened.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if opts.output == "" && input != "-" {
				opts.output = input
			}
			if !cmd.Flags().Changed("strict") {
				opts.strict = c.Config.Editor.Strict
			}
			return c.runEdit(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "file written by w (default: the input file)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "input format: json, yaml (default: from extension)")
	cmd.Flags().StringVarP(&opts.direction, "direction", "d", "", "initial rank direction: TB, LR (default: layout.direction from config)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "reject self-loops and duplicate edges (default: editor.strict from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, input string, opts editOpts) error {
	g, err := c.loadOrSeed(input, opts.format)
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

	session := newEditSession(ctx, g, opts.output,
		editor.WithSolver(solver),
		editor.WithStrict(opts.strict),
		editor.WithJitter(flow.DefaultJitter),
	)
	session.editor.Mount(ctx)
	defer session.editor.Unmount(ctx)

	if err := session.editor.Layout(ctx, dir); err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	final, err := tea.NewProgram(NewEditModel(session), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("run editor: %w", err)
	}

	if m, ok := final.(EditModel); ok && m.session.dirty {
		printWarning("Unsaved changes discarded")
		if !toStdout(opts.output) {
			printDetail("press w before q to write %s", opts.output)
		}
	}
	return nil
}
