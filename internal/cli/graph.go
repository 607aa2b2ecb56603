package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/soundchunk/pkg/chunk"
	apierr "github.com/matzehuels/soundchunk/pkg/errors"
	"github.com/matzehuels/soundchunk/pkg/flow"
	graphio "github.com/matzehuels/soundchunk/pkg/io"
)

// seedCommand writes the sample graph.
func (c *CLI) seedCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the sample signal graph",
		Long: `Write the sample signal graph: two generators feeding one output node.

The output format follows --format, or the extension of --output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := graphio.FormatFromPath(output)
			if format != "" {
				var err error
				if f, err = graphio.ParseFormat(format); err != nil {
					return err
				}
			}
			data, err := graphio.Marshal(chunk.Seed(), f)
			if err != nil {
				return err
			}
			return c.writeOutput(output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "graph format: json, yaml")

	return cmd
}

// validateCommand checks a graph file.
func (c *CLI) validateCommand() *cobra.Command {
	var strict bool
	var format string

	cmd := &cobra.Command{
		Use:   "validate [graph.json|-]",
		Short: "Check a signal graph for structural errors",
		Long: `Check a signal graph for structural errors.

Dangling edges, duplicate node ids and nodes without roles are always errors.
With --strict, self-loops and duplicate edges are errors as well. Role and
port mismatches are reported as warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("strict") {
				strict = c.Config.Editor.Strict
			}
			return c.runValidate(args[0], format, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "reject self-loops and duplicate edges (default: editor.strict from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: json, yaml (default: from extension)")

	return cmd
}

func (c *CLI) runValidate(input, format string, strict bool) error {
	g, err := readGraph(input, format)
	if err != nil && !chunk.IsValidationError(err) {
		return err
	}
	if err != nil {
		// Lenient checks already failed; report every error with a code.
		printError("%s is invalid", input)
		return apierr.FromStructural(err)
	}

	res := chunk.Validate(g, chunk.StrictIf(strict))
	for _, w := range res.Warnings {
		printWarning("%s", w)
	}
	if !res.Valid() {
		for _, e := range res.Errors {
			printError("%v", e)
		}
		return apierr.FromStructural(res.Err())
	}

	mode := "lenient"
	if strict {
		mode = "strict"
	}
	printSuccess("%s is valid (%s)", input, mode)
	printStats(len(g.Nodes), len(g.Edges), false)
	return nil
}

// projectCommand prints the render elements of a graph.
func (c *CLI) projectCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "project [graph.json|-]",
		Short: "Print the canvas elements of a signal graph",
		Long: `Print the canvas elements of a signal graph as JSON: one element per node
with its template, label and port handles, then one element per edge.
Nodes carry seed positions; use 'layout' for laid-out positions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readGraph(args[0], format)
			if err != nil {
				return err
			}
			data, err := marshalElements(flow.Project(g))
			if err != nil {
				return err
			}
			return c.writeOutput(output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: json, yaml (default: from extension)")

	return cmd
}

func marshalElements(elements []flow.Element) ([]byte, error) {
	data, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode elements: %w", err)
	}
	return append(data, '\n'), nil
}
