package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/soundchunk/pkg/chunk"
	"github.com/matzehuels/soundchunk/pkg/layout"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds roles and port lists to node labels.
	Detailed bool
	// Direction is the rank direction; empty means TB.
	Direction layout.Direction
}

// roleStyle is the DOT styling for a node role.
var roleStyle = map[chunk.NodeRole]string{
	chunk.Output:    `shape=doubleoctagon, fillcolor="#fde2c8"`,
	chunk.Generator: `shape=ellipse, fillcolor="#d6ecd2"`,
	chunk.Modifier:  `shape=box, fillcolor="#dbe4f5"`,
}

// ToDOT converts a signal graph to Graphviz DOT. Edges are drawn in input
// order; self-loops and duplicate edges are drawn as they are.
func ToDOT(g chunk.Elements, opts Options) string {
	dir := opts.Direction
	if dir == "" {
		dir = layout.TopBottom
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#555555\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		if s, ok := roleStyle[primaryRole(n)]; ok {
			attrs = append(attrs, s)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Destination)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func primaryRole(n chunk.Node) chunk.NodeRole {
	for _, r := range []chunk.NodeRole{chunk.Output, chunk.Generator, chunk.Modifier} {
		if n.HasRole(r) {
			return r
		}
	}
	return ""
}

func fmtLabel(n chunk.Node, detailed bool) string {
	if !detailed {
		return n.DisplayName()
	}

	roles := make([]string, len(n.Roles))
	for i, r := range n.Roles {
		roles[i] = string(r)
	}
	parts := []string{n.DisplayName(), "[" + strings.Join(roles, ", ") + "]"}
	if len(n.Inputs) > 0 {
		parts = append(parts, "in: "+strings.Join(n.Inputs, ", "))
	}
	if len(n.Outputs) > 0 {
		parts = append(parts, "out: "+strings.Join(n.Outputs, ", "))
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG with Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with a unitless one
// so the drawing scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
