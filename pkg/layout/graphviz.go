package layout

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/soundchunk/pkg/cache"
)

// pointsPerInch converts Graphviz inches to layout units.
const pointsPerInch = 72.0

// plainFormat is Graphviz's line-oriented layout dump.
const plainFormat graphviz.Format = "plain"

// Graphviz is a hierarchical [Solver] backed by the Graphviz "dot" engine.
//
// Each call creates its own Graphviz instance, so a Graphviz value can be
// shared freely. Node sizes are fixed (fixedsize=true) and separations are
// expressed in layout units.
type Graphviz struct {
	// NodeSep is the minimum gap between nodes in the same rank.
	NodeSep float64
	// RankSep is the minimum gap between ranks.
	RankSep float64
}

// NewGraphviz returns a solver with 50-unit node and rank separation.
func NewGraphviz() *Graphviz {
	return &Graphviz{NodeSep: 50, RankSep: 50}
}

// CacheKeyOpts reports the settings that change this solver's output.
func (s *Graphviz) CacheKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Solver: "graphviz", NodeSep: s.NodeSep, RankSep: s.RankSep}
}

// Layout runs dot over g and records node centers with the origin in the
// top-left corner and y growing downwards.
func (s *Graphviz) Layout(ctx context.Context, g *Graph) error {
	if len(g.Nodes()) == 0 {
		return nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(s.ToDOT(g)))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, plainFormat, &buf); err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	centers, err := parsePlain(buf.Bytes())
	if err != nil {
		return err
	}
	for _, n := range g.Nodes() {
		if p, ok := centers[n.ID]; ok {
			g.SetCenter(n.ID, p)
		}
	}
	return nil
}

// ToDOT renders g as a DOT digraph sized for layout.
func (s *Graphviz) ToDOT(g *Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", g.Direction())
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(s.NodeSep))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(s.RankSep))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [width=%s, height=%s];\n", n.ID, inches(n.Size.Width), inches(n.Size.Height))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func inches(units float64) string {
	return strconv.FormatFloat(units/pointsPerInch, 'f', 4, 64)
}

// parsePlain reads node centers from Graphviz "plain" output:
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
//	edge ...
//	stop
//
// Coordinates are in inches with the origin bottom-left.
func parsePlain(data []byte) (map[string]Point, error) {
	centers := make(map[string]Point)
	var height float64
	sawGraph := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := splitPlain(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, fmt.Errorf("malformed graph line: %q", sc.Text())
			}
			h, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, fmt.Errorf("graph height: %w", err)
			}
			height = h
			sawGraph = true
		case "node":
			if len(fields) < 4 {
				return nil, fmt.Errorf("malformed node line: %q", sc.Text())
			}
			x, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("node %s x: %w", fields[1], err)
			}
			y, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, fmt.Errorf("node %s y: %w", fields[1], err)
			}
			centers[fields[1]] = Point{X: x * pointsPerInch, Y: y}
		case "stop":
			if !sawGraph {
				return nil, fmt.Errorf("plain output missing graph line")
			}
			for id, p := range centers {
				p.Y = (height - p.Y) * pointsPerInch
				centers[id] = p
			}
			return centers, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read plain output: %w", err)
	}
	return nil, fmt.Errorf("plain output truncated")
}

// splitPlain splits a plain-format line on spaces, honoring double-quoted
// tokens. Quoted tokens are unescaped.
func splitPlain(line string) []string {
	var out []string
	for i := 0; i < len(line); {
		switch {
		case line[i] == ' ':
			i++
		case line[i] == '"':
			j := i + 1
			for j < len(line) && line[j] != '"' {
				if line[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(line) {
				j = len(line) - 1
			}
			tok := line[i : j+1]
			if s, err := strconv.Unquote(tok); err == nil {
				out = append(out, s)
			} else {
				out = append(out, strings.Trim(tok, `"`))
			}
			i = j + 1
		default:
			j := i
			for j < len(line) && line[j] != ' ' {
				j++
			}
			out = append(out, line[i:j])
			i = j
		}
	}
	return out
}
