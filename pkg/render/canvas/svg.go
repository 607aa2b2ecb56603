// Package canvas draws a laid-out signal graph projection as SVG.
//
// Node boxes use the fixed layout footprint at their top-left positions.
// Edges run from the source node's source anchor to the target node's
// target anchor, and port handles are spaced along the anchor sides in port
// order. Elements without anchors (never laid out) connect bottom to top.
package canvas

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/matzehuels/soundchunk/pkg/flow"
	"github.com/matzehuels/soundchunk/pkg/layout"
)

const (
	margin        = 20.0
	handleRadius  = 4.0
	handleSpacing = 10.0
	handleOffset  = 10.0
)

const canvasCSS = `
    .node rect { stroke: #777; stroke-width: 1; rx: 4; }
    .node.output rect { fill: #fde2c8; }
    .node.generator rect { fill: #d6ecd2; }
    .node.modifier rect { fill: #dbe4f5; }
    .node.basic rect { fill: #ffffff; }
    .node text { font: 12px sans-serif; text-anchor: middle; dominant-baseline: middle; }
    .handle.target { fill: #c05a2b; }
    .handle.source { fill: #333333; }
    .edge { stroke: #555; stroke-width: 1.5; fill: none; stroke-dasharray: 5 3; }`

// Option configures [RenderSVG].
type Option func(*renderer)

type renderer struct {
	size  layout.Size
	title string
}

// WithNodeSize sets the box size. It should match the layout footprint.
func WithNodeSize(s layout.Size) Option { return func(r *renderer) { r.size = s } }

// WithTitle adds a <title> element.
func WithTitle(t string) Option { return func(r *renderer) { r.title = t } }

type box struct {
	el     flow.Element
	x, y   float64
	source flow.Anchor
	target flow.Anchor
}

// RenderSVG draws elements. Edges whose endpoints are not rendered nodes
// are skipped.
func RenderSVG(elements []flow.Element, opts ...Option) []byte {
	r := renderer{size: layout.DefaultNodeSize}
	for _, opt := range opts {
		opt(&r)
	}

	boxes := make(map[string]box)
	var order []string
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, el := range elements {
		if el.IsEdge() {
			continue
		}
		b := box{el: el, x: el.Position.X, y: el.Position.Y, source: el.SourcePosition, target: el.TargetPosition}
		if b.source == "" {
			b.source = flow.Bottom
		}
		if b.target == "" {
			b.target = flow.Top
		}
		if _, dup := boxes[el.ID]; !dup {
			order = append(order, el.ID)
		}
		boxes[el.ID] = b
		minX, minY = math.Min(minX, b.x), math.Min(minY, b.y)
		maxX, maxY = math.Max(maxX, b.x+r.size.Width), math.Max(maxY, b.y+r.size.Height)
	}
	if len(boxes) == 0 {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}

	dx, dy := margin-minX, margin-minY
	width, height := maxX-minX+2*margin, maxY-minY+2*margin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(r.title))
	}
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", canvasCSS)

	for _, el := range elements {
		if !el.IsEdge() {
			continue
		}
		src, okS := boxes[el.Source]
		dst, okT := boxes[el.Target]
		if !okS || !okT {
			continue
		}
		renderEdge(&buf, r.size, src, dst, dx, dy, el.ID)
	}
	for _, id := range order {
		renderNode(&buf, r.size, boxes[id], dx, dy)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderNode(buf *bytes.Buffer, size layout.Size, b box, dx, dy float64) {
	x, y := b.x+dx, b.y+dy
	fmt.Fprintf(buf, `  <g class="node %s" id="node-%s">`+"\n", b.el.Type, html.EscapeString(b.el.ID))
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.0f" height="%.0f"/>`+"\n", x, y, size.Width, size.Height)

	label := b.el.ID
	if b.el.Data != nil {
		label = b.el.Data.Label
		for _, h := range b.el.Data.Inputs {
			hx, hy := handlePoint(size, x, y, b.target, h.Index)
			fmt.Fprintf(buf, `    <circle class="handle target" cx="%.2f" cy="%.2f" r="%.0f"><title>%s</title></circle>`+"\n",
				hx, hy, handleRadius, html.EscapeString(h.ID))
		}
		for _, h := range b.el.Data.Outputs {
			hx, hy := handlePoint(size, x, y, b.source, h.Index)
			fmt.Fprintf(buf, `    <circle class="handle source" cx="%.2f" cy="%.2f" r="%.0f"><title>%s</title></circle>`+"\n",
				hx, hy, handleRadius, html.EscapeString(h.ID))
		}
	}
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f">%s</text>`+"\n", x+size.Width/2, y+size.Height/2, html.EscapeString(label))
	buf.WriteString("  </g>\n")
}

func renderEdge(buf *bytes.Buffer, size layout.Size, src, dst box, dx, dy float64, id string) {
	x1, y1 := anchorPoint(size, src.x+dx, src.y+dy, src.source)
	x2, y2 := anchorPoint(size, dst.x+dx, dst.y+dy, dst.target)

	if src.el.ID == dst.el.ID {
		// Loop out of the source side and back into the target side.
		fmt.Fprintf(buf, `  <path class="edge" id="%s" d="M %.2f %.2f C %.2f %.2f, %.2f %.2f, %.2f %.2f"/>`+"\n",
			html.EscapeString(id), x1, y1, x1+40, y1+40, x2-40, y2-40, x2, y2)
		return
	}
	fmt.Fprintf(buf, `  <line class="edge" id="%s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
		html.EscapeString(id), x1, y1, x2, y2)
}

// anchorPoint is the middle of the given side of a box at (x, y).
func anchorPoint(size layout.Size, x, y float64, side flow.Anchor) (float64, float64) {
	switch side {
	case flow.Left:
		return x, y + size.Height/2
	case flow.Right:
		return x + size.Width, y + size.Height/2
	case flow.Top:
		return x + size.Width/2, y
	default:
		return x + size.Width/2, y + size.Height
	}
}

// handlePoint places port index i along the given side.
func handlePoint(size layout.Size, x, y float64, side flow.Anchor, i int) (float64, float64) {
	off := handleOffset + float64(i)*handleSpacing
	switch side {
	case flow.Left:
		return x, y + math.Min(off, size.Height)
	case flow.Right:
		return x + size.Width, y + math.Min(off, size.Height)
	case flow.Top:
		return x + math.Min(off, size.Width), y
	default:
		return x + math.Min(off, size.Width), y + size.Height
	}
}
