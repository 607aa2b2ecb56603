// Package render turns signal graphs into pictures.
//
// Two renderers live in subpackages:
//
//   - [nodelink] writes the domain graph as Graphviz DOT and renders it to
//     SVG in-process. Node styling follows the node's role.
//   - [canvas] draws a laid-out projection (flow elements with positions
//     and anchors) as SVG, the way an editor surface would show it.
//
// Rendering the domain graph:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Rendering a laid-out projection:
//
//	elements, _ := flow.Layout(ctx, flow.Project(g), layout.LeftRight)
//	svg := canvas.RenderSVG(elements, canvas.WithTitle("seed"))
//
// [nodelink]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/render/nodelink
// [canvas]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/render/canvas
package render
