// Package nodelink renders signal graphs as node-link diagrams with Graphviz.
//
// [ToDOT] writes DOT source; [RenderSVG] runs the dot engine in-process
// through github.com/goccy/go-graphviz, so no Graphviz installation is
// needed. Output nodes are drawn as double octagons, generators as
// ellipses and modifiers as boxes. With Options.Detailed the labels list
// the node's ports in order.
package nodelink
