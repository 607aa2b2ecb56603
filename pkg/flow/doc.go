// Package flow projects a signal graph onto a drawable surface.
//
// [Project] turns chunk.Elements into [Element] values: node boxes with a
// role template, a seed position and ordered port handles, followed by
// animated edges. Element ids come from domain ids, so a node keeps its
// identity when the node list is reordered. Edge ids are "e<source>-<target>".
//
// [Layout] hands the node boxes to a layout.Solver and translates the
// reported centers into top-left positions for a fixed 172x36 footprint.
// Direction TB anchors edges top to bottom, LR anchors them left to right.
// A jitter below 0.001 on x makes every layout a visible change.
//
//	elements := flow.Project(chunk.Seed())
//	laidOut, err := flow.Layout(ctx, elements, layout.LeftRight)
package flow
