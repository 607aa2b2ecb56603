package flow

import (
	"github.com/matzehuels/soundchunk/pkg/chunk"
	"github.com/matzehuels/soundchunk/pkg/layout"
)

// seedSpacing is the horizontal gap between nodes before the first layout.
const seedSpacing = 50

// Project converts a domain graph into render elements: one per node, then
// one per edge, in input order. The result is deterministic and g is not
// modified.
func Project(g chunk.Elements) []Element {
	out := make([]Element, 0, len(g.Nodes)+len(g.Edges))
	for i, n := range g.Nodes {
		out = append(out, projectNode(n, i))
	}
	for _, e := range g.Edges {
		out = append(out, projectEdge(e))
	}
	return out
}

func projectNode(n chunk.Node, index int) Element {
	data := &Data{
		Label:   n.DisplayName(),
		Text:    n.ID,
		Inputs:  make([]Handle, len(n.Inputs)),
		Outputs: make([]Handle, len(n.Outputs)),
	}
	for i, port := range n.Inputs {
		data.Inputs[i] = Handle{ID: port, Index: i, Type: HandleTarget}
	}
	for i, port := range n.Outputs {
		data.Outputs[i] = Handle{ID: port, Index: i, Type: HandleSource}
	}

	return Element{
		ID:       n.ID,
		Type:     TemplateFor(n),
		Position: &layout.Point{X: float64(seedSpacing * index), Y: seedSpacing},
		Data:     data,
	}
}

func projectEdge(e chunk.Edge) Element {
	return Element{
		ID:       EdgeID(e.Source, e.Destination),
		Type:     TemplateEdge,
		Source:   e.Source,
		Target:   e.Destination,
		Animated: true,
	}
}

// TemplateFor picks the render template for a node. A node with several
// roles gets the first match in the order output, generator, modifier.
func TemplateFor(n chunk.Node) Template {
	switch {
	case n.HasRole(chunk.Output):
		return TemplateOutput
	case n.HasRole(chunk.Generator):
		return TemplateGenerator
	case n.HasRole(chunk.Modifier):
		return TemplateModifier
	default:
		return TemplateBasic
	}
}

// EdgeID returns the element id of the edge from source to destination.
//
// The id is not unique when node ids contain "-": the edges a-b→c and
// a→b-c both get "ea-b-c". Code that must tell edges apart compares
// Source and Target instead.
func EdgeID(source, destination string) string {
	return "e" + source + "-" + destination
}
