package flow

import (
	"slices"

	"github.com/matzehuels/soundchunk/pkg/layout"
)

// Template selects how the rendering surface draws an element.
type Template string

const (
	TemplateOutput    Template = "output"
	TemplateGenerator Template = "generator"
	TemplateModifier  Template = "modifier"
	// TemplateBasic is used for nodes without a recognized role.
	TemplateBasic Template = "basic"
	// TemplateEdge is the template of every edge element.
	TemplateEdge Template = "default"
)

// Anchor is the side of a node box where connections attach.
type Anchor string

const (
	Left   Anchor = "left"
	Right  Anchor = "right"
	Top    Anchor = "top"
	Bottom Anchor = "bottom"
)

// HandleType distinguishes input handles from output handles.
type HandleType string

const (
	// HandleTarget is an input port: edges arrive here.
	HandleTarget HandleType = "target"
	// HandleSource is an output port: edges leave from here.
	HandleSource HandleType = "source"
)

// Handle is a rendered connection point. Index is the port's position in
// the node's Inputs or Outputs and is its identity.
type Handle struct {
	ID    string     `json:"id"`
	Index int        `json:"index"`
	Type  HandleType `json:"type"`
}

// Data is the render payload of a node element.
type Data struct {
	Label   string   `json:"label"`
	Text    string   `json:"text"`
	Inputs  []Handle `json:"inputs"`
	Outputs []Handle `json:"outputs"`
}

// Element is a render-only projection of a domain node or edge.
//
// Node elements carry Position and Data; edge elements carry Source, Target
// and Animated. Elements are rebuilt from the domain graph and never edited
// by hand.
type Element struct {
	ID             string        `json:"id"`
	Type           Template      `json:"type"`
	Position       *layout.Point `json:"position,omitempty"`
	Data           *Data         `json:"data,omitempty"`
	Source         string        `json:"source,omitempty"`
	Target         string        `json:"target,omitempty"`
	Animated       bool          `json:"animated,omitempty"`
	SourcePosition Anchor        `json:"sourcePosition,omitempty"`
	TargetPosition Anchor        `json:"targetPosition,omitempty"`
}

// IsEdge reports whether e projects an edge.
func (e Element) IsEdge() bool { return e.Position == nil }

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	if e.Position != nil {
		p := *e.Position
		e.Position = &p
	}
	if e.Data != nil {
		d := *e.Data
		d.Inputs = slices.Clone(d.Inputs)
		d.Outputs = slices.Clone(d.Outputs)
		e.Data = &d
	}
	return e
}

// CloneAll deep-copies a slice of elements.
func CloneAll(elements []Element) []Element {
	out := make([]Element, len(elements))
	for i, e := range elements {
		out[i] = e.Clone()
	}
	return out
}

// Find returns the element with the given id.
func Find(elements []Element, id string) (Element, bool) {
	i := slices.IndexFunc(elements, func(e Element) bool { return e.ID == id })
	if i < 0 {
		return Element{}, false
	}
	return elements[i], true
}

// Positions maps node element ids to their current positions.
func Positions(elements []Element) map[string]layout.Point {
	out := make(map[string]layout.Point)
	for _, e := range elements {
		if !e.IsEdge() {
			out[e.ID] = *e.Position
		}
	}
	return out
}
