package chunk

import (
	"slices"
)

// NodeRole tags the function of a node in the signal graph.
type NodeRole string

const (
	// Generator nodes produce a signal and should have no inputs.
	Generator NodeRole = "generator"
	// Modifier nodes transform a signal.
	Modifier NodeRole = "modifier"
	// Output nodes sink a signal and should have no outputs.
	Output NodeRole = "output"
)

// EdgeRole tags the function of an edge. Only [EdgeConnection] exists today.
type EdgeRole string

// EdgeConnection is the role carried by every edge.
const EdgeConnection EdgeRole = "edge"

// Node is a processing stage in the signal graph.
//
// ID is unique within an [Elements] value and must not change once the node
// exists. Inputs and Outputs are ordered: a port's index is its identity.
type Node struct {
	ID      string     `json:"id" yaml:"id" bson:"id"`
	Name    string     `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	Roles   []NodeRole `json:"roles" yaml:"roles" bson:"roles"`
	Inputs  []string   `json:"inputs" yaml:"inputs" bson:"inputs"`
	Outputs []string   `json:"outputs" yaml:"outputs" bson:"outputs"`
}

// HasRole reports whether the node carries role r.
func (n Node) HasRole(r NodeRole) bool { return slices.Contains(n.Roles, r) }

// DisplayName returns Name if set, otherwise ID.
func (n Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Roles = slices.Clone(n.Roles)
	n.Inputs = slices.Clone(n.Inputs)
	n.Outputs = slices.Clone(n.Outputs)
	return n
}

// Edge is a directed connection from Source to Destination.
// Edges have no identity beyond their (Source, Destination) pair.
type Edge struct {
	Roles       []EdgeRole `json:"roles" yaml:"roles" bson:"roles"`
	Source      string     `json:"source" yaml:"source" bson:"source"`
	Destination string     `json:"destination" yaml:"destination" bson:"destination"`
}

// NewEdge returns an edge from source to destination with the default role.
func NewEdge(source, destination string) Edge {
	return Edge{
		Roles:       []EdgeRole{EdgeConnection},
		Source:      source,
		Destination: destination,
	}
}

// EdgeKey identifies an edge by its ordered endpoint pair.
type EdgeKey struct {
	Source, Destination string
}

// Key returns the identity of the edge.
func (e Edge) Key() EdgeKey { return EdgeKey{Source: e.Source, Destination: e.Destination} }

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsSelfLoop() bool { return e.Source == e.Destination }

// Elements is the aggregate signal graph: ordered nodes and ordered edges.
// Treat values as immutable; the helper methods return new values.
type Elements struct {
	Nodes []Node `json:"nodes" yaml:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges" bson:"edges"`
}

// Clone returns a deep copy of g.
func (g Elements) Clone() Elements {
	out := Elements{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.Clone()
	}
	for i, e := range g.Edges {
		e.Roles = slices.Clone(e.Roles)
		out.Edges[i] = e
	}
	return out
}

// WithEdges returns a copy of g whose edge set is replaced by edges.
func (g Elements) WithEdges(edges []Edge) Elements {
	out := g.Clone()
	out.Edges = make([]Edge, len(edges))
	for i, e := range edges {
		e.Roles = slices.Clone(e.Roles)
		out.Edges[i] = e
	}
	return out
}

// AddEdges returns a copy of g with edges appended in order.
// No duplicate or self-loop filtering is applied.
func (g Elements) AddEdges(edges ...Edge) Elements {
	return g.WithEdges(append(slices.Clone(g.Edges), edges...))
}

// RemoveEdges returns a copy of g without any edge whose key is in keys.
// Because edges between the same pair are indistinguishable, all of them
// are removed.
func (g Elements) RemoveEdges(keys ...EdgeKey) Elements {
	drop := make(map[EdgeKey]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	kept := slices.DeleteFunc(slices.Clone(g.Edges), func(e Edge) bool { return drop[e.Key()] })
	return g.WithEdges(kept)
}

// Node returns the first node with the given id.
func (g Elements) Node(id string) (Node, bool) {
	if i := g.NodeIndex(id); i >= 0 {
		return g.Nodes[i], true
	}
	return Node{}, false
}

// NodeIndex returns the position of the first node with the given id, or -1.
func (g Elements) NodeIndex(id string) int {
	return slices.IndexFunc(g.Nodes, func(n Node) bool { return n.ID == id })
}

// EdgesFrom returns the edges whose source is id, in order.
func (g Elements) EdgesFrom(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns the edges whose destination is id, in order.
func (g Elements) EdgesTo(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Destination == id {
			out = append(out, e)
		}
	}
	return out
}
