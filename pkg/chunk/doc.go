// Package chunk defines the signal-graph model edited by soundchunk.
//
// # Overview
//
// A sound chunk is a small audio-processing graph: generators produce a
// signal, modifiers transform it, and an output node sinks it. The graph is
// described by [Elements], an ordered list of [Node] values plus an ordered
// list of [Edge] values. Elements is the unit passed between the embedding
// application and the editing surface.
//
// # Roles
//
// Every node carries a non-empty set of [NodeRole] tags. A node may hold
// several roles at once (a gain stage can be both a [Modifier] and an
// [Output], for example). Edges carry the single [EdgeRole] [EdgeConnection].
// Roles are labels only: this package knows nothing about DSP.
//
// # Ports
//
// [Node.Inputs] and [Node.Outputs] are ordered port identifiers. A port is
// identified by its index, so the order of these slices is significant and
// is preserved by every function in this module.
//
// # Immutability
//
// Elements values are treated as immutable. Mutating helpers such as
// [Elements.AddEdges] and [Elements.RemoveEdges] return a new value and
// leave the receiver untouched, which keeps reconciliation referentially
// transparent:
//
//	next := g.AddEdges(chunk.NewEdge("2", "1"))
//	// g still has its old edge set
//
// # Validation
//
// [Validate] checks structural validity: unique non-empty node ids, non-empty
// role sets, and edges whose endpoints exist. [Strict] validation also
// rejects self-loops and duplicate edges. Role/port mismatches (an output
// node with outputs, a generator with inputs) are advisory and reported as
// warnings only.
//
//	res := chunk.Validate(g, chunk.Strict())
//	if err := res.Err(); err != nil {
//	    // errors.Is(err, chunk.ErrDanglingEdge) ...
//	}
package chunk
