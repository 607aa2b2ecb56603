// Package reconcile turns connect and disconnect gestures into edge-set
// updates for the owner of a signal graph.
//
// The owner is reached through two callbacks. [SendEdgeUpdate] receives the
// proposed edge set after a connect and returns the set it accepted; that
// set replaces the domain edges verbatim. [SendEdgeRemoval] is optional:
// without it a disconnect only changes the rendered elements and the domain
// graph keeps its edges until the owner sends a new graph.
//
// Gestures are handled synchronously in the order they arrive. There is no
// batching and no validation here; callers that want strict checks run
// chunk.Validate on the proposal first (see [Candidate]).
package reconcile

import (
	"context"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/soundchunk/pkg/chunk"
	"github.com/matzehuels/soundchunk/pkg/flow"
)

// SendEdgeUpdate hands the proposed edge set to the graph owner and returns
// the accepted edge set.
type SendEdgeUpdate func(ctx context.Context, edges []chunk.Edge) []chunk.Edge

// SendEdgeRemoval hands the edge set left after a disconnect to the graph
// owner and returns the accepted edge set.
type SendEdgeRemoval func(ctx context.Context, edges []chunk.Edge) []chunk.Edge

// Connection is a connect gesture raised by the rendering surface.
// Handles name the ports the user dragged between and may be empty.
type Connection struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Candidate returns the domain edge a connection proposes.
func Candidate(c Connection) chunk.Edge {
	return chunk.NewEdge(c.Source, c.Target)
}

// Reconciler applies gestures to a domain graph and its projection.
type Reconciler struct {
	update  SendEdgeUpdate
	removal SendEdgeRemoval
	logger  *log.Logger
}

// New returns a Reconciler. update must not be nil; removal may be.
// A nil logger discards output.
func New(update SendEdgeUpdate, removal SendEdgeRemoval, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Reconciler{update: update, removal: removal, logger: logger}
}

// NotifiesRemoval reports whether disconnects reach the graph owner.
func (r *Reconciler) NotifiesRemoval() bool { return r.removal != nil }

// Connect proposes current's edges plus the connection's edge to the owner
// exactly once and returns current with the accepted edge set. current is
// not modified.
func (r *Reconciler) Connect(ctx context.Context, current chunk.Elements, c Connection) chunk.Elements {
	candidate := Candidate(c)
	proposed := append(slices.Clone(current.Edges), candidate)

	accepted := r.update(ctx, proposed)
	r.logger.Debug("edge update",
		"source", c.Source,
		"target", c.Target,
		"proposed", len(proposed),
		"accepted", len(accepted))

	return current.WithEdges(accepted)
}

// Disconnect removes elements from the projection. Removing a node element
// also removes every edge element touching it. If a [SendEdgeRemoval] is
// configured the owner receives the remaining domain edges and its answer
// becomes the new edge set; otherwise current is returned unchanged.
// Nodes are never removed from the domain graph.
func (r *Reconciler) Disconnect(ctx context.Context, current chunk.Elements, projection, removed []flow.Element) (chunk.Elements, []flow.Element) {
	goneNodes := make(map[string]bool)
	goneEdges := make(map[chunk.EdgeKey]bool)
	for _, el := range removed {
		if el.IsEdge() {
			goneEdges[edgeKey(el)] = true
		} else {
			goneNodes[el.ID] = true
		}
	}

	// Edges match by endpoints, not element id: ids from flow.EdgeID are not
	// unique when node ids contain "-".
	dropped := func(el flow.Element) bool {
		if !el.IsEdge() {
			return goneNodes[el.ID]
		}
		return goneEdges[edgeKey(el)] || goneNodes[el.Source] || goneNodes[el.Target]
	}

	var keys []chunk.EdgeKey
	kept := make([]flow.Element, 0, len(projection))
	for _, el := range projection {
		if !dropped(el) {
			kept = append(kept, el.Clone())
			continue
		}
		if el.IsEdge() {
			keys = append(keys, edgeKey(el))
		}
	}
	// Removed edges may not be in the projection; use their endpoints too.
	for key := range goneEdges {
		keys = append(keys, key)
	}
	for _, e := range current.Edges {
		if goneNodes[e.Source] || goneNodes[e.Destination] {
			keys = append(keys, e.Key())
		}
	}

	if r.removal == nil {
		if len(keys) > 0 {
			r.logger.Debug("edge removal not propagated", "edges", len(keys))
		}
		return current, kept
	}

	remaining := current.RemoveEdges(keys...).Edges
	accepted := r.removal(ctx, remaining)
	r.logger.Debug("edge removal",
		"removed", len(current.Edges)-len(remaining),
		"accepted", len(accepted))

	return current.WithEdges(accepted), kept
}

func edgeKey(el flow.Element) chunk.EdgeKey {
	return chunk.EdgeKey{Source: el.Source, Destination: el.Target}
}
