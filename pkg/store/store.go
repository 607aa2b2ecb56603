// Package store keeps signal graphs for the embedding application.
//
// The editor core never persists anything; it hands edge updates to its
// owner. In the HTTP server that owner is a [Store]: SendEdgeUpdate writes
// the accepted edge set with [Store.UpdateEdges] and the stored graph is
// what the next session loads.
//
// Backends:
//
//   - [Memory] for tests and single-process use
//   - [Redis] for shared, short-lived state
//   - [Mongo] for durable storage
//
// Every write increments Record.Revision.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/soundchunk/pkg/chunk"
)

// ErrNotFound is returned when a graph id is unknown.
var ErrNotFound = errors.New("graph not found")

// Record is a stored graph.
type Record struct {
	ID        string         `json:"id" bson:"_id"`
	Name      string         `json:"name,omitempty" bson:"name,omitempty"`
	Graph     chunk.Elements `json:"graph" bson:"graph"`
	Revision  int64          `json:"revision" bson:"revision"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

// Store persists graphs by id.
type Store interface {
	// Get returns the graph with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)
	// Put creates or replaces a graph and returns the stored record.
	Put(ctx context.Context, rec Record) (Record, error)
	// UpdateEdges replaces the edge set of an existing graph.
	UpdateEdges(ctx context.Context, id string, edges []chunk.Edge) (Record, error)
	// Delete removes a graph. Unknown ids return ErrNotFound.
	Delete(ctx context.Context, id string) error
	// List returns all graphs, most recently updated first.
	List(ctx context.Context) ([]Record, error)
	Close() error
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }
