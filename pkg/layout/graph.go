package layout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Direction is the rank direction handed to the solver.
type Direction string

const (
	// TopBottom ranks nodes from top to bottom.
	TopBottom Direction = "TB"
	// LeftRight ranks nodes from left to right.
	LeftRight Direction = "LR"
)

// ParseDirection accepts "TB" or "LR" in any case. An empty string yields
// [TopBottom].
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(TopBottom):
		return TopBottom, nil
	case string(LeftRight):
		return LeftRight, nil
	}
	return "", fmt.Errorf("invalid direction %q (must be TB or LR)", s)
}

// IsHorizontal reports whether ranks run left to right.
func (d Direction) IsHorizontal() bool { return d == LeftRight }

// Size is a node footprint in layout units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultNodeSize is the fixed footprint every node is laid out with.
var DefaultNodeSize = Size{Width: 172, Height: 36}

// Point is a position in layout units. The solver reports node centers.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a node registered with a [Graph].
type Node struct {
	ID   string `json:"id"`
	Size Size   `json:"size"`
}

// Edge is an edge registered with a [Graph].
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the directed-graph description a [Solver] works on.
//
// A Graph is built fresh for each layout request and is never shared, so
// concurrent editors cannot see each other's nodes. After [Solver.Layout]
// returns, [Graph.Node] reports each node's center.
type Graph struct {
	dir     Direction
	nodes   []Node
	index   map[string]int
	edges   []Edge
	centers map[string]Point
}

// NewGraph returns an empty graph ranked in direction dir.
func NewGraph(dir Direction) *Graph {
	if dir == "" {
		dir = TopBottom
	}
	return &Graph{
		dir:     dir,
		index:   make(map[string]int),
		centers: make(map[string]Point),
	}
}

// Direction returns the rank direction.
func (g *Graph) Direction() Direction { return g.dir }

// SetNode registers a node, or updates the size of an existing one.
func (g *Graph) SetNode(id string, size Size) {
	if i, ok := g.index[id]; ok {
		g.nodes[i].Size = size
		return
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: id, Size: size})
}

// SetEdge registers a directed edge. Endpoints need not be registered
// nodes; solvers decide how to treat them.
func (g *Graph) SetEdge(source, target string) {
	g.edges = append(g.edges, Edge{Source: source, Target: target})
}

// HasNode reports whether id was registered with SetNode.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Nodes returns the registered nodes in registration order.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the registered edges in registration order.
func (g *Graph) Edges() []Edge { return g.edges }

// Node returns the center assigned to id by the last solver run.
func (g *Graph) Node(id string) (Point, bool) {
	p, ok := g.centers[id]
	return p, ok
}

// SetCenter records the center of a node. Solvers call this.
func (g *Graph) SetCenter(id string, p Point) { g.centers[id] = p }

// Centers returns a copy of all recorded centers.
func (g *Graph) Centers() map[string]Point {
	out := make(map[string]Point, len(g.centers))
	for k, v := range g.centers {
		out[k] = v
	}
	return out
}

// Key returns a content hash of the direction, nodes and edges. Two graphs
// with equal keys lay out identically.
func (g *Graph) Key() string {
	data, _ := json.Marshal(struct {
		Dir   Direction `json:"dir"`
		Nodes []Node    `json:"nodes"`
		Edges []Edge    `json:"edges"`
	}{g.dir, g.nodes, g.edges})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Solver assigns node centers to a [Graph].
type Solver interface {
	Layout(ctx context.Context, g *Graph) error
}

// SolverFunc adapts a function to the [Solver] interface.
type SolverFunc func(ctx context.Context, g *Graph) error

// Layout calls f(ctx, g).
func (f SolverFunc) Layout(ctx context.Context, g *Graph) error { return f(ctx, g) }
