package flow

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/matzehuels/soundchunk/pkg/layout"
)

// ErrUnknownDirection is returned for a direction other than TB or LR.
var ErrUnknownDirection = errors.New("unknown layout direction")

// maxJitter bounds the sub-unit x offset added to every laid-out node.
const maxJitter = 0.001

// Jitter returns an x offset in [0, 0.001). A position that differs from
// the previous one, however slightly, makes renderers redraw.
type Jitter func() float64

// DefaultJitter draws from math/rand.
func DefaultJitter() float64 { return rand.Float64() * maxJitter }

// NoJitter always returns 0.
func NoJitter() float64 { return 0 }

type options struct {
	solver layout.Solver
	size   layout.Size
	jitter Jitter
}

// Option configures [Layout].
type Option func(*options)

// WithSolver sets the layout solver. The default is [layout.NewGraphviz].
func WithSolver(s layout.Solver) Option {
	return func(o *options) {
		if s != nil {
			o.solver = s
		}
	}
}

// WithNodeSize overrides the fixed node footprint.
func WithNodeSize(size layout.Size) Option {
	return func(o *options) { o.size = size }
}

// WithJitter sets the jitter source.
func WithJitter(j Jitter) Option {
	return func(o *options) {
		if j != nil {
			o.jitter = j
		}
	}
}

// Anchors returns the target and source anchor sides for dir.
func Anchors(dir layout.Direction) (target, source Anchor) {
	if dir.IsHorizontal() {
		return Left, Right
	}
	return Top, Bottom
}

// Layout repositions the node elements with a hierarchical solver and
// returns a new slice. Edge elements are copied unchanged and elements is
// not modified.
//
// The solver reports node centers; positions are top-left corners, so each
// node moves to (cx - width/2 + jitter, cy - height/2). Nodes the solver
// did not place keep their position. Anchors are set for every node.
func Layout(ctx context.Context, elements []Element, dir layout.Direction, opts ...Option) ([]Element, error) {
	if dir != layout.TopBottom && dir != layout.LeftRight {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDirection, dir)
	}

	o := options{
		size:   layout.DefaultNodeSize,
		jitter: DefaultJitter,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.solver == nil {
		o.solver = layout.NewGraphviz()
	}

	g := layout.NewGraph(dir)
	for _, e := range elements {
		if !e.IsEdge() {
			g.SetNode(e.ID, o.size)
		}
	}
	for _, e := range elements {
		if e.IsEdge() {
			g.SetEdge(e.Source, e.Target)
		}
	}

	if err := o.solver.Layout(ctx, g); err != nil {
		return nil, fmt.Errorf("layout %s: %w", dir, err)
	}

	target, source := Anchors(dir)
	out := CloneAll(elements)
	for i := range out {
		el := &out[i]
		if el.IsEdge() {
			continue
		}
		el.TargetPosition = target
		el.SourcePosition = source
		if c, ok := g.Node(el.ID); ok {
			el.Position = &layout.Point{
				X: c.X - o.size.Width/2 + o.jitter(),
				Y: c.Y - o.size.Height/2,
			}
		}
	}
	return out, nil
}
