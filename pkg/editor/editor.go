package editor

import (
	"context"
	"time"

	"github.com/matzehuels/soundchunk/pkg/audio"
	"github.com/matzehuels/soundchunk/pkg/chunk"
	"github.com/matzehuels/soundchunk/pkg/errors"
	"github.com/matzehuels/soundchunk/pkg/flow"
	"github.com/matzehuels/soundchunk/pkg/layout"
	"github.com/matzehuels/soundchunk/pkg/observability"
	"github.com/matzehuels/soundchunk/pkg/reconcile"
)

// Editor is one visible signal graph: the domain graph, its rendered
// projection and the audio binding. It is not safe for concurrent use.
type Editor struct {
	cfg   config
	rec   *reconcile.Reconciler
	audio *audio.Binding

	graph    chunk.Elements
	elements []flow.Element
	// hidden and hiddenEdges hold nodes and edges removed on screen but
	// still present in the domain graph, so that rebuilding the projection
	// does not resurrect them.
	hidden      map[string]bool
	hiddenEdges map[chunk.EdgeKey]bool
	direction   layout.Direction
	revision    uint64
}

// Factory builds an editor for a graph.
type Factory func(g chunk.Elements) *Editor

// Create returns a factory bound to deps and opts. Missing dependencies are
// substituted per editor.
func Create(deps Dependencies, opts ...Option) Factory {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(g chunk.Elements) *Editor {
		return build(g, deps, cfg)
	}
}

// New builds a single editor.
func New(g chunk.Elements, deps Dependencies, opts ...Option) *Editor {
	return Create(deps, opts...)(g)
}

func build(g chunk.Elements, deps Dependencies, cfg config) *Editor {
	deps = deps.withDefaults(context.Background(), cfg.logger)
	if cfg.solver == nil {
		cfg.solver = layout.NewGraphviz()
	}

	e := &Editor{
		cfg:         cfg,
		rec:         reconcile.New(deps.SendEdgeUpdate, deps.SendEdgeRemoval, cfg.logger),
		audio:       audio.NewBinding(deps.AudioContext, cfg.logger),
		graph:       g.Clone(),
		hidden:      make(map[string]bool),
		hiddenEdges: make(map[chunk.EdgeKey]bool),
	}
	e.elements = flow.Project(e.graph)

	if res := chunk.Validate(e.graph, chunk.StrictIf(cfg.strict)); !res.Valid() {
		e.cfg.logger.Warn("graph is structurally invalid",
			"code", errors.FromStructural(res.Err()).Code,
			"err", res.Err())
	}
	return e
}

// Mount resumes audio for a newly visible graph. Failures are logged.
func (e *Editor) Mount(ctx context.Context) {
	e.audio.Mount(ctx)
}

// Unmount suspends audio.
func (e *Editor) Unmount(ctx context.Context) {
	e.audio.Unmount(ctx)
}

// ResumeAudio handles the user's "allow audio" request.
func (e *Editor) ResumeAudio(ctx context.Context) audio.State {
	return e.audio.Resume(ctx)
}

// SuspendAudio handles the user's request to stop audio.
func (e *Editor) SuspendAudio(ctx context.Context) audio.State {
	return e.audio.Suspend(ctx)
}

// AudioState returns the audio context state.
func (e *Editor) AudioState() audio.State { return e.audio.State() }

// AudioStats returns the audio lifecycle counters.
func (e *Editor) AudioStats() audio.Stats { return e.audio.Stats() }

// Mounted reports whether the editor is mounted.
func (e *Editor) Mounted() bool { return e.audio.Mounted() }

// Connect applies a connect gesture and reports whether the owner's answer
// was applied. In strict mode a connection that would be a dangling edge,
// a self-loop or a duplicate is refused before the owner sees it.
func (e *Editor) Connect(ctx context.Context, c reconcile.Connection) bool {
	if e.cfg.strict {
		if err := chunk.ValidateEdge(e.graph, reconcile.Candidate(c), chunk.Strict()); err != nil {
			observability.Editor().OnConnect(ctx, false)
			e.cfg.logger.Warn("connection rejected",
				"source", c.Source,
				"target", c.Target,
				"code", errors.FromStructural(err).Code,
				"err", err)
			return false
		}
	}

	e.graph = e.rec.Connect(ctx, e.graph, c)
	delete(e.hiddenEdges, chunk.EdgeKey{Source: c.Source, Destination: c.Target})
	e.refresh()

	observability.Editor().OnConnect(ctx, true)
	return true
}

// Remove applies a remove gesture for the given element ids and returns the
// number of elements removed from the projection. Unknown ids are ignored.
// An edge id names the first edge element carrying it; see [flow.EdgeID]
// for ids that collide, and use [Editor.RemoveEdges] to address edges by
// their endpoints.
func (e *Editor) Remove(ctx context.Context, ids ...string) int {
	var removed []flow.Element
	for _, id := range ids {
		if el, ok := flow.Find(e.elements, id); ok {
			removed = append(removed, el)
		} else {
			e.cfg.logger.Debug("remove: unknown element", "id", id)
		}
	}
	return e.remove(ctx, removed)
}

// RemoveEdges applies a remove gesture for the edges with the given
// endpoints and returns the number of elements removed from the projection.
// Keys with no edge on screen are ignored.
func (e *Editor) RemoveEdges(ctx context.Context, keys ...chunk.EdgeKey) int {
	want := make(map[chunk.EdgeKey]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	var removed []flow.Element
	for _, el := range e.elements {
		if el.IsEdge() && want[chunk.EdgeKey{Source: el.Source, Destination: el.Target}] {
			removed = append(removed, el)
		}
	}
	if len(removed) == 0 {
		e.cfg.logger.Debug("remove: no matching edges", "keys", len(keys))
	}
	return e.remove(ctx, removed)
}

func (e *Editor) remove(ctx context.Context, removed []flow.Element) int {
	if len(removed) == 0 {
		return 0
	}

	before := len(e.elements)
	graph, kept := e.rec.Disconnect(ctx, e.graph, e.elements, removed)
	e.graph = graph

	for _, el := range removed {
		switch {
		case !el.IsEdge():
			e.hidden[el.ID] = true
		case !e.rec.NotifiesRemoval():
			e.hiddenEdges[chunk.EdgeKey{Source: el.Source, Destination: el.Target}] = true
		}
	}
	e.elements = kept
	e.revision++

	n := before - len(kept)
	observability.Editor().OnRemove(ctx, n)
	return n
}

// Layout recomputes positions in direction dir. On failure the previous
// projection is kept and a LAYOUT_FAILED error is returned.
func (e *Editor) Layout(ctx context.Context, dir layout.Direction) error {
	hooks := observability.Editor()
	hooks.OnLayoutStart(ctx, string(dir), len(e.graph.Nodes))
	start := time.Now()

	out, err := flow.Layout(ctx, e.elements, dir,
		flow.WithSolver(e.cfg.solver),
		flow.WithNodeSize(e.cfg.size),
		flow.WithJitter(e.cfg.jitter))
	hooks.OnLayoutComplete(ctx, string(dir), time.Since(start), err)

	if err != nil {
		e.cfg.logger.Warn("layout failed, keeping previous positions",
			"direction", dir,
			"err", err)
		return errors.Wrap(errors.ErrCodeLayoutFailed, err, "layout %s", dir)
	}

	e.elements = out
	e.direction = dir
	e.revision++
	e.cfg.logger.Debug("layout computed", "direction", dir, "nodes", len(e.graph.Nodes), "revision", e.revision)
	return nil
}

// Replace installs a new domain graph from the owner. Positions of nodes
// that survive are kept; visual-only removals are forgotten.
func (e *Editor) Replace(g chunk.Elements) {
	e.graph = g.Clone()
	clear(e.hidden)
	clear(e.hiddenEdges)
	e.refresh()
}

// Graph returns a copy of the domain graph.
func (e *Editor) Graph() chunk.Elements { return e.graph.Clone() }

// Elements returns a copy of the rendered projection.
func (e *Editor) Elements() []flow.Element { return flow.CloneAll(e.elements) }

// Validate checks the domain graph, strictly if the editor is strict.
func (e *Editor) Validate() chunk.Result {
	return chunk.Validate(e.graph, chunk.StrictIf(e.cfg.strict))
}

// Direction returns the direction of the last successful layout, or "" if
// the graph has not been laid out.
func (e *Editor) Direction() layout.Direction { return e.direction }

// Revision increases every time the projection changes, including layouts
// that produce identical positions. Renderers redraw when it moves.
func (e *Editor) Revision() uint64 { return e.revision }

// refresh rebuilds the projection from the domain graph, carrying over
// positions and anchors of nodes that already had them.
func (e *Editor) refresh() {
	prev := make(map[string]flow.Element, len(e.elements))
	for _, el := range e.elements {
		if !el.IsEdge() {
			prev[el.ID] = el
		}
	}

	next := flow.Project(e.graph)
	kept := next[:0]
	for _, el := range next {
		if el.IsEdge() {
			key := chunk.EdgeKey{Source: el.Source, Destination: el.Target}
			if e.hiddenEdges[key] || e.hidden[el.Source] || e.hidden[el.Target] {
				continue
			}
		} else if e.hidden[el.ID] {
			continue
		}
		if old, ok := prev[el.ID]; ok {
			p := *old.Position
			el.Position = &p
			el.SourcePosition = old.SourcePosition
			el.TargetPosition = old.TargetPosition
		}
		kept = append(kept, el)
	}
	e.elements = kept
	e.revision++
}
