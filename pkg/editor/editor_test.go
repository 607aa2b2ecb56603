package editor

import (
	"bytes"
	"context"
	stderrors "errors"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/soundchunk/pkg/audio"
	"github.com/matzehuels/soundchunk/pkg/chunk"
	"github.com/matzehuels/soundchunk/pkg/errors"
	"github.com/matzehuels/soundchunk/pkg/flow"
	"github.com/matzehuels/soundchunk/pkg/layout"
	"github.com/matzehuels/soundchunk/pkg/reconcile"
)

// gridSolver places node i of the graph at (100*i + 86, 18).
var gridSolver = layout.SolverFunc(func(_ context.Context, g *layout.Graph) error {
	for i, n := range g.Nodes() {
		g.SetCenter(n.ID, layout.Point{X: float64(100*i) + 86, Y: 18})
	}
	return nil
})

type owner struct {
	updates  [][]chunk.Edge
	removals [][]chunk.Edge
}

func (o *owner) update(_ context.Context, edges []chunk.Edge) []chunk.Edge {
	o.updates = append(o.updates, edges)
	return edges
}

func (o *owner) remove(_ context.Context, edges []chunk.Edge) []chunk.Edge {
	o.removals = append(o.removals, edges)
	return edges
}

func testEditor(t *testing.T, deps Dependencies, opts ...Option) *Editor {
	t.Helper()
	if deps.AudioContext == nil {
		deps.AudioContext = audio.NewNullContext()
	}
	opts = append([]Option{WithSolver(gridSolver), WithJitter(flow.NoJitter)}, opts...)
	return New(chunk.Seed(), deps, opts...)
}

func TestDefaultDependencies(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{})

	ed := New(chunk.Seed(), Dependencies{}, WithLogger(logger), WithSolver(gridSolver))

	out := buf.String()
	for _, dep := range []string{"SendEdgeUpdate", "AudioContext"} {
		if !strings.Contains(out, dep) {
			t.Errorf("substitution of %s not logged:\n%s", dep, out)
		}
	}
	if !strings.Contains(out, string(errors.ErrCodeMissingDependency)) {
		t.Errorf("log missing %s code:\n%s", errors.ErrCodeMissingDependency, out)
	}

	// The default update handler accepts the proposal and warns.
	buf.Reset()
	if !ed.Connect(context.Background(), reconcile.Connection{Source: "2", Target: "1"}) {
		t.Fatal("Connect refused with default handler")
	}
	if len(ed.Graph().Edges) != 2 {
		t.Errorf("edges = %v, want proposal accepted", ed.Graph().Edges)
	}
	if !strings.Contains(buf.String(), "edge update has no receiver") {
		t.Errorf("default handler did not warn:\n%s", buf.String())
	}

	// The default audio context resumes.
	if got := ed.ResumeAudio(context.Background()); got != audio.StateRunning {
		t.Errorf("ResumeAudio() = %s, want running", got)
	}
}

func TestDefaultLoggerReportsMissingDependencies(t *testing.T) {
	var buf bytes.Buffer
	old := log.Default()
	log.SetDefault(log.NewWithOptions(&buf, log.Options{}))
	t.Cleanup(func() { log.SetDefault(old) })

	ed := New(chunk.Seed(), Dependencies{}, WithSolver(gridSolver))
	if !strings.Contains(buf.String(), string(errors.ErrCodeMissingDependency)) {
		t.Errorf("missing dependency not logged without WithLogger:\n%s", buf.String())
	}

	buf.Reset()
	ed.Connect(context.Background(), reconcile.Connection{Source: "2", Target: "1"})
	if !strings.Contains(buf.String(), "edge update has no receiver") {
		t.Errorf("default handler did not warn on the default logger:\n%s", buf.String())
	}
}

func TestFactoryBuildsIndependentEditors(t *testing.T) {
	newEditor := Create(Dependencies{}, WithSolver(gridSolver))
	a := newEditor(chunk.Seed())
	b := newEditor(chunk.Seed())

	a.ResumeAudio(context.Background())
	if b.AudioState() != audio.StateSuspended {
		t.Errorf("editors share an audio context: b is %s", b.AudioState())
	}

	a.Connect(context.Background(), reconcile.Connection{Source: "2", Target: "1"})
	if len(b.Graph().Edges) != 1 {
		t.Errorf("editors share a graph: b has %d edges", len(b.Graph().Edges))
	}
}

func TestConnect(t *testing.T) {
	o := &owner{}
	ed := testEditor(t, Dependencies{SendEdgeUpdate: o.update})
	ctx := context.Background()
	rev := ed.Revision()

	if !ed.Connect(ctx, reconcile.Connection{Source: "2", Target: "1"}) {
		t.Fatal("Connect refused")
	}

	if len(o.updates) != 1 {
		t.Fatalf("SendEdgeUpdate called %d times, want 1", len(o.updates))
	}
	want := []chunk.Edge{chunk.NewEdge("1", "1"), chunk.NewEdge("2", "1")}
	if diff := cmp.Diff(want, o.updates[0]); diff != "" {
		t.Errorf("proposal mismatch (-want +got):\n%s", diff)
	}
	if _, ok := flow.Find(ed.Elements(), "e2-1"); !ok {
		t.Error("projection missing new edge e2-1")
	}
	if ed.Revision() <= rev {
		t.Error("Revision did not advance")
	}
}

func TestConnectKeepsLaidOutPositions(t *testing.T) {
	ed := testEditor(t, Dependencies{SendEdgeUpdate: (&owner{}).update})
	ctx := context.Background()

	if err := ed.Layout(ctx, layout.LeftRight); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	before := flow.Positions(ed.Elements())

	ed.Connect(ctx, reconcile.Connection{Source: "3", Target: "1"})
	if diff := cmp.Diff(before, flow.Positions(ed.Elements())); diff != "" {
		t.Errorf("positions changed by connect (-before +after):\n%s", diff)
	}
	el, _ := flow.Find(ed.Elements(), "1")
	if el.TargetPosition != flow.Left {
		t.Errorf("anchor lost after connect: %q", el.TargetPosition)
	}
}

func TestStrictConnect(t *testing.T) {
	tests := []struct {
		name   string
		conn   reconcile.Connection
		strict bool
		want   bool
	}{
		{"lenient self-loop", reconcile.Connection{Source: "2", Target: "2"}, false, true},
		{"strict self-loop", reconcile.Connection{Source: "2", Target: "2"}, true, false},
		{"strict duplicate", reconcile.Connection{Source: "1", Target: "1"}, true, false},
		{"strict dangling", reconcile.Connection{Source: "9", Target: "1"}, true, false},
		{"strict valid", reconcile.Connection{Source: "3", Target: "1"}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &owner{}
			ed := testEditor(t, Dependencies{SendEdgeUpdate: o.update}, WithStrict(tt.strict))

			if got := ed.Connect(context.Background(), tt.conn); got != tt.want {
				t.Errorf("Connect() = %v, want %v", got, tt.want)
			}
			if calls := len(o.updates); (calls == 1) != tt.want {
				t.Errorf("SendEdgeUpdate called %d times", calls)
			}
		})
	}
}

func TestRemoveEdgeVisualOnly(t *testing.T) {
	o := &owner{}
	ed := testEditor(t, Dependencies{SendEdgeUpdate: o.update})
	ctx := context.Background()
	ed.Connect(ctx, reconcile.Connection{Source: "2", Target: "1"})

	if n := ed.Remove(ctx, "e2-1", "nope"); n != 1 {
		t.Fatalf("Remove() = %d, want 1", n)
	}
	if len(ed.Graph().Edges) != 2 {
		t.Errorf("domain edges = %v, want unchanged", ed.Graph().Edges)
	}
	if _, ok := flow.Find(ed.Elements(), "e2-1"); ok {
		t.Error("removed edge still rendered")
	}

	// A later rebuild must not bring the removed edge back.
	ed.Connect(ctx, reconcile.Connection{Source: "3", Target: "1"})
	if _, ok := flow.Find(ed.Elements(), "e2-1"); ok {
		t.Error("removed edge resurrected by rebuild")
	}

	// Reconnecting the same pair shows it again.
	ed.Connect(ctx, reconcile.Connection{Source: "2", Target: "1"})
	if _, ok := flow.Find(ed.Elements(), "e2-1"); !ok {
		t.Error("reconnected edge not rendered")
	}
}

func TestRemoveWithRemovalCallback(t *testing.T) {
	o := &owner{}
	ed := testEditor(t, Dependencies{SendEdgeUpdate: o.update, SendEdgeRemoval: o.remove})

	ed.Remove(context.Background(), "e1-1")
	if len(o.removals) != 1 {
		t.Fatalf("SendEdgeRemoval called %d times, want 1", len(o.removals))
	}
	if len(ed.Graph().Edges) != 0 {
		t.Errorf("domain edges = %v, want none", ed.Graph().Edges)
	}
}

func TestRemoveNode(t *testing.T) {
	ed := testEditor(t, Dependencies{SendEdgeUpdate: (&owner{}).update})
	ctx := context.Background()
	ed.Connect(ctx, reconcile.Connection{Source: "2", Target: "1"})

	ed.Remove(ctx, "2")
	for _, el := range ed.Elements() {
		if el.ID == "2" || el.Source == "2" || el.Target == "2" {
			t.Errorf("element %s still references removed node", el.ID)
		}
	}
	if len(ed.Graph().Nodes) != 3 {
		t.Error("domain nodes must not change")
	}
}

// dashedIDs has two edges whose element ids are both "ea-b-c".
func dashedIDs() chunk.Elements {
	node := func(id string) chunk.Node {
		return chunk.Node{ID: id, Roles: []chunk.NodeRole{chunk.Modifier}}
	}
	return chunk.Elements{
		Nodes: []chunk.Node{node("a"), node("b"), node("c"), node("a-b"), node("b-c")},
		Edges: []chunk.Edge{chunk.NewEdge("a-b", "c"), chunk.NewEdge("a", "b-c")},
	}
}

func renderedEdges(elements []flow.Element) []chunk.EdgeKey {
	var out []chunk.EdgeKey
	for _, el := range elements {
		if el.IsEdge() {
			out = append(out, chunk.EdgeKey{Source: el.Source, Destination: el.Target})
		}
	}
	return out
}

func TestRemoveCollidingEdgeIDs(t *testing.T) {
	first := chunk.EdgeKey{Source: "a-b", Destination: "c"}
	second := chunk.EdgeKey{Source: "a", Destination: "b-c"}

	tests := []struct {
		name      string
		removal   bool
		remove    func(ctx context.Context, ed *Editor) int
		wantGraph []chunk.EdgeKey
		wantShown []chunk.EdgeKey
	}{
		{
			name:      "by id with owner",
			removal:   true,
			remove:    func(ctx context.Context, ed *Editor) int { return ed.Remove(ctx, "ea-b-c") },
			wantGraph: []chunk.EdgeKey{second},
			wantShown: []chunk.EdgeKey{second},
		},
		{
			name:      "by key with owner",
			removal:   true,
			remove:    func(ctx context.Context, ed *Editor) int { return ed.RemoveEdges(ctx, second) },
			wantGraph: []chunk.EdgeKey{first},
			wantShown: []chunk.EdgeKey{first},
		},
		{
			name:      "by key visual only",
			remove:    func(ctx context.Context, ed *Editor) int { return ed.RemoveEdges(ctx, first) },
			wantGraph: []chunk.EdgeKey{first, second},
			wantShown: []chunk.EdgeKey{second},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &owner{}
			deps := Dependencies{SendEdgeUpdate: o.update, AudioContext: audio.NewNullContext()}
			if tt.removal {
				deps.SendEdgeRemoval = o.remove
			}
			ed := New(dashedIDs(), deps, WithSolver(gridSolver), WithJitter(flow.NoJitter))
			ctx := context.Background()

			if n := tt.remove(ctx, ed); n != 1 {
				t.Fatalf("removed %d elements, want 1", n)
			}

			var graph []chunk.EdgeKey
			for _, e := range ed.Graph().Edges {
				graph = append(graph, e.Key())
			}
			if diff := cmp.Diff(tt.wantGraph, graph); diff != "" {
				t.Errorf("domain edges mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantShown, renderedEdges(ed.Elements())); diff != "" {
				t.Errorf("rendered edges mismatch (-want +got):\n%s", diff)
			}

			// A rebuild keeps the surviving edge and does not resurrect the
			// removed one.
			ed.Connect(ctx, reconcile.Connection{Source: "b", Target: "c"})
			shown := renderedEdges(ed.Elements())
			want := append(slices.Clone(tt.wantShown), chunk.EdgeKey{Source: "b", Destination: "c"})
			if diff := cmp.Diff(want, shown); diff != "" {
				t.Errorf("rendered edges after rebuild mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLayout(t *testing.T) {
	ed := testEditor(t, Dependencies{SendEdgeUpdate: (&owner{}).update})
	ctx := context.Background()

	if ed.Direction() != "" {
		t.Errorf("Direction() before layout = %q", ed.Direction())
	}
	if err := ed.Layout(ctx, layout.TopBottom); err != nil {
		t.Fatalf("Layout: %v", err)
	}

	want := map[string]layout.Point{"1": {X: 0, Y: 0}, "2": {X: 100, Y: 0}, "3": {X: 200, Y: 0}}
	if diff := cmp.Diff(want, flow.Positions(ed.Elements())); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if ed.Direction() != layout.TopBottom {
		t.Errorf("Direction() = %q", ed.Direction())
	}

	rev := ed.Revision()
	if err := ed.Layout(ctx, layout.TopBottom); err != nil {
		t.Fatal(err)
	}
	if ed.Revision() != rev+1 {
		t.Errorf("identical layout should still advance Revision: %d -> %d", rev, ed.Revision())
	}
}

func TestLayoutFailureKeepsProjection(t *testing.T) {
	boom := stderrors.New("solver down")
	ed := testEditor(t, Dependencies{SendEdgeUpdate: (&owner{}).update},
		WithSolver(layout.SolverFunc(func(context.Context, *layout.Graph) error { return boom })))
	before := ed.Elements()
	rev := ed.Revision()

	err := ed.Layout(context.Background(), layout.LeftRight)
	if !errors.Is(err, errors.ErrCodeLayoutFailed) {
		t.Errorf("Layout error code = %q, want LAYOUT_FAILED", errors.GetCode(err))
	}
	if !stderrors.Is(err, boom) {
		t.Errorf("Layout error should wrap solver error: %v", err)
	}
	if diff := cmp.Diff(before, ed.Elements()); diff != "" {
		t.Errorf("projection changed (-before +after):\n%s", diff)
	}
	if ed.Revision() != rev {
		t.Error("failed layout advanced Revision")
	}
}

func TestAudioLifecycle(t *testing.T) {
	ctx := context.Background()
	engine := audio.NewGatedContext()
	ed := testEditor(t, Dependencies{SendEdgeUpdate: (&owner{}).update, AudioContext: engine})

	ed.Mount(ctx)
	if !ed.Mounted() || ed.AudioState() != audio.StateSuspended {
		t.Fatalf("after mount: mounted=%v state=%s", ed.Mounted(), ed.AudioState())
	}

	engine.Allow()
	if got := ed.ResumeAudio(ctx); got != audio.StateRunning {
		t.Errorf("ResumeAudio() = %s", got)
	}
	if got := ed.SuspendAudio(ctx); got != audio.StateSuspended {
		t.Errorf("SuspendAudio() = %s", got)
	}
	ed.ResumeAudio(ctx)

	ed.Unmount(ctx)
	if ed.Mounted() || ed.AudioState() != audio.StateSuspended {
		t.Errorf("after unmount: mounted=%v state=%s", ed.Mounted(), ed.AudioState())
	}
	if s := ed.AudioStats(); s.ResumeFailures != 1 || s.ResumeAttempts != 3 {
		t.Errorf("AudioStats() = %+v", s)
	}
}

func TestReplace(t *testing.T) {
	ed := testEditor(t, Dependencies{SendEdgeUpdate: (&owner{}).update})
	ctx := context.Background()
	if err := ed.Layout(ctx, layout.LeftRight); err != nil {
		t.Fatal(err)
	}
	ed.Remove(ctx, "3")

	g := chunk.Seed()
	g.Nodes = append(g.Nodes, chunk.Node{ID: "4", Roles: []chunk.NodeRole{chunk.Modifier}})
	ed.Replace(g)

	els := ed.Elements()
	if _, ok := flow.Find(els, "3"); !ok {
		t.Error("Replace should forget visual-only removals")
	}
	n1, _ := flow.Find(els, "1")
	if *n1.Position != (layout.Point{X: 0, Y: 0}) {
		t.Errorf("surviving node lost its position: %+v", *n1.Position)
	}
	n4, _ := flow.Find(els, "4")
	if *n4.Position != (layout.Point{X: 150, Y: 50}) {
		t.Errorf("new node should get a seed position: %+v", *n4.Position)
	}
}

func TestValidateHonorsStrict(t *testing.T) {
	lenient := testEditor(t, Dependencies{SendEdgeUpdate: (&owner{}).update})
	if !lenient.Validate().Valid() {
		t.Errorf("seed should validate leniently: %v", lenient.Validate().Err())
	}

	strict := testEditor(t, Dependencies{SendEdgeUpdate: (&owner{}).update}, WithStrict(true))
	if err := strict.Validate().Err(); !stderrors.Is(err, chunk.ErrSelfLoop) {
		t.Errorf("strict Validate() = %v, want self-loop", err)
	}
}
