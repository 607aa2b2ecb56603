package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/soundchunk/pkg/chunk"
	"github.com/matzehuels/soundchunk/pkg/layout"
)

func TestProjectSeed(t *testing.T) {
	got := Project(chunk.Seed())

	want := []Element{
		{
			ID: "1", Type: TemplateOutput,
			Position: &layout.Point{X: 0, Y: 50},
			Data: &Data{
				Label:   "1",
				Text:    "1",
				Inputs:  []Handle{{ID: "2", Index: 0, Type: HandleTarget}, {ID: "3", Index: 1, Type: HandleTarget}},
				Outputs: []Handle{},
			},
		},
		{
			ID: "2", Type: TemplateGenerator,
			Position: &layout.Point{X: 50, Y: 50},
			Data: &Data{
				Label:   "2",
				Text:    "2",
				Inputs:  []Handle{},
				Outputs: []Handle{{ID: "1", Index: 0, Type: HandleSource}},
			},
		},
		{
			ID: "3", Type: TemplateGenerator,
			Position: &layout.Point{X: 100, Y: 50},
			Data: &Data{
				Label:   "3",
				Text:    "3",
				Inputs:  []Handle{},
				Outputs: []Handle{{ID: "1", Index: 0, Type: HandleSource}},
			},
		},
		{ID: "e1-1", Type: TemplateEdge, Source: "1", Target: "1", Animated: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Project(Seed()) mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectDeterministic(t *testing.T) {
	g := chunk.Seed().AddEdges(chunk.NewEdge("2", "1"), chunk.NewEdge("3", "1"))
	if diff := cmp.Diff(Project(g), Project(g)); diff != "" {
		t.Errorf("Project is not deterministic:\n%s", diff)
	}
}

func TestProjectIDsFollowDomainIDs(t *testing.T) {
	g := chunk.Seed()
	g.Nodes[0], g.Nodes[2] = g.Nodes[2], g.Nodes[0]

	for _, el := range Project(g) {
		if el.IsEdge() {
			continue
		}
		if _, ok := g.Node(el.ID); !ok {
			t.Errorf("element id %q is not a domain id", el.ID)
		}
	}
}

func TestProjectPortOrder(t *testing.T) {
	g := chunk.Elements{Nodes: []chunk.Node{{
		ID:      "mix",
		Roles:   []chunk.NodeRole{chunk.Modifier},
		Inputs:  []string{"a", "b", "c"},
		Outputs: []string{"left", "right"},
	}}}

	el := Project(g)[0]
	for i, want := range []string{"a", "b", "c"} {
		if h := el.Data.Inputs[i]; h.ID != want || h.Index != i {
			t.Errorf("input handle %d = %+v, want port %q", i, h, want)
		}
	}
	for i, want := range []string{"left", "right"} {
		if h := el.Data.Outputs[i]; h.ID != want || h.Index != i {
			t.Errorf("output handle %d = %+v, want port %q", i, h, want)
		}
	}
}

func TestTemplateFor(t *testing.T) {
	tests := []struct {
		name  string
		roles []chunk.NodeRole
		want  Template
	}{
		{"output", []chunk.NodeRole{chunk.Output}, TemplateOutput},
		{"generator", []chunk.NodeRole{chunk.Generator}, TemplateGenerator},
		{"modifier", []chunk.NodeRole{chunk.Modifier}, TemplateModifier},
		{"output wins", []chunk.NodeRole{chunk.Modifier, chunk.Output}, TemplateOutput},
		{"generator over modifier", []chunk.NodeRole{chunk.Modifier, chunk.Generator}, TemplateGenerator},
		{"unknown", []chunk.NodeRole{"mystery"}, TemplateBasic},
		{"none", nil, TemplateBasic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TemplateFor(chunk.Node{ID: "n", Roles: tt.roles}); got != tt.want {
				t.Errorf("TemplateFor(%v) = %s, want %s", tt.roles, got, tt.want)
			}
		})
	}
}

func TestEdgeID(t *testing.T) {
	if got := EdgeID("osc", "dac"); got != "eosc-dac" {
		t.Errorf("EdgeID = %q", got)
	}
}

// fixedSolver reports preset centers and remembers the graphs it saw.
type fixedSolver struct {
	centers map[string]layout.Point
	seen    []*layout.Graph
}

func (s *fixedSolver) Layout(_ context.Context, g *layout.Graph) error {
	s.seen = append(s.seen, g)
	for id, p := range s.centers {
		if g.HasNode(id) {
			g.SetCenter(id, p)
		}
	}
	return nil
}

func TestLayoutCoordinateTranslation(t *testing.T) {
	solver := &fixedSolver{centers: map[string]layout.Point{
		"1": {X: 300, Y: 200},
		"2": {X: 100, Y: 50},
		"3": {X: 500, Y: 50},
	}}

	got, err := Layout(context.Background(), Project(chunk.Seed()), layout.TopBottom, WithSolver(solver))
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	want := map[string]layout.Point{
		"1": {X: 214, Y: 182},
		"2": {X: 14, Y: 32},
		"3": {X: 414, Y: 32},
	}
	if diff := cmp.Diff(want, Positions(got), cmpopts.EquateApprox(0, maxJitter)); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	for id, p := range Positions(got) {
		if dx := p.X - want[id].X; dx < 0 || dx >= maxJitter {
			t.Errorf("node %s jitter %v outside [0, %v)", id, dx, maxJitter)
		}
	}
}

func TestLayoutExactWithInjectedJitter(t *testing.T) {
	solver := &fixedSolver{centers: map[string]layout.Point{"1": {X: 86, Y: 18}}}
	g := chunk.Elements{Nodes: []chunk.Node{{ID: "1", Roles: []chunk.NodeRole{chunk.Output}}}}

	got, err := Layout(context.Background(), Project(g), layout.LeftRight,
		WithSolver(solver), WithJitter(func() float64 { return 0.0005 }))
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if p := *got[0].Position; p != (layout.Point{X: 0.0005, Y: 0}) {
		t.Errorf("position = %+v, want {0.0005 0}", p)
	}
}

func TestLayoutAnchors(t *testing.T) {
	tests := []struct {
		dir         layout.Direction
		target, src Anchor
	}{
		{layout.LeftRight, Left, Right},
		{layout.TopBottom, Top, Bottom},
	}
	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			got, err := Layout(context.Background(), Project(chunk.Seed()), tt.dir, WithSolver(&fixedSolver{}))
			if err != nil {
				t.Fatalf("Layout: %v", err)
			}
			for _, el := range got {
				if el.IsEdge() {
					if el.TargetPosition != "" || el.SourcePosition != "" {
						t.Errorf("edge %s should carry no anchors", el.ID)
					}
					continue
				}
				if el.TargetPosition != tt.target || el.SourcePosition != tt.src {
					t.Errorf("node %s anchors = %s/%s, want %s/%s",
						el.ID, el.TargetPosition, el.SourcePosition, tt.target, tt.src)
				}
			}
		})
	}
}

func TestLayoutDoesNotMutateInput(t *testing.T) {
	in := Project(chunk.Seed())
	before := CloneAll(in)

	solver := &fixedSolver{centers: map[string]layout.Point{"1": {X: 1000, Y: 1000}}}
	if _, err := Layout(context.Background(), in, layout.LeftRight, WithSolver(solver)); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if diff := cmp.Diff(before, in); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestLayoutUsesFreshGraph(t *testing.T) {
	solver := &fixedSolver{}
	ctx := context.Background()
	small := Project(chunk.Elements{Nodes: []chunk.Node{{ID: "a", Roles: []chunk.NodeRole{chunk.Generator}}}})

	if _, err := Layout(ctx, Project(chunk.Seed()), layout.TopBottom, WithSolver(solver)); err != nil {
		t.Fatal(err)
	}
	if _, err := Layout(ctx, small, layout.TopBottom, WithSolver(solver)); err != nil {
		t.Fatal(err)
	}

	if solver.seen[0] == solver.seen[1] {
		t.Fatal("solver graph reused between calls")
	}
	if n := len(solver.seen[1].Nodes()); n != 1 {
		t.Errorf("second graph has %d nodes, want 1", n)
	}
}

func TestLayoutRegistersFootprintAndEdges(t *testing.T) {
	solver := &fixedSolver{}
	size := layout.Size{Width: 100, Height: 20}
	if _, err := Layout(context.Background(), Project(chunk.Seed()), layout.TopBottom,
		WithSolver(solver), WithNodeSize(size)); err != nil {
		t.Fatal(err)
	}

	g := solver.seen[0]
	for _, n := range g.Nodes() {
		if n.Size != size {
			t.Errorf("node %s size = %+v, want %+v", n.ID, n.Size, size)
		}
	}
	if diff := cmp.Diff([]layout.Edge{{Source: "1", Target: "1"}}, g.Edges()); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Layout(ctx, nil, "RL"); !errors.Is(err, ErrUnknownDirection) {
		t.Errorf("bad direction error = %v", err)
	}

	boom := errors.New("solver failed")
	failing := layout.SolverFunc(func(context.Context, *layout.Graph) error { return boom })
	if _, err := Layout(ctx, Project(chunk.Seed()), layout.TopBottom, WithSolver(failing)); !errors.Is(err, boom) {
		t.Errorf("solver error = %v, want %v", err, boom)
	}
}

func TestDefaultJitterRange(t *testing.T) {
	for range 1000 {
		if j := DefaultJitter(); j < 0 || j >= maxJitter {
			t.Fatalf("DefaultJitter() = %v", j)
		}
	}
}
