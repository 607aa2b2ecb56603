package reconcile

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/soundchunk/pkg/chunk"
	"github.com/matzehuels/soundchunk/pkg/flow"
)

// recorder is a graph owner that records every call.
type recorder struct {
	calls  [][]chunk.Edge
	answer func([]chunk.Edge) []chunk.Edge
}

func (r *recorder) send(_ context.Context, edges []chunk.Edge) []chunk.Edge {
	r.calls = append(r.calls, edges)
	if r.answer != nil {
		return r.answer(edges)
	}
	return edges
}

func threeNodes() chunk.Elements {
	g := chunk.Seed()
	g.Edges = []chunk.Edge{chunk.NewEdge("2", "1")}
	return g
}

func TestConnectDelegatesOnce(t *testing.T) {
	owner := &recorder{}
	r := New(owner.send, nil, nil)
	current := threeNodes()

	got := r.Connect(context.Background(), current, Connection{Source: "3", Target: "1", SourceHandle: "1", TargetHandle: "3"})

	if len(owner.calls) != 1 {
		t.Fatalf("SendEdgeUpdate called %d times, want 1", len(owner.calls))
	}
	want := []chunk.Edge{chunk.NewEdge("2", "1"), chunk.NewEdge("3", "1")}
	if diff := cmp.Diff(want, owner.calls[0]); diff != "" {
		t.Errorf("proposed edges mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, got.Edges); diff != "" {
		t.Errorf("resulting edges mismatch (-want +got):\n%s", diff)
	}
	if len(current.Edges) != 1 {
		t.Errorf("current mutated: %v", current.Edges)
	}
}

func TestConnectUsesOwnerAnswer(t *testing.T) {
	tests := []struct {
		name   string
		answer func([]chunk.Edge) []chunk.Edge
		want   []chunk.Edge
	}{
		{
			name:   "owner rejects",
			answer: func(edges []chunk.Edge) []chunk.Edge { return edges[:len(edges)-1] },
			want:   []chunk.Edge{chunk.NewEdge("2", "1")},
		},
		{
			name:   "owner rewrites",
			answer: func([]chunk.Edge) []chunk.Edge { return []chunk.Edge{chunk.NewEdge("3", "1")} },
			want:   []chunk.Edge{chunk.NewEdge("3", "1")},
		},
		{
			name:   "owner clears",
			answer: func([]chunk.Edge) []chunk.Edge { return nil },
			want:   []chunk.Edge{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := &recorder{answer: tt.answer}
			got := New(owner.send, nil, nil).Connect(context.Background(), threeNodes(), Connection{Source: "3", Target: "1"})
			if diff := cmp.Diff(tt.want, got.Edges); diff != "" {
				t.Errorf("edges mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConnectAcceptsSelfLoopAndDuplicate(t *testing.T) {
	owner := &recorder{}
	r := New(owner.send, nil, nil)
	ctx := context.Background()

	g := r.Connect(ctx, threeNodes(), Connection{Source: "2", Target: "1"})
	g = r.Connect(ctx, g, Connection{Source: "1", Target: "1"})

	if len(g.Edges) != 3 {
		t.Errorf("edges = %v, want duplicate and self-loop kept", g.Edges)
	}
}

func TestCandidate(t *testing.T) {
	got := Candidate(Connection{Source: "a", Target: "b", SourceHandle: "out"})
	if diff := cmp.Diff(chunk.NewEdge("a", "b"), got); diff != "" {
		t.Errorf("Candidate mismatch (-want +got):\n%s", diff)
	}
}

func TestDisconnectWithoutRemovalIsVisualOnly(t *testing.T) {
	owner := &recorder{}
	r := New(owner.send, nil, nil)
	current := threeNodes()
	projection := flow.Project(current)
	edge, _ := flow.Find(projection, "e2-1")

	g, kept := r.Disconnect(context.Background(), current, projection, []flow.Element{edge})

	if r.NotifiesRemoval() {
		t.Error("NotifiesRemoval() = true without a removal callback")
	}
	if len(owner.calls) != 0 {
		t.Error("SendEdgeUpdate must not be called on disconnect")
	}
	if diff := cmp.Diff(current, g); diff != "" {
		t.Errorf("domain graph changed (-want +got):\n%s", diff)
	}
	if _, ok := flow.Find(kept, "e2-1"); ok {
		t.Error("removed edge still in projection")
	}
	if len(kept) != len(projection)-1 {
		t.Errorf("projection has %d elements, want %d", len(kept), len(projection)-1)
	}
}

func TestDisconnectNodeDropsTouchingEdges(t *testing.T) {
	current := threeNodes().AddEdges(chunk.NewEdge("3", "1"))
	projection := flow.Project(current)
	node, _ := flow.Find(projection, "2")

	_, kept := New((&recorder{}).send, nil, nil).Disconnect(context.Background(), current, projection, []flow.Element{node})

	var ids []string
	for _, el := range kept {
		ids = append(ids, el.ID)
	}
	want := []string{"1", "3", "e3-1"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("kept ids mismatch (-want +got):\n%s", diff)
	}
}

func TestDisconnectWithRemoval(t *testing.T) {
	removal := &recorder{}
	r := New((&recorder{}).send, removal.send, nil)
	current := threeNodes().AddEdges(chunk.NewEdge("3", "1"))
	projection := flow.Project(current)
	node, _ := flow.Find(projection, "2")

	g, _ := r.Disconnect(context.Background(), current, projection, []flow.Element{node})

	if len(removal.calls) != 1 {
		t.Fatalf("SendEdgeRemoval called %d times, want 1", len(removal.calls))
	}
	want := []chunk.Edge{chunk.NewEdge("3", "1")}
	if diff := cmp.Diff(want, g.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if len(g.Nodes) != 3 {
		t.Errorf("nodes = %d, domain nodes must be kept", len(g.Nodes))
	}
}

func TestDisconnectMatchesEdgesByEndpoints(t *testing.T) {
	node := func(id string) chunk.Node {
		return chunk.Node{ID: id, Roles: []chunk.NodeRole{chunk.Modifier}}
	}
	current := chunk.Elements{
		Nodes: []chunk.Node{node("a"), node("c"), node("a-b"), node("b-c")},
		Edges: []chunk.Edge{chunk.NewEdge("a-b", "c"), chunk.NewEdge("a", "b-c")},
	}
	projection := flow.Project(current)
	edge, _ := flow.Find(projection, "ea-b-c")

	removal := &recorder{}
	r := New((&recorder{}).send, removal.send, nil)
	g, kept := r.Disconnect(context.Background(), current, projection, []flow.Element{edge})

	want := []chunk.Edge{chunk.NewEdge("a", "b-c")}
	if diff := cmp.Diff(want, g.Edges); diff != "" {
		t.Errorf("domain edges mismatch (-want +got):\n%s", diff)
	}
	if len(kept) != len(projection)-1 {
		t.Errorf("projection has %d elements, want %d", len(kept), len(projection)-1)
	}
}
