// Package pkg provides the core libraries for Soundchunk signal graph editing.
//
// # Overview
//
// Soundchunk edits signal graphs: audio nodes (generators, modifiers and
// outputs) joined by directed edges. The domain graph is projected onto
// canvas elements, laid out with Graphviz and edited with connect and remove
// gestures that are reconciled with whoever owns the graph.
//
// # Architecture
//
// The typical data flow:
//
//	chunk.Elements (domain graph, JSON or YAML via [io])
//	         ↓
//	    [flow] (project nodes and edges onto canvas elements)
//	         ↓
//	    [layout] (rank positions with Graphviz, optionally cached)
//	         ↓
//	    [editor] (gestures → [reconcile] → graph owner)
//	         ↓
//	    [render] (node-link SVG or canvas SVG)
//
// # Quick Start
//
//	g := chunk.Seed()
//	ed := editor.New(g, editor.Dependencies{
//	    SendEdgeUpdate: func(ctx context.Context, edges []chunk.Edge) []chunk.Edge {
//	        return edges // accept every proposal
//	    },
//	})
//	ed.Mount(ctx)
//	defer ed.Unmount(ctx)
//
//	_ = ed.Layout(ctx, layout.LeftRight)
//	ed.Connect(ctx, reconcile.Connection{Source: "2", Target: "1"})
//	svg := canvas.RenderSVG(ed.Elements())
//
// # Main Packages
//
// ## Domain
//
// [chunk] - Nodes, edges, the seed graph and structural validation.
//
// [flow] - Render-only element projection, handle anchors and layout jitter.
//
// [reconcile] - Turns connect and disconnect gestures into edge proposals for
// the graph owner and applies the owner's answer.
//
// [editor] - The editor lifecycle: mount, gestures, layout and audio.
//
// [audio] - The audio context binding: resume and suspend around mount,
// unmount and user gestures.
//
// ## Layout and Rendering
//
// [layout] - Rank direction, the solver interface, the Graphviz solver and
// a cached solver.
//
// [render] - Node-link DOT/SVG and canvas SVG renderers.
//
// ## Infrastructure
//
// [cache] - Layout and artifact caches (file, Redis, null) with key builders.
//
// [store] - Graph persistence (memory, Redis, MongoDB).
//
// [observability] - Hook interfaces for editor, cache and server events.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [io] - JSON and YAML import and export of domain graphs.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Redis and MongoDB backends
//
// [chunk]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/chunk
// [flow]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/flow
// [reconcile]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/reconcile
// [editor]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/editor
// [audio]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/audio
// [layout]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/errors
// [io]: https://pkg.go.dev/github.com/matzehuels/soundchunk/pkg/io
package pkg
