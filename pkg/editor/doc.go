// Package editor composes the signal-graph core into one editable view.
//
// An [Editor] owns a domain graph (chunk.Elements), its rendered projection
// (flow.Element), a reconciler that forwards gestures to the graph owner and
// an audio binding. The embedding application supplies collaborators through
// [Dependencies]; missing ones are replaced with defaults and a warning is
// logged with code MISSING_DEPENDENCY.
//
// # Construction
//
//	newEditor := editor.Create(editor.Dependencies{
//	    SendEdgeUpdate: owner.Accept,
//	    AudioContext:   engine,
//	}, editor.WithLogger(logger))
//
//	ed := newEditor(chunk.Seed())
//	ed.Mount(ctx)
//	defer ed.Unmount(ctx)
//
// # Gestures
//
// Connect and Remove never fail from the caller's point of view: problems
// are logged and the graph is left as the owner answered. Layout returns an
// error so callers can report it, but the previous positions stay in place.
//
// Every change to the projection increments [Editor.Revision], which
// renderers can watch instead of diffing positions.
package editor
