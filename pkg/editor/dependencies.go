package editor

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/soundchunk/pkg/audio"
	"github.com/matzehuels/soundchunk/pkg/chunk"
	"github.com/matzehuels/soundchunk/pkg/errors"
	"github.com/matzehuels/soundchunk/pkg/observability"
	"github.com/matzehuels/soundchunk/pkg/reconcile"
)

// Dependencies are the collaborators supplied by the embedding application.
// Zero fields are replaced with defaults when an editor is built, and each
// substitution is logged as a warning on the editor's logger.
type Dependencies struct {
	// SendEdgeUpdate receives the proposed edge set after a connect and
	// returns the accepted set. Default: log a warning, accept as proposed.
	SendEdgeUpdate reconcile.SendEdgeUpdate

	// SendEdgeRemoval receives the remaining edge set after a disconnect.
	// Default: none, disconnects stay visual.
	SendEdgeRemoval reconcile.SendEdgeRemoval

	// AudioContext is the audio engine handle. Default: a fresh
	// [audio.NullContext] per editor.
	AudioContext audio.Context
}

// withDefaults fills zero fields and logs each substitution.
func (d Dependencies) withDefaults(ctx context.Context, logger *log.Logger) Dependencies {
	if d.SendEdgeUpdate == nil {
		missing(ctx, logger, "SendEdgeUpdate")
		d.SendEdgeUpdate = warnOnlyUpdate(logger)
	}
	if d.AudioContext == nil {
		missing(ctx, logger, "AudioContext")
		d.AudioContext = audio.NewNullContext()
	}
	return d
}

func missing(ctx context.Context, logger *log.Logger, name string) {
	observability.Editor().OnMissingDependency(ctx, name)
	logger.Warn("dependency not provided, using default",
		"dependency", name,
		"code", errors.ErrCodeMissingDependency)
}

// warnOnlyUpdate accepts every proposal and warns that nobody owns the graph.
func warnOnlyUpdate(logger *log.Logger) reconcile.SendEdgeUpdate {
	return func(_ context.Context, edges []chunk.Edge) []chunk.Edge {
		logger.Warn("edge update has no receiver", "edges", len(edges))
		return edges
	}
}
