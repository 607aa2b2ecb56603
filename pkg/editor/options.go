package editor

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/soundchunk/pkg/flow"
	"github.com/matzehuels/soundchunk/pkg/layout"
)

type config struct {
	logger *log.Logger
	solver layout.Solver
	size   layout.Size
	jitter flow.Jitter
	strict bool
}

func defaultConfig() config {
	return config{
		logger: log.Default(),
		size:   layout.DefaultNodeSize,
		jitter: flow.DefaultJitter,
	}
}

// Option configures an [Editor].
type Option func(*config)

// WithLogger sets the logger. The default is log.Default(); nil keeps it.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSolver sets the layout solver. The default is Graphviz.
func WithSolver(s layout.Solver) Option {
	return func(c *config) { c.solver = s }
}

// WithFootprint overrides the 172x36 node footprint.
func WithFootprint(size layout.Size) Option {
	return func(c *config) { c.size = size }
}

// WithJitter sets the layout jitter source. Use flow.NoJitter for exact
// positions.
func WithJitter(j flow.Jitter) Option {
	return func(c *config) {
		if j != nil {
			c.jitter = j
		}
	}
}

// WithStrict rejects connects that would add a self-loop or a duplicate
// edge, and makes Validate strict.
func WithStrict(on bool) Option {
	return func(c *config) { c.strict = on }
}
