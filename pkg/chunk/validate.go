package chunk

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNodeID is reported for a node with an empty id.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is reported when two nodes share an id.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrMissingRoles is reported for a node with an empty role set.
	ErrMissingRoles = errors.New("node has no roles")

	// ErrDanglingEdge is reported when an edge references a node id that is
	// not in the node set.
	ErrDanglingEdge = errors.New("edge references unknown node")

	// ErrSelfLoop is reported under strict validation for an edge whose
	// source and destination are the same node.
	ErrSelfLoop = errors.New("edge is a self-loop")

	// ErrDuplicateEdge is reported under strict validation when the same
	// (source, destination) pair appears more than once.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// Warning is an advisory finding that does not make the graph invalid.
type Warning struct {
	NodeID  string
	Message string
}

func (w Warning) String() string { return fmt.Sprintf("node %s: %s", w.NodeID, w.Message) }

// Result is the outcome of [Validate].
type Result struct {
	Errors   []error
	Warnings []Warning
}

// Valid reports whether no errors were found.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Err joins all errors into one, or returns nil for a valid graph.
// Each joined error wraps one of the package sentinels, so errors.Is works.
func (r Result) Err() error { return errors.Join(r.Errors...) }

type validateConfig struct {
	strict bool
}

// ValidateOption configures [Validate].
type ValidateOption func(*validateConfig)

// Strict enables checks that the editor does not enforce by default:
// self-loops and duplicate edges become errors.
func Strict() ValidateOption {
	return func(c *validateConfig) { c.strict = true }
}

// StrictIf enables strict checks when on is true.
func StrictIf(on bool) ValidateOption {
	return func(c *validateConfig) { c.strict = c.strict || on }
}

// Validate checks the structural validity of g. It never mutates g.
//
// Errors are collected rather than returned on the first failure so callers
// can report every problem at once. Role/port mismatches are reported as
// warnings: an output node should have no outputs and a generator no inputs.
func Validate(g Elements, opts ...ValidateOption) Result {
	var cfg validateConfig
	for _, o := range opts {
		o(&cfg)
	}

	var res Result
	ids := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			res.Errors = append(res.Errors, fmt.Errorf("node #%d: %w", i, ErrInvalidNodeID))
			continue
		}
		if ids[n.ID] {
			res.Errors = append(res.Errors, fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID))
		}
		ids[n.ID] = true

		if len(n.Roles) == 0 {
			res.Errors = append(res.Errors, fmt.Errorf("node %s: %w", n.ID, ErrMissingRoles))
		}
		if n.HasRole(Output) && len(n.Outputs) > 0 {
			res.Warnings = append(res.Warnings, Warning{NodeID: n.ID, Message: "output node has outputs"})
		}
		if n.HasRole(Generator) && len(n.Inputs) > 0 {
			res.Warnings = append(res.Warnings, Warning{NodeID: n.ID, Message: "generator node has inputs"})
		}
	}

	seen := make(map[EdgeKey]bool, len(g.Edges))
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Destination] {
			res.Errors = append(res.Errors, fmt.Errorf("edge %s->%s: %w", e.Source, e.Destination, ErrDanglingEdge))
		}
		if !cfg.strict {
			continue
		}
		if e.IsSelfLoop() {
			res.Errors = append(res.Errors, fmt.Errorf("edge %s->%s: %w", e.Source, e.Destination, ErrSelfLoop))
		}
		if seen[e.Key()] {
			res.Errors = append(res.Errors, fmt.Errorf("edge %s->%s: %w", e.Source, e.Destination, ErrDuplicateEdge))
		}
		seen[e.Key()] = true
	}

	return res
}

// ValidateEdge checks whether adding e to g would introduce an error. Both
// endpoints must exist; under strict validation e must not be a self-loop or
// repeat an existing edge. Existing problems in g are ignored.
func ValidateEdge(g Elements, e Edge, opts ...ValidateOption) error {
	var cfg validateConfig
	for _, o := range opts {
		o(&cfg)
	}

	if g.NodeIndex(e.Source) < 0 || g.NodeIndex(e.Destination) < 0 {
		return fmt.Errorf("edge %s->%s: %w", e.Source, e.Destination, ErrDanglingEdge)
	}
	if !cfg.strict {
		return nil
	}
	if e.IsSelfLoop() {
		return fmt.Errorf("edge %s->%s: %w", e.Source, e.Destination, ErrSelfLoop)
	}
	for _, existing := range g.Edges {
		if existing.Key() == e.Key() {
			return fmt.Errorf("edge %s->%s: %w", e.Source, e.Destination, ErrDuplicateEdge)
		}
	}
	return nil
}

// IsValidationError reports whether err wraps one of the structural
// sentinels returned by [Validate] and [ValidateEdge].
func IsValidationError(err error) bool {
	for _, s := range []error{ErrInvalidNodeID, ErrDuplicateNodeID, ErrMissingRoles, ErrDanglingEdge, ErrSelfLoop, ErrDuplicateEdge} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
