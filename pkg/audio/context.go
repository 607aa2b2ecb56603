package audio

import (
	"errors"
	"sync"
)

// State is the run state of an audio context.
type State string

const (
	StateSuspended State = "suspended"
	StateRunning   State = "running"
	StateClosed    State = "closed"
)

// ErrNotAllowed is returned by a gated context resumed before the user
// allowed audio.
var ErrNotAllowed = errors.New("audio: resume not allowed before a user gesture")

// ErrClosed is returned when resuming a closed context.
var ErrClosed = errors.New("audio: context closed")

// Context is an audio engine handle owned by the embedding application.
// Resume and Suspend are fire-and-forget from the editor's point of view.
type Context interface {
	Resume() error
	Suspend() error
	State() State
}

// NullContext is an in-process audio context that produces no sound. It
// starts suspended.
//
// A gated NullContext refuses to resume until Allow is called, the way
// browsers refuse to start audio before a user gesture.
type NullContext struct {
	mu      sync.Mutex
	state   State
	gated   bool
	resumes int
}

// NewNullContext returns a suspended context that resumes on request.
func NewNullContext() *NullContext {
	return &NullContext{state: StateSuspended}
}

// NewGatedContext returns a suspended context that needs Allow before it
// can resume.
func NewGatedContext() *NullContext {
	return &NullContext{state: StateSuspended, gated: true}
}

// Allow records the user gesture that unlocks a gated context.
func (c *NullContext) Allow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gated = false
}

func (c *NullContext) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.state == StateClosed:
		return ErrClosed
	case c.gated:
		return ErrNotAllowed
	}
	c.state = StateRunning
	c.resumes++
	return nil
}

func (c *NullContext) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRunning {
		c.state = StateSuspended
	}
	return nil
}

// Close releases the context. Closed contexts cannot resume.
func (c *NullContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateClosed
	return nil
}

func (c *NullContext) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

var _ Context = (*NullContext)(nil)
