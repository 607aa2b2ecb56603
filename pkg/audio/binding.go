// Package audio keeps an external audio context in step with the lifetime
// of a graph view.
//
// A [Binding] resumes the context when the view mounts and suspends it when
// the view unmounts. Resume failures, whether returned errors or panics,
// are logged as warnings and leave the context suspended; they never reach
// the caller. There is no retry loop: the user resumes explicitly through
// [Binding.Resume].
//
//	b := audio.NewBinding(audio.NewGatedContext(), logger)
//	b.Mount(ctx)          // warns: not allowed before a user gesture
//	b.Resume(ctx)         // after the user clicks "allow audio"
//	defer b.Unmount(ctx)  // always suspends
package audio

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/soundchunk/pkg/errors"
	"github.com/matzehuels/soundchunk/pkg/observability"
)

// Stats counts lifecycle calls made through a Binding.
type Stats struct {
	ResumeAttempts int `json:"resume_attempts"`
	ResumeFailures int `json:"resume_failures"`
	Suspends       int `json:"suspends"`
}

// Binding ties an audio [Context] to a mounted view. It is not safe for
// concurrent use.
type Binding struct {
	audio   Context
	logger  *log.Logger
	mounted bool
	stats   Stats
}

// NewBinding binds c. A nil logger discards output.
func NewBinding(c Context, logger *log.Logger) *Binding {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Binding{audio: c, logger: logger}
}

// Mount marks the view as visible and tries once to resume audio.
func (b *Binding) Mount(ctx context.Context) {
	b.mounted = true
	b.resume(ctx, "mount")
}

// Unmount marks the view as gone and suspends audio unconditionally.
func (b *Binding) Unmount(ctx context.Context) {
	b.mounted = false
	b.suspend(ctx, "unmount")
}

// Resume handles an explicit user request to start audio and returns the
// resulting state. It does nothing if audio is already running.
func (b *Binding) Resume(ctx context.Context) State {
	if b.state() == StateRunning {
		return StateRunning
	}
	b.resume(ctx, "request")
	return b.state()
}

// Suspend handles an explicit user request to stop audio.
func (b *Binding) Suspend(ctx context.Context) State {
	b.suspend(ctx, "request")
	return b.state()
}

// State returns the context state. A panicking context reads as suspended.
func (b *Binding) State() State { return b.state() }

// Mounted reports whether the view is mounted.
func (b *Binding) Mounted() bool { return b.mounted }

// Stats returns the call counters.
func (b *Binding) Stats() Stats { return b.stats }

func (b *Binding) resume(ctx context.Context, trigger string) {
	b.stats.ResumeAttempts++
	from := b.state()

	err := guard(b.audio.Resume)
	to := b.state()
	observability.Editor().OnAudioTransition(ctx, string(from), string(to), err)

	if err != nil {
		b.stats.ResumeFailures++
		b.logger.Warn("audio resume failed",
			"trigger", trigger,
			"code", errors.ErrCodeAudioLifecycle,
			"err", err)
		return
	}
	b.logger.Debug("audio resumed", "trigger", trigger, "state", to)
}

func (b *Binding) suspend(ctx context.Context, trigger string) {
	b.stats.Suspends++
	from := b.state()

	err := guard(b.audio.Suspend)
	observability.Editor().OnAudioTransition(ctx, string(from), string(b.state()), err)

	if err != nil {
		b.logger.Warn("audio suspend failed",
			"trigger", trigger,
			"code", errors.ErrCodeAudioLifecycle,
			"err", err)
	}
}

func (b *Binding) state() (s State) {
	defer func() {
		if recover() != nil {
			s = StateSuspended
		}
	}()
	return b.audio.State()
}

// guard runs fn and converts a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("audio context panicked: %v", r)
		}
	}()
	return fn()
}
