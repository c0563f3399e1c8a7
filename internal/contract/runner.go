package contract

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/timeline"
)

type runOptions struct {
	timeline []timeline.Option
	logger   *zap.Logger
}

// RunOption configures Run, Fold and RunComposed.
type RunOption func(*runOptions)

// WithTimeline passes options to the timeline builder.
func WithTimeline(opts ...timeline.Option) RunOption {
	return func(o *runOptions) {
		o.timeline = append(o.timeline, opts...)
	}
}

// WithLogger sets the logger used for run diagnostics.
// Runs are silent by default.
func WithLogger(logger *zap.Logger) RunOption {
	return func(o *runOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []RunOption) runOptions {
	o := runOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Fold builds the timeline once and folds every timed event into a fresh
// state, in order, with no early exit.
func Fold[S, A any](c Contract[S, A], events []event.Event, opts ...RunOption) S {
	o := buildOptions(opts)
	return fold(c, events, o)
}

func fold[S, A any](c Contract[S, A], events []event.Event, o runOptions) S {
	timed := timeline.Build(events, o.timeline...)
	state := c.Init()
	for _, te := range timed {
		state = c.OnEvent(state, te.Event, te.T)
	}
	o.logger.Debug("contract folded",
		zap.String("contract", c.Name),
		zap.Int("events", len(timed)),
	)
	return state
}

// Run folds events through c and returns the finalized artifact.
//
// Returns ErrNoArtifact when c has no finalizer. Finalizer errors are
// wrapped with the contract name.
func Run[S, A any](c Contract[S, A], events []event.Event, opts ...RunOption) (A, error) {
	o := buildOptions(opts)
	state := fold(c, events, o)
	return finalize(c.Name, c.Finalize, state)
}

// RunComposed runs base to completion, then feeds its state and artifact
// to derived exactly once and finalizes the derived state.
//
// A base without a finalizer passes the zero artifact. An error from the
// base finalizer aborts the composition.
func RunComposed[InS, InA, OutS, OutA any](
	base Contract[InS, InA],
	derived Derived[InS, InA, OutS, OutA],
	events []event.Event,
	opts ...RunOption,
) (OutA, error) {
	o := buildOptions(opts)

	baseState := fold(base, events, o)

	baseArtifact, err := finalize(base.Name, base.Finalize, baseState)
	if err != nil && !errors.Is(err, ErrNoArtifact) {
		var zero OutA
		return zero, fmt.Errorf("compose %s -> %s: %w", base.Name, derived.Name, err)
	}

	state := derived.Init()
	state = derived.Apply(state, Input[InS, InA]{State: baseState, Artifact: baseArtifact})
	o.logger.Debug("derived contract applied",
		zap.String("base", base.Name),
		zap.String("derived", derived.Name),
	)

	return finalize(derived.Name, derived.Finalize, state)
}

func finalize[S, A any](name string, fn func(S) (A, error), state S) (A, error) {
	var zero A
	if fn == nil {
		return zero, ErrNoArtifact
	}
	artifact, err := fn(state)
	if err != nil {
		return zero, fmt.Errorf("contract %s: finalize: %w", name, err)
	}
	return artifact, nil
}
