package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/timeline"
)

type seen struct {
	IDs   []string
	Times []float64
}

func recorder() Contract[*seen, []string] {
	return Contract[*seen, []string]{
		Name: "recorder",
		Init: func() *seen { return &seen{} },
		OnEvent: func(s *seen, evt event.Event, t float64) *seen {
			s.IDs = append(s.IDs, evt.ID)
			s.Times = append(s.Times, t)
			return s
		},
		Finalize: func(s *seen) ([]string, error) {
			return append([]string(nil), s.IDs...), nil
		},
	}
}

func counter() Contract[int, int] {
	return Contract[int, int]{
		Name:    "counter",
		Init:    func() int { return 0 },
		OnEvent: func(n int, _ event.Event, _ float64) int { return n + 1 },
		Finalize: func(n int) (int, error) {
			return n, nil
		},
	}
}

func sampleEvents() []event.Event {
	return []event.Event{
		{ID: "a", Type: event.TypeNodeAdd},
		{ID: "b", Type: event.Type("unknown.kind")},
		{ID: "c", Type: event.TypeCursorMove, Ephemeral: true},
	}
}

func TestRun_FoldsEveryEventInOrder(t *testing.T) {
	ids, err := Run(recorder(), sampleEvents())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestRun_PassesTimelineOffsets(t *testing.T) {
	state := Fold(recorder(), sampleEvents(), WithTimeline(timeline.WithStepMs(100)))
	assert.InDeltaSlice(t, []float64{0, 0.1, 0.2}, state.Times, 1e-12)
}

func TestRun_Deterministic(t *testing.T) {
	first, err := Run(recorder(), sampleEvents())
	require.NoError(t, err)
	second, err := Run(recorder(), sampleEvents())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_NoFinalizer(t *testing.T) {
	c := counter()
	c.Finalize = nil

	n, err := Run(c, sampleEvents())
	assert.ErrorIs(t, err, ErrNoArtifact)
	assert.Zero(t, n)

	// State is still folded.
	assert.Equal(t, 3, Fold(c, sampleEvents()))
}

func TestRun_FinalizeErrorWrapped(t *testing.T) {
	boom := errors.New("boom")
	c := counter()
	c.Finalize = func(int) (int, error) { return 0, boom }

	_, err := Run(c, sampleEvents())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "contract counter")
}

func TestRun_EmptyLog(t *testing.T) {
	n, err := Run(counter(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func doubler() Derived[int, int, []int, int] {
	return Derived[int, int, []int, int]{
		Name: "doubler",
		Init: func() []int { return nil },
		Apply: func(calls []int, in Input[int, int]) []int {
			return append(calls, in.State+in.Artifact)
		},
		Finalize: func(calls []int) (int, error) {
			if len(calls) != 1 {
				return 0, errors.New("apply must run exactly once")
			}
			return calls[0], nil
		},
	}
}

func TestRunComposed_AppliesOnce(t *testing.T) {
	out, err := RunComposed(counter(), doubler(), sampleEvents())
	require.NoError(t, err)
	assert.Equal(t, 6, out)
}

func TestRunComposed_BaseWithoutFinalizerPassesZeroArtifact(t *testing.T) {
	base := counter()
	base.Finalize = nil

	out, err := RunComposed(base, doubler(), sampleEvents())
	require.NoError(t, err)
	assert.Equal(t, 3, out)
}

func TestRunComposed_BaseErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	base := counter()
	base.Finalize = func(int) (int, error) { return 0, boom }

	applied := false
	derived := doubler()
	derived.Apply = func(calls []int, _ Input[int, int]) []int {
		applied = true
		return calls
	}

	_, err := RunComposed(base, derived, sampleEvents())
	require.ErrorIs(t, err, boom)
	assert.False(t, applied)
	assert.Contains(t, err.Error(), "compose counter -> doubler")
}

func TestRunComposed_DerivedWithoutFinalizer(t *testing.T) {
	derived := doubler()
	derived.Finalize = nil

	_, err := RunComposed(counter(), derived, sampleEvents())
	assert.ErrorIs(t, err, ErrNoArtifact)
}

func TestRun_LogsThroughLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	_, err := Run(counter(), sampleEvents(), WithLogger(zap.New(core)))
	require.NoError(t, err)

	entries := logs.FilterMessage("contract folded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "counter", entries[0].ContextMap()["contract"])
	assert.Equal(t, int64(3), entries[0].ContextMap()["events"])
}
