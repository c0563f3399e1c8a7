package contract

import (
	"errors"

	"github.com/roach88/revelation/internal/event"
)

// ErrNoArtifact is returned by runs whose contract has no finalizer.
// The state is still fully folded; there is simply nothing to emit.
var ErrNoArtifact = errors.New("contract has no finalizer")

// Contract folds events into state S and finalizes it into artifact A.
//
// OnEvent receives each event with its timeline offset t in seconds and
// returns the next state. Pointer states may be mutated and returned as-is.
// Finalize is optional; a nil Finalize makes runs return ErrNoArtifact.
type Contract[S, A any] struct {
	Name     string
	Init     func() S
	OnEvent  func(state S, evt event.Event, t float64) S
	Finalize func(state S) (A, error)
}

// Input is what a derived contract receives from its base contract.
type Input[S, A any] struct {
	State    S
	Artifact A
}

// Derived consumes the output of a base contract.
//
// Apply is called exactly once per composed run with the base's final
// state and artifact. Finalize is optional, as for Contract.
type Derived[InS, InA, OutS, OutA any] struct {
	Name     string
	Init     func() OutS
	Apply    func(state OutS, in Input[InS, InA]) OutS
	Finalize func(state OutS) (OutA, error)
}
