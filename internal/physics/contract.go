package physics

import (
	"github.com/roach88/revelation/internal/contract"
	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/timeline"
)

// ContractName is the registry name of the physics contract.
const ContractName = "physics"

// NewContract returns a contract that simulates events as they are folded
// and finalizes to a State snapshot.
func NewContract(opts Options) contract.Contract[*Sim, State] {
	return contract.Contract[*Sim, State]{
		Name: ContractName,
		Init: func() *Sim { return NewSim(opts) },
		OnEvent: func(s *Sim, evt event.Event, t float64) *Sim {
			s.Handle(evt, t)
			return s
		},
		Finalize: func(s *Sim) (State, error) {
			return s.Snapshot(), nil
		},
	}
}

// Simulate runs events through a fresh simulation in one shot.
//
// Unlike a contract run, the timeline falls back to the physics step for
// events without timestamps, so untimed events land one step apart.
func Simulate(events []event.Event, opts Options) State {
	sim := NewSim(opts)
	for _, te := range timeline.Build(events, timeline.WithStepMs(sim.params.stepMs)) {
		sim.Handle(te.Event, te.T)
	}
	return sim.Snapshot()
}
