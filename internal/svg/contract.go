package svg

import (
	"github.com/roach88/revelation/internal/contract"
	"github.com/roach88/revelation/internal/event"
)

// ContractName is the registry name of the static SVG contract.
const ContractName = "svg"

// State collects the folded events until finalize.
// Cursor markers need the raw log, so the contract keeps it whole.
type State struct {
	Events []event.Event
}

// NewContract returns a contract that renders the log at finalize.
func NewContract(opts Options) contract.Contract[*State, string] {
	return NewNamedContract(ContractName, opts)
}

// NewNamedContract is NewContract under a different registry name,
// used for variants such as the animated render.
func NewNamedContract(name string, opts Options) contract.Contract[*State, string] {
	return contract.Contract[*State, string]{
		Name: name,
		Init: func() *State { return &State{} },
		OnEvent: func(s *State, evt event.Event, _ float64) *State {
			s.Events = append(s.Events, evt)
			return s
		},
		Finalize: func(s *State) (string, error) {
			return Render(s.Events, opts), nil
		},
	}
}
