package projection

import (
	"math"

	"github.com/roach88/revelation/internal/audio"
	"github.com/roach88/revelation/internal/contract"
	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/mesh"
	"github.com/roach88/revelation/internal/physics"
	"github.com/roach88/revelation/internal/svg"
)

// Derived contract names.
const (
	PhysicsSVGName   = "physics-svg"
	SVGGLTFName      = "svg-gltf"
	SVGOBJName       = "svg-obj"
	PhysicsAudioName = "physics-audio"
)

// Envelope of the synthetic events built from a physics snapshot.
const (
	SystemActor = "system"
	SystemSpace = "canvas"

	physicsSVGPrefix   = "evt-physics-"
	physicsAudioPrefix = "evt-phys-audio-"

	// particleSpacingSec separates the plucks of consecutive particles.
	particleSpacingSec = 0.05
	minAudioSec        = 1.0
)

// ParticleEvents turns each particle of a snapshot into a node.add at its
// final position, in snapshot order. Ids are idPrefix plus the particle id.
func ParticleEvents(state physics.State, idPrefix string) []event.Event {
	events := make([]event.Event, 0, len(state.Particles))
	for _, p := range state.Particles {
		events = append(events, event.Event{
			ID:    idPrefix + p.ID,
			TS:    event.TimeStamp(0),
			Actor: SystemActor,
			Type:  event.TypeNodeAdd,
			Space: SystemSpace,
			Payload: event.MustPayload(map[string]any{
				"id": p.ID,
				"x":  finiteOrNil(p.X),
				"y":  finiteOrNil(p.Y),
			}),
		})
	}
	return events
}

// finiteOrNil maps NaN and the infinities to JSON null, which is what a
// diverged simulation serializes to.
func finiteOrNil(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// NewPhysicsSVG renders the particles of the physics artifact as nodes.
func NewPhysicsSVG(render svg.Options) contract.Derived[*physics.Sim, physics.State, string, string] {
	return contract.Derived[*physics.Sim, physics.State, string, string]{
		Name: PhysicsSVGName,
		Init: func() string { return "" },
		Apply: func(_ string, in contract.Input[*physics.Sim, physics.State]) string {
			return svg.Render(ParticleEvents(in.Artifact, physicsSVGPrefix), render)
		},
		Finalize: func(markup string) (string, error) { return markup, nil },
	}
}

// Conversion holds the outcome of a markup conversion until finalize
// reports it. Apply cannot fail, so the error travels in the state.
type Conversion[T any] struct {
	Value T
	Err   error
}

func (c *Conversion[T]) result() (T, error) {
	return c.Value, c.Err
}

// NewSVGGLTF converts the SVG artifact into a glTF document.
func NewSVGGLTF(opts mesh.Options) contract.Derived[*svg.State, string, *Conversion[*mesh.Document], *mesh.Document] {
	return contract.Derived[*svg.State, string, *Conversion[*mesh.Document], *mesh.Document]{
		Name: SVGGLTFName,
		Init: func() *Conversion[*mesh.Document] { return &Conversion[*mesh.Document]{} },
		Apply: func(s *Conversion[*mesh.Document], in contract.Input[*svg.State, string]) *Conversion[*mesh.Document] {
			s.Value, s.Err = mesh.ToGLTF(in.Artifact, opts)
			return s
		},
		Finalize: (*Conversion[*mesh.Document]).result,
	}
}

// NewSVGOBJ converts the SVG artifact into OBJ and MTL text.
func NewSVGOBJ(opts mesh.Options) contract.Derived[*svg.State, string, *Conversion[mesh.OBJ], mesh.OBJ] {
	return contract.Derived[*svg.State, string, *Conversion[mesh.OBJ], mesh.OBJ]{
		Name: SVGOBJName,
		Init: func() *Conversion[mesh.OBJ] { return &Conversion[mesh.OBJ]{} },
		Apply: func(s *Conversion[mesh.OBJ], in contract.Input[*svg.State, string]) *Conversion[mesh.OBJ] {
			s.Value, s.Err = mesh.ToOBJ(in.Artifact, opts)
			return s
		},
		Finalize: (*Conversion[mesh.OBJ]).result,
	}
}

// NewPhysicsAudio plucks one note per particle, 50 ms apart, and renders
// at least one second of audio.
func NewPhysicsAudio(sampleRate int) contract.Derived[*physics.Sim, physics.State, []float32, []float32] {
	return contract.Derived[*physics.Sim, physics.State, []float32, []float32]{
		Name: PhysicsAudioName,
		Init: func() []float32 { return []float32{} },
		Apply: func(_ []float32, in contract.Input[*physics.Sim, physics.State]) []float32 {
			sink := audio.NewSink(sampleRate)
			for i, evt := range ParticleEvents(in.Artifact, physicsAudioPrefix) {
				sink.OnEvent(evt, float64(i)*particleSpacingSec)
			}
			n := float64(len(in.Artifact.Particles))
			return sink.Render(math.Max(minAudioSec, n*particleSpacingSec+audio.TailSec))
		},
		Finalize: func(buf []float32) ([]float32, error) { return buf, nil },
	}
}
