// Package physics runs a fixed-step spring-mass simulation driven by events.
//
// Nodes become particles and edges become springs. Between events the
// simulation catches up in fixed steps of StepMs, so simulated time never
// jumps ahead in one large step, and the structural effect of an event is
// applied only after stepping up to that event's time.
//
// Integration is semi-implicit Euler: velocity is updated from spring
// forces, decayed by drag, then used to advance position. Fixed particles
// are never integrated.
package physics

import (
	"math"

	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/ordered"
)

// Default simulation parameters.
const (
	DefaultStepMs  = 33.333
	DefaultSpringK = 0.6
	DefaultDamping = 0.2
	DefaultDrag    = 0.02
)

// minDistance guards spring direction math when two particles coincide.
const minDistance = 1e-6

// Options are the simulation parameters. A non-positive StepMs and a nil
// coefficient take the defaults; an explicit zero coefficient is kept, so
// Drag: Value(0) disables drag.
type Options struct {
	StepMs  float64  `yaml:"step_ms" json:"step_ms"`
	SpringK *float64 `yaml:"spring_k" json:"spring_k"`
	Damping *float64 `yaml:"damping" json:"damping"`
	Drag    *float64 `yaml:"drag" json:"drag"`
}

// Value returns a pointer to v for setting an Options coefficient.
func Value(v float64) *float64 {
	return &v
}

// DefaultOptions returns the default simulation parameters.
func DefaultOptions() Options {
	return Options{
		StepMs:  DefaultStepMs,
		SpringK: Value(DefaultSpringK),
		Damping: Value(DefaultDamping),
		Drag:    Value(DefaultDrag),
	}
}

// params are the resolved parameters a Sim steps with.
type params struct {
	stepMs, springK, damping, drag float64
}

func (o Options) resolve() params {
	p := params{
		stepMs:  DefaultStepMs,
		springK: DefaultSpringK,
		damping: DefaultDamping,
		drag:    DefaultDrag,
	}
	if o.StepMs > 0 {
		p.stepMs = o.StepMs
	}
	if o.SpringK != nil {
		p.springK = *o.SpringK
	}
	if o.Damping != nil {
		p.damping = *o.Damping
	}
	if o.Drag != nil {
		p.drag = *o.Drag
	}
	return p
}

// Particle is a simulated node.
type Particle struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Mass  float64 `json:"mass"`
	Fixed bool    `json:"fixed"`
}

// Spring connects two particles. Inactive springs are soft-deleted: they
// stay in the snapshot but exert no force.
type Spring struct {
	ID      string  `json:"id"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Rest    float64 `json:"rest"`
	K       float64 `json:"k"`
	Damping float64 `json:"damping"`
	Active  bool    `json:"active"`
}

// State is the finalized physics artifact: a snapshot in creation order.
type State struct {
	Time      float64    `json:"time"`
	Particles []Particle `json:"particles"`
	Springs   []Spring   `json:"springs"`
}

// Sim is the mutable run state of one simulation.
type Sim struct {
	params    params
	time      float64
	particles ordered.Map[string, *Particle]
	springs   ordered.Map[string, *Spring]
}

// NewSim creates an empty simulation.
func NewSim(opts Options) *Sim {
	return &Sim{params: opts.resolve()}
}

// Time returns the simulated time in seconds.
func (s *Sim) Time() float64 {
	return s.time
}

// Options returns the effective parameters.
func (s *Sim) Options() Options {
	return Options{
		StepMs:  s.params.stepMs,
		SpringK: Value(s.params.springK),
		Damping: Value(s.params.damping),
		Drag:    Value(s.params.drag),
	}
}

// Particle returns a copy of the particle with the given id.
func (s *Sim) Particle(id string) (Particle, bool) {
	p, ok := s.particles.Get(id)
	if !ok {
		return Particle{}, false
	}
	return *p, true
}

// Spring returns a copy of the spring with the given id.
func (s *Sim) Spring(id string) (Spring, bool) {
	sp, ok := s.springs.Get(id)
	if !ok {
		return Spring{}, false
	}
	return *sp, true
}

// Handle advances the simulation to t, then applies evt.
func (s *Sim) Handle(evt event.Event, t float64) {
	s.AdvanceTo(t)
	s.Apply(evt)
}

// AdvanceTo runs fixed steps while a whole step still fits before t.
func (s *Sim) AdvanceTo(t float64) {
	dt := s.params.stepMs / 1000
	for s.time+dt <= t {
		s.Step(dt)
		s.time += dt
	}
}

// Step integrates one step of length dt without advancing Time.
func (s *Sim) Step(dt float64) {
	type force struct{ fx, fy float64 }
	forces := make(map[string]*force, s.particles.Len())
	s.particles.Each(func(id string, _ *Particle) {
		forces[id] = &force{}
	})

	s.springs.Each(func(_ string, sp *Spring) {
		if !sp.Active {
			return
		}
		a, okA := s.particles.Get(sp.From)
		b, okB := s.particles.Get(sp.To)
		if !okA || !okB {
			return
		}

		dx := b.X - a.X
		dy := b.Y - a.Y
		dist := math.Max(minDistance, math.Sqrt(dx*dx+dy*dy))
		nx := dx / dist
		ny := dy / dist

		relAlong := (b.VX-a.VX)*nx + (b.VY-a.VY)*ny
		mag := sp.K*(dist-sp.Rest) + sp.Damping*relAlong

		fa := forces[a.ID]
		fb := forces[b.ID]
		fa.fx += mag * nx
		fa.fy += mag * ny
		fb.fx -= mag * nx
		fb.fy -= mag * ny
	})

	s.particles.Each(func(id string, p *Particle) {
		if p.Fixed {
			return
		}
		f := forces[id]
		p.VX += f.fx / p.Mass * dt
		p.VY += f.fy / p.Mass * dt
		p.VX *= 1 - s.params.drag
		p.VY *= 1 - s.params.drag
		p.X += p.VX * dt
		p.Y += p.VY * dt
	})
}

// Apply applies the structural effect of evt. Events referencing unknown
// entities and events without a usable payload are no-ops.
func (s *Sim) Apply(evt event.Event) {
	switch p := evt.Decode().(type) {
	case event.NodeAdd:
		if s.particles.Has(p.ID) {
			return
		}
		s.particles.Set(p.ID, &Particle{
			ID:    p.ID,
			X:     p.X.Or(0),
			Y:     p.Y.Or(0),
			Mass:  p.Mass.Or(1),
			Fixed: p.Fixed,
		})

	case event.NodeMove:
		part, ok := s.lookupParticle(p.ID)
		if !ok {
			return
		}
		part.X = p.X.Or(part.X)
		part.Y = p.Y.Or(part.Y)
		part.VX = 0
		part.VY = 0

	case event.NodeSelect:
		part, ok := s.lookupParticle(p.ID)
		if !ok {
			return
		}
		if p.Fixed != nil {
			part.Fixed = *p.Fixed
		}

	case event.EdgeAdd:
		s.addSpring(p)

	case event.EdgeRemove:
		if p.ID == "" {
			return
		}
		if sp, ok := s.springs.Get(p.ID); ok {
			sp.Active = false
		}
	}
}

func (s *Sim) lookupParticle(id string) (*Particle, bool) {
	if id == "" {
		return nil, false
	}
	return s.particles.Get(id)
}

// addSpring creates or replaces a spring. Rest length defaults to the
// live distance between the endpoints, or the literal x1..y2 distance when
// either endpoint particle does not exist yet.
func (s *Sim) addSpring(p event.EdgeAdd) {
	if p.From == "" || p.To == "" {
		return
	}

	var dx, dy float64
	a, okA := s.particles.Get(p.From)
	b, okB := s.particles.Get(p.To)
	if okA && okB {
		dx = b.X - a.X
		dy = b.Y - a.Y
	} else {
		dx = p.X2.Or(0) - p.X1.Or(0)
		dy = p.Y2.Or(0) - p.Y1.Or(0)
	}
	dist := math.Max(minDistance, math.Sqrt(dx*dx+dy*dy))

	s.springs.Set(p.ID, &Spring{
		ID:      p.ID,
		From:    p.From,
		To:      p.To,
		Rest:    p.Length.Or(dist),
		K:       p.K.Or(s.params.springK),
		Damping: p.Damping.Or(s.params.damping),
		Active:  true,
	})
}

// Snapshot copies the current state in creation order.
func (s *Sim) Snapshot() State {
	st := State{
		Time:      s.time,
		Particles: make([]Particle, 0, s.particles.Len()),
		Springs:   make([]Spring, 0, s.springs.Len()),
	}
	s.particles.Each(func(_ string, p *Particle) {
		st.Particles = append(st.Particles, *p)
	})
	s.springs.Each(func(_ string, sp *Spring) {
		st.Springs = append(st.Springs, *sp)
	})
	return st
}
