package projection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/roach88/revelation/internal/audio"
	"github.com/roach88/revelation/internal/canonical"
	"github.com/roach88/revelation/internal/contract"
	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/mesh"
	"github.com/roach88/revelation/internal/physics"
	"github.com/roach88/revelation/internal/svg"
	"github.com/roach88/revelation/internal/timeline"
)

// SVGAnimatedName is the registry name of the animated SVG render.
const SVGAnimatedName = "svg-animated"

// ErrUnknownContract is returned for names not in the registry.
var ErrUnknownContract = errors.New("unknown contract")

// Media types of encoded artifacts.
const (
	MediaSVG  = "image/svg+xml"
	MediaGLTF = "model/gltf+json"
	MediaJSON = "application/json"
	MediaWAV  = "audio/wav"
)

// Config holds the parameters of every contract in the registry.
// Zero fields take each package's defaults.
type Config struct {
	SVG     svg.Options     `yaml:"svg" json:"svg"`
	Physics physics.Options `yaml:"physics" json:"physics"`
	Audio   audio.Options   `yaml:"audio" json:"audio"`
	Mesh    mesh.Options    `yaml:"mesh" json:"mesh"`
}

// Artifact is the encoded output of one registry run.
type Artifact struct {
	Contract  string `json:"contract"`
	MediaType string `json:"media_type"`
	// Value is the typed artifact: string, *mesh.Document, mesh.OBJ,
	// physics.State or []float32.
	Value  any    `json:"-"`
	Data   []byte `json:"-"`
	Digest string `json:"digest"`
	Size   int    `json:"size"`
}

// Entry describes one runnable contract.
type Entry struct {
	Name        string `json:"name"`
	Base        string `json:"base,omitempty"`
	MediaType   string `json:"media_type"`
	Description string `json:"description"`

	run func(events []event.Event, opts []contract.RunOption) (any, []byte, error)
}

// Derived reports whether the entry composes a base contract.
func (e Entry) Derived() bool {
	return e.Base != ""
}

// Registry maps contract names to runnable entries.
type Registry struct {
	entries map[string]Entry
	names   []string
	logger  *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger passed to every contract run.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry builds the registry for cfg.
func NewRegistry(cfg Config, opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]Entry),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	static := cfg.SVG
	static.Animate = false
	animated := cfg.SVG
	animated.Animate = true
	sampleRate := cfg.Audio.SampleRate
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}

	// Physics runs on a timeline whose untimed fallback is the physics
	// step, like physics.Simulate.
	physicsStep := contract.WithTimeline(timeline.WithStepMs(physics.NewSim(cfg.Physics).Options().StepMs))
	physicsContract := physics.NewContract(cfg.Physics)
	svgContract := svg.NewContract(static)

	encodeWAV := func(samples []float32) ([]byte, error) {
		var buf bytes.Buffer
		if err := audio.EncodeWAV(&buf, samples, sampleRate); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	r.add(single(Entry{
		Name: svg.ContractName, MediaType: MediaSVG,
		Description: "static SVG of the final node and edge state",
	}, svgContract, encodeString))
	r.add(single(Entry{
		Name: SVGAnimatedName, MediaType: MediaSVG,
		Description: "SVG with <animate> keyframes for moves, selection and removal",
	}, svg.NewNamedContract(SVGAnimatedName, animated), encodeString))
	r.add(single(Entry{
		Name: mesh.GLTFContractName, MediaType: MediaGLTF,
		Description: "glTF 2.0 scene converted from the static SVG",
	}, mesh.NewGLTFContract(static, cfg.Mesh), encodeDocument))
	r.add(single(Entry{
		Name: mesh.OBJContractName, MediaType: MediaJSON,
		Description: "Wavefront OBJ and MTL text converted from the static SVG",
	}, mesh.NewOBJContract(static, cfg.Mesh), encodeJSON[mesh.OBJ]))
	r.add(single(Entry{
		Name: physics.ContractName, MediaType: MediaJSON,
		Description: "spring-mass simulation snapshot",
	}, physicsContract, encodeJSON[physics.State], physicsStep))
	r.add(single(Entry{
		Name: audio.ContractName, MediaType: MediaWAV,
		Description: "synthesized mono audio, one sound per event",
	}, audio.NewContract(cfg.Audio), encodeWAV))

	r.add(composed(Entry{
		Name: PhysicsSVGName, MediaType: MediaSVG,
		Description: "SVG of the particles at their simulated positions",
	}, physicsContract, NewPhysicsSVG(static), encodeString, physicsStep))
	r.add(composed(Entry{
		Name: SVGGLTFName, MediaType: MediaGLTF,
		Description: "glTF converted from the svg artifact",
	}, svgContract, NewSVGGLTF(cfg.Mesh), encodeDocument))
	r.add(composed(Entry{
		Name: SVGOBJName, MediaType: MediaJSON,
		Description: "OBJ and MTL converted from the svg artifact",
	}, svgContract, NewSVGOBJ(cfg.Mesh), encodeJSON[mesh.OBJ]))
	r.add(composed(Entry{
		Name: PhysicsAudioName, MediaType: MediaWAV,
		Description: "one pluck per simulated particle",
	}, physicsContract, NewPhysicsAudio(sampleRate), encodeWAV, physicsStep))

	return r
}

func (r *Registry) add(e Entry) {
	r.entries[e.Name] = e
	r.names = append(r.names, e.Name)
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Entries returns the registered entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.entries[name])
	}
	return out
}

// Get looks up an entry by name.
func (r *Registry) Get(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Run runs the named contract over events and encodes its artifact.
func (r *Registry) Run(name string, events []event.Event) (Artifact, error) {
	e, ok := r.entries[name]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownContract, name)
	}

	value, data, err := e.run(events, []contract.RunOption{contract.WithLogger(r.logger)})
	if err != nil {
		return Artifact{}, fmt.Errorf("run %s: %w", name, err)
	}

	a := Artifact{
		Contract:  name,
		MediaType: e.MediaType,
		Value:     value,
		Data:      data,
		Digest:    canonical.ArtifactDigest(name, data),
		Size:      len(data),
	}
	r.logger.Debug("artifact produced",
		zap.String("contract", name),
		zap.Int("events", len(events)),
		zap.Int("bytes", a.Size),
		zap.String("digest", a.Digest),
	)
	return a, nil
}

// single wraps a plain contract as an entry.
func single[S, A any](
	e Entry,
	c contract.Contract[S, A],
	encode func(A) ([]byte, error),
	extra ...contract.RunOption,
) Entry {
	e.run = func(events []event.Event, opts []contract.RunOption) (any, []byte, error) {
		artifact, err := contract.Run(c, events, slices.Concat(extra, opts)...)
		if err != nil {
			return nil, nil, err
		}
		return encodeValue(artifact, encode)
	}
	return e
}

// composed wraps a base and derived contract pair as an entry.
func composed[InS, InA, OutS, OutA any](
	e Entry,
	base contract.Contract[InS, InA],
	derived contract.Derived[InS, InA, OutS, OutA],
	encode func(OutA) ([]byte, error),
	extra ...contract.RunOption,
) Entry {
	e.Base = base.Name
	e.run = func(events []event.Event, opts []contract.RunOption) (any, []byte, error) {
		artifact, err := contract.RunComposed(base, derived, events, slices.Concat(extra, opts)...)
		if err != nil {
			return nil, nil, err
		}
		return encodeValue(artifact, encode)
	}
	return e
}

func encodeValue[A any](artifact A, encode func(A) ([]byte, error)) (any, []byte, error) {
	data, err := encode(artifact)
	if err != nil {
		return nil, nil, fmt.Errorf("encode artifact: %w", err)
	}
	return artifact, data, nil
}

func encodeString(s string) ([]byte, error) {
	return []byte(s), nil
}

func encodeDocument(doc *mesh.Document) ([]byte, error) {
	return doc.Encode()
}

// encodeJSON writes v in struct field order without HTML escaping.
// Strings pass through untouched: an id or OBJ line reaches the artifact
// exactly as the log spelled it.
func encodeJSON[T any](v T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
