package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/revelation/internal/event"
)

// Defaults applied to scenario events that leave the field empty.
const (
	DefaultActor = "harness"
	DefaultSpace = "canvas"
	idPrefix     = "evt"
)

// Scenario defines a projection test scenario.
// A scenario replays an event log through one or more contracts and
// asserts on the artifacts.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config optionally points at a config file whose projection section
	// overrides the render defaults. Relative to the scenario file.
	Config string `yaml:"config,omitempty"`

	// Contracts lists the registry contracts to run, in order.
	Contracts []string `yaml:"contracts"`

	// Events is the log, in append order.
	Events []EventStep `yaml:"events"`

	// Assertions validate the artifacts and the replayed log.
	Assertions []Assertion `yaml:"assertions"`
}

// EventStep is one event in a scenario log.
type EventStep struct {
	ID        string         `yaml:"id,omitempty"`
	TS        *float64       `yaml:"ts,omitempty"`
	Actor     string         `yaml:"actor,omitempty"`
	Type      string         `yaml:"type"`
	Space     string         `yaml:"space,omitempty"`
	Payload   map[string]any `yaml:"payload,omitempty"`
	Ephemeral bool           `yaml:"ephemeral,omitempty"`
}

// Assertion validates an artifact or the replayed log.
type Assertion struct {
	// Type specifies the assertion type:
	// - "artifact_contains": artifact bytes contain Text
	// - "artifact_excludes": artifact bytes do not contain Text
	// - "artifact_count": Text occurs exactly Count times
	// - "artifact_digest": artifact digest equals Digest
	// - "event_count": replayed log holds exactly Count events
	// - "deterministic": two runs produce identical digests
	Type string `yaml:"type"`

	// Contract names the artifact under test. Optional for deterministic,
	// which otherwise checks every scenario contract.
	Contract string `yaml:"contract,omitempty"`

	// Text is the substring for the artifact text assertions.
	Text string `yaml:"text,omitempty"`

	// Count is the expected number of occurrences.
	Count int `yaml:"count,omitempty"`

	// Digest is the expected artifact digest.
	Digest string `yaml:"digest,omitempty"`
}

// Assertion type constants.
const (
	AssertArtifactContains = "artifact_contains"
	AssertArtifactExcludes = "artifact_excludes"
	AssertArtifactCount    = "artifact_count"
	AssertArtifactDigest   = "artifact_digest"
	AssertEventCount       = "event_count"
	AssertDeterministic    = "deterministic"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) {
		scenario.Config = filepath.Join(filepath.Dir(path), scenario.Config)
	}
	if scenario.Config != "" {
		if _, err := os.Stat(scenario.Config); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: config file not found: %s", scenario.Config)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML held in memory.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// BuildEvents converts the scenario log into events, filling defaults.
func (s *Scenario) BuildEvents() ([]event.Event, error) {
	ids := event.NewSequentialGenerator(idPrefix)
	events := make([]event.Event, len(s.Events))

	for i, step := range s.Events {
		// Consume an id for every event so explicit ids don't shift the rest.
		generated := ids.Generate()

		evt := event.Event{
			ID:        step.ID,
			TS:        step.TS,
			Actor:     step.Actor,
			Type:      event.Type(step.Type),
			Space:     step.Space,
			Ephemeral: step.Ephemeral,
		}
		if evt.ID == "" {
			evt.ID = generated
		}
		if evt.Actor == "" {
			evt.Actor = DefaultActor
		}
		if evt.Space == "" {
			evt.Space = DefaultSpace
		}
		if step.Payload != nil {
			payload, err := event.EncodePayload(step.Payload)
			if err != nil {
				return nil, fmt.Errorf("events[%d]: %w", i, err)
			}
			evt.Payload = payload
		}
		events[i] = evt
	}
	return events, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Contracts) == 0 {
		return fmt.Errorf("contracts list is required and must be non-empty")
	}

	if len(s.Events) == 0 {
		return fmt.Errorf("events list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Contracts))
	for i, name := range s.Contracts {
		if name == "" {
			return fmt.Errorf("contracts[%d]: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("contracts[%d]: duplicate contract %q", i, name)
		}
		seen[name] = true
	}

	for i, step := range s.Events {
		if step.Type == "" {
			return fmt.Errorf("events[%d]: type is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, seen); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, contracts map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	needsContract := func() error {
		if a.Contract == "" {
			return fmt.Errorf("assertions[%d]: contract is required for %s", index, a.Type)
		}
		return nil
	}

	switch a.Type {
	case AssertArtifactContains, AssertArtifactExcludes:
		if err := needsContract(); err != nil {
			return err
		}
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertArtifactCount:
		if err := needsContract(); err != nil {
			return err
		}
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for artifact_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for artifact_count", index)
		}
	case AssertArtifactDigest:
		if err := needsContract(); err != nil {
			return err
		}
		if a.Digest == "" {
			return fmt.Errorf("assertions[%d]: digest is required for artifact_digest", index)
		}
	case AssertEventCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertDeterministic:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Contract != "" && !contracts[a.Contract] {
		return fmt.Errorf("assertions[%d]: contract %q is not in the contracts list", index, a.Contract)
	}

	return nil
}
