package harness

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/revelation/internal/canonical"
	"github.com/roach88/revelation/internal/config"
	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/projection"
	"github.com/roach88/revelation/internal/store"
)

// Harness is the scenario execution engine.
// It owns a fresh in-memory log and a registry for one scenario run.
type Harness struct {
	store    *store.SQLite
	registry *projection.Registry
	logger   *zap.Logger
}

type settings struct {
	logger *zap.Logger
	config *projection.Config
}

// Option configures Run.
type Option func(*settings)

// WithLogger routes harness and registry diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConfig sets the projection config. A scenario's own config file
// takes precedence.
func WithConfig(cfg projection.Config) Option {
	return func(s *settings) {
		s.config = &cfg
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Build the scenario events and append them to the store
// 2. Replay the log from the store
// 3. Run every scenario contract over the replayed log
// 4. Evaluate assertions
//
// An unknown contract or a contract failure is an execution error;
// assertion failures are reported on the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}

	cfg, err := scenarioConfig(scenario, s.config)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:", store.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:    st,
		registry: projection.NewRegistry(cfg, projection.WithLogger(s.logger)),
		logger:   s.logger.With(zap.String("scenario", scenario.Name)),
	}

	ctx := context.Background()

	events, err := h.replay(ctx, scenario)
	if err != nil {
		return nil, err
	}

	logDigest, err := canonical.LogDigest(events)
	if err != nil {
		return nil, fmt.Errorf("failed to digest log: %w", err)
	}

	result := NewResult()
	result.LogDigest = logDigest
	result.Events = len(events)

	for _, name := range scenario.Contracts {
		artifact, err := h.registry.Run(name, events)
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", name, err)
		}
		result.AddArtifact(ArtifactResult{
			Contract:  artifact.Contract,
			MediaType: artifact.MediaType,
			Digest:    artifact.Digest,
			Size:      artifact.Size,
			Data:      artifact.Data,
		})
		h.logger.Debug("contract completed",
			zap.String("contract", name),
			zap.String("digest", artifact.Digest),
			zap.Int("size", artifact.Size),
		)
	}

	actx := &AssertionContext{
		Registry:  h.registry,
		Events:    events,
		Contracts: scenario.Contracts,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// replay appends the scenario log and reads it back in append order.
func (h *Harness) replay(ctx context.Context, scenario *Scenario) ([]event.Event, error) {
	events, err := scenario.BuildEvents()
	if err != nil {
		return nil, fmt.Errorf("failed to build events: %w", err)
	}

	appended, err := h.store.AppendBatch(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("failed to append events: %w", err)
	}
	if appended < len(events) {
		h.logger.Info("duplicate event ids ignored",
			zap.Int("events", len(events)),
			zap.Int("appended", appended),
		)
	}

	replayed, err := h.store.Events(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to replay events: %w", err)
	}
	return replayed, nil
}

func scenarioConfig(scenario *Scenario, override *projection.Config) (projection.Config, error) {
	if scenario.Config != "" {
		cfg, err := config.Load(scenario.Config)
		if err != nil {
			return projection.Config{}, fmt.Errorf("failed to load scenario config: %w", err)
		}
		return cfg.Projection, nil
	}
	if override != nil {
		return *override, nil
	}
	return config.Default().Projection, nil
}

// IsUnknownContract reports whether err came from a scenario naming a
// contract the registry does not know.
func IsUnknownContract(err error) bool {
	return errors.Is(err, projection.ErrUnknownContract)
}
