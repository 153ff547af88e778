package indicator

import (
	"slices"
	"sync"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
)

// StageRegistry holds the pipeline stages in execution order.
type StageRegistry interface {
	RegisterStage(stage Stage) error
	GetStage(name types.IndicatorType) (Stage, error)
	ListStages() []types.IndicatorType
	RemoveStage(name types.IndicatorType) error
	Stages() []Stage
}

// StageRegistryV1 is an ordered, mutex-guarded StageRegistry.
type StageRegistryV1 struct {
	stages []Stage
	mu     sync.RWMutex
}

// NewStageRegistry creates an empty registry.
func NewStageRegistry() StageRegistry {
	return &StageRegistryV1{
		stages: nil,
		mu:     sync.RWMutex{},
	}
}

// NewDefaultRegistry registers the full structure pipeline configured with cfg.
func NewDefaultRegistry(cfg Config) (StageRegistry, error) {
	registry := NewStageRegistry()

	for _, stage := range []Stage{
		NewMACD(),
		NewExtremumTracker(),
		NewCrossDetector(),
		NewDivergenceDetector(),
		NewStructureAggregator(),
		NewTrendClassifier(),
	} {
		if err := stage.Config(cfg); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to configure stage %s", stage.Name())
		}

		if err := registry.RegisterStage(stage); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// RegisterStage appends a stage. Every stage it requires must already be registered.
func (r *StageRegistryV1) RegisterStage(stage Stage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := stage.Name()
	if r.indexOf(name) >= 0 {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "RegisterStage: stage with name %s already registered", name)
	}

	for _, dep := range stage.Requires() {
		if r.indexOf(dep) < 0 {
			return errors.Newf(errors.ErrCodeStageOrder, "RegisterStage: stage %s requires %s to be registered first", name, dep)
		}
	}

	r.stages = append(r.stages, stage)

	return nil
}

// GetStage retrieves a stage by name.
func (r *StageRegistryV1) GetStage(name types.IndicatorType) (Stage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(name)
	if i < 0 {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "GetStage: stage with name %s not found", name)
	}

	return r.stages[i], nil
}

// ListStages returns the registered stage names in execution order.
func (r *StageRegistryV1) ListStages() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, 0, len(r.stages))
	for _, stage := range r.stages {
		names = append(names, stage.Name())
	}

	return names
}

// Stages returns a snapshot of the registered stages in execution order.
func (r *StageRegistryV1) Stages() []Stage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.stages)
}

// RemoveStage removes a stage nothing else depends on.
func (r *StageRegistryV1) RemoveStage(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(name)
	if i < 0 {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "RemoveStage: stage with name %s not found", name)
	}

	for _, stage := range r.stages {
		if slices.Contains(stage.Requires(), name) {
			return errors.Newf(errors.ErrCodeStageOrder, "RemoveStage: stage %s is required by %s", name, stage.Name())
		}
	}

	r.stages = slices.Delete(r.stages, i, i+1)

	return nil
}

func (r *StageRegistryV1) indexOf(name types.IndicatorType) int {
	return slices.IndexFunc(r.stages, func(s Stage) bool { return s.Name() == name })
}
