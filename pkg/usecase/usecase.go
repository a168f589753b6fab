package usecase

import (
	"github.com/secmon-lab/crucible/pkg/domain/interfaces"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

type UseCases struct {
	registry    *model.Registry
	evaluators  map[string]interfaces.Evaluator
	repo        interfaces.VerdictRepository
	dimensions  []types.Dimension
	concurrency int

	Evaluate *EvaluateUseCase
	Verdict  *VerdictUseCase
}

type Option func(*UseCases)

// WithEvaluator binds an implementation to a registered evaluator name.
// Registered evaluators without an implementation are scored by keyword rules.
func WithEvaluator(name string, evaluator interfaces.Evaluator) Option {
	return func(uc *UseCases) {
		uc.evaluators[name] = evaluator
	}
}

// WithEvaluators binds several implementations at once
func WithEvaluators(evaluators map[string]interfaces.Evaluator) Option {
	return func(uc *UseCases) {
		for name, ev := range evaluators {
			uc.evaluators[name] = ev
		}
	}
}

// WithConcurrency caps how many evaluators run at the same time. Zero or
// negative means no cap.
func WithConcurrency(n int) Option {
	return func(uc *UseCases) {
		uc.concurrency = n
	}
}

// WithDimensions overrides the scored dimensions
func WithDimensions(dims []types.Dimension) Option {
	return func(uc *UseCases) {
		uc.dimensions = dims
	}
}

// WithVerdictRepository enables saving and listing verdicts
func WithVerdictRepository(repo interfaces.VerdictRepository) Option {
	return func(uc *UseCases) {
		uc.repo = repo
	}
}

func New(registry *model.Registry, opts ...Option) *UseCases {
	uc := &UseCases{
		registry:   registry,
		evaluators: make(map[string]interfaces.Evaluator),
		dimensions: types.DefaultDimensions(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Evaluate = NewEvaluateUseCase(registry, uc.evaluators,
		WithEvaluateConcurrency(uc.concurrency),
		WithEvaluateDimensions(uc.dimensions),
	)
	uc.Verdict = NewVerdictUseCase(uc.repo)

	return uc
}
