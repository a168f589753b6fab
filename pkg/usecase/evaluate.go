package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/domain/interfaces"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
	"github.com/secmon-lab/crucible/pkg/service/evaluator"
	"github.com/secmon-lab/crucible/pkg/utils/logging"
)

// EvaluateInput is one evaluation request
type EvaluateInput struct {
	Proposal string

	// Evaluators names the registered evaluators to consult. nil selects all
	// of them; an empty non-nil slice selects none.
	Evaluators []string
}

// EvaluateUseCase runs a proposal past the evaluator panel and reconciles the
// results into a RunVerdict. It performs no I/O of its own beyond calling the
// evaluators, and is safe for concurrent use.
type EvaluateUseCase struct {
	registry    *model.Registry
	evaluators  map[string]interfaces.Evaluator
	dimensions  []types.Dimension
	concurrency int
	now         func() time.Time
}

// EvaluateOption is a functional option for EvaluateUseCase
type EvaluateOption func(*EvaluateUseCase)

// WithEvaluateConcurrency caps concurrent evaluator calls; n <= 0 means no cap
func WithEvaluateConcurrency(n int) EvaluateOption {
	return func(uc *EvaluateUseCase) {
		uc.concurrency = n
	}
}

// WithEvaluateDimensions overrides the scored dimensions. An empty list is ignored.
func WithEvaluateDimensions(dims []types.Dimension) EvaluateOption {
	return func(uc *EvaluateUseCase) {
		if len(dims) > 0 {
			uc.dimensions = append([]types.Dimension(nil), dims...)
		}
	}
}

// WithClock replaces the time source used for CreatedAt
func WithClock(now func() time.Time) EvaluateOption {
	return func(uc *EvaluateUseCase) {
		uc.now = now
	}
}

// NewEvaluateUseCase creates an EvaluateUseCase. Every registered evaluator
// missing from evaluators is backed by keyword rules under its own identity.
// A nil registry means the built-in panel.
func NewEvaluateUseCase(registry *model.Registry, evaluators map[string]interfaces.Evaluator, opts ...EvaluateOption) *EvaluateUseCase {
	if registry == nil {
		registry = model.DefaultRegistry()
	}

	uc := &EvaluateUseCase{
		registry:   registry,
		evaluators: make(map[string]interfaces.Evaluator, len(evaluators)),
		dimensions: types.DefaultDimensions(),
		now:        time.Now,
	}

	for _, id := range registry.List() {
		if ev, ok := evaluators[id.Name]; ok && ev != nil {
			uc.evaluators[id.Name] = ev
			continue
		}
		uc.evaluators[id.Name] = evaluator.NewRuleBased(id)
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Evaluate scores the proposal and returns the reconciled verdict. Evaluator
// failures never fail the run; the only errors are an empty proposal, an
// unknown evaluator name, and cancellation of ctx.
func (uc *EvaluateUseCase) Evaluate(ctx context.Context, input EvaluateInput) (*model.RunVerdict, error) {
	if strings.TrimSpace(input.Proposal) == "" {
		return nil, goerr.Wrap(ErrEmptyProposal, "proposal text is required")
	}

	selected, err := uc.registry.Select(input.Evaluators)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to select evaluators")
	}

	logger := logging.From(ctx)
	logger.Info("Starting evaluation",
		"evaluators", len(selected),
		"dimensions", len(uc.dimensions),
	)

	tasks := make([]evaluatorTask, 0, len(selected))
	for _, id := range selected {
		tasks = append(tasks, evaluatorTask{id: id, evaluator: uc.evaluators[id.Name]})
	}

	outputs, err := uc.fanOut(ctx, input.Proposal, tasks)
	if err != nil {
		return nil, err
	}

	debates := detectDebates(outputs, uc.dimensions)
	for _, d := range debates {
		logger.Debug("Evaluators disagree", "debate", d)
	}

	verdicts := synthesizeDimensions(uc.registry, outputs, uc.dimensions)
	overall := overallScore(verdicts)
	decision := Decide(overall, verdicts)
	pivots := unifyPivots(outputs)

	verdict := &model.RunVerdict{
		ID:                model.NewVerdictID(),
		Proposal:          input.Proposal,
		ConsensusScore:    overall,
		Decision:          decision,
		Evaluations:       outputs,
		DimensionVerdicts: verdicts,
		Debates:           debates,
		Pivots:            pivots,
		Experiments:       generateExperiments(verdicts),
		CriticalRisks:     extractRisks(verdicts),
		MinorityReport:    findMinorityReport(outputs, overall),
		RefinedProposal:   refineProposal(input.Proposal, pivots, decision),
		CreatedAt:         uc.now().UTC(),
	}

	logger.Info("Evaluation complete",
		"verdictID", verdict.ID,
		"consensusScore", overall,
		"decision", decision,
		"succeeded", len(outputs),
		"requested", len(selected),
		"debates", len(debates),
	)

	return verdict, nil
}
