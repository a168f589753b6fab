package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/domain/model"
)

type verdictRepository struct {
	mu       sync.RWMutex
	verdicts map[model.VerdictID]*model.RunVerdict
}

func newVerdictRepository() *verdictRepository {
	return &verdictRepository{
		verdicts: make(map[model.VerdictID]*model.RunVerdict),
	}
}

func copyOutput(o *model.EvaluatorOutput) *model.EvaluatorOutput {
	return &model.EvaluatorOutput{
		Evaluator:         o.Evaluator,
		Role:              o.Role,
		Scores:            maps.Clone(o.Scores),
		FailureModes:      slices.Clone(o.FailureModes),
		Pivots:            slices.Clone(o.Pivots),
		Confidence:        o.Confidence,
		DissentingOpinion: o.DissentingOpinion,
		Reasoning:         o.Reasoning,
	}
}

func copyOutputs(outputs []*model.EvaluatorOutput) []*model.EvaluatorOutput {
	result := make([]*model.EvaluatorOutput, 0, len(outputs))
	for _, o := range outputs {
		result = append(result, copyOutput(o))
	}
	return result
}

func copyVerdict(v *model.RunVerdict) *model.RunVerdict {
	dims := make([]*model.DimensionVerdict, 0, len(v.DimensionVerdicts))
	for _, d := range v.DimensionVerdicts {
		dims = append(dims, &model.DimensionVerdict{
			Dimension:    d.Dimension,
			Score:        d.Score,
			Reasoning:    d.Reasoning,
			FailureModes: slices.Clone(d.FailureModes),
			Perspective:  d.Perspective,
			Evaluations:  copyOutputs(d.Evaluations),
		})
	}

	return &model.RunVerdict{
		ID:                v.ID,
		Proposal:          v.Proposal,
		ConsensusScore:    v.ConsensusScore,
		Decision:          v.Decision,
		Evaluations:       copyOutputs(v.Evaluations),
		DimensionVerdicts: dims,
		Debates:           slices.Clone(v.Debates),
		Pivots:            slices.Clone(v.Pivots),
		Experiments:       slices.Clone(v.Experiments),
		CriticalRisks:     slices.Clone(v.CriticalRisks),
		MinorityReport:    v.MinorityReport,
		RefinedProposal:   v.RefinedProposal,
		CreatedAt:         v.CreatedAt,
	}
}

func (r *verdictRepository) Put(ctx context.Context, verdict *model.RunVerdict) error {
	if verdict.ID == "" {
		return goerr.New("verdict ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.verdicts[verdict.ID] = copyVerdict(verdict)
	return nil
}

func (r *verdictRepository) Get(ctx context.Context, id model.VerdictID) (*model.RunVerdict, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.verdicts[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrVerdictNotFound, "verdict not found", goerr.V("verdictID", id))
	}
	return copyVerdict(v), nil
}

func (r *verdictRepository) List(ctx context.Context, limit int) ([]*model.RunVerdict, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := make([]*model.RunVerdict, 0, len(r.verdicts))
	for _, v := range r.verdicts {
		sorted = append(sorted, v)
	}

	// Sort by CreatedAt descending; IDs are time ordered and break ties
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	result := make([]*model.RunVerdict, 0, len(sorted))
	for _, v := range sorted {
		result = append(result, copyVerdict(v))
	}
	return result, nil
}
