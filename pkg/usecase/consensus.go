package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

// Thresholds used while reconciling evaluator outputs
const (
	// RiskThreshold is the score below which a dimension contributes critical risks
	RiskThreshold = 6
	// RisksPerDimension caps the failure modes a weak dimension contributes
	RisksPerDimension = 2
	// MinorityDeviation is how far an evaluator's mean must sit from consensus to be reported
	MinorityDeviation = 3.0
	// RefinedPivots is the number of pivots folded into the refined proposal
	RefinedPivots = 2
)

// Labels used when no evaluator supplies one
const (
	fallbackPerspective   = "consensus"
	noEvaluationReasoning = "No evaluations available"
	emptyReasoning        = "See evaluator outputs"
	dissentPlaceholder    = "See detailed evaluation for reasoning."
)

// synthesizeDimensions builds one DimensionVerdict per dimension that has at
// least one contributor with non-zero weight, in dimension order.
func synthesizeDimensions(reg *model.Registry, outputs []*model.EvaluatorOutput, dims []types.Dimension) []*model.DimensionVerdict {
	verdicts := []*model.DimensionVerdict{}
	for _, dim := range dims {
		if v := synthesizeDimension(reg, dim, outputs); v != nil {
			verdicts = append(verdicts, v)
		}
	}
	return verdicts
}

// synthesizeDimension returns nil when nobody scored dim or all weights are zero
func synthesizeDimension(reg *model.Registry, dim types.Dimension, outputs []*model.EvaluatorOutput) *model.DimensionVerdict {
	var (
		contributors []*model.EvaluatorOutput
		weighted     float64
		totalWeight  float64
	)

	for _, out := range outputs {
		score, ok := out.Scores[dim]
		if !ok {
			continue
		}
		w := reg.Weight(out.Evaluator) * out.Confidence
		weighted += float64(score) * w
		totalWeight += w
		contributors = append(contributors, out)
	}

	if len(contributors) == 0 || totalWeight <= 0 {
		return nil
	}

	return &model.DimensionVerdict{
		Dimension:    dim,
		Score:        roundScore(weighted / totalWeight),
		Reasoning:    dimensionReasoning(reg.Priority(dim), contributors),
		FailureModes: unionFailureModes(contributors),
		Perspective:  dimensionPerspective(reg.Priority(dim), contributors),
		Evaluations:  contributors,
	}
}

// roundScore rounds half up and clamps to the score range
func roundScore(x float64) int {
	return model.ClampScore(int(math.Floor(x + 0.5)))
}

// dimensionPerspective picks the role of the most authoritative contributor
func dimensionPerspective(priority []string, contributors []*model.EvaluatorOutput) string {
	for _, name := range priority {
		for _, out := range contributors {
			if out.Evaluator == name {
				return out.Role
			}
		}
	}
	if len(contributors) > 0 {
		return contributors[0].Role
	}
	return fallbackPerspective
}

// dimensionReasoning picks the reasoning of the most authoritative contributor
// that gave any
func dimensionReasoning(priority []string, contributors []*model.EvaluatorOutput) string {
	if len(contributors) == 0 {
		return noEvaluationReasoning
	}
	for _, name := range priority {
		for _, out := range contributors {
			if out.Evaluator == name && out.Reasoning != "" {
				return model.TruncateRunes(out.Reasoning, model.MaxDimensionReasoning)
			}
		}
	}
	if contributors[0].Reasoning == "" {
		return emptyReasoning
	}
	return model.TruncateRunes(contributors[0].Reasoning, model.MaxDimensionReasoning)
}

func unionFailureModes(contributors []*model.EvaluatorOutput) []string {
	var all []string
	for _, out := range contributors {
		all = append(all, out.FailureModes...)
	}
	return firstUnique(all, model.MaxDimensionFailureModes)
}

// overallScore is the mean of the dimension scores, or 0 without any
func overallScore(verdicts []*model.DimensionVerdict) float64 {
	if len(verdicts) == 0 {
		return 0
	}
	var sum int
	for _, v := range verdicts {
		sum += v.Score
	}
	return float64(sum) / float64(len(verdicts))
}

// unifyPivots merges pivots across evaluators in evaluation order
func unifyPivots(outputs []*model.EvaluatorOutput) []string {
	var all []string
	for _, out := range outputs {
		all = append(all, out.Pivots...)
	}
	return firstUnique(all, model.MaxUnifiedPivots)
}

// extractRisks collects the leading failure modes of weak dimensions
func extractRisks(verdicts []*model.DimensionVerdict) []string {
	risks := []string{}
	for _, v := range verdicts {
		if v.Score >= RiskThreshold {
			continue
		}
		for i, mode := range v.FailureModes {
			if i >= RisksPerDimension {
				break
			}
			risks = append(risks, fmt.Sprintf("[%s] %s", v.Dimension, mode))
		}
	}
	if len(risks) > model.MaxCriticalRisks {
		risks = risks[:model.MaxCriticalRisks]
	}
	return risks
}

// findMinorityReport describes the first evaluator whose own mean sits at
// least MinorityDeviation away from consensus. Evaluators that scored nothing
// have no mean and are skipped. Returns "" when nobody qualifies.
func findMinorityReport(outputs []*model.EvaluatorOutput, consensus float64) string {
	for _, out := range outputs {
		mean, ok := out.MeanScore()
		if !ok || math.Abs(mean-consensus) < MinorityDeviation {
			continue
		}

		dissent := out.DissentingOpinion
		if dissent == "" {
			dissent = dissentPlaceholder
		}
		return fmt.Sprintf("%s (%s) strongly disagrees: Scored %.1f vs consensus %.1f. %s",
			out.Evaluator, out.Role, mean, consensus, dissent)
	}
	return ""
}

// refineProposal rewrites the proposal according to the decision
func refineProposal(proposal string, pivots []string, decision types.Decision) string {
	if decision == types.DecisionKill {
		return fmt.Sprintf("KILL: %s - Fundamental issues require complete rethink.", proposal)
	}
	if len(pivots) > 0 {
		n := min(len(pivots), RefinedPivots)
		return fmt.Sprintf("%s PIVOTS: %s", proposal, strings.Join(pivots[:n], " AND "))
	}
	return proposal
}

// firstUnique deduplicates items keeping first occurrences, up to limit
func firstUnique(items []string, limit int) []string {
	result := []string{}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if len(result) >= limit {
			break
		}
		if seen[item] {
			continue
		}
		seen[item] = true
		result = append(result, item)
	}
	return result
}
