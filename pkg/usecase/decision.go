package usecase

import (
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

// CriticallyLowScore is the highest dimension score counted as critically low
const CriticallyLowScore = 3

// Decide maps the overall score and the dimension verdicts to a Decision.
// With no verdicts the minimum score is taken as 0.
func Decide(overall float64, verdicts []*model.DimensionVerdict) types.Decision {
	minScore := 0
	criticallyLow := 0
	for i, v := range verdicts {
		if i == 0 || v.Score < minScore {
			minScore = v.Score
		}
		if v.Score <= CriticallyLowScore {
			criticallyLow++
		}
	}
	return decideFrom(overall, minScore, criticallyLow)
}

// decideFrom applies the decision table; the first matching row wins
func decideFrom(overall float64, minScore, criticallyLow int) types.Decision {
	switch {
	case overall >= 8 && minScore >= 6:
		return types.DecisionStrongProceed
	case overall >= 7 && minScore >= 4:
		return types.DecisionProceed
	case overall >= 6 && minScore >= 3:
		return types.DecisionProceedWithCaution
	case overall >= 5 && criticallyLow <= 1:
		return types.DecisionProceedWithCaution
	default:
		return types.DecisionKill
	}
}
