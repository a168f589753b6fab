package usecase

import (
	"fmt"

	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

// DebateSpread is the score spread at which evaluators are said to disagree
const DebateSpread = 3

// detectDebates reports every dimension whose contributed scores spread by at
// least DebateSpread. Dimensions with fewer than two scores are skipped.
func detectDebates(outputs []*model.EvaluatorOutput, dims []types.Dimension) []string {
	debates := []string{}

	for _, dim := range dims {
		var scores []int
		for _, out := range outputs {
			if s, ok := out.Scores[dim]; ok {
				scores = append(scores, s)
			}
		}
		if len(scores) < 2 {
			continue
		}

		lo, hi, sum := scores[0], scores[0], 0
		for _, s := range scores {
			lo = min(lo, s)
			hi = max(hi, s)
			sum += s
		}
		if hi-lo < DebateSpread {
			continue
		}

		mean := float64(sum) / float64(len(scores))
		debates = append(debates, fmt.Sprintf(
			"%s: Evaluators disagree (range %d-%d, avg %.1f) - requires deeper analysis",
			dim, lo, hi, mean))
	}

	return debates
}
