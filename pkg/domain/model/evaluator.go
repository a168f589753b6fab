package model

import (
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

// Bounds applied to every EvaluatorOutput before it is stored
const (
	MinScore           = 1
	MaxScore           = 10
	MaxFailureModes    = 5
	MaxPivots          = 3
	MaxReasoningLength = 500

	// DefaultWeight is the trust weight of an evaluator that does not declare one
	DefaultWeight = 1.0
)

// EvaluatorIdentity is the static configuration of one evaluator.
// It is built once when the registry is constructed and never mutated.
type EvaluatorIdentity struct {
	Name        string
	Role        string
	Focus       []string
	Weight      float64
	Description string
	Provider    types.Provider
	Model       string // empty means the provider's default model
}

// EvaluatorOutput is the judgment of one evaluator for one run
type EvaluatorOutput struct {
	Evaluator         string                  `json:"evaluator"`
	Role              string                  `json:"role"`
	Scores            map[types.Dimension]int `json:"scores"`
	FailureModes      []string                `json:"failure_modes"`
	Pivots            []string                `json:"pivots"`
	Confidence        float64                 `json:"confidence"`
	DissentingOpinion string                  `json:"dissenting_opinion,omitempty"`
	Reasoning         string                  `json:"reasoning"`
}

// ClampScore bounds a raw score to [MinScore, MaxScore]
func ClampScore(raw int) int {
	return max(MinScore, min(MaxScore, raw))
}

// NewEvaluatorOutput returns a copy of o with every bound enforced: scores are
// clamped, lists and reasoning are truncated and confidence is kept in [0,1].
// Out-of-range values are corrected, never rejected.
func NewEvaluatorOutput(o EvaluatorOutput) *EvaluatorOutput {
	scores := make(map[types.Dimension]int, len(o.Scores))
	for dim, score := range o.Scores {
		scores[dim] = ClampScore(score)
	}

	return &EvaluatorOutput{
		Evaluator:         o.Evaluator,
		Role:              o.Role,
		Scores:            scores,
		FailureModes:      truncate(o.FailureModes, MaxFailureModes),
		Pivots:            truncate(o.Pivots, MaxPivots),
		Confidence:        max(0, min(1, o.Confidence)),
		DissentingOpinion: o.DissentingOpinion,
		Reasoning:         TruncateRunes(o.Reasoning, MaxReasoningLength),
	}
}

// MeanScore returns the evaluator's own mean over the dimensions it scored.
// ok is false when it scored none.
func (o *EvaluatorOutput) MeanScore() (mean float64, ok bool) {
	if len(o.Scores) == 0 {
		return 0, false
	}
	var sum int
	for _, s := range o.Scores {
		sum += s
	}
	return float64(sum) / float64(len(o.Scores)), true
}

// TruncateRunes cuts s to at most n runes
func TruncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func truncate(items []string, n int) []string {
	out := make([]string, 0, min(len(items), n))
	for i := 0; i < len(items) && i < n; i++ {
		out = append(out, items[i])
	}
	return out
}
