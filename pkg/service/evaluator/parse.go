package evaluator

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

// DefaultResponseConfidence is used when a response omits its confidence
const DefaultResponseConfidence = 0.8

// DegradedConfidence is reported for a response that could not be decoded
const DegradedConfidence = 0.5

// llmResponse is the structured output requested from remote evaluators
type llmResponse struct {
	Scores            map[string]float64 `json:"scores"`
	FailureModes      []string           `json:"failure_modes"`
	Pivots            []string           `json:"pivots"`
	Confidence        *float64           `json:"confidence"`
	Reasoning         string             `json:"reasoning"`
	DissentingOpinion *string            `json:"dissenting_opinion"`
}

// ParseResponse converts free-text evaluator output into an EvaluatorOutput.
// A fenced code block is used when present, otherwise the whole text. If the
// payload cannot be decoded a degraded output is returned instead; this
// function never fails.
//
// Score keys are matched to dims ignoring case, spaces and underscores; keys
// naming no requested dimension are dropped. Fractional scores round half up.
func ParseResponse(id *model.EvaluatorIdentity, dims []types.Dimension, raw string) *model.EvaluatorOutput {
	var resp llmResponse
	if err := json.Unmarshal([]byte(extractPayload(raw)), &resp); err != nil {
		return model.NewEvaluatorOutput(model.EvaluatorOutput{
			Evaluator:    id.Name,
			Role:         id.Role,
			Scores:       map[types.Dimension]int{},
			FailureModes: []string{"Failed to parse model response"},
			Confidence:   DegradedConfidence,
			Reasoning:    "Error parsing response: " + err.Error(),
		})
	}

	canonical := make(map[string]types.Dimension, len(dims))
	for _, dim := range dims {
		canonical[normalizeKey(string(dim))] = dim
	}

	scores := make(map[types.Dimension]int, len(resp.Scores))
	for key, value := range resp.Scores {
		dim, ok := canonical[normalizeKey(key)]
		if !ok {
			continue
		}
		// bound before converting; out-of-range floats have no defined int value
		bounded := max(float64(model.MinScore), min(float64(model.MaxScore), value))
		scores[dim] = model.ClampScore(int(math.Floor(bounded + 0.5)))
	}

	confidence := DefaultResponseConfidence
	if resp.Confidence != nil {
		confidence = *resp.Confidence
	}

	var dissent string
	if resp.DissentingOpinion != nil {
		dissent = strings.TrimSpace(*resp.DissentingOpinion)
	}

	return model.NewEvaluatorOutput(model.EvaluatorOutput{
		Evaluator:         id.Name,
		Role:              id.Role,
		Scores:            scores,
		FailureModes:      resp.FailureModes,
		Pivots:            resp.Pivots,
		Confidence:        confidence,
		DissentingOpinion: dissent,
		Reasoning:         resp.Reasoning,
	})
}

// extractPayload returns the contents of the first fenced block, preferring a
// block tagged json, or the trimmed text when there is no fence.
func extractPayload(raw string) string {
	if start := strings.Index(raw, "```json"); start >= 0 {
		return fencedBody(raw, start+len("```json"))
	}
	if start := strings.Index(raw, "```"); start >= 0 {
		return fencedBody(raw, start+len("```"))
	}
	return strings.TrimSpace(raw)
}

func fencedBody(raw string, from int) string {
	body := raw[from:]
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func normalizeKey(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "")
}
