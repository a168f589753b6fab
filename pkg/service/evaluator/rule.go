package evaluator

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/secmon-lab/crucible/pkg/domain/interfaces"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

// RuleBasedConfidence is the fixed confidence of keyword scoring
const RuleBasedConfidence = 0.3

const ruleBaseline = 5

// keywordRule adjusts a dimension score by delta when any keyword appears in the proposal
type keywordRule struct {
	keywords []string
	delta    int
}

// keywordRules is keyed by a substring of the dimension name
var keywordRules = []struct {
	match string
	rules []keywordRule
}{
	{
		match: "Market Viability",
		rules: []keywordRule{
			{keywords: []string{"revenue", "customers", "validated"}, delta: 2},
			{keywords: []string{"enterprise", "global", "platform"}, delta: 1},
			{keywords: []string{"niche", "small"}, delta: -2},
		},
	},
	{
		match: "Technical Feasibility",
		rules: []keywordRule{
			{keywords: []string{"proven", "existing", "simple"}, delta: 2},
			{keywords: []string{"ai", "blockchain", "quantum"}, delta: -2},
		},
	},
	{
		match: "Unit Economics",
		rules: []keywordRule{
			{keywords: []string{"saas", "subscription", "recurring"}, delta: 2},
			{keywords: []string{"free", "ad-supported"}, delta: -2},
		},
	},
	{
		match: "Competitive Moats",
		rules: []keywordRule{
			{keywords: []string{"network", "proprietary", "patent"}, delta: 2},
			{keywords: []string{"commodity"}, delta: -2},
		},
	},
	{
		match: "Scaling Bottlenecks",
		rules: []keywordRule{
			{keywords: []string{"automated", "platform", "cloud"}, delta: 2},
			{keywords: []string{"manual", "custom"}, delta: -2},
		},
	},
}

// RuleBased approximates an evaluator with keyword heuristics. It never fails
// and reports a low confidence so genuine evaluators outweigh it.
type RuleBased struct {
	name string
	role string
}

var _ interfaces.Evaluator = &RuleBased{}

// NewRuleBased creates a keyword evaluator that reports under the given identity
func NewRuleBased(id *model.EvaluatorIdentity) *RuleBased {
	return &RuleBased{name: id.Name, role: id.Role}
}

// Evaluate scores each dimension from the baseline, applying every matching
// keyword rule once. Keywords match whole words of the lower-cased text, so
// "ai" does not fire on "maintain" and "custom" does not fire on "customers".
func (x *RuleBased) Evaluate(ctx context.Context, proposal string, dimensions []types.Dimension) (*model.EvaluatorOutput, error) {
	words := tokenize(proposal)

	scores := make(map[types.Dimension]int, len(dimensions))
	for _, dim := range dimensions {
		scores[dim] = ruleScore(words, dim)
	}

	return model.NewEvaluatorOutput(model.EvaluatorOutput{
		Evaluator: x.name,
		Role:      x.role,
		Scores:    scores,
		FailureModes: []string{
			fmt.Sprintf("Rule-based evaluation - remote evaluator not available for %s", x.name),
			"Scores based on keyword analysis only",
		},
		Pivots: []string{
			"Enable remote evaluators for deeper multi-model analysis",
			"Provide more details in the proposal description",
		},
		Confidence: RuleBasedConfidence,
		Reasoning:  fmt.Sprintf("Rule-based %s evaluation using keyword analysis (remote evaluator unavailable)", x.role),
	}), nil
}

func ruleScore(words map[string]bool, dim types.Dimension) int {
	score := ruleBaseline
	for _, entry := range keywordRules {
		if !strings.Contains(string(dim), entry.match) {
			continue
		}
		for _, rule := range entry.rules {
			if containsAny(words, rule.keywords) {
				score += rule.delta
			}
		}
		break
	}
	return model.ClampScore(score)
}

func containsAny(words map[string]bool, keywords []string) bool {
	for _, kw := range keywords {
		if words[kw] {
			return true
		}
	}
	return false
}

// tokenize splits lower-cased text into words; hyphens stay inside a word
func tokenize(text string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	words := make(map[string]bool, len(fields))
	for _, f := range fields {
		words[f] = true
	}
	return words
}
