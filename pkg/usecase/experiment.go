package usecase

import (
	"slices"
	"strings"

	"github.com/secmon-lab/crucible/pkg/domain/model"
)

// experimentTemplates is matched against the dimension name in order
var experimentTemplates = []struct {
	match      string
	experiment model.Experiment
}{
	{
		match: "Market",
		experiment: model.Experiment{
			Title:           "Customer Discovery Sprint",
			Hypothesis:      "Target customers have urgent need and willingness to pay",
			Method:          "Interview 20-30 target customers, measure genuine interest and LOI commitment",
			SuccessCriteria: "50%+ express strong interest, 20%+ willing to prepay or sign LOI",
			EstimatedCost:   "$500-2000",
			EstimatedTime:   "2-3 weeks",
		},
	},
	{
		match: "Technical",
		experiment: model.Experiment{
			Title:           "Technical Proof of Concept",
			Hypothesis:      "Core technology delivers promised value at acceptable cost/performance",
			Method:          "Build minimal prototype of hardest component, measure performance",
			SuccessCriteria: "Achieves 80%+ of promised capability within 2x cost budget",
			EstimatedCost:   "$2000-10000",
			EstimatedTime:   "2-4 weeks",
		},
	},
	{
		match: "Economics",
		experiment: model.Experiment{
			Title:           "Unit Economics Stress Test",
			Hypothesis:      "Unit economics are profitable at scale with conservative assumptions",
			Method:          "Build detailed financial model, stress test key variables",
			SuccessCriteria: "LTV/CAC > 3, payback < 18 months, positive unit economics by month 12",
			EstimatedCost:   "$500-1000",
			EstimatedTime:   "1 week",
		},
	},
	{
		match: "Moats",
		experiment: model.Experiment{
			Title:           "Competitive Differentiation Test",
			Hypothesis:      "Our unique value proposition is defensible and meaningful",
			Method:          "A/B test our pitch vs competitor alternatives with target customers",
			SuccessCriteria: "60%+ choose our approach when presented with alternatives",
			EstimatedCost:   "$1000-3000",
			EstimatedTime:   "2 weeks",
		},
	},
	{
		match: "Scaling",
		experiment: model.Experiment{
			Title:           "Scaling Simulation",
			Hypothesis:      "Operations and costs scale sub-linearly with growth",
			Method:          "Model operational requirements at 10x and 100x scale",
			SuccessCriteria: "Variable costs < 30% of revenue at scale",
			EstimatedCost:   "$500-2000",
			EstimatedTime:   "1-2 weeks",
		},
	},
}

// assumptionValidation pads the experiment list to ExperimentCount
var assumptionValidation = model.Experiment{
	Title:           "Assumption Validation",
	Hypothesis:      "Critical business assumptions hold under scrutiny",
	Method:          "Identify and systematically test top 3 riskiest assumptions",
	SuccessCriteria: "All critical assumptions validated or alternative paths identified",
	EstimatedCost:   "$1000-5000",
	EstimatedTime:   "2-4 weeks",
}

// generateExperiments proposes one experiment for each of the weakest
// dimensions, ties going to the earlier dimension, and always returns exactly
// model.ExperimentCount experiments.
func generateExperiments(verdicts []*model.DimensionVerdict) []model.Experiment {
	weakest := slices.Clone(verdicts)
	slices.SortStableFunc(weakest, func(a, b *model.DimensionVerdict) int {
		return a.Score - b.Score
	})
	if len(weakest) > model.ExperimentCount {
		weakest = weakest[:model.ExperimentCount]
	}

	experiments := make([]model.Experiment, 0, model.ExperimentCount)
	for _, v := range weakest {
		if exp, ok := experimentFor(string(v.Dimension)); ok {
			experiments = append(experiments, exp)
		}
	}
	for len(experiments) < model.ExperimentCount {
		experiments = append(experiments, assumptionValidation)
	}
	return experiments
}

func experimentFor(dimension string) (model.Experiment, bool) {
	for _, tmpl := range experimentTemplates {
		if strings.Contains(dimension, tmpl.match) {
			return tmpl.experiment, true
		}
	}
	return model.Experiment{}, false
}
