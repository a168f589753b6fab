package usecase_test

import (
	"fmt"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
	"github.com/secmon-lab/crucible/pkg/usecase"
)

func newOutput(name string, confidence float64, scores map[types.Dimension]int) *model.EvaluatorOutput {
	return model.NewEvaluatorOutput(model.EvaluatorOutput{
		Evaluator:  name,
		Role:       name + "_role",
		Scores:     scores,
		Confidence: confidence,
		Reasoning:  name + " reasoning",
	})
}

func newTestRegistry(t *testing.T) *model.Registry {
	t.Helper()
	reg, err := model.NewRegistry([]model.EvaluatorIdentity{
		{Name: "alpha", Role: "alpha_role", Weight: 1.0},
		{Name: "beta", Role: "beta_role", Weight: 1.0},
		{Name: "gamma", Role: "gamma_role", Weight: 2.0},
	}, map[types.Dimension][]string{
		types.DimensionMarketViability: {"gamma", "beta"},
	})
	gt.NoError(t, err).Required()
	return reg
}

func TestDetectDebates(t *testing.T) {
	dim := types.DimensionMarketViability
	dims := []types.Dimension{dim}

	t.Run("spread of 3 is a debate", func(t *testing.T) {
		outputs := []*model.EvaluatorOutput{
			newOutput("alpha", 1, map[types.Dimension]int{dim: 5}),
			newOutput("beta", 1, map[types.Dimension]int{dim: 5}),
			newOutput("gamma", 1, map[types.Dimension]int{dim: 8}),
		}
		debates := usecase.DetectDebates(outputs, dims)
		gt.Array(t, debates).Length(1)
		gt.Value(t, debates[0]).Equal("Market Viability: Evaluators disagree (range 5-8, avg 6.0) - requires deeper analysis")
	})

	t.Run("spread of 2 is not", func(t *testing.T) {
		outputs := []*model.EvaluatorOutput{
			newOutput("alpha", 1, map[types.Dimension]int{dim: 5}),
			newOutput("beta", 1, map[types.Dimension]int{dim: 6}),
			newOutput("gamma", 1, map[types.Dimension]int{dim: 7}),
		}
		gt.Array(t, usecase.DetectDebates(outputs, dims)).Length(0)
	})

	t.Run("single score cannot debate", func(t *testing.T) {
		outputs := []*model.EvaluatorOutput{
			newOutput("alpha", 1, map[types.Dimension]int{dim: 1}),
			newOutput("beta", 1, map[types.Dimension]int{types.DimensionUnitEconomics: 10}),
		}
		gt.Array(t, usecase.DetectDebates(outputs, types.DefaultDimensions())).Length(0)
	})
}

func TestSynthesizeDimension(t *testing.T) {
	reg := newTestRegistry(t)
	dim := types.DimensionMarketViability

	t.Run("equal weights average 4 and 8 to 6", func(t *testing.T) {
		outputs := []*model.EvaluatorOutput{
			newOutput("alpha", 0.5, map[types.Dimension]int{dim: 4}),
			newOutput("beta", 0.5, map[types.Dimension]int{dim: 8}),
		}
		v := usecase.SynthesizeDimension(reg, dim, outputs)
		gt.Value(t, v).NotNil()
		gt.Value(t, v.Score).Equal(6)
		gt.Array(t, v.Evaluations).Length(2)
	})

	t.Run("trust weight times confidence", func(t *testing.T) {
		// gamma: 2.0*1.0 on 9, alpha: 1.0*0.5 on 1 -> (18+0.5)/2.5 = 7.4
		outputs := []*model.EvaluatorOutput{
			newOutput("alpha", 0.5, map[types.Dimension]int{dim: 1}),
			newOutput("gamma", 1.0, map[types.Dimension]int{dim: 9}),
		}
		v := usecase.SynthesizeDimension(reg, dim, outputs)
		gt.Value(t, v.Score).Equal(7)
	})

	t.Run("zero total weight skips the dimension", func(t *testing.T) {
		outputs := []*model.EvaluatorOutput{
			newOutput("alpha", 0, map[types.Dimension]int{dim: 9}),
			newOutput("beta", 0, map[types.Dimension]int{dim: 2}),
		}
		v := usecase.SynthesizeDimension(reg, dim, outputs)
		gt.Value(t, v).Nil()
	})

	t.Run("no contributors skips the dimension", func(t *testing.T) {
		outputs := []*model.EvaluatorOutput{
			newOutput("alpha", 1, map[types.Dimension]int{types.DimensionUnitEconomics: 9}),
		}
		gt.Value(t, usecase.SynthesizeDimension(reg, dim, outputs)).Nil()
	})

	t.Run("unregistered evaluator counts with default weight", func(t *testing.T) {
		outputs := []*model.EvaluatorOutput{
			newOutput("stranger", 1, map[types.Dimension]int{dim: 2}),
			newOutput("alpha", 1, map[types.Dimension]int{dim: 6}),
		}
		gt.Value(t, usecase.SynthesizeDimension(reg, dim, outputs).Score).Equal(4)
	})

	t.Run("perspective and reasoning follow priority", func(t *testing.T) {
		outputs := []*model.EvaluatorOutput{
			newOutput("alpha", 1, map[types.Dimension]int{dim: 5}),
			newOutput("beta", 1, map[types.Dimension]int{dim: 5}),
		}
		v := usecase.SynthesizeDimension(reg, dim, outputs)
		gt.Value(t, v.Perspective).Equal("beta_role")
		gt.Value(t, v.Reasoning).Equal("beta reasoning")
	})

	t.Run("priority evaluator without reasoning is passed over for reasoning only", func(t *testing.T) {
		silent := newOutput("gamma", 1, map[types.Dimension]int{dim: 5})
		silent.Reasoning = ""
		outputs := []*model.EvaluatorOutput{
			newOutput("alpha", 1, map[types.Dimension]int{dim: 5}),
			newOutput("beta", 1, map[types.Dimension]int{dim: 5}),
			silent,
		}
		v := usecase.SynthesizeDimension(reg, dim, outputs)
		gt.Value(t, v.Perspective).Equal("gamma_role")
		gt.Value(t, v.Reasoning).Equal("beta reasoning")
	})

	t.Run("falls back to first contributor", func(t *testing.T) {
		other := types.DimensionScalingBottlenecks
		outputs := []*model.EvaluatorOutput{
			newOutput("alpha", 1, map[types.Dimension]int{other: 5}),
			newOutput("beta", 1, map[types.Dimension]int{other: 5}),
		}
		v := usecase.SynthesizeDimension(reg, other, outputs)
		gt.Value(t, v.Perspective).Equal("alpha_role")
		gt.Value(t, v.Reasoning).Equal("alpha reasoning")
	})

	t.Run("reasoning is truncated", func(t *testing.T) {
		long := newOutput("beta", 1, map[types.Dimension]int{dim: 5})
		long.Reasoning = fmt.Sprintf("%0300d", 0)
		v := usecase.SynthesizeDimension(reg, dim, []*model.EvaluatorOutput{long})
		gt.Value(t, len(v.Reasoning)).Equal(model.MaxDimensionReasoning)
	})

	t.Run("failure modes are unique and capped", func(t *testing.T) {
		a := newOutput("alpha", 1, map[types.Dimension]int{dim: 5})
		a.FailureModes = []string{"churn", "cac", "churn"}
		b := newOutput("beta", 1, map[types.Dimension]int{dim: 5})
		b.FailureModes = []string{"cac", "regulation", "competition"}
		v := usecase.SynthesizeDimension(reg, dim, []*model.EvaluatorOutput{a, b})
		gt.Value(t, v.FailureModes).Equal([]string{"churn", "cac", "regulation"})
	})
}

func TestRoundScore(t *testing.T) {
	gt.Value(t, usecase.RoundScore(6.5)).Equal(7)
	gt.Value(t, usecase.RoundScore(6.49)).Equal(6)
	gt.Value(t, usecase.RoundScore(7.5)).Equal(8)
	gt.Value(t, usecase.RoundScore(0.2)).Equal(1)
	gt.Value(t, usecase.RoundScore(12)).Equal(10)
}

func TestOverallScore(t *testing.T) {
	gt.Value(t, usecase.OverallScore(nil)).Equal(0.0)
	gt.Value(t, usecase.OverallScore([]*model.DimensionVerdict{{Score: 4}, {Score: 7}})).Equal(5.5)
}

func TestUnifyPivots(t *testing.T) {
	a := &model.EvaluatorOutput{Pivots: []string{"p1", "p2"}}
	b := &model.EvaluatorOutput{Pivots: []string{"p2", "p3", "p4"}}
	gt.Value(t, usecase.UnifyPivots([]*model.EvaluatorOutput{a, b})).Equal([]string{"p1", "p2", "p3"})
	gt.Array(t, usecase.UnifyPivots(nil)).Length(0)
}

func TestExtractRisks(t *testing.T) {
	verdicts := []*model.DimensionVerdict{
		{Dimension: types.DimensionMarketViability, Score: 5, FailureModes: []string{"m1", "m2", "m3"}},
		{Dimension: types.DimensionTechnicalFeasibility, Score: 6, FailureModes: []string{"t1"}},
		{Dimension: types.DimensionUnitEconomics, Score: 2, FailureModes: []string{"u1", "u2"}},
		{Dimension: types.DimensionCompetitiveMoats, Score: 1, FailureModes: []string{"c1", "c2"}},
	}
	risks := usecase.ExtractRisks(verdicts)
	gt.Value(t, risks).Equal([]string{
		"[Market Viability] m1",
		"[Market Viability] m2",
		"[Unit Economics] u1",
		"[Unit Economics] u2",
		"[Competitive Moats] c1",
	})
}

func TestGenerateExperiments(t *testing.T) {
	t.Run("weakest three with ties in dimension order", func(t *testing.T) {
		verdicts := []*model.DimensionVerdict{
			{Dimension: types.DimensionMarketViability, Score: 7},
			{Dimension: types.DimensionTechnicalFeasibility, Score: 4},
			{Dimension: types.DimensionUnitEconomics, Score: 8},
			{Dimension: types.DimensionCompetitiveMoats, Score: 4},
			{Dimension: types.DimensionScalingBottlenecks, Score: 2},
		}
		exps := usecase.GenerateExperiments(verdicts)
		gt.Array(t, exps).Length(model.ExperimentCount)
		gt.Value(t, exps[0].Title).Equal("Scaling Simulation")
		gt.Value(t, exps[1].Title).Equal("Technical Proof of Concept")
		gt.Value(t, exps[2].Title).Equal("Competitive Differentiation Test")
	})

	t.Run("padded to three", func(t *testing.T) {
		exps := usecase.GenerateExperiments([]*model.DimensionVerdict{
			{Dimension: types.DimensionUnitEconomics, Score: 3},
		})
		gt.Array(t, exps).Length(3)
		gt.Value(t, exps[0].Title).Equal("Unit Economics Stress Test")
		gt.Value(t, exps[1].Title).Equal("Assumption Validation")
		gt.Value(t, exps[2].Title).Equal("Assumption Validation")
	})

	t.Run("no verdicts", func(t *testing.T) {
		exps := usecase.GenerateExperiments(nil)
		gt.Array(t, exps).Length(3)
		for _, e := range exps {
			gt.String(t, e.Title).NotEqual("")
			gt.String(t, e.Hypothesis).NotEqual("")
			gt.String(t, e.Method).NotEqual("")
			gt.String(t, e.SuccessCriteria).NotEqual("")
		}
	})
}

func TestFindMinorityReport(t *testing.T) {
	dims := types.DefaultDimensions()
	all := func(score int) map[types.Dimension]int {
		scores := make(map[types.Dimension]int, len(dims))
		for _, d := range dims {
			scores[d] = score
		}
		return scores
	}

	t.Run("mean 9 against consensus 3", func(t *testing.T) {
		outputs := []*model.EvaluatorOutput{
			newOutput("alpha", 1, all(3)),
			newOutput("beta", 1, all(9)),
		}
		report := usecase.FindMinorityReport(outputs, 3)
		gt.Value(t, report).Equal("beta (beta_role) strongly disagrees: Scored 9.0 vs consensus 3.0. See detailed evaluation for reasoning.")
	})

	t.Run("dissenting opinion is quoted", func(t *testing.T) {
		dissenter := newOutput("gamma", 1, all(1))
		dissenter.DissentingOpinion = "This is doomed."
		report := usecase.FindMinorityReport([]*model.EvaluatorOutput{dissenter}, 4.5)
		gt.String(t, report).Contains("gamma (gamma_role) strongly disagrees: Scored 1.0 vs consensus 4.5. This is doomed.")
	})

	t.Run("first qualifying evaluator wins", func(t *testing.T) {
		outputs := []*model.EvaluatorOutput{
			newOutput("alpha", 1, all(1)),
			newOutput("beta", 1, all(10)),
		}
		gt.String(t, usecase.FindMinorityReport(outputs, 5.5)).Contains("alpha")
	})

	t.Run("deviation below 3 is not reported", func(t *testing.T) {
		outputs := []*model.EvaluatorOutput{newOutput("alpha", 1, all(8))}
		gt.Value(t, usecase.FindMinorityReport(outputs, 5.5)).Equal("")
	})

	t.Run("evaluator without scores is skipped", func(t *testing.T) {
		outputs := []*model.EvaluatorOutput{newOutput("alpha", 1, nil)}
		gt.Value(t, usecase.FindMinorityReport(outputs, 7)).Equal("")
	})
}

func TestRefineProposal(t *testing.T) {
	gt.Value(t, usecase.RefineProposal("idea", []string{"a", "b", "c"}, types.DecisionProceed)).
		Equal("idea PIVOTS: a AND b")
	gt.Value(t, usecase.RefineProposal("idea", []string{"a"}, types.DecisionProceedWithCaution)).
		Equal("idea PIVOTS: a")
	gt.Value(t, usecase.RefineProposal("idea", nil, types.DecisionStrongProceed)).
		Equal("idea")
	gt.Value(t, usecase.RefineProposal("idea", []string{"a"}, types.DecisionKill)).
		Equal("KILL: idea - Fundamental issues require complete rethink.")
}
