package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
	"github.com/secmon-lab/crucible/pkg/utils/safe"
)

// Output formats for the evaluate command
const (
	formatText = "text"
	formatJSON = "json"
)

const ruleWidth = 70

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.Bold)
	dimColor     = color.New(color.Faint)
	riskColor    = color.New(color.FgRed)
)

func decisionColor(d types.Decision) *color.Color {
	switch d {
	case types.DecisionKill:
		return color.New(color.FgRed, color.Bold)
	case types.DecisionProceedWithCaution:
		return color.New(color.FgYellow, color.Bold)
	case types.DecisionStrongProceed:
		return color.New(color.FgGreen, color.Bold, color.Underline)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func renderVerdict(ctx context.Context, w io.Writer, format string, verdict *model.RunVerdict) error {
	switch format {
	case formatJSON:
		return renderJSON(ctx, w, verdict)
	case formatText, "":
		renderText(ctx, w, verdict)
		return nil
	default:
		return goerr.New("unsupported output format", goerr.V("format", format))
	}
}

func renderJSON(ctx context.Context, w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal verdict")
	}
	safe.Write(ctx, w, append(data, '\n'))
	return nil
}

func renderText(ctx context.Context, w io.Writer, v *model.RunVerdict) {
	var buf bytes.Buffer
	heavy := strings.Repeat("=", ruleWidth)
	light := strings.Repeat("-", ruleWidth)

	section := func(title string) {
		fmt.Fprintf(&buf, "\n%s\n", light)
		headingColor.Fprintln(&buf, title)
		fmt.Fprintln(&buf, light)
	}

	fmt.Fprintln(&buf, heavy)
	headingColor.Fprintln(&buf, "CRUCIBLE EVALUATION REPORT")
	fmt.Fprintln(&buf, heavy)
	labelColor.Fprintln(&buf, "\nProposal:")
	fmt.Fprintln(&buf, v.Proposal)

	section("DIMENSION SCORES")
	for _, dv := range v.DimensionVerdicts {
		fmt.Fprintf(&buf, "\n%s %d/10 ", labelColor.Sprintf("%s:", dv.Dimension), dv.Score)
		dimColor.Fprintf(&buf, "[%s]\n", dv.Perspective)
		fmt.Fprintf(&buf, "  Reasoning: %s\n", dv.Reasoning)
		if len(dv.FailureModes) > 0 {
			fmt.Fprintln(&buf, "  Failure Modes:")
			for _, fm := range dv.FailureModes {
				fmt.Fprintf(&buf, "    - %s\n", fm)
			}
		}
	}

	if len(v.Debates) > 0 {
		section("DEBATES")
		for _, d := range v.Debates {
			fmt.Fprintf(&buf, "  - %s\n", d)
		}
	}

	fmt.Fprintf(&buf, "\n%s\n", heavy)
	fmt.Fprintf(&buf, "Consensus Score: %.1f/10\n", v.ConsensusScore)
	fmt.Fprintf(&buf, "DECISION: %s\n", decisionColor(v.Decision).Sprint(v.Decision))
	fmt.Fprintln(&buf, heavy)

	labelColor.Fprintln(&buf, "\nRefined Proposal:")
	fmt.Fprintln(&buf, v.RefinedProposal)

	if len(v.Pivots) > 0 {
		section("KEY PIVOTS")
		for i, p := range v.Pivots {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, p)
		}
	}

	section("VALIDATION EXPERIMENTS")
	for i, exp := range v.Experiments {
		labelColor.Fprintf(&buf, "\nExperiment %d: %s\n", i+1, exp.Title)
		fmt.Fprintf(&buf, "  Hypothesis: %s\n", exp.Hypothesis)
		fmt.Fprintf(&buf, "  Method: %s\n", exp.Method)
		fmt.Fprintf(&buf, "  Success Criteria: %s\n", exp.SuccessCriteria)
		fmt.Fprintf(&buf, "  Cost: %s\n", exp.EstimatedCost)
		fmt.Fprintf(&buf, "  Time: %s\n", exp.EstimatedTime)
	}

	section("CRITICAL RISKS")
	if len(v.CriticalRisks) == 0 {
		fmt.Fprintln(&buf, "  No critical risks identified")
	}
	for _, r := range v.CriticalRisks {
		riskColor.Fprintf(&buf, "  - %s\n", r)
	}

	if v.MinorityReport != "" {
		section("MINORITY REPORT")
		fmt.Fprintln(&buf, v.MinorityReport)
	}

	fmt.Fprintf(&buf, "\n%s\n", heavy)
	dimColor.Fprintf(&buf, "Verdict %s (%d evaluators)\n", v.ID, len(v.Evaluations))

	safe.Write(ctx, w, buf.Bytes())
}

func renderHistory(ctx context.Context, w io.Writer, verdicts []*model.RunVerdict) {
	var buf bytes.Buffer
	if len(verdicts) == 0 {
		fmt.Fprintln(&buf, "No saved verdicts")
	}
	for _, v := range verdicts {
		fmt.Fprintf(&buf, "%s  %s  %4.1f  %s  %s\n",
			dimColor.Sprint(v.CreatedAt.Format("2006-01-02 15:04:05")),
			v.ID,
			v.ConsensusScore,
			decisionColor(v.Decision).Sprintf("%-20s", v.Decision),
			model.TruncateRunes(v.Proposal, 60),
		)
	}
	safe.Write(ctx, w, buf.Bytes())
}
