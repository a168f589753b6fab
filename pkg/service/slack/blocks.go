package slack

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
	"github.com/slack-go/slack"
)

// maxSectionTextBytes is the Slack limit for a section block's text
const maxSectionTextBytes = 3000

var decisionEmoji = map[types.Decision]string{
	types.DecisionKill:               ":x:",
	types.DecisionProceedWithCaution: ":warning:",
	types.DecisionProceed:            ":white_check_mark:",
	types.DecisionStrongProceed:      ":rocket:",
}

// VerdictText is the plain-text notification fallback for a verdict
func VerdictText(v *model.RunVerdict) string {
	return fmt.Sprintf("%s %s (%.1f/10): %s", decisionEmoji[v.Decision], v.Decision, v.ConsensusScore,
		model.TruncateRunes(v.Proposal, 120))
}

// VerdictBlocks renders a verdict summary as Block Kit blocks
func VerdictBlocks(v *model.RunVerdict) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType,
			fmt.Sprintf("%s %s", decisionEmoji[v.Decision], v.Decision), true, false)),
		markdownSection("*Proposal*\n" + v.Proposal),
	}

	var scores strings.Builder
	fmt.Fprintf(&scores, "*Consensus score:* %.1f/10\n", v.ConsensusScore)
	for _, dv := range v.DimensionVerdicts {
		fmt.Fprintf(&scores, "• %s: *%d*/10 _(%s)_\n", dv.Dimension, dv.Score, dv.Perspective)
	}
	blocks = append(blocks, markdownSection(scores.String()))

	if len(v.CriticalRisks) > 0 {
		blocks = append(blocks, markdownSection("*Critical risks*\n"+bulletList(v.CriticalRisks)))
	}
	if len(v.Pivots) > 0 {
		blocks = append(blocks, markdownSection("*Pivots*\n"+bulletList(v.Pivots)))
	}
	if v.MinorityReport != "" {
		blocks = append(blocks, markdownSection("*Minority report*\n"+v.MinorityReport))
	}

	blocks = append(blocks,
		slack.NewDividerBlock(),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("verdict `%s` from %d evaluators", v.ID, len(v.Evaluations)), false, false),
		),
	)
	return blocks
}

func markdownSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(text, maxSectionTextBytes), false, false),
		nil, nil,
	)
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}

// truncateToMaxBytes cuts s to at most maxBytes without splitting a UTF-8 sequence
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
