package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

// Bounds of a RunVerdict
const (
	MaxDimensionFailureModes = 3
	MaxUnifiedPivots         = 3
	MaxCriticalRisks         = 5
	ExperimentCount          = 3
	MaxDimensionReasoning    = 200
)

// VerdictID is a UUIDv7 identifier for a RunVerdict, so IDs sort by creation time
type VerdictID string

// NewVerdictID generates a new VerdictID
func NewVerdictID() VerdictID {
	return VerdictID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of VerdictID
func (id VerdictID) String() string {
	return string(id)
}

// DimensionVerdict is the reconciled judgment for one dimension
type DimensionVerdict struct {
	Dimension    types.Dimension    `json:"dimension"`
	Score        int                `json:"score"`
	Reasoning    string             `json:"reasoning"`
	FailureModes []string           `json:"failure_modes"`
	Perspective  string             `json:"perspective"`
	Evaluations  []*EvaluatorOutput `json:"-"`
}

// Experiment is a validation experiment suggested for a weak dimension
type Experiment struct {
	Title           string `json:"title"`
	Hypothesis      string `json:"hypothesis"`
	Method          string `json:"method"`
	SuccessCriteria string `json:"success_criteria"`
	EstimatedCost   string `json:"estimated_cost"`
	EstimatedTime   string `json:"estimated_time"`
}

// RunVerdict is the complete result of one evaluation run.
// It is built once and owned by the caller that requested it.
type RunVerdict struct {
	ID                VerdictID           `json:"id"`
	Proposal          string              `json:"proposal"`
	ConsensusScore    float64             `json:"consensus_score"`
	Decision          types.Decision      `json:"decision"`
	Evaluations       []*EvaluatorOutput  `json:"evaluations"`
	DimensionVerdicts []*DimensionVerdict `json:"dimension_verdicts"`
	Debates           []string            `json:"debates"`
	Pivots            []string            `json:"pivots"`
	Experiments       []Experiment        `json:"experiments"`
	CriticalRisks     []string            `json:"critical_risks"`
	MinorityReport    string              `json:"minority_report,omitempty"`
	RefinedProposal   string              `json:"refined_proposal"`
	CreatedAt         time.Time           `json:"created_at"`
}
