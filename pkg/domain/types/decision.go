package types

import "fmt"

// Decision is the discrete recommendation produced for a proposal
type Decision string

const (
	DecisionKill               Decision = "KILL"
	DecisionProceedWithCaution Decision = "PROCEED_WITH_CAUTION"
	DecisionProceed            Decision = "PROCEED"
	DecisionStrongProceed      Decision = "STRONG_PROCEED"
)

// AllDecisions returns all valid decisions from the lowest tier to the highest
func AllDecisions() []Decision {
	return []Decision{
		DecisionKill,
		DecisionProceedWithCaution,
		DecisionProceed,
		DecisionStrongProceed,
	}
}

// IsValid checks if the decision is valid
func (d Decision) IsValid() bool {
	switch d {
	case DecisionKill,
		DecisionProceedWithCaution,
		DecisionProceed,
		DecisionStrongProceed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the decision
func (d Decision) String() string {
	return string(d)
}

// ExitCode maps the decision to a process exit code.
// KILL exits 1, PROCEED_WITH_CAUTION exits 2, anything that proceeds exits 0.
func (d Decision) ExitCode() int {
	switch d {
	case DecisionKill:
		return 1
	case DecisionProceedWithCaution:
		return 2
	default:
		return 0
	}
}

// ParseDecision parses a string into a Decision
func ParseDecision(s string) (Decision, error) {
	d := Decision(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid decision: %s", s)
	}
	return d, nil
}
