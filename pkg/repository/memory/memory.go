package memory

import (
	"github.com/secmon-lab/crucible/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps verdicts in process memory. Contents are lost on exit.
type Memory struct {
	verdict *verdictRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		verdict: newVerdictRepository(),
	}
}

func (m *Memory) Verdict() interfaces.VerdictRepository {
	return m.verdict
}

func (m *Memory) Close() error {
	return nil
}
