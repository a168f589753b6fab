package interfaces

import (
	"context"

	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

// Evaluator scores a proposal on the given dimensions.
// Implementations backed by a remote service return *model.RemoteError on
// failure; local implementations may never fail. Callers must not assume
// anything about how the output was produced.
type Evaluator interface {
	Evaluate(ctx context.Context, proposal string, dimensions []types.Dimension) (*model.EvaluatorOutput, error)
}

// EvaluatorFunc adapts a plain function to the Evaluator interface
type EvaluatorFunc func(ctx context.Context, proposal string, dimensions []types.Dimension) (*model.EvaluatorOutput, error)

// Evaluate calls f
func (f EvaluatorFunc) Evaluate(ctx context.Context, proposal string, dimensions []types.Dimension) (*model.EvaluatorOutput, error) {
	return f(ctx, proposal, dimensions)
}
