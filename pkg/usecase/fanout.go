package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/domain/interfaces"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
	"github.com/secmon-lab/crucible/pkg/utils/async"
	"github.com/secmon-lab/crucible/pkg/utils/errutil"
	"github.com/secmon-lab/crucible/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

type evaluatorTask struct {
	id        *model.EvaluatorIdentity
	evaluator interfaces.Evaluator
}

// fanOut calls every evaluator concurrently and waits for all of them. A
// failed or panicking evaluator is logged and left out; siblings are not
// cancelled. Outputs keep the order of tasks. If ctx is done by the time all
// calls return, the partial outputs are discarded and ctx's error returned.
func (uc *EvaluateUseCase) fanOut(ctx context.Context, proposal string, tasks []evaluatorTask) ([]*model.EvaluatorOutput, error) {
	results := make([]*model.EvaluatorOutput, len(tasks))

	var eg errgroup.Group
	if uc.concurrency > 0 {
		eg.SetLimit(uc.concurrency)
	}

	for i, task := range tasks {
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			err := async.Supervise(ctx, func(ctx context.Context) error {
				out, err := task.evaluator.Evaluate(ctx, proposal, uc.dimensions)
				if err != nil {
					return err
				}
				if out == nil {
					return goerr.New("evaluator returned no output")
				}
				results[i] = normalizeOutput(out, task.id, uc.dimensions)
				return nil
			})
			if err != nil {
				errutil.Handle(ctx, goerr.Wrap(err, "evaluator failed",
					goerr.V(model.EvaluatorKey, task.id.Name)),
					"evaluator dropped from run")
				return nil
			}

			logging.From(ctx).Debug("Evaluator complete",
				"evaluator", task.id.Name,
				"confidence", results[i].Confidence,
			)
			return nil
		})
	}

	// every task reports its own failure and returns nil
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "evaluation cancelled")
	}

	outputs := make([]*model.EvaluatorOutput, 0, len(results))
	for _, out := range results {
		if out != nil {
			outputs = append(outputs, out)
		}
	}
	return outputs, nil
}

// normalizeOutput re-applies the output bounds, attributes the output to the
// registered identity, and keeps only the requested dimensions.
func normalizeOutput(out *model.EvaluatorOutput, id *model.EvaluatorIdentity, dims []types.Dimension) *model.EvaluatorOutput {
	scores := make(map[types.Dimension]int, len(dims))
	for _, dim := range dims {
		if score, ok := out.Scores[dim]; ok {
			scores[dim] = score
		}
	}

	role := out.Role
	if role == "" {
		role = id.Role
	}

	normalized := *out
	normalized.Evaluator = id.Name
	normalized.Role = role
	normalized.Scores = scores
	return model.NewEvaluatorOutput(normalized)
}
