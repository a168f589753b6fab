package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/domain/interfaces"
	"github.com/secmon-lab/crucible/pkg/domain/model"
)

// DefaultHistoryLimit is used when History is called without a positive limit
const DefaultHistoryLimit = 20

// VerdictUseCase stores and retrieves finished verdicts
type VerdictUseCase struct {
	repo interfaces.VerdictRepository
}

// NewVerdictUseCase creates a VerdictUseCase; repo may be nil, in which case
// every method fails with ErrRepositoryNotConfigured
func NewVerdictUseCase(repo interfaces.VerdictRepository) *VerdictUseCase {
	return &VerdictUseCase{repo: repo}
}

// Save stores the verdict
func (uc *VerdictUseCase) Save(ctx context.Context, verdict *model.RunVerdict) error {
	if uc.repo == nil {
		return goerr.Wrap(ErrRepositoryNotConfigured, "cannot save verdict")
	}
	if verdict == nil {
		return goerr.Wrap(ErrNilVerdict, "cannot save verdict")
	}

	if err := uc.repo.Put(ctx, verdict); err != nil {
		return goerr.Wrap(err, "failed to save verdict", goerr.V(VerdictIDKey, verdict.ID))
	}
	return nil
}

// Get retrieves a stored verdict by ID
func (uc *VerdictUseCase) Get(ctx context.Context, id model.VerdictID) (*model.RunVerdict, error) {
	if uc.repo == nil {
		return nil, goerr.Wrap(ErrRepositoryNotConfigured, "cannot get verdict")
	}

	verdict, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get verdict", goerr.V(VerdictIDKey, id))
	}
	return verdict, nil
}

// History returns up to limit verdicts, newest first
func (uc *VerdictUseCase) History(ctx context.Context, limit int) ([]*model.RunVerdict, error) {
	if uc.repo == nil {
		return nil, goerr.Wrap(ErrRepositoryNotConfigured, "cannot list verdicts")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	verdicts, err := uc.repo.List(ctx, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list verdicts", goerr.V("limit", limit))
	}
	return verdicts, nil
}
