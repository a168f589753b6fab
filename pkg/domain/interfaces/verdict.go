package interfaces

import (
	"context"

	"github.com/secmon-lab/crucible/pkg/domain/model"
)

// VerdictRepository stores finished verdicts for later review
type VerdictRepository interface {
	// Put stores the verdict, overwriting any verdict with the same ID
	Put(ctx context.Context, verdict *model.RunVerdict) error

	// Get retrieves a verdict by ID. Returns model.ErrVerdictNotFound if absent.
	Get(ctx context.Context, id model.VerdictID) (*model.RunVerdict, error)

	// List returns up to limit verdicts ordered by CreatedAt descending
	List(ctx context.Context, limit int) ([]*model.RunVerdict, error)
}

// Repository groups the persistence backends used by the CLI
type Repository interface {
	Verdict() VerdictRepository
	Close() error
}
