package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Request errors
	ErrEmptyProposal = errors.New("proposal is empty")

	// Persistence errors
	ErrRepositoryNotConfigured = errors.New("verdict repository is not configured")
	ErrNilVerdict              = errors.New("verdict is nil")
)

// Context keys for error values
const (
	VerdictIDKey = "verdict_id"
)
