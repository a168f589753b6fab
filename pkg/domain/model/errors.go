package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors for registry and evaluation configuration
var (
	ErrUnknownEvaluator   = goerr.New("unknown evaluator")
	ErrDuplicateEvaluator = goerr.New("duplicate evaluator name")
	ErrInvalidRegistry    = goerr.New("invalid evaluator registry")
)

// Context keys for error values
const (
	EvaluatorKey = "evaluator"
	DimensionKey = "dimension"
)

// RemoteError is returned by an evaluator when the backing service could not
// produce an output: transport, authentication and response failures all end
// up here. The fan-out drops the evaluator for the run.
type RemoteError struct {
	Evaluator string
	Err       error
}

// NewRemoteError wraps err as a RemoteError for the named evaluator
func NewRemoteError(evaluator string, err error) *RemoteError {
	return &RemoteError{Evaluator: evaluator, Err: err}
}

func (e *RemoteError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("remote evaluation failed: %s", e.Evaluator)
	}
	return fmt.Sprintf("remote evaluation failed: %s: %s", e.Evaluator, e.Err.Error())
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// ErrVerdictNotFound is returned when a stored verdict does not exist
var ErrVerdictNotFound = goerr.New("verdict not found")
