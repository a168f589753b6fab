package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/utils/logging"
)

// Handle logs the error with a message, forwards it to Sentry when a client
// is configured, and returns it unchanged.
func Handle(ctx context.Context, err error, msg string, attrs ...any) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	// Extract goerr values for structured logging
	var ge *goerr.Error
	if errors.As(err, &ge) {
		args := append([]any{
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		}, attrs...)
		logger.Error(msg, args...)
	} else {
		args := append([]any{"error", err.Error()}, attrs...)
		logger.Error(msg, args...)
	}

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("message", msg)
			hub.CaptureException(err)
		})
	}

	return err
}

// HandleHTTP logs the error and writes a JSON error response. 5xx errors are
// also reported through Handle; the message of a 5xx response is generic.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	msg := err.Error()
	if statusCode >= http.StatusInternalServerError {
		_ = Handle(ctx, err, "HTTP error", "status", statusCode)
		msg = http.StatusText(statusCode)
	} else {
		logging.From(ctx).Warn("HTTP error", "status", statusCode, "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
