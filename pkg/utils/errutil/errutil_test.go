package errutil_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/crucible/pkg/utils/errutil"
	"github.com/secmon-lab/crucible/pkg/utils/logging"
)

func TestHandle(t *testing.T) {
	t.Run("nil error is a no-op", func(t *testing.T) {
		gt.NoError(t, errutil.Handle(context.Background(), nil, "nothing"))
	})

	t.Run("logs goerr values and returns the same error", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)
		gt.NoError(t, err).Required()
		ctx := logging.With(context.Background(), logger)

		orig := goerr.New("evaluator failed", goerr.V("evaluator", "grok"))
		got := errutil.Handle(ctx, orig, "evaluation dropped", "proposal_len", 42)

		gt.Bool(t, errors.Is(got, orig)).True()
		gt.String(t, buf.String()).Contains("evaluation dropped")
		gt.String(t, buf.String()).Contains("grok")
		gt.String(t, buf.String()).Contains("proposal_len")
	})

	t.Run("logs plain errors", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)
		gt.NoError(t, err).Required()
		ctx := logging.With(context.Background(), logger)

		errutil.Handle(ctx, errors.New("plain failure"), "failed")
		gt.String(t, buf.String()).Contains("plain failure")
	})
}

func TestHandleHTTP(t *testing.T) {
	t.Run("client errors expose the message", func(t *testing.T) {
		w := httptest.NewRecorder()
		errutil.HandleHTTP(context.Background(), w, errors.New("proposal is empty"), http.StatusBadRequest)

		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
		gt.Value(t, w.Header().Get("Content-Type")).Equal("application/json")
		gt.String(t, w.Body.String()).Contains("proposal is empty")
	})

	t.Run("server errors hide the message", func(t *testing.T) {
		w := httptest.NewRecorder()
		errutil.HandleHTTP(context.Background(), w, goerr.New("firestore unavailable"), http.StatusInternalServerError)

		gt.Value(t, w.Code).Equal(http.StatusInternalServerError)
		gt.String(t, w.Body.String()).NotContains("firestore")
		gt.String(t, w.Body.String()).Contains("Internal Server Error")
	})
}
