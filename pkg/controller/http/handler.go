package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/usecase"
	"github.com/secmon-lab/crucible/pkg/utils/errutil"
)

type evaluateRequest struct {
	Proposal string `json:"proposal"`

	// Omitting evaluators (null) selects every registered evaluator
	Evaluators []string `json:"evaluators"`
}

type verdictListResponse struct {
	Verdicts []*model.RunVerdict `json:"verdicts"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req evaluateRequest
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	verdict, err := s.evaluateUC.Evaluate(ctx, usecase.EvaluateInput{
		Proposal:   req.Proposal,
		Evaluators: req.Evaluators,
	})
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusFor(err))
		return
	}

	if s.verdictUC != nil {
		if err := s.verdictUC.Save(ctx, verdict); err != nil {
			_ = errutil.Handle(ctx, err, "failed to save verdict")
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, verdict); err != nil {
			_ = errutil.Handle(ctx, err, "failed to notify verdict")
		}
	}

	writeJSON(w, r, http.StatusOK, verdict)
}

func (s *Server) listVerdictsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errutil.HandleHTTP(ctx, w, goerr.New("limit must be a non-negative integer", goerr.V("limit", v)), http.StatusBadRequest)
			return
		}
		limit = n
	}

	verdicts, err := s.verdictUC.History(ctx, limit)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusFor(err))
		return
	}
	if verdicts == nil {
		verdicts = []*model.RunVerdict{}
	}

	writeJSON(w, r, http.StatusOK, verdictListResponse{Verdicts: verdicts})
}

func (s *Server) getVerdictHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	verdict, err := s.verdictUC.Get(ctx, model.VerdictID(chi.URLParam(r, "id")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusOK, verdict)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrEmptyProposal),
		errors.Is(err, model.ErrUnknownEvaluator):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrVerdictNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrRepositoryNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}
