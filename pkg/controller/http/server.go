package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/usecase"
	"github.com/secmon-lab/crucible/pkg/utils/logging"
)

// EvaluateUseCase runs one evaluation
type EvaluateUseCase interface {
	Evaluate(ctx context.Context, input usecase.EvaluateInput) (*model.RunVerdict, error)
}

// VerdictUseCase stores and reads finished verdicts
type VerdictUseCase interface {
	Save(ctx context.Context, verdict *model.RunVerdict) error
	Get(ctx context.Context, id model.VerdictID) (*model.RunVerdict, error)
	History(ctx context.Context, limit int) ([]*model.RunVerdict, error)
}

// Notifier publishes a finished verdict
type Notifier interface {
	Notify(ctx context.Context, verdict *model.RunVerdict) error
}

// DefaultMaxBodyBytes bounds the size of an evaluation request
const DefaultMaxBodyBytes = 64 << 10

type Server struct {
	router       *chi.Mux
	evaluateUC   EvaluateUseCase
	verdictUC    VerdictUseCase
	notifier     Notifier
	maxBodyBytes int64
}

type Options func(*Server)

// WithVerdictUseCase enables saving verdicts and the /api/v1/verdicts routes
func WithVerdictUseCase(uc VerdictUseCase) Options {
	return func(s *Server) {
		s.verdictUC = uc
	}
}

// WithNotifier publishes every verdict produced through the API
func WithNotifier(n Notifier) Options {
	return func(s *Server) {
		s.notifier = n
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes
func WithMaxBodyBytes(n int64) Options {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

func New(evaluateUC EvaluateUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:       r,
		evaluateUC:   evaluateUC,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/evaluate", s.evaluateHandler)

		if s.verdictUC != nil {
			r.Get("/verdicts", s.listVerdictsHandler)
			r.Get("/verdicts/{id}", s.getVerdictHandler)
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
