package evaluator

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/crucible/pkg/domain/interfaces"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

// DefaultTimeout bounds one remote evaluation
const DefaultTimeout = 30 * time.Second

// LLM evaluates a proposal by asking a language model in the evaluator's persona
type LLM struct {
	id         *model.EvaluatorIdentity
	client     gollem.LLMClient
	timeout    time.Duration
	structured bool
}

var _ interfaces.Evaluator = &LLM{}

// LLMOption is a functional option for LLM
type LLMOption func(*LLM)

// WithTimeout sets the deadline for one evaluation. Non-positive values are ignored.
func WithTimeout(d time.Duration) LLMOption {
	return func(x *LLM) {
		if d > 0 {
			x.timeout = d
		}
	}
}

// WithFreeText disables the JSON content type and response schema, for
// endpoints that reject structured output. The response is then parsed from
// free text.
func WithFreeText() LLMOption {
	return func(x *LLM) {
		x.structured = false
	}
}

// NewLLM creates an evaluator that reports under id using client
func NewLLM(id *model.EvaluatorIdentity, client gollem.LLMClient, opts ...LLMOption) (*LLM, error) {
	if id == nil {
		return nil, goerr.New("evaluator identity is required")
	}
	if client == nil {
		return nil, goerr.New("LLM client is required", goerr.V(model.EvaluatorKey, id.Name))
	}

	x := &LLM{
		id:         id,
		client:     client,
		timeout:    DefaultTimeout,
		structured: true,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// Evaluate asks the model once. Any failure to obtain a response is returned
// as *model.RemoteError; an unparseable response is not a failure and yields
// a degraded output instead.
func (x *LLM) Evaluate(ctx context.Context, proposal string, dimensions []types.Dimension) (*model.EvaluatorOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	systemPrompt, err := BuildSystemPrompt(x.id, dimensions)
	if err != nil {
		return nil, model.NewRemoteError(x.id.Name, err)
	}
	userPrompt, err := BuildUserPrompt(proposal)
	if err != nil {
		return nil, model.NewRemoteError(x.id.Name, err)
	}

	options := []gollem.SessionOption{
		gollem.WithSessionSystemPrompt(systemPrompt),
	}
	if x.structured {
		options = append(options,
			gollem.WithSessionContentType(gollem.ContentTypeJSON),
			gollem.WithSessionResponseSchema(BuildResponseSchema(dimensions)),
		)
	}

	session, err := x.client.NewSession(ctx, options...)
	if err != nil {
		return nil, model.NewRemoteError(x.id.Name,
			goerr.Wrap(err, "failed to create LLM session", goerr.V(model.EvaluatorKey, x.id.Name)))
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(userPrompt)})
	if err != nil {
		return nil, model.NewRemoteError(x.id.Name,
			goerr.Wrap(err, "failed to generate content from LLM", goerr.V(model.EvaluatorKey, x.id.Name)))
	}
	if resp == nil || len(resp.Texts) == 0 {
		return nil, model.NewRemoteError(x.id.Name,
			goerr.New("LLM returned no text", goerr.V(model.EvaluatorKey, x.id.Name)))
	}

	return ParseResponse(x.id, dimensions, strings.Join(resp.Texts, "")), nil
}
