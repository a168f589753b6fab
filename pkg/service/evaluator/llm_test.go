package evaluator_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
	"github.com/secmon-lab/crucible/pkg/service/evaluator"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{
		Texts: []string{`{"scores": {"Market Viability": 6}, "confidence": 0.7, "reasoning": "ok"}`},
	}, nil
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func TestNewLLM(t *testing.T) {
	id := &model.EvaluatorIdentity{Name: "gpt_o3", Role: "vc_skeptic"}

	_, err := evaluator.NewLLM(id, nil)
	gt.Error(t, err)

	_, err = evaluator.NewLLM(nil, &mockLLMClient{})
	gt.Error(t, err)

	x, err := evaluator.NewLLM(id, &mockLLMClient{})
	gt.NoError(t, err)
	gt.Value(t, x).NotNil()
}

func TestLLM_Evaluate(t *testing.T) {
	ctx := context.Background()
	id := &model.EvaluatorIdentity{Name: "gpt_o3", Role: "vc_skeptic"}
	dims := types.DefaultDimensions()

	t.Run("parses model output", func(t *testing.T) {
		var prompt string
		session := &mockLLMSession{
			generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
				gt.A(t, input).Length(1)
				prompt = fmt.Sprint(input[0])
				return &gollem.Response{
					Texts: []string{"```json\n{\"scores\": {\"Market Viability\": 4,", " \"Unit Economics\": 9}, \"reasoning\": \"tam inflated\"}\n```"},
				}, nil
			},
		}
		client := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				gt.A(t, options).Length(3)
				return session, nil
			},
		}

		x, err := evaluator.NewLLM(id, client)
		gt.NoError(t, err).Required()

		out, err := x.Evaluate(ctx, "Uber for dog walking", dims)
		gt.NoError(t, err).Required()
		gt.String(t, prompt).Contains("Uber for dog walking")
		gt.Value(t, out.Evaluator).Equal("gpt_o3")
		gt.Value(t, out.Scores).Equal(map[types.Dimension]int{
			types.DimensionMarketViability: 4,
			types.DimensionUnitEconomics:   9,
		})
		gt.Value(t, out.Confidence).Equal(evaluator.DefaultResponseConfidence)
		gt.Value(t, out.Reasoning).Equal("tam inflated")
	})

	t.Run("free text mode sends only the system prompt", func(t *testing.T) {
		client := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				gt.A(t, options).Length(1)
				return &mockLLMSession{}, nil
			},
		}
		x, err := evaluator.NewLLM(id, client, evaluator.WithFreeText())
		gt.NoError(t, err).Required()

		out, err := x.Evaluate(ctx, "proposal", dims)
		gt.NoError(t, err).Required()
		gt.Value(t, out.Scores[types.DimensionMarketViability]).Equal(6)
		gt.Value(t, out.Confidence).Equal(0.7)
	})

	t.Run("session failure is a remote error", func(t *testing.T) {
		cause := errors.New("401 unauthorized")
		client := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return nil, cause
			},
		}
		x, err := evaluator.NewLLM(id, client)
		gt.NoError(t, err).Required()

		out, err := x.Evaluate(ctx, "proposal", dims)
		gt.Value(t, out).Nil()
		gt.Bool(t, errors.Is(err, cause)).True()

		var remote *model.RemoteError
		gt.Bool(t, errors.As(err, &remote)).True()
		gt.Value(t, remote.Evaluator).Equal("gpt_o3")
	})

	t.Run("generation failure is a remote error", func(t *testing.T) {
		client := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return nil, errors.New("connection reset")
					},
				}, nil
			},
		}
		x, err := evaluator.NewLLM(id, client)
		gt.NoError(t, err).Required()

		_, err = x.Evaluate(ctx, "proposal", dims)
		var remote *model.RemoteError
		gt.Bool(t, errors.As(err, &remote)).True()
	})

	t.Run("empty response is a remote error", func(t *testing.T) {
		client := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return &gollem.Response{}, nil
					},
				}, nil
			},
		}
		x, err := evaluator.NewLLM(id, client)
		gt.NoError(t, err).Required()

		_, err = x.Evaluate(ctx, "proposal", dims)
		var remote *model.RemoteError
		gt.Bool(t, errors.As(err, &remote)).True()
	})

	t.Run("timeout bounds the call", func(t *testing.T) {
		client := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						<-ctx.Done()
						return nil, ctx.Err()
					},
				}, nil
			},
		}
		x, err := evaluator.NewLLM(id, client, evaluator.WithTimeout(10*time.Millisecond))
		gt.NoError(t, err).Required()

		_, err = x.Evaluate(ctx, "proposal", dims)
		gt.Bool(t, errors.Is(err, context.DeadlineExceeded)).True()
	})

	t.Run("unparseable text degrades without error", func(t *testing.T) {
		client := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return &gollem.Response{Texts: []string{"looks fine to me"}}, nil
					},
				}, nil
			},
		}
		x, err := evaluator.NewLLM(id, client)
		gt.NoError(t, err).Required()

		out, err := x.Evaluate(ctx, "proposal", dims)
		gt.NoError(t, err).Required()
		gt.Value(t, out.Confidence).Equal(evaluator.DegradedConfidence)
	})
}
