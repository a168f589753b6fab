package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/secmon-lab/crucible/pkg/domain/interfaces"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
	"github.com/secmon-lab/crucible/pkg/service/evaluator"
	"github.com/secmon-lab/crucible/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// openAICompatible lists providers reached through an OpenAI-compatible API
var openAICompatible = map[types.Provider]struct {
	baseURL string
	model   string
}{
	types.ProviderDeepSeek: {baseURL: "https://api.deepseek.com/v1", model: "deepseek-chat"},
	types.ProviderXAI:      {baseURL: "https://api.x.ai/v1", model: "grok-3"},
	types.ProviderMoonshot: {baseURL: "https://api.moonshot.ai/v1", model: "moonshot-v1-8k"},
	types.ProviderAlibaba:  {baseURL: "https://dashscope-intl.aliyuncs.com/compatible-mode/v1", model: "qwen-plus"},
}

type clientFactory func(ctx context.Context, provider types.Provider, modelName string) (gollem.LLMClient, error)

// LLM holds CLI flags for evaluator backends
type LLM struct {
	anthropicAPIKey string
	openaiAPIKey    string
	deepseekAPIKey  string
	xaiAPIKey       string
	moonshotAPIKey  string
	alibabaAPIKey   string
	geminiProject   string
	geminiLocation  string
	timeout         time.Duration
	mock            bool

	newClient clientFactory
}

// Flags returns CLI flags for LLM configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "anthropic-api-key",
			Usage:       "Anthropic API key",
			Sources:     cli.EnvVars("CRUCIBLE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"),
			Destination: &l.anthropicAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Sources:     cli.EnvVars("CRUCIBLE_OPENAI_API_KEY", "OPENAI_API_KEY"),
			Destination: &l.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "deepseek-api-key",
			Usage:       "DeepSeek API key",
			Sources:     cli.EnvVars("CRUCIBLE_DEEPSEEK_API_KEY", "DEEPSEEK_API_KEY"),
			Destination: &l.deepseekAPIKey,
		},
		&cli.StringFlag{
			Name:        "xai-api-key",
			Usage:       "xAI API key",
			Sources:     cli.EnvVars("CRUCIBLE_XAI_API_KEY", "XAI_API_KEY"),
			Destination: &l.xaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "moonshot-api-key",
			Usage:       "Moonshot API key",
			Sources:     cli.EnvVars("CRUCIBLE_MOONSHOT_API_KEY", "MOONSHOT_API_KEY"),
			Destination: &l.moonshotAPIKey,
		},
		&cli.StringFlag{
			Name:        "alibaba-api-key",
			Usage:       "Alibaba Cloud DashScope API key",
			Sources:     cli.EnvVars("CRUCIBLE_ALIBABA_API_KEY", "DASHSCOPE_API_KEY"),
			Destination: &l.alibabaAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Sources:     cli.EnvVars("CRUCIBLE_GEMINI_PROJECT"),
			Destination: &l.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Sources:     cli.EnvVars("CRUCIBLE_GEMINI_LOCATION"),
			Destination: &l.geminiLocation,
		},
		&cli.DurationFlag{
			Name:        "evaluator-timeout",
			Usage:       "Deadline for a single remote evaluation",
			Value:       evaluator.DefaultTimeout,
			Sources:     cli.EnvVars("CRUCIBLE_EVALUATOR_TIMEOUT"),
			Destination: &l.timeout,
		},
		&cli.BoolFlag{
			Name:        "mock",
			Usage:       "Use keyword rule evaluators instead of calling any model",
			Sources:     cli.EnvVars("CRUCIBLE_MOCK"),
			Destination: &l.mock,
		},
	}
}

// LogValue implements slog.LogValuer. Only whether a credential is present is logged.
func (l LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("anthropic", l.anthropicAPIKey != ""),
		slog.Bool("openai", l.openaiAPIKey != ""),
		slog.Bool("deepseek", l.deepseekAPIKey != ""),
		slog.Bool("xai", l.xaiAPIKey != ""),
		slog.Bool("moonshot", l.moonshotAPIKey != ""),
		slog.Bool("alibaba", l.alibabaAPIKey != ""),
		slog.String("gemini_project", l.geminiProject),
		slog.String("gemini_location", l.geminiLocation),
		slog.Duration("timeout", l.timeout),
		slog.Bool("mock", l.mock),
	)
}

// Configure builds one evaluator per registered identity. An identity whose
// provider has no credentials, or whose provider is "rule", gets a keyword
// rule evaluator under the same identity. Clients are shared between
// identities that use the same provider and model.
func (l *LLM) Configure(ctx context.Context, reg *model.Registry) (map[string]interfaces.Evaluator, error) {
	if reg == nil {
		return nil, goerr.New("evaluator registry is required")
	}

	newClient := l.newClient
	if newClient == nil {
		newClient = l.buildClient
	}

	type clientKey struct {
		provider types.Provider
		model    string
	}
	clients := make(map[clientKey]gollem.LLMClient)
	evaluators := make(map[string]interfaces.Evaluator, len(reg.Names()))

	for _, id := range reg.List() {
		if l.mock || id.Provider == types.ProviderRule {
			evaluators[id.Name] = evaluator.NewRuleBased(id)
			continue
		}

		key := clientKey{provider: id.Provider, model: id.Model}
		client, ok := clients[key]
		if !ok {
			c, err := newClient(ctx, id.Provider, id.Model)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to create LLM client",
					goerr.V(model.EvaluatorKey, id.Name), goerr.V(ProviderKey, id.Provider))
			}
			client = c
			clients[key] = c
		}

		if client == nil {
			logging.From(ctx).Warn("No credentials for provider, using rule-based evaluator",
				"evaluator", id.Name, "provider", id.Provider)
			evaluators[id.Name] = evaluator.NewRuleBased(id)
			continue
		}

		opts := []evaluator.LLMOption{evaluator.WithTimeout(l.timeout)}
		if _, compat := openAICompatible[id.Provider]; compat {
			opts = append(opts, evaluator.WithFreeText())
		}
		ev, err := evaluator.NewLLM(id, client, opts...)
		if err != nil {
			return nil, err
		}
		evaluators[id.Name] = ev
	}

	return evaluators, nil
}

// buildClient returns nil without error when the provider has no credentials
func (l *LLM) buildClient(ctx context.Context, provider types.Provider, modelName string) (gollem.LLMClient, error) {
	switch provider {
	case types.ProviderAnthropic:
		if l.anthropicAPIKey == "" {
			return nil, nil
		}
		var opts []claude.Option
		if modelName != "" {
			opts = append(opts, claude.WithModel(modelName))
		}
		client, err := claude.New(ctx, l.anthropicAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Claude client")
		}
		return client, nil

	case types.ProviderOpenAI:
		if l.openaiAPIKey == "" {
			return nil, nil
		}
		var opts []openai.Option
		if modelName != "" {
			opts = append(opts, openai.WithModel(modelName))
		}
		client, err := openai.New(ctx, l.openaiAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		return client, nil

	case types.ProviderGemini:
		if l.geminiProject == "" {
			return nil, nil
		}
		var opts []gemini.Option
		if modelName != "" {
			opts = append(opts, gemini.WithModel(modelName))
		}
		client, err := gemini.New(ctx, l.geminiProject, l.geminiLocation, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		return client, nil

	case types.ProviderDeepSeek, types.ProviderXAI, types.ProviderMoonshot, types.ProviderAlibaba:
		apiKey := l.apiKey(provider)
		if apiKey == "" {
			return nil, nil
		}
		endpoint := openAICompatible[provider]
		if modelName == "" {
			modelName = endpoint.model
		}
		client, err := openai.New(ctx, apiKey,
			openai.WithModel(modelName),
			openai.WithBaseURL(endpoint.baseURL),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI-compatible client",
				goerr.V(ProviderKey, provider), goerr.V("base_url", endpoint.baseURL))
		}
		return client, nil

	default:
		return nil, goerr.Wrap(ErrInvalidProvider, "no client for provider", goerr.V(ProviderKey, provider))
	}
}

func (l *LLM) apiKey(provider types.Provider) string {
	switch provider {
	case types.ProviderDeepSeek:
		return l.deepseekAPIKey
	case types.ProviderXAI:
		return l.xaiAPIKey
	case types.ProviderMoonshot:
		return l.moonshotAPIKey
	case types.ProviderAlibaba:
		return l.alibabaAPIKey
	default:
		return ""
	}
}
