package config

import (
	"context"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

// ClientFactory builds an LLM client for a provider and model
type ClientFactory = clientFactory

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(mock bool, timeout time.Duration, factory ClientFactory) *LLM {
	return &LLM{
		timeout:   timeout,
		mock:      mock,
		newClient: factory,
	}
}

// NewLLMWithKeysForTest creates an LLM config that builds real clients
func NewLLMWithKeysForTest(anthropicAPIKey, deepseekAPIKey string) *LLM {
	return &LLM{
		anthropicAPIKey: anthropicAPIKey,
		deepseekAPIKey:  deepseekAPIKey,
	}
}

// BuildClient exposes client construction for testing
func (l *LLM) BuildClient(ctx context.Context, provider types.Provider, modelName string) (gollem.LLMClient, error) {
	return l.buildClient(ctx, provider, modelName)
}

// NewRegistryForTest creates a Registry config for testing purposes
func NewRegistryForTest(path string) *Registry {
	return &Registry{path: path}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewSentryForTest creates a Sentry config for testing purposes
func NewSentryForTest(dsn, env string) *Sentry {
	return &Sentry{dsn: dsn, env: env}
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channel string) *Slack {
	return &Slack{botToken: botToken, channel: channel}
}

// NotionFactory builds a Notion service from a token
type NotionFactory = notionFactory

// GitHubFactory builds a GitHub service from App credentials
type GitHubFactory = githubFactory

// SourceForTest collects Source fields for testing purposes
type SourceForTest struct {
	File                 string
	NotionToken          string
	NotionPage           string
	GitHubAppID          int64
	GitHubInstallationID int64
	GitHubPrivateKey     string
	GitHubIssue          string
	NewNotion            NotionFactory
	NewGitHub            GitHubFactory
}

// NewSourceForTest creates a Source config for testing purposes
func NewSourceForTest(s SourceForTest) *Source {
	return &Source{
		file:                 s.File,
		notionToken:          s.NotionToken,
		notionPage:           s.NotionPage,
		githubAppID:          s.GitHubAppID,
		githubInstallationID: s.GitHubInstallationID,
		githubPrivateKey:     s.GitHubPrivateKey,
		githubIssue:          s.GitHubIssue,
		newNotion:            s.NewNotion,
		newGitHub:            s.NewGitHub,
	}
}
