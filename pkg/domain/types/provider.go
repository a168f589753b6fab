package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Provider identifies the backend an evaluator calls
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
	ProviderDeepSeek  Provider = "deepseek"
	ProviderXAI       Provider = "xai"
	ProviderMoonshot  Provider = "moonshot"
	ProviderAlibaba   Provider = "alibaba"

	// ProviderRule marks an evaluator computed locally from keyword rules
	ProviderRule Provider = "rule"
)

// AllProviders returns all valid providers
func AllProviders() []Provider {
	return []Provider{
		ProviderAnthropic,
		ProviderOpenAI,
		ProviderGemini,
		ProviderDeepSeek,
		ProviderXAI,
		ProviderMoonshot,
		ProviderAlibaba,
		ProviderRule,
	}
}

// IsValid checks if the provider is valid
func (p Provider) IsValid() bool {
	switch p {
	case ProviderAnthropic,
		ProviderOpenAI,
		ProviderGemini,
		ProviderDeepSeek,
		ProviderXAI,
		ProviderMoonshot,
		ProviderAlibaba,
		ProviderRule:
		return true
	default:
		return false
	}
}

// Validate checks if the provider is valid
func (p Provider) Validate() error {
	if !p.IsValid() {
		return goerr.New("invalid provider", goerr.V("provider", p))
	}
	return nil
}

// String returns the string representation of the provider
func (p Provider) String() string {
	return string(p)
}
