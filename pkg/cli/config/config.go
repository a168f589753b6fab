package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/domain/types"
)

// AppConfig represents the evaluator panel configuration file
type AppConfig struct {
	Evaluators []Evaluator         `toml:"evaluator"`
	Priorities map[string][]string `toml:"priority"`
}

// Evaluator represents one evaluator entry
type Evaluator struct {
	Name        string   `toml:"name"`
	Role        string   `toml:"role"`
	Focus       []string `toml:"focus"`
	Weight      float64  `toml:"weight"`
	Description string   `toml:"description"`
	Provider    string   `toml:"provider"`
	Model       string   `toml:"model"`
}

// Validate checks if the Evaluator is valid
func (e *Evaluator) Validate() error {
	if e.Name == "" {
		return goerr.Wrap(ErrMissingName, "evaluator name is required")
	}
	if e.Weight < 0 {
		return goerr.Wrap(ErrInvalidWeight, "negative weight",
			goerr.V(EvaluatorNameKey, e.Name), goerr.V("weight", e.Weight))
	}
	if e.Provider != "" {
		if err := types.Provider(e.Provider).Validate(); err != nil {
			return goerr.Wrap(ErrInvalidProvider, "unsupported provider",
				goerr.V(EvaluatorNameKey, e.Name), goerr.V(ProviderKey, e.Provider))
		}
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	names := make(map[string]bool, len(a.Evaluators))
	for i, ev := range a.Evaluators {
		if err := ev.Validate(); err != nil {
			return goerr.Wrap(err, "invalid evaluator", goerr.V(EvaluatorIndexKey, i))
		}
		if names[ev.Name] {
			return goerr.Wrap(ErrDuplicateEvaluator, "evaluator defined twice",
				goerr.V(EvaluatorNameKey, ev.Name))
		}
		names[ev.Name] = true
	}

	for dim, refs := range a.Priorities {
		if !types.Dimension(dim).IsValid() {
			return goerr.Wrap(ErrInvalidDimension, "priority for unknown dimension", goerr.V(DimensionKey, dim))
		}
		for _, name := range refs {
			if !names[name] {
				return goerr.Wrap(ErrUnknownEvaluator, "priority references undefined evaluator",
					goerr.V(DimensionKey, dim), goerr.V(EvaluatorNameKey, name))
			}
		}
	}

	return nil
}

// LoadAppConfiguration loads the evaluator panel from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// ToRegistry converts AppConfig to the domain evaluator registry.
// An empty evaluator list yields the built-in panel.
func (a *AppConfig) ToRegistry() (*model.Registry, error) {
	if len(a.Evaluators) == 0 {
		return model.DefaultRegistry(), nil
	}

	identities := make([]model.EvaluatorIdentity, len(a.Evaluators))
	for i, ev := range a.Evaluators {
		identities[i] = model.EvaluatorIdentity{
			Name:        ev.Name,
			Role:        ev.Role,
			Focus:       ev.Focus,
			Weight:      ev.Weight,
			Description: ev.Description,
			Provider:    types.Provider(ev.Provider),
			Model:       ev.Model,
		}
	}

	priorities := make(map[types.Dimension][]string, len(a.Priorities))
	for dim, names := range a.Priorities {
		priorities[types.Dimension(dim)] = names
	}

	reg, err := model.NewRegistry(identities, priorities)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build evaluator registry")
	}
	return reg, nil
}
