package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Registry holds CLI flags for the evaluator panel
type Registry struct {
	path string
}

// Flags returns CLI flags for registry configuration
func (r *Registry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "registry-config",
			Aliases:     []string{"c"},
			Usage:       "Path to evaluator panel TOML file (built-in panel when omitted)",
			Sources:     cli.EnvVars("CRUCIBLE_REGISTRY_CONFIG"),
			Destination: &r.path,
		},
	}
}

// Path returns the configured registry file path
func (r *Registry) Path() string {
	return r.path
}

// LogValue implements slog.LogValuer
func (r *Registry) LogValue() slog.Value {
	path := r.path
	if path == "" {
		path = "(built-in)"
	}
	return slog.GroupValue(slog.String("path", path))
}

// Configure builds the evaluator registry from the configured file,
// or the built-in panel when no file is given.
func (r *Registry) Configure() (*model.Registry, error) {
	if r.path == "" {
		return model.DefaultRegistry(), nil
	}

	cfg, err := LoadAppConfiguration(r.path)
	if err != nil {
		return nil, err
	}

	reg, err := cfg.ToRegistry()
	if err != nil {
		return nil, goerr.Wrap(err, "invalid evaluator registry", goerr.V(ConfigPathKey, r.path))
	}
	return reg, nil
}
