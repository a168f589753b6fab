package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/cli/config"
	"github.com/secmon-lab/crucible/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var registryCfg config.Registry

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate an evaluator panel configuration file",
		Flags:   registryCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			if registryCfg.Path() == "" {
				return goerr.Wrap(config.ErrInvalidConfig, "--registry-config is required")
			}

			registry, err := registryCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logger.Info("Configuration validation passed",
				"path", registryCfg.Path(),
				"evaluator_count", len(registry.Names()),
			)
			for _, id := range registry.List() {
				logger.Info("Evaluator validated",
					"name", id.Name,
					"role", id.Role,
					"provider", id.Provider,
					"weight", id.Weight,
				)
			}
			return nil
		},
	}
}
