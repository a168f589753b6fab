package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/secmon-lab/crucible/pkg/cli/config"
	"github.com/secmon-lab/crucible/pkg/domain/types"
	"github.com/secmon-lab/crucible/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// DecisionError reports a finished evaluation whose decision maps to a
// non-zero exit code. It is not a failure of the run itself.
type DecisionError struct {
	Decision types.Decision
	Code     int
}

func (e *DecisionError) Error() string {
	return fmt.Sprintf("decision %s (exit code %d)", e.Decision, e.Code)
}

func Run(ctx context.Context, args []string, version string) error {
	return run(ctx, args, version, os.Stdout)
}

func run(ctx context.Context, args []string, version string, w io.Writer) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	var flags []cli.Flag
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	app := &cli.Command{
		Name:    "crucible",
		Usage:   "Score a proposal with a panel of evaluators and reconcile their verdicts",
		Version: version,
		Writer:  w,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			logging.Default().Debug("Starting crucible", "logger", loggerCfg, "sentry", sentryCfg)
			return logging.With(ctx, logging.Default()), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdEvaluate(),
			cmdHistory(),
			cmdValidate(),
			cmdServe(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		var decisionErr *DecisionError
		if !errors.As(err, &decisionErr) {
			logging.Default().Error("failed to run app", "error", err)
		}
		return err
	}

	return nil
}
