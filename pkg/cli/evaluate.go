package cli

import (
	"bytes"
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/cli/config"
	"github.com/secmon-lab/crucible/pkg/usecase"
	"github.com/secmon-lab/crucible/pkg/utils/errutil"
	"github.com/secmon-lab/crucible/pkg/utils/logging"
	"github.com/secmon-lab/crucible/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdEvaluate() *cli.Command {
	var registryCfg config.Registry
	var llmCfg config.LLM
	var repoCfg config.Repository
	var slackCfg config.Slack
	var sourceCfg config.Source
	var evaluatorNames []string
	var format string
	var outputPath string
	var save bool
	var concurrency int

	var flags []cli.Flag
	flags = append(flags, registryCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, sourceCfg.Flags()...)
	flags = append(flags,
		&cli.StringSliceFlag{
			Name:        "evaluator",
			Aliases:     []string{"e"},
			Usage:       "Evaluator to consult, repeatable (all registered evaluators when omitted)",
			Destination: &evaluatorNames,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Output format [text|json]",
			Value:       formatText,
			Sources:     cli.EnvVars("CRUCIBLE_FORMAT"),
			Destination: &format,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Also write the verdict as JSON to this file",
			Destination: &outputPath,
		},
		&cli.BoolFlag{
			Name:        "save",
			Usage:       "Store the verdict in the verdict repository",
			Sources:     cli.EnvVars("CRUCIBLE_SAVE"),
			Destination: &save,
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Maximum evaluators running at once (0 for no limit)",
			Sources:     cli.EnvVars("CRUCIBLE_CONCURRENCY"),
			Destination: &concurrency,
		},
	)

	return &cli.Command{
		Name:      "evaluate",
		Aliases:   []string{"e"},
		Usage:     "Evaluate a proposal",
		ArgsUsage: "[proposal...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)
			if format != formatText && format != formatJSON {
				return goerr.Wrap(config.ErrInvalidConfig, "unsupported output format", goerr.V("format", format))
			}

			proposal, err := sourceCfg.Resolve(ctx, c.Args().Slice())
			if err != nil {
				return goerr.Wrap(err, "failed to read proposal")
			}
			logger.Debug("Proposal loaded", "source", sourceCfg, "length", len(proposal))

			registry, err := registryCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load evaluator registry")
			}
			logger.Debug("Registry loaded", "registry", registryCfg, "evaluators", registry.Names())

			evaluators, err := llmCfg.Configure(ctx, registry)
			if err != nil {
				return goerr.Wrap(err, "failed to configure evaluators")
			}
			logger.Debug("Evaluators configured", "llm", llmCfg)

			opts := []usecase.Option{
				usecase.WithEvaluators(evaluators),
				usecase.WithConcurrency(concurrency),
			}
			if save {
				repo, err := repoCfg.Configure(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to configure repository")
				}
				defer safe.Close(ctx, repo)
				opts = append(opts, usecase.WithVerdictRepository(repo.Verdict()))
			}
			uc := usecase.New(registry, opts...)

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure Slack")
			}

			input := usecase.EvaluateInput{Proposal: proposal}
			if c.IsSet("evaluator") {
				input.Evaluators = evaluatorNames
			}

			verdict, err := uc.Evaluate.Evaluate(ctx, input)
			if err != nil {
				return err
			}

			if save {
				if err := uc.Verdict.Save(ctx, verdict); err != nil {
					return err
				}
				logger.Info("Verdict saved", "verdict_id", verdict.ID, "repository", repoCfg)
			}

			if notifier != nil {
				if err := notifier.Notify(ctx, verdict); err != nil {
					_ = errutil.Handle(ctx, err, "failed to post verdict to Slack")
				}
			}

			if err := renderVerdict(ctx, c.Root().Writer, format, verdict); err != nil {
				return err
			}

			if outputPath != "" {
				var buf bytes.Buffer
				if err := renderJSON(ctx, &buf, verdict); err != nil {
					return err
				}
				if err := os.WriteFile(outputPath, buf.Bytes(), 0600); err != nil {
					return goerr.Wrap(err, "failed to write verdict file", goerr.V("path", outputPath))
				}
				logger.Info("Verdict written", "path", outputPath)
			}

			if code := verdict.Decision.ExitCode(); code != 0 {
				return &DecisionError{Decision: verdict.Decision, Code: code}
			}
			return nil
		},
	}
}
