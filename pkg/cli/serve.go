package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/cli/config"
	httpctrl "github.com/secmon-lab/crucible/pkg/controller/http"
	"github.com/secmon-lab/crucible/pkg/usecase"
	"github.com/secmon-lab/crucible/pkg/utils/logging"
	"github.com/secmon-lab/crucible/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var concurrency int
	var registryCfg config.Registry
	var llmCfg config.LLM
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       "127.0.0.1:8080",
			Sources:     cli.EnvVars("CRUCIBLE_ADDR"),
			Destination: &addr,
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Maximum evaluators running at once per request (0 for no limit)",
			Sources:     cli.EnvVars("CRUCIBLE_CONCURRENCY"),
			Destination: &concurrency,
		},
	}
	flags = append(flags, registryCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serve the evaluation API over HTTP",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			registry, err := registryCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load evaluator registry")
			}

			evaluators, err := llmCfg.Configure(ctx, registry)
			if err != nil {
				return goerr.Wrap(err, "failed to configure evaluators")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure repository")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(registry,
				usecase.WithEvaluators(evaluators),
				usecase.WithConcurrency(concurrency),
				usecase.WithVerdictRepository(repo.Verdict()),
			)

			httpOpts := []httpctrl.Options{httpctrl.WithVerdictUseCase(uc.Verdict)}
			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure Slack")
			}
			if notifier != nil {
				httpOpts = append(httpOpts, httpctrl.WithNotifier(notifier))
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc.Evaluate, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server",
					"addr", addr,
					"registry", registryCfg,
					"llm", llmCfg,
					"repository", repoCfg,
					"slack", slackCfg,
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown completed")
			return nil
		},
	}
}
