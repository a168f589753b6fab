package cli

import (
	"context"

	"github.com/secmon-lab/crucible/pkg/cli/config"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/usecase"
	"github.com/secmon-lab/crucible/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdHistory() *cli.Command {
	var repoCfg config.Repository
	var limit int
	var verdictID string
	var format string

	var flags []cli.Flag
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags,
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of verdicts to list",
			Value:       usecase.DefaultHistoryLimit,
			Destination: &limit,
		},
		&cli.StringFlag{
			Name:        "id",
			Usage:       "Show a single verdict in full",
			Destination: &verdictID,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Output format for --id [text|json]",
			Value:       formatText,
			Destination: &format,
		},
	)

	return &cli.Command{
		Name:  "history",
		Usage: "List saved verdicts, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			uc := usecase.NewVerdictUseCase(repo.Verdict())
			w := c.Root().Writer

			if verdictID != "" {
				verdict, err := uc.Get(ctx, model.VerdictID(verdictID))
				if err != nil {
					return err
				}
				return renderVerdict(ctx, w, format, verdict)
			}

			verdicts, err := uc.History(ctx, limit)
			if err != nil {
				return err
			}
			renderHistory(ctx, w, verdicts)
			return nil
		},
	}
}
