package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for verdict notifications
type Slack struct {
	botToken string
	channel  string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token used to post verdicts",
			Sources:     cli.EnvVars("CRUCIBLE_SLACK_BOT_TOKEN"),
			Destination: &s.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID to post verdicts to",
			Sources:     cli.EnvVars("CRUCIBLE_SLACK_CHANNEL"),
			Destination: &s.channel,
		},
	}
}

// LogValue implements slog.LogValuer
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", s.botToken != ""),
		slog.String("channel", s.channel),
	)
}

// Configure builds a verdict notifier. Returns nil if no bot token is set.
func (s *Slack) Configure() (*slack.Notifier, error) {
	if s.botToken == "" {
		return nil, nil
	}
	if s.channel == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "slack-channel is required when slack-bot-token is set")
	}

	svc, err := slack.New(s.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Slack service")
	}
	return slack.NewNotifier(svc, s.channel), nil
}
