package config

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/service/github"
	"github.com/secmon-lab/crucible/pkg/service/notion"
	"github.com/urfave/cli/v3"
)

type notionFactory func(token string) (notion.Service, error)
type githubFactory func(appID, installationID int64, privateKey string) (github.Service, error)

// Source holds CLI flags that select where the proposal text comes from.
// Positional arguments, a file, a Notion page and a GitHub issue are mutually exclusive.
type Source struct {
	file string

	notionToken string
	notionPage  string

	githubAppID          int64
	githubInstallationID int64
	githubPrivateKey     string
	githubIssue          string

	newNotion notionFactory
	newGitHub githubFactory
}

// Flags returns CLI flags for proposal sources
func (s *Source) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "proposal-file",
			Usage:       "Read the proposal from a text file",
			Sources:     cli.EnvVars("CRUCIBLE_PROPOSAL_FILE"),
			Destination: &s.file,
		},
		&cli.StringFlag{
			Name:        "notion-token",
			Usage:       "Notion integration token",
			Sources:     cli.EnvVars("CRUCIBLE_NOTION_TOKEN"),
			Destination: &s.notionToken,
		},
		&cli.StringFlag{
			Name:        "notion-page",
			Usage:       "Read the proposal from a Notion page (ID or URL)",
			Destination: &s.notionPage,
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Sources:     cli.EnvVars("CRUCIBLE_GITHUB_APP_ID"),
			Destination: &s.githubAppID,
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Sources:     cli.EnvVars("CRUCIBLE_GITHUB_INSTALLATION_ID"),
			Destination: &s.githubInstallationID,
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "GitHub App private key (PEM string or file path)",
			Sources:     cli.EnvVars("CRUCIBLE_GITHUB_PRIVATE_KEY"),
			Destination: &s.githubPrivateKey,
		},
		&cli.StringFlag{
			Name:        "github-issue",
			Usage:       "Read the proposal from a GitHub issue or pull request (owner/repo#N or URL)",
			Destination: &s.githubIssue,
		},
	}
}

// LogValue implements slog.LogValuer
func (s Source) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("file", s.file),
		slog.String("notion_page", s.notionPage),
		slog.String("github_issue", s.githubIssue),
		slog.Bool("github_app", s.githubAppID != 0),
	)
}

// Resolve returns the proposal text. args are the command's positional arguments.
func (s *Source) Resolve(ctx context.Context, args []string) (string, error) {
	inline := strings.Join(args, " ")

	var selected []string
	if strings.TrimSpace(inline) != "" {
		selected = append(selected, "arguments")
	}
	if s.file != "" {
		selected = append(selected, "proposal-file")
	}
	if s.notionPage != "" {
		selected = append(selected, "notion-page")
	}
	if s.githubIssue != "" {
		selected = append(selected, "github-issue")
	}
	if len(selected) > 1 {
		return "", goerr.Wrap(ErrInvalidConfig, "only one proposal source can be used", goerr.V("sources", selected))
	}

	switch {
	case s.file != "":
		// #nosec G304 -- path comes from CLI flag
		data, err := os.ReadFile(s.file)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read proposal file", goerr.V(ConfigPathKey, s.file))
		}
		return string(data), nil

	case s.notionPage != "":
		return s.fromNotion(ctx)

	case s.githubIssue != "":
		return s.fromGitHub(ctx)

	default:
		return inline, nil
	}
}

func (s *Source) fromNotion(ctx context.Context) (string, error) {
	if s.notionToken == "" {
		return "", goerr.Wrap(ErrInvalidConfig, "notion-token is required when notion-page is set")
	}

	factory := s.newNotion
	if factory == nil {
		factory = notion.New
	}
	svc, err := factory(s.notionToken)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create Notion service")
	}

	page, err := svc.FetchPage(ctx, s.notionPage)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch proposal from Notion", goerr.V("page", s.notionPage))
	}
	return page.Proposal(), nil
}

func (s *Source) fromGitHub(ctx context.Context) (string, error) {
	ref, err := github.ParseIssueRef(s.githubIssue)
	if err != nil {
		return "", goerr.Wrap(ErrInvalidConfig, "invalid github-issue", goerr.V("issue", s.githubIssue), goerr.V("cause", err.Error()))
	}
	if s.githubAppID == 0 || s.githubInstallationID == 0 || s.githubPrivateKey == "" {
		return "", goerr.Wrap(ErrInvalidConfig, "github-app-id, github-installation-id and github-private-key are required when github-issue is set")
	}

	factory := s.newGitHub
	if factory == nil {
		factory = github.New
	}
	svc, err := factory(s.githubAppID, s.githubInstallationID, s.githubPrivateKey)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create GitHub service")
	}

	issue, err := svc.FetchIssue(ctx, ref)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch proposal from GitHub", goerr.V("issue", ref.String()))
	}
	return issue.Proposal(), nil
}
