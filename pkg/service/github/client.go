package github

import (
	"context"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/shurcooL/githubv4"
)

type client struct {
	gql *githubv4.Client
}

// New creates a GitHub service using GitHub App authentication.
// privateKey can be a PEM string or a file path to a PEM file.
func New(appID, installationID int64, privateKey string) (Service, error) {
	var key []byte

	// #nosec G304 -- path comes from CLI flag, not user input
	if data, err := os.ReadFile(privateKey); err == nil {
		key = data
	} else {
		key = []byte(privateKey)
	}

	tr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	return &client{gql: githubv4.NewClient(&http.Client{Transport: tr})}, nil
}

func (c *client) FetchIssue(ctx context.Context, ref IssueRef) (*Issue, error) {
	var q issueQuery
	variables := map[string]interface{}{
		"owner":  githubv4.String(ref.Owner),
		"name":   githubv4.String(ref.Repo),
		"number": githubv4.Int(int32(ref.Number)), // #nosec G115 -- validated by ParseIssueRef
	}

	if err := c.gql.Query(ctx, &q, variables); err != nil {
		return nil, goerr.Wrap(err, "failed to query issue", goerr.V("issue", ref.String()))
	}

	node := q.Repository.IssueOrPullRequest
	switch node.Typename {
	case "Issue":
		return node.Issue.toIssue(false), nil
	case "PullRequest":
		return node.PullRequest.toIssue(true), nil
	default:
		return nil, goerr.New("issue not found", goerr.V("issue", ref.String()))
	}
}

type issueQuery struct {
	Repository struct {
		IssueOrPullRequest struct {
			Typename    githubv4.String `graphql:"__typename"`
			Issue       issueFragment   `graphql:"... on Issue"`
			PullRequest issueFragment   `graphql:"... on PullRequest"`
		} `graphql:"issueOrPullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type issueFragment struct {
	Number    githubv4.Int
	Title     githubv4.String
	Body      githubv4.String
	State     githubv4.String
	URL       githubv4.String
	CreatedAt githubv4.DateTime
	Author    struct {
		Login githubv4.String
	}
	Labels struct {
		Nodes []struct {
			Name githubv4.String
		}
	} `graphql:"labels(first: 20)"`
	Comments struct {
		Nodes []struct {
			Body      githubv4.String
			CreatedAt githubv4.DateTime
			Author    struct {
				Login githubv4.String
			}
		}
	} `graphql:"comments(first: 50)"`
}

func (f issueFragment) toIssue(isPR bool) *Issue {
	issue := &Issue{
		Number:        int(f.Number),
		Title:         string(f.Title),
		Body:          string(f.Body),
		Author:        string(f.Author.Login),
		State:         string(f.State),
		URL:           string(f.URL),
		CreatedAt:     f.CreatedAt.Time,
		IsPullRequest: isPR,
	}
	for _, l := range f.Labels.Nodes {
		issue.Labels = append(issue.Labels, string(l.Name))
	}
	for _, c := range f.Comments.Nodes {
		issue.Comments = append(issue.Comments, Comment{
			Author:    string(c.Author.Login),
			Body:      string(c.Body),
			CreatedAt: c.CreatedAt.Time,
		})
	}
	return issue
}
