package github

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Service reads proposal documents from GitHub issues and pull requests
type Service interface {
	// FetchIssue returns the issue or pull request with its comments
	FetchIssue(ctx context.Context, ref IssueRef) (*Issue, error)
}

// IssueRef identifies an issue or pull request
type IssueRef struct {
	Owner  string
	Repo   string
	Number int
}

func (r IssueRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

var (
	shortRefPattern = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)#(\d+)$`)
	urlRefPattern   = regexp.MustCompile(`^https://github\.com/([\w.-]+)/([\w.-]+)/(?:issues|pull)/(\d+)(?:[/?#].*)?$`)
)

// ParseIssueRef accepts "owner/repo#123" or an issue or pull request URL
func ParseIssueRef(s string) (IssueRef, error) {
	s = strings.TrimSpace(s)
	m := shortRefPattern.FindStringSubmatch(s)
	if m == nil {
		m = urlRefPattern.FindStringSubmatch(s)
	}
	if m == nil {
		return IssueRef{}, goerr.New("invalid GitHub issue reference", goerr.V("issue", s))
	}

	n, err := strconv.Atoi(m[3])
	if err != nil || n <= 0 {
		return IssueRef{}, goerr.New("invalid GitHub issue number", goerr.V("issue", s))
	}
	return IssueRef{Owner: m[1], Repo: m[2], Number: n}, nil
}

// Issue is an issue or pull request. IsPullRequest tells them apart.
type Issue struct {
	Number        int
	Title         string
	Body          string
	Author        string
	State         string
	URL           string
	Labels        []string
	CreatedAt     time.Time
	Comments      []Comment
	IsPullRequest bool
}

type Comment struct {
	Author    string
	Body      string
	CreatedAt time.Time
}

// Proposal renders the issue as proposal text. Comments are appended as
// discussion so evaluators see objections raised in the thread.
func (i *Issue) Proposal() string {
	var sb strings.Builder
	sb.WriteString(i.Title)
	if body := strings.TrimSpace(i.Body); body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(body)
	}
	if len(i.Labels) > 0 {
		sb.WriteString("\n\nLabels: ")
		sb.WriteString(strings.Join(i.Labels, ", "))
	}
	if len(i.Comments) > 0 {
		sb.WriteString("\n\nDiscussion:")
		for _, c := range i.Comments {
			fmt.Fprintf(&sb, "\n- %s: %s", c.Author, strings.TrimSpace(c.Body))
		}
	}
	return sb.String()
}
