package github_test

import (
	"strconv"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/crucible/pkg/service/github"
)

func TestParseIssueRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    github.IssueRef
		wantErr bool
	}{
		{name: "short form", input: "acme/ideas#12", want: github.IssueRef{Owner: "acme", Repo: "ideas", Number: 12}},
		{name: "issue URL", input: "https://github.com/acme/ideas/issues/12", want: github.IssueRef{Owner: "acme", Repo: "ideas", Number: 12}},
		{name: "pull URL with fragment", input: "https://github.com/acme/idea.s/pull/3#discussion", want: github.IssueRef{Owner: "acme", Repo: "idea.s", Number: 3}},
		{name: "surrounding spaces", input: "  acme/ideas#1 ", want: github.IssueRef{Owner: "acme", Repo: "ideas", Number: 1}},
		{name: "missing number", input: "acme/ideas", wantErr: true},
		{name: "zero", input: "acme/ideas#0", wantErr: true},
		{name: "other host", input: "https://gitlab.com/acme/ideas/issues/1", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := github.ParseIssueRef(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
			gt.Value(t, got.String()).Equal(tt.want.Owner + "/" + tt.want.Repo + "#" + strconv.Itoa(tt.want.Number))
		})
	}
}

func TestIssue_Proposal(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		issue := &github.Issue{
			Title:  "Usage-based pricing",
			Body:   "Charge per evaluation.\n",
			Labels: []string{"pricing", "q3"},
			Comments: []github.Comment{
				{Author: "bob", Body: "Churn risk?"},
			},
		}
		gt.Value(t, issue.Proposal()).Equal(
			"Usage-based pricing\n\nCharge per evaluation.\n\nLabels: pricing, q3\n\nDiscussion:\n- bob: Churn risk?")
	})

	t.Run("title only", func(t *testing.T) {
		issue := &github.Issue{Title: "Bare idea", Body: "  "}
		gt.Value(t, issue.Proposal()).Equal("Bare idea")
	})
}
