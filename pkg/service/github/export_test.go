package github

import (
	"net/http"

	"github.com/shurcooL/githubv4"
)

// NewWithEndpoint creates a Service that talks to a GraphQL endpoint without authentication
func NewWithEndpoint(url string) Service {
	return &client{gql: githubv4.NewEnterpriseClient(url, http.DefaultClient)}
}
