package notion_test

import (
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/crucible/pkg/service/notion"
)

func TestNew(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		svc, err := notion.New("test-token")
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := notion.New("")
		gt.Error(t, err)
	})
}

func TestFetchPage_InvalidReference(t *testing.T) {
	svc, err := notion.New("test-token")
	gt.NoError(t, err).Required()

	_, err = svc.FetchPage(t.Context(), "not-a-page")
	gt.Error(t, err)
}

func TestFetchPage_Integration(t *testing.T) {
	token := os.Getenv("TEST_NOTION_API_TOKEN")
	if token == "" {
		t.Skip("TEST_NOTION_API_TOKEN environment variable not set")
	}
	pageID := os.Getenv("TEST_NOTION_PAGE_ID")
	if pageID == "" {
		t.Skip("TEST_NOTION_PAGE_ID environment variable not set")
	}

	svc, err := notion.New(token)
	gt.NoError(t, err).Required()

	page, err := svc.FetchPage(t.Context(), pageID)
	gt.NoError(t, err).Required()
	gt.String(t, page.ID).NotEqual("")
	gt.String(t, page.Proposal()).NotEqual("")
	t.Logf("fetched %q (%d blocks)", page.Title, len(page.Blocks))
}
