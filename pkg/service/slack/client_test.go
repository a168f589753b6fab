package slack_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/crucible/pkg/service/slack"
	slackgo "github.com/slack-go/slack"
)

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when token is provided", func(t *testing.T) {
		svc, err := slack.New("test-token")
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func TestClient_PostMessage(t *testing.T) {
	var gotChannel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, r.ParseForm())
		gotChannel = r.FormValue("channel")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":      true,
			"channel": gotChannel,
			"ts":      "1700000000.000100",
		})
	}))
	defer srv.Close()

	svc, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	ts, err := svc.PostMessage(t.Context(), "C012345",
		[]slackgo.Block{slackgo.NewDividerBlock()}, "fallback")
	gt.NoError(t, err).Required()
	gt.Value(t, ts).Equal("1700000000.000100")
	gt.Value(t, gotChannel).Equal("C012345")
}

func TestClient_PostMessage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "channel_not_found"})
	}))
	defer srv.Close()

	svc, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/"))
	gt.NoError(t, err).Required()

	_, err = svc.PostMessage(t.Context(), "C404", nil, "fallback")
	gt.Value(t, err).NotNil()
}
