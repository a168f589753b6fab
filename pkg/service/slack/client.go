package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// client implements Service interface
type client struct {
	api *slack.Client
}

// Option is a functional option for client configuration
type Option func(*clientOptions)

type clientOptions struct {
	apiURL string
}

// WithAPIURL overrides the Slack API endpoint
func WithAPIURL(url string) Option {
	return func(o *clientOptions) {
		o.apiURL = url
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	var apiOpts []slack.Option
	if o.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(o.apiURL))
	}

	return &client{api: slack.New(token, apiOpts...)}, nil
}

// PostMessage posts a Block Kit message to a channel
func (c *client) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message", goerr.V("channelID", channelID))
	}
	return ts, nil
}
