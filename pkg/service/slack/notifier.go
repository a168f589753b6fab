package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/domain/model"
	"github.com/secmon-lab/crucible/pkg/utils/logging"
)

// Notifier publishes finished verdicts to one Slack channel
type Notifier struct {
	svc     Service
	channel string
}

// NewNotifier creates a Notifier posting to channel through svc
func NewNotifier(svc Service, channel string) *Notifier {
	return &Notifier{svc: svc, channel: channel}
}

// Notify posts the verdict summary
func (n *Notifier) Notify(ctx context.Context, v *model.RunVerdict) error {
	if v == nil {
		return goerr.New("verdict is required")
	}

	ts, err := n.svc.PostMessage(ctx, n.channel, VerdictBlocks(v), VerdictText(v))
	if err != nil {
		return goerr.Wrap(err, "failed to notify verdict",
			goerr.V("channel", n.channel), goerr.V("verdict_id", v.ID))
	}

	logging.From(ctx).Debug("Verdict posted to Slack", "channel", n.channel, "ts", ts, "verdict_id", v.ID)
	return nil
}
