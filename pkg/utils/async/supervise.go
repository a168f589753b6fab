package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/crucible/pkg/utils/logging"
)

// Supervise runs handler in the calling goroutine and converts a panic into
// an error, so one misbehaving task cannot take down its siblings.
func Supervise(ctx context.Context, handler func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Error("panic in supervised handler", "panic", r)
			err = goerr.New("panic in supervised handler", goerr.V("panic", r))
		}
	}()

	return handler(ctx)
}
