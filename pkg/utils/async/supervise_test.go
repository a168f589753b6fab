package async_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/crucible/pkg/utils/async"
)

func TestSupervise(t *testing.T) {
	t.Run("returns handler result", func(t *testing.T) {
		gt.NoError(t, async.Supervise(context.Background(), func(ctx context.Context) error {
			return nil
		}))

		want := errors.New("boom")
		err := async.Supervise(context.Background(), func(ctx context.Context) error {
			return want
		})
		gt.Bool(t, errors.Is(err, want)).True()
	})

	t.Run("converts panic to error", func(t *testing.T) {
		err := async.Supervise(context.Background(), func(ctx context.Context) error {
			panic("evaluator exploded")
		})
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("panic")
	})
}
