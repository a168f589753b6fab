package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/crucible/pkg/cli/config"
)

func TestSlack_Configure(t *testing.T) {
	t.Run("disabled without token", func(t *testing.T) {
		notifier, err := config.NewSlackForTest("", "C1").Configure()
		gt.NoError(t, err)
		gt.Value(t, notifier).Nil()
	})

	t.Run("channel is required with token", func(t *testing.T) {
		_, err := config.NewSlackForTest("xoxb-test", "").Configure()
		gt.Bool(t, errors.Is(err, config.ErrInvalidConfig)).True()
	})

	t.Run("builds notifier", func(t *testing.T) {
		notifier, err := config.NewSlackForTest("xoxb-test", "C1").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, notifier).NotNil()
	})
}
