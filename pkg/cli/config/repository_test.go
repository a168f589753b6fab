package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/crucible/pkg/cli/config"
)

func TestRepository_Configure(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("memory", "").Configure(t.Context())
		gt.NoError(t, err).Required()
		gt.Value(t, repo.Verdict()).NotNil()
		gt.NoError(t, repo.Close())
	})

	t.Run("empty backend defaults to memory", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("", "").Configure(t.Context())
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore requires project ID", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("firestore", "").Configure(t.Context())
		gt.Bool(t, errors.Is(err, config.ErrInvalidConfig)).True()
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("postgres", "").Configure(t.Context())
		gt.Bool(t, errors.Is(err, config.ErrInvalidConfig)).True()
	})
}
