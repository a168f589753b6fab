package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/crucible/pkg/cli"
)

func TestRun_ValidateCommand_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "panel.toml")
	content := `
[[evaluator]]
name = "skeptic"
role = "vc_skeptic"
weight = 1.3
provider = "openai"

[[evaluator]]
name = "auditor"
role = "technical_auditor"
provider = "deepseek"

[priority]
"Technical Feasibility" = ["auditor", "skeptic"]
`
	err := os.WriteFile(configPath, []byte(content), 0o600)
	gt.NoError(t, err).Required()

	err = cli.Run(context.Background(), []string{"crucible", "validate", "--registry-config", configPath}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "panel.toml")

	content := `
[[evaluator]]
name = "skeptic"

[priority]
"Market Viability" = ["nobody"]
`
	err := os.WriteFile(configPath, []byte(content), 0o600)
	gt.NoError(t, err).Required()

	err = cli.Run(context.Background(), []string{"crucible", "validate", "--registry-config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_MissingConfig(t *testing.T) {
	err := cli.Run(context.Background(), []string{"crucible", "validate", "--registry-config", "/nonexistent/panel.toml"}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_NoPath(t *testing.T) {
	t.Setenv("CRUCIBLE_REGISTRY_CONFIG", "")
	err := cli.Run(context.Background(), []string{"crucible", "validate"}, "test")
	gt.Value(t, err).NotNil()
}
