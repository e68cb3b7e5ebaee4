package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planpilot/planpilot/internal/errors"
	"github.com/planpilot/planpilot/internal/plan"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "memory", cfg.Target)
	assert.Equal(t, "planpilot", cfg.DiscoveryLabel)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, DefaultSyncMapPath, cfg.SyncMapPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
target: memory
plan:
  unified: plan/plan.yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Target)
	assert.Equal(t, "plan/plan.yaml", cfg.Plan.Unified)
	assert.Equal(t, "planpilot", cfg.DiscoveryLabel)
	assert.Equal(t, 1, cfg.Concurrency)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
target: memory
target_options:
  board_url: memory://custom
plan:
  epics: plan/epics.yaml
  stories: plan/stories.yaml
  tasks: plan/tasks.yaml
discovery_label: my-project
labels:
  - team-checkout
concurrency: 4
sync_map_path: out/sync-map.json
log_level: debug
log_format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory://custom", cfg.TargetOptions["board_url"])
	assert.Equal(t, plan.Paths{
		Epics:   "plan/epics.yaml",
		Stories: "plan/stories.yaml",
		Tasks:   "plan/tasks.yaml",
	}, cfg.Plan)
	assert.Equal(t, "my-project", cfg.DiscoveryLabel)
	assert.Equal(t, []string{"team-checkout"}, cfg.Labels)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "out/sync-map.json", cfg.SyncMapPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var perr *errors.PlanPilotError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errors.ErrCodeConfigNotFound, perr.Code)
	assert.NotEmpty(t, perr.Suggestions)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "target: [unclosed")

	_, err := Load(path)
	require.Error(t, err)

	var perr *errors.PlanPilotError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errors.ErrCodeConfigInvalid, perr.Code)
}

func TestValidate(t *testing.T) {
	unified := plan.Paths{Unified: "plan.yaml"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing target",
			mutate:  func(c *Config) { c.Target = "" },
			wantErr: "target",
		},
		{
			name:    "mixed plan layouts",
			mutate:  func(c *Config) { c.Plan.Epics = "epics.yaml" },
			wantErr: "unified plan path cannot be combined",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Concurrency = 0 },
			wantErr: "concurrency",
		},
		{
			name:    "empty discovery label",
			mutate:  func(c *Config) { c.DiscoveryLabel = "" },
			wantErr: "discovery_label",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Plan = unified
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
