package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/planpilot/planpilot/internal/provider"
	"github.com/planpilot/planpilot/internal/provider/memory"
)

var rootCmd = &cobra.Command{
	Use:   "planpilot",
	Short: "Sync hierarchical project plans into a work-tracking system",
	Long: `planpilot converts a hierarchical project plan (epics, stories, tasks)
into state in an external work-tracking system, and keeps that state
idempotently reconciled across repeated runs.

Items are correlated by a deterministic plan identifier embedded in every
created item, so re-running a sync never duplicates work.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var cfgPath string

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// targets returns the adapter registry available to the CLI. The memory
// adapter is always present; remote adapters register here as they land.
func targets() *provider.Registry {
	registry := provider.NewRegistry()
	_ = registry.Register(memory.Target, memory.Factory)
	return registry
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default is .planpilot/config.yaml)")
}
