package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/planpilot/planpilot/internal/config"
	"github.com/planpilot/planpilot/internal/engine"
	"github.com/planpilot/planpilot/internal/log"
	"github.com/planpilot/planpilot/internal/plan"
	"github.com/planpilot/planpilot/internal/render"
	"github.com/planpilot/planpilot/internal/statestore"
	"github.com/planpilot/planpilot/internal/ux"
)

var syncMode string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the plan into the configured target",
	Long: `Load and validate the plan, compute its identifier, and reconcile it into
the configured work-tracking target.

The run is idempotent: items created by an earlier run are found by their
embedded metadata marker and updated in place. A run interrupted partway is
repaired by simply running sync again.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := log.New(log.Config{
		Level:  log.ParseLevel(cfg.LogLevel),
		Format: log.ParseFormat(cfg.LogFormat),
		Output: log.OutputStderr(),
	})

	mode, err := parseMode(syncMode)
	if err != nil {
		return err
	}

	p, err := plan.Load(cfg.Plan)
	if err != nil {
		return err
	}
	if err := plan.Validate(p, mode); err != nil {
		return err
	}

	planID, err := plan.ComputePlanID(p)
	if err != nil {
		return err
	}

	prov, err := targets().Open(cfg.Target, cfg.TargetOptions)
	if err != nil {
		return err
	}

	session, err := prov.Enter(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := prov.Exit(ctx); err != nil {
			logger.Warn("session exit failed", "error", err.Error())
		}
	}()

	eng := engine.New(prov, render.NewMarkdownRenderer(), session, engine.Options{
		DiscoveryLabel: cfg.DiscoveryLabel,
		ExtraLabels:    cfg.Labels,
		Concurrency:    cfg.Concurrency,
		Logger:         logger,
	})

	result, err := eng.Sync(ctx, p, planID)
	if err != nil {
		return err
	}

	if err := statestore.NewStore().Save(result.SyncMap, cfg.SyncMapPath); err != nil {
		return err
	}

	printSummary(result, planID, cfg)
	return nil
}

func printSummary(result *engine.Result, planID string, cfg *config.Config) {
	out := os.Stdout

	ux.Success(out, "synced %d item(s) to %s", len(result.SyncMap.Entries), cfg.Target)
	ux.Field(out, "plan id", planID)
	ux.Field(out, "created", fmt.Sprintf("%d epics, %d stories, %d tasks",
		result.Created[plan.TypeEpic], result.Created[plan.TypeStory], result.Created[plan.TypeTask]))
	ux.Field(out, "sync map", cfg.SyncMapPath)

	ids := make([]string, 0, len(result.SyncMap.Entries))
	for id := range result.SyncMap.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		entry := result.SyncMap.Entries[id]
		fmt.Fprintf(out, "  %s  %s  %s\n", ux.Key(entry.Key), id, entry.URL)
	}

	for _, edge := range result.DroppedEdges {
		ux.Warn(out, "dropped cyclic dependency edge %s -> %s", edge.From, edge.To)
	}
}

func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		path = config.DefaultPath
	}
	return config.Load(path)
}

func parseMode(s string) (plan.Mode, error) {
	switch s {
	case "strict", "":
		return plan.ModeStrict, nil
	case "partial":
		return plan.ModePartial, nil
	default:
		return "", fmt.Errorf("unknown validation mode %q (must be strict or partial)", s)
	}
}

func init() {
	syncCmd.Flags().StringVar(&syncMode, "mode", "strict", "validation mode: strict or partial")
	rootCmd.AddCommand(syncCmd)
}
