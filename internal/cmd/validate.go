package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/planpilot/planpilot/internal/plan"
	"github.com/planpilot/planpilot/internal/ux"
)

var validateMode string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the plan without touching any external system",
	Long: `Load the plan and check its relational integrity: unique ids, hierarchy
shape, reference resolution, required fields, and sub-item consistency.

All problems are collected and reported together. In partial mode,
references to items outside the loaded plan slice are tolerated.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mode, err := parseMode(validateMode)
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

	ux.Success(os.Stdout, "plan is valid: %d item(s), %s mode", p.Len(), mode)
	return nil
}

func init() {
	validateCmd.Flags().StringVar(&validateMode, "mode", "strict", "validation mode: strict or partial")
	rootCmd.AddCommand(validateCmd)
}
