package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planpilot/planpilot/internal/plan"
)

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Print the deterministic plan identifier",
	Long: `Compute and print the plan identifier: a 12-character hash of the
canonicalized plan content.

The identifier is stable across file layout, item ordering, and
empty-versus-omitted optional fields. It is the correlation key embedded in
every item created on the target.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p, err := plan.Load(cfg.Plan)
		if err != nil {
			return err
		}

		planID, err := plan.ComputePlanID(p)
		if err != nil {
			return err
		}

		fmt.Println(planID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(idCmd)
}
