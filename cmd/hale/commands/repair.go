package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.trai.ch/hale/internal/core/domain"
)

func (c *CLI) newRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Plan repairs for diagnosed problems and optionally apply them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if apply, _ := cmd.Flags().GetBool("apply"); !apply {
				plan, _, err := c.app.PlanRepairs(cmd.Context(), root)
				if err != nil {
					return err
				}
				renderPlan(out, plan)
				return nil
			}

			var policy domain.FailurePolicy
			if name, _ := cmd.Flags().GetString("policy"); name != "" {
				var ok bool
				if policy, ok = domain.ParseFailurePolicy(name); !ok {
					return fmt.Errorf("unknown failure policy %q", name)
				}
			}

			results, plan, err := c.app.Repair(cmd.Context(), root, policy)
			if plan != nil && plan.Len() == 0 {
				fmt.Fprintln(out, "Nothing to repair")
				return err
			}
			renderResults(out, results)
			return err
		},
	}
	cmd.Flags().Bool("plan", false, "Show the repair plan without applying it (the default)")
	cmd.Flags().Bool("apply", false, "Apply the repair plan")
	cmd.Flags().String("policy", "", "Failure policy: stop or continue")
	return cmd
}
