package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.trai.ch/hale/internal/core/domain"
)

func (c *CLI) newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the live environment against the lock document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}

			discrepancies, err := c.app.Verify(cmd.Context(), root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				if err := writeJSON(out, discrepanciesJSON(discrepancies)); err != nil {
					return err
				}
			} else if len(discrepancies) == 0 {
				fmt.Fprintln(out, "Environment matches the lock document")
			} else {
				for _, d := range discrepancies {
					fmt.Fprintf(out, "[%s] %s: locked %q, live %q\n", d.Severity, d.FieldPath, d.Expected, d.Actual)
				}
			}

			// Drift is a report, not an error. Only strict mode turns a
			// non-empty list into a failing exit.
			if strict, _ := cmd.Flags().GetBool("strict"); strict && len(discrepancies) > 0 {
				return domain.ErrDriftDetected
			}
			return nil
		},
	}
	cmd.Flags().Bool("strict", false, "Fail when any field drifted from the lock")
	cmd.Flags().Bool("json", false, "Emit discrepancies as JSON")
	return cmd
}
