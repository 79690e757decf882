package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Refresh the stored fingerprint from the live environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}
			full, _ := cmd.Flags().GetBool("full")

			doc, err := c.app.Lock(cmd.Context(), root, full)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated lock document (%s)\n", describeFingerprint(doc.Fingerprint))
			return nil
		},
	}
	cmd.Flags().Bool("full", false, "Also capture the platform and a digest of the installed packages")
	return cmd
}
