package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Record the current environment as the project's expected state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")

			doc, err := c.app.Init(cmd.Context(), root, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded environment state (%s)\n", describeFingerprint(doc.Fingerprint))
			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing lock document")
	return cmd
}
