package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newVersionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions <package> [constraint]",
		Short: "List published versions of a package, newest first",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}
			constraint := ""
			if len(args) == 2 {
				constraint = args[1]
			}
			limit, _ := cmd.Flags().GetInt("limit")

			versions, err := c.app.Versions(cmd.Context(), root, args[0], constraint, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				if versions == nil {
					versions = []string{}
				}
				return writeJSON(out, versions)
			}
			if len(versions) == 0 {
				fmt.Fprintln(out, "No matching versions")
				return nil
			}
			for _, v := range versions {
				fmt.Fprintln(out, v)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 10, "Maximum number of versions to list (0 lists all)")
	cmd.Flags().Bool("json", false, "Emit the versions as JSON")
	return cmd
}
