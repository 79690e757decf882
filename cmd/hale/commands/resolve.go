package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"go.trai.ch/hale/internal/core/domain"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve version constraints shared by several dependents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}

			res, err := c.app.Resolve(cmd.Context(), root)
			if err != nil && !errors.Is(err, domain.ErrUnsatisfiable) {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				if jerr := writeResolutionJSON(cmd.OutOrStdout(), res); jerr != nil {
					return jerr
				}
				return err
			}
			renderResolution(cmd.OutOrStdout(), res)
			return err
		},
	}
	cmd.Flags().Bool("json", false, "Emit the resolution as JSON")
	return cmd
}
