package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.trai.ch/hale/internal/core/domain"
)

func (c *CLI) newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the project environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}

			var category domain.CheckCategory
			if name, _ := cmd.Flags().GetString("category"); name != "" {
				var ok bool
				if category, ok = domain.ParseCheckCategory(name); !ok {
					return fmt.Errorf("unknown check category %q", name)
				}
			}

			findings, err := c.app.Doctor(cmd.Context(), root, category)
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeFindingsJSON(cmd.OutOrStdout(), findings)
			}
			renderFindings(cmd.OutOrStdout(), findings)
			return nil
		},
	}
	cmd.Flags().String("category", "",
		"Run only checks of one category (toolchain, lockfile, dependencies, frameworks, drift, cache)")
	cmd.Flags().Bool("json", false, "Emit findings as JSON")
	return cmd
}
