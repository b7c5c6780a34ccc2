package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nixvuln/nixvuln/nixvuln/db"
)

var dbDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "delete the vulnerability database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.NewCurator(appConfig.DB.ToCuratorConfig()).Delete(); err != nil {
			return fmt.Errorf("unable to delete vulnerability database: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Vulnerability database deleted")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbDeleteCmd)
}
