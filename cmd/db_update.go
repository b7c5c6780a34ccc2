package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nixvuln/nixvuln/internal/bus"
	"github.com/nixvuln/nixvuln/internal/log"
	"github.com/nixvuln/nixvuln/internal/ui"
	"github.com/nixvuln/nixvuln/nixvuln/db"
)

var dbUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "fetch the latest NVD feed segments into the vulnerability database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return eventLoop(
			startDBUpdateWorker(),
			setupSignals(),
			eventSubscription,
			func() {},
			ui.NewLoggerUI(cmd.OutOrStdout()),
		)
	},
}

func init() {
	dbCmd.AddCommand(dbUpdateCmd)
}

func startDBUpdateWorker() <-chan error {
	errs := make(chan error)
	go func() {
		defer close(errs)
		defer bus.Exit()

		dbCurator := db.NewCurator(appConfig.DB.ToCuratorConfig())
		store, err := dbCurator.Open()
		if err != nil {
			errs <- fmt.Errorf("unable to open vulnerability database: %w", err)
			return
		}
		defer log.CloseAndLogError(store, store.Dir())

		updated, err := dbCurator.Update(context.Background(), store)
		if err != nil {
			errs <- fmt.Errorf("unable to update vulnerability database: %w", err)
			return
		}

		if updated {
			bus.Report("Vulnerability database updated!\n")
			return
		}
		bus.Report("No vulnerability database update available\n")
	}()
	return errs
}
