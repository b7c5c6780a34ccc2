package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/nixvuln/nixvuln/internal"
	"github.com/nixvuln/nixvuln/internal/bus"
	"github.com/nixvuln/nixvuln/internal/input"
	"github.com/nixvuln/nixvuln/internal/log"
	"github.com/nixvuln/nixvuln/internal/ui"
	"github.com/nixvuln/nixvuln/nixvuln"
	"github.com/nixvuln/nixvuln/nixvuln/presenter"
	"github.com/nixvuln/nixvuln/nixvuln/presenter/models"
)

var rootCmd = &cobra.Command{
	Use:   fmt.Sprintf("%s [flags] PATH...", internal.ApplicationName),
	Short: "Scan Nix derivations for known vulnerabilities (CVEs)",
	Long: fmt.Sprintf(`Scan Nix derivations for known vulnerabilities (CVEs).

Each PATH is a .drv file, a JSON descriptor document (as printed by "nix derivation show"),
or a glob pattern matching such files:
    %[1]s /nix/store/*-openssl-*.drv
    %[1]s 'result-drvs/**/*.drv'
    %[1]s derivations.json
`, internal.ApplicationName),
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.Dev.ProfileCPU {
			defer profile.Start(profile.CPUProfile).Stop()
		} else if appConfig.Dev.ProfileMem {
			defer profile.Start(profile.MemProfile).Stop()
		}

		noUpdate, err := cmd.Flags().GetBool("no-update")
		if err != nil {
			return err
		}

		reporter, closer, err := reportWriter()
		defer func() {
			if err := closer(); err != nil {
				log.Warnf("unable to write to report destination: %+v", err)
			}
		}()
		if err != nil {
			return err
		}

		return eventLoop(
			startWorker(args, appConfig.DB.AutoUpdate && !noUpdate),
			setupSignals(),
			eventSubscription,
			func() {},
			ui.NewLoggerUI(reporter),
		)
	},
}

func startWorker(patterns []string, update bool) <-chan error {
	errs := make(chan error)
	go func() {
		defer close(errs)
		defer bus.Exit()

		inputs, err := input.Resolve(patterns)
		if err != nil {
			errs <- fmt.Errorf("failed to load derivations: %w", err)
			return
		}

		store, err := nixvuln.LoadVulnerabilityDB(context.Background(), appConfig.DB.ToCuratorConfig(), update)
		if err != nil {
			errs <- fmt.Errorf("failed to load vulnerability db: %w", err)
			return
		}
		defer log.CloseAndLogError(store, store.Dir())

		results, err := nixvuln.FindVulnerabilities(context.Background(), store, inputs.Derivations, appConfig.Match.Workers)
		if err != nil {
			errs <- fmt.Errorf("failed to match vulnerabilities: %w", err)
			return
		}

		var skipped []models.Skip
		if appConfig.ShowSkipped {
			for _, s := range inputs.Skipped {
				skipped = append(skipped, models.Skip{Source: s.Source, Reason: s.Reason})
			}
		}

		pres := presenter.GetPresenter(appConfig.PresenterOpt, models.NewDocument(results, skipped))
		if pres == nil {
			errs <- fmt.Errorf("unknown output format: %s", appConfig.PresenterOpt)
			return
		}

		var report bytes.Buffer
		if err := pres.Present(&report); err != nil {
			errs <- fmt.Errorf("failed to render report: %w", err)
			return
		}
		bus.Report(report.String())
	}()
	return errs
}
