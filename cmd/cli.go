package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nixvuln/nixvuln/internal/config"
	"github.com/nixvuln/nixvuln/nixvuln/presenter"
)

var persistentOpts = config.CliOnlyOptions{}

func init() {
	rootCmd.PersistentFlags().StringVarP(&persistentOpts.ConfigPath, "config", "c", "", "application config file")
	rootCmd.PersistentFlags().CountVarP(&persistentOpts.Verbosity, "verbose", "v", "increase verbosity (-v = info, -vv = debug)")

	if err := bindRootConfigOptions(rootCmd.PersistentFlags(), rootCmd.Flags()); err != nil {
		panic(err)
	}
}

func bindRootConfigOptions(persistent, flags *pflag.FlagSet) error {
	persistent.BoolP(
		"quiet", "q", false,
		"suppress all logging output",
	)

	flags.StringP(
		"output", "o", presenter.TablePresenter.String(),
		fmt.Sprintf("report output formatter, options=%v", presenter.Options),
	)

	flags.StringP(
		"file", "", "",
		"file to write the report output to (default is STDOUT)",
	)

	flags.BoolP(
		"show-skipped", "", false,
		"list inputs that are not versioned packages in the report",
	)

	flags.BoolP(
		"no-update", "", false,
		"do not refresh the vulnerability database before scanning",
	)

	flags.IntP(
		"workers", "j", 0,
		"number of derivations matched concurrently (default 4)",
	)

	for _, binding := range []struct {
		key  string
		flag *pflag.Flag
	}{
		{"quiet", persistent.Lookup("quiet")},
		{"output", flags.Lookup("output")},
		{"file", flags.Lookup("file")},
		{"show-skipped", flags.Lookup("show-skipped")},
		{"match.workers", flags.Lookup("workers")},
	} {
		if err := viper.BindPFlag(binding.key, binding.flag); err != nil {
			return fmt.Errorf("unable to bind flag '%s': %w", binding.key, err)
		}
	}
	return nil
}
