package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nixvuln/nixvuln/nixvuln/db"
)

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "display database status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status := db.NewCurator(appConfig.DB.ToCuratorConfig()).Status()
		printDBStatus(cmd.OutOrStdout(), status)
		if status.Err != nil {
			return fmt.Errorf("vulnerability database is not usable: %w", status.Err)
		}
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbStatusCmd)
}

func printDBStatus(out io.Writer, status db.Status) {
	lastUpdate := "never"
	if !status.LastUpdate.IsZero() {
		lastUpdate = fmt.Sprintf("%s (%s)", status.LastUpdate.Format("2006-01-02 15:04:05 MST"), humanize.Time(status.LastUpdate))
	}

	fmt.Fprintln(out, "Location:          ", status.Location)
	fmt.Fprintln(out, "Mirror:            ", status.Mirror)
	fmt.Fprintln(out, "Last update:       ", lastUpdate)
	fmt.Fprintln(out, "Advisories:        ", humanize.Comma(int64(status.Records)))
	fmt.Fprintln(out, "Feed segments:     ", status.Validators)
	fmt.Fprintln(out, "Size:              ", humanize.Bytes(uint64(status.Size)))
	fmt.Fprintln(out, "Compaction counter:", status.CompactionCounter)
	if status.Err != nil {
		fmt.Fprintf(out, "Status:             INVALID [%+v]\n", status.Err)
	} else {
		fmt.Fprintln(out, "Status:             valid")
	}
}
