package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pulseiq/pulseiq/internal/app"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Ingest a directory of weekly export workbooks",
	Long: `Ingest every dated export under the given directory, one ingest per
week-end date found in the file names.

Example:
  pulseiq ingest ./exports`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	deps, err := app.InitDependencies(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	runs, err := deps.BatchRunner.IngestDir(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	failed := 0
	for _, run := range runs {
		date := run.WeekEnd.Format("2006-01-02")
		if run.Error != "" {
			failed++
			fmt.Printf("%s  FAILED  %s\n", date, run.Error)
			continue
		}
		fmt.Printf("%s  rows=%d inserted=%d skipped=%d files=%d\n",
			date, run.Result.Rows, run.Result.Inserted, run.Result.Skipped, len(run.Files))
		for _, w := range append(run.Warnings, run.Result.Warnings...) {
			fmt.Printf("  warning: %s\n", w)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d weeks failed", failed, len(runs))
	}
	return nil
}
