package cli

import (
	"github.com/spf13/cobra"

	"github.com/pulseiq/pulseiq/internal/app"
	"github.com/pulseiq/pulseiq/internal/seed"
)

var (
	seedWeeks  int
	seedStores int
	seedSkus   int
	seedValue  int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with generated demo data",
	Long: `Generate complete weeks of plausible sales facts so the dashboard has
data before any real exports are ingested. Safe to re-run: existing
(week, store, sku) facts are left alone.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedWeeks, "weeks", 8, "number of weeks to generate")
	seedCmd.Flags().IntVar(&seedStores, "stores", 12, "number of stores to generate")
	seedCmd.Flags().IntVar(&seedSkus, "skus", 40, "number of SKUs to generate")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (0 = random)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	deps, err := app.InitDependencies(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	seeder := seed.NewSeeder(deps.IngestRepo, seedValue, logger)
	return seeder.Run(cmd.Context(), seedWeeks, seedStores, seedSkus)
}
