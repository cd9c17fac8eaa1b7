package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mselser95/polymarket-backtest/internal/app"
	"github.com/mselser95/polymarket-backtest/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a walk-forward backtest over historical trades",
	Long: `Loads the trades, markets, resolutions, books, prices, and split
tables, joins them into labeled candidate trades, and walks them through
the calibrated backtest engine. Prints a JSON summary report to stdout
and persists the full trade-by-trade result according to --storage.`,
	RunE: runBacktest,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("trades", "", "path to the trades NDJSON table (required)")
	runCmd.Flags().String("markets", "", "path to the markets NDJSON table (required)")
	runCmd.Flags().String("resolutions", "", "path to the resolutions NDJSON table (required)")
	runCmd.Flags().String("books", "", "path to the books NDJSON table (required)")
	runCmd.Flags().String("prices", "", "path to the prices NDJSON table (required)")
	runCmd.Flags().String("splits", "", "path to the walk-forward splits NDJSON table (required)")
	runCmd.Flags().Float64("initial-capital", 0, "override INITIAL_CAPITAL")
	runCmd.Flags().Float64("min-ev", 0, "override MIN_EV")
	runCmd.Flags().String("storage", "", "override STORAGE_MODE (postgres|console)")
	runCmd.Flags().String("http-port", "", "override HTTP_PORT and serve /metrics, /health, /ws/results after the run completes")

	for _, name := range []string{"trades", "markets", "resolutions", "books", "prices", "splits"} {
		_ = runCmd.MarkFlagRequired(name)
	}
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if v, _ := cmd.Flags().GetFloat64("initial-capital"); v != 0 {
		cfg.InitialCapital = v
	}
	if v, _ := cmd.Flags().GetFloat64("min-ev"); cmd.Flags().Changed("min-ev") {
		cfg.MinEV = v
	}
	if v, _ := cmd.Flags().GetString("storage"); v != "" {
		cfg.StorageMode = v
	}

	httpPort, _ := cmd.Flags().GetString("http-port")
	serveHTTP := httpPort != ""
	if serveHTTP {
		cfg.HTTPPort = httpPort
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	opts := app.Options{ServeHTTP: serveHTTP}
	opts.TradesPath, _ = cmd.Flags().GetString("trades")
	opts.MarketsPath, _ = cmd.Flags().GetString("markets")
	opts.ResolutionsPath, _ = cmd.Flags().GetString("resolutions")
	opts.BooksPath, _ = cmd.Flags().GetString("books")
	opts.PricesPath, _ = cmd.Flags().GetString("prices")
	opts.SplitsPath, _ = cmd.Flags().GetString("splits")

	application, err := app.New(cfg, logger, &opts)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	if err := application.Run(opts); err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
