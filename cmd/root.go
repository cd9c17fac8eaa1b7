package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "polymarket-backtest",
	Short: "Event-driven backtester for Polymarket-style binary contracts",
	Long: `polymarket-backtest replays historical trades, order books, and
resolutions through a walk-forward calibrated backtest: it calibrates a
price-to-probability curve on each split's train window, sizes positions
with a capped Kelly criterion against a live-capital exposure ledger, and
settles them against realized outcomes on the test window.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	// Flags can be added here if needed
}
