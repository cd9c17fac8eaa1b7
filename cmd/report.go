package cmd

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/mselser95/polymarket-backtest/internal/engine"
	"github.com/mselser95/polymarket-backtest/internal/report"
)

//nolint:gochecknoglobals // Cobra boilerplate
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Recompute the summary report for a previously persisted run",
	Long: `Loads a JSON-encoded engine.Result — the same document served by
GET /api/run/{id}/results — and prints its summary, monthly breakdown,
calibration, and Brier score report to stdout.`,
	RunE: runReport,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("results", "", "path to a JSON-encoded engine.Result (required)")
	_ = reportCmd.MarkFlagRequired("results")
}

func runReport(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("results")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open results file: %w", err)
	}
	defer f.Close()

	var result engine.Result
	if err := json.NewDecoder(f).Decode(&result); err != nil {
		return fmt.Errorf("decode results file: %w", err)
	}

	var totalPnL float64
	for _, t := range result.ExecutedTrades {
		totalPnL += t.PnL
	}
	initialCapital := result.EndingCapital - totalPnL

	summary := struct {
		Summary     report.Summary          `json:"summary"`
		Monthly     []report.MonthlyBucket  `json:"monthly"`
		Calibration []report.CalibrationBin `json:"calibration"`
		BrierScore  float64                 `json:"brier_score"`
	}{
		Summary:     report.ComputeSummary(result.ExecutedTrades, initialCapital),
		Monthly:     report.ComputeMonthlyBreakdown(result.ExecutedTrades),
		Calibration: report.ComputeCalibration(result.ExecutedTrades, 5),
		BrierScore:  report.BrierScore(result.ExecutedTrades),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
