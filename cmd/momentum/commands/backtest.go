package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantmill/momentum/internal/audit"
	"github.com/quantmill/momentum/internal/engine"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Historical strategy simulation",
	Long: `Replays the monthly pipeline over historical CSV exports.

The backtest validates:
- Monthly and yearly strategy returns
- Risk metrics (Sharpe, Calmar, max drawdown)
- Filter and stop-loss behaviour over full market cycles

Example:
  go run ./cmd/momentum backtest run --from 2015-01 --to 2025-06
  go run ./cmd/momentum backtest run --from 2020-01 --to 2024-12 --universe NIFTY500`,
}

var (
	backtestRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a backtest",
		Long: `Runs the strategy month by month over the given range.

Flags:
  --from      first month (YYYY-MM, required)
  --to        last month (YYYY-MM, required)
  --universe  label for the run (default: first configured universe)

Example:
  go run ./cmd/momentum backtest run --from 2015-01 --to 2025-06`,
		RunE: runBacktest,
	}

	// Flags
	backtestFrom     string
	backtestTo       string
	backtestUniverse string
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)

	// Flags
	backtestRunCmd.Flags().StringVar(&backtestFrom, "from", "", "first month (YYYY-MM)")
	backtestRunCmd.Flags().StringVar(&backtestTo, "to", "", "last month (YYYY-MM)")
	backtestRunCmd.Flags().StringVar(&backtestUniverse, "universe", "", "label for the run")

	backtestRunCmd.MarkFlagRequired("from")
	backtestRunCmd.MarkFlagRequired("to")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Momentum Backtest ===")

	from, err := parseMonth(backtestFrom)
	if err != nil {
		return err
	}
	to, err := parseMonth(backtestTo)
	if err != nil {
		return err
	}
	if to.Before(from) {
		return fmt.Errorf("--to %s is before --from %s", to, from)
	}

	cfg, log, err := initRuntime()
	if err != nil {
		return err
	}

	universe := backtestUniverse
	if universe == "" && len(cfg.Strategy.Universes) > 0 {
		universe = cfg.Strategy.Universes[0]
	}

	fmt.Printf("\n📅 Period: %s ~ %s\n", from, to)
	fmt.Printf("📦 Universe: %s\n", universe)
	fmt.Printf("🏆 Top N: %d, Criterion: %s\n\n", cfg.Strategy.TopN, cfg.Strategy.SortingCriterion)

	prices, volumes, err := loadCSVMatrices(cfg, log, to.End())
	if err != nil {
		return err
	}

	ec, err := engineConfig(cfg)
	if err != nil {
		return err
	}

	backtester := engine.NewBacktester(engine.New(ec, log), audit.NewAnalyzer(), log)

	fmt.Println("🚀 Starting backtest...")
	result, err := backtester.Run(engine.UniverseData{
		Name:    universe,
		Prices:  prices,
		Volumes: volumes,
	}, from, to)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	printBacktestResult(result)
	return nil
}

func printBacktestResult(result *engine.BacktestResult) {
	report := result.Report

	fmt.Println("\n✅ Backtest Completed")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	fmt.Println("💰 Performance")
	fmt.Printf("Months:        %d\n", len(result.Portfolios))
	fmt.Printf("Total Return:  %+.2f%%\n", report.TotalReturn)
	fmt.Printf("Max Drawdown:  %.2f%%\n", report.MaxDrawdown)
	fmt.Printf("Sharpe Ratio:  %.2f\n", report.SharpeRatio)
	fmt.Printf("Calmar Ratio:  %.2f\n", report.CalmarRatio)
	fmt.Println()

	fmt.Println("📊 Yearly Returns")
	years := make([]int, 0, len(report.YearlyReturns))
	for year := range report.YearlyReturns {
		years = append(years, year)
	}
	sort.Ints(years)
	for _, year := range years {
		fmt.Printf("%d: %+8.2f%%\n", year, report.YearlyReturns[year])
	}
}
