package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "momentum",
	Short: "Monthly momentum rebalancing engine",
	Long: `Momentum Unified CLI

Monthly momentum equity strategy: score, rank, filter, rebalance.
One portfolio per universe per calendar month, with an append-only
order ledger derived from each month's diff.

Usage:
  go run ./cmd/momentum [command]

Examples:
  go run ./cmd/momentum rebalance run --month 2025-07
  go run ./cmd/momentum backtest run --from 2020-01 --to 2025-06
  go run ./cmd/momentum scheduler start
  go run ./cmd/momentum orders list --month 2025-07`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
