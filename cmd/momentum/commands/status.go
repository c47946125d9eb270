package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantmill/momentum/internal/rebalance"
	"github.com/quantmill/momentum/pkg/database"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Latest portfolio per universe",
	Long: `Shows the most recent persisted portfolio for each universe.

Displayed per universe:
- Last rebalanced month and its aggregate return
- Holdings count and the month's diff sizes
- Stop-loss triggers

Example:
  go run ./cmd/momentum status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, _, err := initRuntime()
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := rebalance.NewRepository(db.Pool)

	fmt.Printf("=== Momentum Status (strategy %s) ===\n\n", cfg.Strategy.Version)
	for _, universe := range cfg.Strategy.Universes {
		p, err := repo.Latest(cmd.Context(), cfg.Strategy.Version, universe)
		if err != nil {
			return err
		}
		if p == nil {
			fmt.Printf("📦 %s: no portfolio yet\n", universe)
			continue
		}

		fmt.Printf("📦 %s: %s, return %+.2f%%, %d holdings (new %d, carry %d, removed %d)\n",
			universe, p.Month, p.AggregateReturn,
			p.Count(), len(p.Added), len(p.CarryForward), len(p.Removed))
		if len(p.StopLossTriggered) > 0 {
			fmt.Printf("   ⚠️  stop-loss: %s\n", strings.Join(p.StopLossTriggered, ", "))
		}
	}
	return nil
}
