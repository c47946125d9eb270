package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/internal/engine"
	"github.com/quantmill/momentum/internal/marketdata"
	"github.com/quantmill/momentum/internal/orders"
	"github.com/quantmill/momentum/internal/rebalance"
	"github.com/quantmill/momentum/pkg/database"
)

// rebalanceCmd represents the rebalance command
var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "Monthly portfolio rebalancing",
	Long: `Computes and persists one month's portfolio for each universe.

The run scores every symbol, ranks by the configured criterion,
applies the trend, 52-week-high and liquidity filters, diffs against
the prior month and appends buy/sell intents to the order ledger.

Example:
  go run ./cmd/momentum rebalance run --month 2025-07
  go run ./cmd/momentum rebalance run --month 2025-07 --universe NIFTY50 --source csv`,
}

var (
	rebalanceRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Run one month's rebalance",
		Long: `Runs the monthly pipeline for the given month.

Flags:
  --month     target month (YYYY-MM, required)
  --universe  restrict to a single universe (default: all configured)
  --source    market data source, db or csv (default: db)

Example:
  go run ./cmd/momentum rebalance run --month 2025-07
  go run ./cmd/momentum rebalance run --month 2025-07 --source csv`,
		RunE: runRebalance,
	}

	// Flags
	rebalanceMonth    string
	rebalanceUniverse string
	rebalanceSource   string
)

func init() {
	rootCmd.AddCommand(rebalanceCmd)
	rebalanceCmd.AddCommand(rebalanceRunCmd)

	// Flags
	rebalanceRunCmd.Flags().StringVar(&rebalanceMonth, "month", "", "target month (YYYY-MM)")
	rebalanceRunCmd.Flags().StringVar(&rebalanceUniverse, "universe", "", "single universe (default: all configured)")
	rebalanceRunCmd.Flags().StringVar(&rebalanceSource, "source", "db", "market data source (db|csv)")

	rebalanceRunCmd.MarkFlagRequired("month")
}

func runRebalance(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Momentum Monthly Rebalance ===")

	month, err := parseMonth(rebalanceMonth)
	if err != nil {
		return err
	}

	cfg, log, err := initRuntime()
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ec, err := engineConfig(cfg)
	if err != nil {
		return err
	}
	eng := engine.New(ec, log)

	service := engine.NewService(
		eng,
		cfg.Strategy.Version,
		rebalance.NewRepository(db.Pool),
		orders.NewGenerator(log),
		orders.NewRepository(db.Pool),
		log,
	)

	universes := cfg.Strategy.Universes
	if rebalanceUniverse != "" {
		universes = []string{rebalanceUniverse}
	}

	dataRepo := marketdata.NewRepository(db.Pool)
	from := month.Start().AddDate(-3, 0, 0)
	to := month.End()

	var csvPrices, csvVolumes *marketdata.Matrix
	if rebalanceSource == "csv" {
		csvPrices, csvVolumes, err = loadCSVMatrices(cfg, log, month.End())
		if err != nil {
			return err
		}
	}

	for _, universe := range universes {
		fmt.Printf("\n📦 Universe: %s, Month: %s\n", universe, month)

		var prices, volumes *marketdata.Matrix
		switch rebalanceSource {
		case "csv":
			symbols, err := dataRepo.UniverseSymbols(cmd.Context(), universe)
			if err != nil {
				return fmt.Errorf("load universe %s: %w", universe, err)
			}
			if prices, err = csvPrices.Slice(symbols); err != nil {
				return fmt.Errorf("slice prices for %s: %w", universe, err)
			}
			if volumes, err = csvVolumes.Slice(symbols); err != nil {
				return fmt.Errorf("slice volumes for %s: %w", universe, err)
			}
		case "db":
			prices, volumes, err = dataRepo.LoadMatrices(cmd.Context(), universe, from, to)
			if err != nil {
				return fmt.Errorf("load market data for %s: %w", universe, err)
			}
		default:
			return fmt.Errorf("unknown source %q (want db or csv)", rebalanceSource)
		}

		portfolio, err := service.RebalanceMonth(cmd.Context(), universe, prices, volumes, month)
		if err != nil {
			return fmt.Errorf("rebalance %s %s: %w", universe, month, err)
		}

		printPortfolio(portfolio)
	}

	fmt.Println("\n✅ Rebalance completed")
	return nil
}

func printPortfolio(p *contracts.Portfolio) {
	fmt.Printf("Trading dates: %s ~ %s (roll-over %s)\n",
		p.TradingDates.First.Format("2006-01-02"),
		p.TradingDates.Last.Format("2006-01-02"),
		p.TradingDates.RollOver.Format("2006-01-02"))
	fmt.Printf("Holdings:      %d (new %d, carry %d, removed %d)\n",
		p.Count(), len(p.Added), len(p.CarryForward), len(p.Removed))
	fmt.Printf("Return:        %+.2f%%\n", p.AggregateReturn)

	if len(p.StopLossTriggered) > 0 {
		fmt.Printf("Stop-loss:     %s\n", strings.Join(p.StopLossTriggered, ", "))
	}
	for symbol, reason := range p.Failed {
		fmt.Printf("⚠️  %s skipped: %s\n", symbol, reason)
	}

	// Holdings table, ranked order
	fmt.Println()
	fmt.Printf("%-16s %10s %10s %9s  %s\n", "SYMBOL", "ENTRY", "EXIT", "RETURN", "STATE")
	for _, symbol := range p.TopN {
		h, ok := p.HoldingFor(symbol)
		if !ok {
			continue
		}
		state := "new"
		if h.CarryForward {
			state = "carry"
		}
		if h.StopLossHit {
			state += ", stopped " + h.StopLossHitDate.Format("2006-01-02")
		}
		fmt.Printf("%-16s %10.2f %10.2f %+8.2f%%  %s\n",
			h.Symbol, h.InitialPrice, h.FinalPrice, h.ReturnPct, state)
	}
}
