package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantmill/momentum/internal/contracts"
	"github.com/quantmill/momentum/internal/orders"
	"github.com/quantmill/momentum/pkg/database"
)

// ordersCmd represents the orders command
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Order ledger",
	Long: `Inspects and updates the append-only order ledger.

Subcommands:
  list  - ledger entries for one month
  mark  - move an order to a new status

Example:
  go run ./cmd/momentum orders list --month 2025-07
  go run ./cmd/momentum orders mark 7f3c... EXECUTED`,
}

var (
	ordersListCmd = &cobra.Command{
		Use:   "list",
		Short: "List ledger entries for one month",
		RunE:  runOrdersList,
	}

	ordersMarkCmd = &cobra.Command{
		Use:   "mark [order_id] [status]",
		Short: "Update an order's status",
		Args:  cobra.ExactArgs(2),
		RunE:  runOrdersMark,
	}

	// Flags
	ordersMonth    string
	ordersUniverse string
)

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersMarkCmd)

	// Flags
	ordersListCmd.Flags().StringVar(&ordersMonth, "month", "", "portfolio month (YYYY-MM)")
	ordersListCmd.Flags().StringVar(&ordersUniverse, "universe", "", "universe (default: first configured)")

	ordersListCmd.MarkFlagRequired("month")
}

func runOrdersList(cmd *cobra.Command, args []string) error {
	month, err := parseMonth(ordersMonth)
	if err != nil {
		return err
	}

	cfg, _, err := initRuntime()
	if err != nil {
		return err
	}

	universe := ordersUniverse
	if universe == "" && len(cfg.Strategy.Universes) > 0 {
		universe = cfg.Strategy.Universes[0]
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ledger := orders.NewRepository(db.Pool)
	entries, err := ledger.ListByMonth(cmd.Context(), cfg.Strategy.Version, universe, month)
	if err != nil {
		return err
	}

	fmt.Printf("=== Orders %s / %s / %s ===\n\n", cfg.Strategy.Version, universe, month)
	if len(entries) == 0 {
		fmt.Println("No orders")
		return nil
	}

	fmt.Printf("%-36s %-16s %-4s %-9s %10s  %s\n", "ID", "SYMBOL", "TYPE", "STATUS", "REF PRICE", "PLACEMENT")
	for _, o := range entries {
		fmt.Printf("%-36s %-16s %-4s %-9s %10.2f  %s\n",
			o.ID, o.Symbol, o.Type, o.Status, o.ReferencePrice,
			o.PlacementDate.Format("2006-01-02"))
	}
	fmt.Printf("\nTotal: %d orders\n", len(entries))
	return nil
}

func runOrdersMark(cmd *cobra.Command, args []string) error {
	orderID := args[0]
	status, err := contracts.ParseOrderStatus(args[1])
	if err != nil {
		return err
	}

	cfg, _, err := initRuntime()
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := orders.NewRepository(db.Pool).UpdateStatus(cmd.Context(), orderID, status); err != nil {
		return err
	}

	fmt.Printf("✅ Order %s → %s\n", orderID, status)
	return nil
}
