package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quantmill/momentum/internal/engine"
	"github.com/quantmill/momentum/internal/marketdata"
	"github.com/quantmill/momentum/internal/orders"
	"github.com/quantmill/momentum/internal/rebalance"
	"github.com/quantmill/momentum/internal/scheduler"
	"github.com/quantmill/momentum/pkg/database"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduler daemon",
	Long: `Starts the scheduler daemon.

Registered jobs:
- monthly-rebalance: first day of every month (all configured universes)

The scheduler runs until interrupted with Ctrl+C.

Example:
  go run ./cmd/momentum scheduler start
  go run ./cmd/momentum scheduler start --cron "30 9 1 * *"`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		RunE:  runScheduler,
	}

	// Flags
	schedulerCron string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)

	// Flags
	schedulerStartCmd.Flags().StringVar(&schedulerCron, "cron", "0 10 1 * *", "rebalance schedule (5-field cron)")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Momentum Scheduler ===")

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

	service := engine.NewService(
		engine.New(ec, log),
		cfg.Strategy.Version,
		rebalance.NewRepository(db.Pool),
		orders.NewGenerator(log),
		orders.NewRepository(db.Pool),
		log,
	)

	job := scheduler.NewRebalanceJob(
		service,
		marketdata.NewRepository(db.Pool),
		cfg.Strategy.Universes,
		log,
	)

	sched := scheduler.New(log)
	if err := sched.Register(schedulerCron, job); err != nil {
		return err
	}

	sched.Start()
	fmt.Printf("Schedule: %s\n", schedulerCron)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	sched.Stop()
	return nil
}
