package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the polling trade loop",
	Long: `Poll the price feed on a fixed interval, evaluate the crossover
signal each tick, and trade on signal changes until interrupted.

SIGINT or SIGTERM stops the loop cleanly after the current tick.

Examples:
  quantbot run
  quantbot run --config bot.yaml
  quantbot run --once`,
	RunE: runRun,
}

var (
	runConfigPath string
	runOnce       bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON); defaults to environment")
	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single tick and exit")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	jr, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jr.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, err := buildRunner(ctx, cfg, jr)
	if err != nil {
		return err
	}

	fmt.Printf("quantbot started: %s SMA(%d)/EMA(%d) mode=%s poll=%s\n",
		cfg.Strategy.Ticker, cfg.Strategy.Short, cfg.Strategy.Long,
		cfg.Broker.Mode, cfg.Poll.Interval())

	if runOnce {
		defer r.Close()
		info, err := r.Step(ctx)
		if err != nil {
			return fmt.Errorf("step: %w", err)
		}
		printStep(info)
		return nil
	}

	if err := r.Run(ctx); err != nil {
		return fmt.Errorf("run loop: %w", err)
	}
	fmt.Println("quantbot stopped.")
	return nil
}
