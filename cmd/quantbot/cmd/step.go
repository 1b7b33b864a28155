package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Run a single tick and print the result",
	Long: `Fetch the latest price, evaluate the signal, trade if it changed,
and print the tick result. Equivalent to 'run --once'; useful for cron
schedules and quick checks.`,
	RunE: runStep,
}

var stepConfigPath string

func init() {
	rootCmd.AddCommand(stepCmd)

	stepCmd.Flags().StringVarP(&stepConfigPath, "config", "f", "", "path to config file (YAML or JSON); defaults to environment")
}

func runStep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(stepConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	jr, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jr.Close()

	r, err := buildRunner(cmd.Context(), cfg, jr)
	if err != nil {
		return err
	}
	defer r.Close()

	info, err := r.Step(cmd.Context())
	if err != nil {
		return fmt.Errorf("step: %w", err)
	}
	printStep(info)
	return nil
}
