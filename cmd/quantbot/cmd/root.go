package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quantbot",
	Short: "A moving-average crossover paper-trading bot",
	Long: `Quantbot polls a daily price feed, computes an SMA/EMA crossover
signal, sizes orders as a percentage of equity, and executes against
either a simulated ledger or the Alpaca paper-trading API.

Configuration comes from environment variables (a .env file is honored)
or from a YAML/JSON config file passed with --config.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
