package cmd

import (
	"fmt"

	"github.com/rustyeddy/quantbot/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List recorded trades, most recent first",
	Long: `Read the trade log and print the most recent trades.

The journal location comes from the configuration (environment or
--config); --db overrides it with an explicit SQLite path.

Examples:
  quantbot journal
  quantbot journal --limit 5
  quantbot journal --db ./trades.db`,
	RunE: runJournal,
}

var (
	journalConfigPath string
	journalDBPath     string
	journalLimit      int
)

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVarP(&journalConfigPath, "config", "f", "", "path to config file (YAML or JSON); defaults to environment")
	journalCmd.Flags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (overrides config)")
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "maximum trades to list")
}

func runJournal(cmd *cobra.Command, args []string) error {
	var jr journal.Journal
	if journalDBPath != "" {
		var err error
		jr, err = journal.NewSQLite(journalDBPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
	} else {
		cfg, err := loadConfig(journalConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		jr, err = openJournal(cfg)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
	}
	defer jr.Close()

	trades, err := jr.Trades(journalLimit)
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}
	if len(trades) == 0 {
		fmt.Println("No trades recorded.")
		return nil
	}

	fmt.Printf("%-27s %-20s %-6s %-4s %8s %10s %8s %-10s\n",
		"ID", "TIME", "SYMBOL", "SIDE", "QTY", "PRICE", "FEES", "STATUS")
	for _, t := range trades {
		fmt.Printf("%-27s %-20s %-6s %-4s %8d %10.2f %8.2f %-10s\n",
			t.ID, t.Time.Format("2006-01-02 15:04:05"), t.Symbol, t.Side,
			t.Qty, t.Price, t.Fees, t.Status)
	}
	return nil
}
