package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rustyeddy/quantbot/broker"
	"github.com/rustyeddy/quantbot/config"
	"github.com/rustyeddy/quantbot/feed"
	"github.com/rustyeddy/quantbot/journal"
	"github.com/rustyeddy/quantbot/runner"
	"github.com/rustyeddy/quantbot/strategies"
)

// loadConfig reads the config file when path is set, otherwise builds
// the configuration from the environment.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.FromEnv()
}

// openJournal builds the trade log named by the config.
func openJournal(cfg *config.Config) (journal.Journal, error) {
	if cfg.Journal.Type == "csv" {
		return journal.NewCSV(cfg.Journal.TradesFile)
	}
	return journal.NewSQLite(cfg.Journal.DBPath)
}

// saveParams records the active strategy settings when the journal
// backend supports it. Best effort, like trade persistence.
func saveParams(cfg *config.Config, jr journal.Journal) {
	ps, ok := jr.(journal.ParamStore)
	if !ok {
		return
	}
	params := map[string]string{
		"ticker":    strings.ToUpper(cfg.Strategy.Ticker),
		"short":     strconv.Itoa(cfg.Strategy.Short),
		"long":      strconv.Itoa(cfg.Strategy.Long),
		"alloc_pct": strconv.FormatFloat(cfg.Risk.AllocPct, 'f', -1, 64),
		"mode":      strings.ToUpper(cfg.Broker.Mode),
	}
	for name, value := range params {
		if err := ps.SaveParam(name, value); err != nil {
			slog.Warn("param save failed", "name", name, "error", err)
			return
		}
	}
}

// buildRunner wires feed, broker, strategy, and journal into a runner.
// The returned runner owns the broker; the journal must outlive it and
// be closed by the caller.
func buildRunner(ctx context.Context, cfg *config.Config, jr journal.Journal) (*runner.Runner, error) {
	saveParams(cfg, jr)

	b := broker.Select(broker.SelectOptions{
		Mode:        cfg.Broker.Mode,
		APIKey:      cfg.Broker.AlpacaKey,
		APISecret:   cfg.Broker.AlpacaSecret,
		BaseURL:     cfg.Broker.AlpacaBaseURL,
		InitialCash: cfg.Broker.InitialCapital,
	}, jr)

	// Alpaca market data needs credentials; without them the public
	// chart endpoint is the only provider.
	var primary feed.Source
	if cfg.Broker.AlpacaKey != "" && cfg.Broker.AlpacaSecret != "" {
		primary = feed.NewAlpacaSource(cfg.Broker.AlpacaKey, cfg.Broker.AlpacaSecret, "")
	}
	src := feed.NewFallback(primary, feed.NewYahooSource())

	r, err := runner.New(ctx, runner.Options{
		Symbol:       strings.ToUpper(cfg.Strategy.Ticker),
		Strategy:     strategies.NewSMAEMACross(cfg.Strategy.Short, cfg.Strategy.Long),
		Feed:         src,
		Broker:       b,
		PollInterval: cfg.Poll.Interval(),
		AllocPct:     cfg.Risk.AllocPct,
		SlippagePct:  cfg.Risk.SlippagePct,
		Commission:   cfg.Risk.Commission,
	})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("build runner: %w", err)
	}
	return r, nil
}

// printStep renders one tick result for the terminal.
func printStep(info runner.StepInfo) {
	fmt.Printf("[%s] Signal=%-5s Price=%8.2f Equity=%10.2f\n",
		info.Time.Format("2006-01-02T15:04:05Z"), info.Signal, info.Price, info.Equity)
}
