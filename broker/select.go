package broker

import (
	"log/slog"
	"strings"

	"github.com/rustyeddy/quantbot/journal"
)

// Mode names for broker selection.
const (
	ModeSim  = "SIM"
	ModeLive = "LIVE"
)

// SelectOptions carries everything needed to choose and build a broker.
type SelectOptions struct {
	Mode        string
	APIKey      string
	APISecret   string
	BaseURL     string
	InitialCash float64
}

// Select makes the one-time broker decision at startup: live paper
// trading when LIVE mode is configured with both credentials present,
// otherwise the simulator. A live construction failure falls back to the
// simulator and is logged once; the decision is never re-evaluated.
func Select(opts SelectOptions, jr journal.Journal) Broker {
	mode := strings.ToUpper(strings.TrimSpace(opts.Mode))

	if mode == ModeLive && opts.APIKey != "" && opts.APISecret != "" {
		b, err := NewAlpaca(opts.APIKey, opts.APISecret, opts.BaseURL, jr)
		if err == nil {
			slog.Info("broker selected", "mode", ModeLive, "base_url", opts.BaseURL)
			return b
		}
		slog.Warn("live broker unavailable, falling back to simulator", "error", err)
	} else if mode == ModeLive {
		slog.Warn("live mode configured without credentials, using simulator")
	}

	slog.Info("broker selected", "mode", ModeSim, "initial_cash", opts.InitialCash)
	return NewSim(opts.InitialCash, jr)
}
