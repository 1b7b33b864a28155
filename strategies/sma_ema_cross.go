// Package strategies derives trade signals from price history.
package strategies

import (
	"github.com/rustyeddy/quantbot/indicators"
	"github.com/rustyeddy/quantbot/market"
)

// SMAEMACross signals on the crossover of a short simple moving average
// over a long exponential moving average.
//
// The decision compares the current (SMA, EMA) pair against the pair one
// point earlier:
//   - short crosses above long -> BUY
//   - short crosses below long -> SELL
//   - no valid previous pair   -> level comparison of the current pair
//
// Ties never trigger a transition, and evaluation is a pure function of
// the history: the same series always yields the same signal.
type SMAEMACross struct {
	Short int // SMA period
	Long  int // EMA smoothing span
}

// NewSMAEMACross returns a crossover strategy with the given periods.
func NewSMAEMACross(short, long int) *SMAEMACross {
	return &SMAEMACross{Short: short, Long: long}
}

// MinPoints is the fewest history points for which a signal is defined.
func (s *SMAEMACross) MinPoints() int {
	if s.Short < s.Long {
		return s.Short
	}
	return s.Long
}

// Indicators returns the current (SMA, EMA) pair over the series.
// ok is false while either average is still undefined.
func (s *SMAEMACross) Indicators(closes []float64) (sma, ema float64, ok bool) {
	if len(closes) < s.MinPoints() {
		return 0, 0, false
	}
	sma, smaOK := indicators.SMA(closes, s.Short)
	ema, emaOK := indicators.EMA(closes, s.Long)
	return sma, ema, smaOK && emaOK
}

// Evaluate returns the signal for the given history.
func (s *SMAEMACross) Evaluate(h *market.History) market.Signal {
	closes := h.Closes()

	sma, ema, ok := s.Indicators(closes)
	if !ok {
		return market.SignalHold
	}

	prevSMA, prevEMA, prevOK := s.Indicators(closes[:len(closes)-1])
	if prevOK {
		if prevSMA <= prevEMA && sma > ema {
			return market.SignalBuy
		}
		if prevSMA >= prevEMA && sma < ema {
			return market.SignalSell
		}
		// No crossover since the previous point.
		return market.SignalHold
	}

	// First defined pair: no crossover possible yet, compare levels.
	switch {
	case sma > ema:
		return market.SignalBuy
	case sma < ema:
		return market.SignalSell
	default:
		return market.SignalHold
	}
}
