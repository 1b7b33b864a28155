package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/quantbot/market"
)

func histFrom(closes ...float64) *market.History {
	h := market.NewHistory(0)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		h.Append(market.PricePoint{Time: base.AddDate(0, 0, i), Close: c})
	}
	return h
}

func TestEvaluateHoldsBelowMinPoints(t *testing.T) {
	t.Parallel()

	s := NewSMAEMACross(2, 4)
	assert.Equal(t, market.SignalHold, s.Evaluate(histFrom()))
	assert.Equal(t, market.SignalHold, s.Evaluate(histFrom(10)))
}

func TestEvaluateUpwardCross(t *testing.T) {
	t.Parallel()

	// Flat at 10 then a jump: SMA(2)=20 crosses above EMA(4)=18.
	s := NewSMAEMACross(2, 4)
	assert.Equal(t, market.SignalBuy, s.Evaluate(histFrom(10, 10, 10, 30)))
}

func TestEvaluateDownwardCross(t *testing.T) {
	t.Parallel()

	// Flat at 20 then a drop: SMA(2)=12.5 crosses below EMA(4)=14.
	s := NewSMAEMACross(2, 4)
	assert.Equal(t, market.SignalSell, s.Evaluate(histFrom(20, 20, 20, 5)))
}

func TestEvaluateNoRepeatAfterCross(t *testing.T) {
	t.Parallel()

	// SMA stays above EMA on both points: the crossover already happened,
	// so no new signal is emitted.
	s := NewSMAEMACross(2, 4)
	assert.Equal(t, market.SignalHold, s.Evaluate(histFrom(10, 20, 30, 40)))
}

func TestEvaluateLevelFallbackOnFirstPair(t *testing.T) {
	t.Parallel()

	// Exactly MinPoints: no previous pair exists, compare levels.
	s := NewSMAEMACross(2, 4)
	assert.Equal(t, market.SignalBuy, s.Evaluate(histFrom(10, 20)))
	assert.Equal(t, market.SignalSell, s.Evaluate(histFrom(20, 10)))
}

func TestEvaluateTieHolds(t *testing.T) {
	t.Parallel()

	s := NewSMAEMACross(2, 4)
	assert.Equal(t, market.SignalHold, s.Evaluate(histFrom(10, 10)))
}

func TestEvaluateIdempotent(t *testing.T) {
	t.Parallel()

	s := NewSMAEMACross(2, 4)
	h := histFrom(10, 10, 10, 30)

	first := s.Evaluate(h)
	second := s.Evaluate(h)
	assert.Equal(t, first, second)
	assert.Equal(t, market.SignalBuy, first)
}

func TestMinPoints(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, NewSMAEMACross(2, 4).MinPoints())
	assert.Equal(t, 3, NewSMAEMACross(5, 3).MinPoints())
}
