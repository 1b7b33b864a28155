package broker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/quantbot/journal"
	"github.com/rustyeddy/quantbot/market"
)

func ptr(v float64) *float64 { return &v }

func TestSimBuyThenSellRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewSim(100000, nil)
	ctx := context.Background()

	res, err := s.PlaceOrder(ctx, OrderRequest{
		Symbol: "AAPL", Side: market.Buy, Qty: 10, Price: ptr(100), Fees: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, res.FilledQty)
	assert.InDelta(t, 100.0, res.FilledAvgPrice, 1e-9)

	assert.InDelta(t, 98999.0, s.Cash(), 1e-9)
	pos := s.GetPosition(ctx, "AAPL")
	assert.Equal(t, 10, pos.Qty)
	assert.InDelta(t, 100.0, pos.AvgPrice, 1e-9)

	res, err = s.PlaceOrder(ctx, OrderRequest{
		Symbol: "AAPL", Side: market.Sell, Qty: 10, Price: ptr(110), Fees: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, res.FilledQty)

	// 98999 + (110*10 - 1) = 100098
	assert.InDelta(t, 100098.0, s.Cash(), 1e-9)
	assert.Equal(t, 0, s.GetPosition(ctx, "AAPL").Qty)
}

func TestSimBuyAveragesEntryPrice(t *testing.T) {
	t.Parallel()

	s := NewSim(100000, nil)
	ctx := context.Background()

	_, err := s.PlaceOrder(ctx, OrderRequest{Symbol: "AAPL", Side: market.Buy, Qty: 10, Price: ptr(100)})
	require.NoError(t, err)
	_, err = s.PlaceOrder(ctx, OrderRequest{Symbol: "AAPL", Side: market.Buy, Qty: 10, Price: ptr(120)})
	require.NoError(t, err)

	pos := s.GetPosition(ctx, "AAPL")
	assert.Equal(t, 20, pos.Qty)
	assert.InDelta(t, 110.0, pos.AvgPrice, 1e-9)
}

func TestSimRejectsOverdraw(t *testing.T) {
	t.Parallel()

	s := NewSim(1000, nil)
	ctx := context.Background()

	_, err := s.PlaceOrder(ctx, OrderRequest{Symbol: "AAPL", Side: market.Buy, Qty: 10, Price: ptr(100), Fees: 1})
	assert.ErrorIs(t, err, ErrInsufficientCash)

	// State untouched on rejection.
	assert.InDelta(t, 1000.0, s.Cash(), 1e-9)
	assert.Equal(t, 0, s.GetPosition(ctx, "AAPL").Qty)
}

func TestSimRejectsSellWithoutShares(t *testing.T) {
	t.Parallel()

	s := NewSim(1000, nil)
	_, err := s.PlaceOrder(context.Background(), OrderRequest{Symbol: "AAPL", Side: market.Sell, Qty: 5, Price: ptr(100)})
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestSimSellClampsToHeldQty(t *testing.T) {
	t.Parallel()

	s := NewSim(100000, nil)
	ctx := context.Background()

	_, err := s.PlaceOrder(ctx, OrderRequest{Symbol: "AAPL", Side: market.Buy, Qty: 5, Price: ptr(100)})
	require.NoError(t, err)

	res, err := s.PlaceOrder(ctx, OrderRequest{Symbol: "AAPL", Side: market.Sell, Qty: 50, Price: ptr(100)})
	require.NoError(t, err)
	assert.Equal(t, 50, res.RequestedQty)
	assert.Equal(t, 5, res.FilledQty)
	assert.LessOrEqual(t, res.FilledQty, res.RequestedQty)
}

func TestSimPartialSellKeepsAvgPrice(t *testing.T) {
	t.Parallel()

	s := NewSim(100000, nil)
	ctx := context.Background()

	_, err := s.PlaceOrder(ctx, OrderRequest{Symbol: "AAPL", Side: market.Buy, Qty: 10, Price: ptr(100)})
	require.NoError(t, err)

	_, err = s.PlaceOrder(ctx, OrderRequest{Symbol: "AAPL", Side: market.Sell, Qty: 4, Price: ptr(150)})
	require.NoError(t, err)

	pos := s.GetPosition(ctx, "AAPL")
	assert.Equal(t, 6, pos.Qty)
	assert.InDelta(t, 100.0, pos.AvgPrice, 1e-9)
}

func TestSimValidation(t *testing.T) {
	t.Parallel()

	s := NewSim(1000, nil)
	ctx := context.Background()

	_, err := s.PlaceOrder(ctx, OrderRequest{Symbol: "AAPL", Side: market.Buy, Qty: 0, Price: ptr(100)})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = s.PlaceOrder(ctx, OrderRequest{Symbol: "AAPL", Side: "SHORT", Qty: 1, Price: ptr(100)})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = s.PlaceOrder(ctx, OrderRequest{Symbol: "AAPL", Side: market.Buy, Qty: 1})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestSimAccountValue(t *testing.T) {
	t.Parallel()

	s := NewSim(100000, nil)
	ctx := context.Background()

	_, err := s.PlaceOrder(ctx, OrderRequest{Symbol: "AAPL", Side: market.Buy, Qty: 10, Price: ptr(100)})
	require.NoError(t, err)

	assert.InDelta(t, 100100.0, s.AccountValue(ctx, map[string]float64{"AAPL": 110}), 1e-9)
	// Missing price values the position at zero.
	assert.InDelta(t, 99000.0, s.AccountValue(ctx, nil), 1e-9)
}

func TestSimJournalsFills(t *testing.T) {
	t.Parallel()

	jr := &memJournal{}
	s := NewSim(100000, jr)

	_, err := s.PlaceOrder(context.Background(), OrderRequest{Symbol: "AAPL", Side: market.Buy, Qty: 10, Price: ptr(100), Fees: 1})
	require.NoError(t, err)

	require.Len(t, jr.records, 1)
	rec := jr.records[0]
	assert.Equal(t, "AAPL", rec.Symbol)
	assert.Equal(t, "BUY", rec.Side)
	assert.Equal(t, 10, rec.Qty)
	assert.InDelta(t, 100.0, rec.Price, 1e-9)
	assert.Equal(t, "limit", rec.OrderType)
}

func TestSimJournalFailureDoesNotFailOrder(t *testing.T) {
	t.Parallel()

	s := NewSim(100000, &memJournal{fail: true})

	res, err := s.PlaceOrder(context.Background(), OrderRequest{Symbol: "AAPL", Side: market.Buy, Qty: 10, Price: ptr(100)})
	assert.NoError(t, err)
	assert.Equal(t, 10, res.FilledQty)
}

// memJournal is a journal.Journal for tests.
type memJournal struct {
	records []journal.TradeRecord
	fail    bool
}

func (m *memJournal) RecordTrade(rec journal.TradeRecord) error {
	if m.fail {
		return assert.AnError
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memJournal) Trades(limit int) ([]journal.TradeRecord, error) {
	if limit > len(m.records) {
		limit = len(m.records)
	}
	out := make([]journal.TradeRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *memJournal) Close() error { return nil }
