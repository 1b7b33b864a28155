package broker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/quantbot/journal"
	"github.com/rustyeddy/quantbot/market"
)

// Sim is an in-memory cash-and-positions ledger with immediate fills at
// the requested price. Cash never goes negative: a BUY that would
// overdraw is rejected without mutating state.
//
// The polling loop is single-threaded; the mutex serializes account
// reads from other goroutines against order fills.
type Sim struct {
	mu        sync.Mutex
	cash      float64
	positions map[string]market.Position
	journal   journal.Journal
}

// NewSim returns a simulated broker holding initialCash. jr may be nil
// to disable trade journaling.
func NewSim(initialCash float64, jr journal.Journal) *Sim {
	return &Sim{
		cash:      initialCash,
		positions: make(map[string]market.Position),
		journal:   jr,
	}
}

// Cash returns the uninvested cash balance.
func (s *Sim) Cash() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cash
}

// AccountValue is cash plus open positions marked at the supplied
// prices. A symbol missing from prices is valued at zero.
func (s *Sim) AccountValue(ctx context.Context, prices map[string]float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.cash
	for sym, pos := range s.positions {
		total += pos.MarketValue(prices[sym])
	}
	return total
}

func (s *Sim) GetPosition(ctx context.Context, symbol string) market.Position {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positions[strings.ToUpper(symbol)]
	if !ok {
		return market.Position{Symbol: strings.ToUpper(symbol)}
	}
	return pos
}

// PlaceOrder fills immediately at the requested price. BUYs update the
// weighted-average entry; SELLs clamp to the held quantity, keep the
// prior average on partial fills, and drop the position at zero.
func (s *Sim) PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	symbol := strings.ToUpper(req.Symbol)

	if req.Qty <= 0 {
		return OrderResult{}, fmt.Errorf("%w: qty must be > 0, got %d", ErrInvalidOrder, req.Qty)
	}
	if !req.Side.Valid() {
		return OrderResult{}, fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, req.Side)
	}
	if req.Price == nil {
		return OrderResult{}, fmt.Errorf("%w: simulated fills require a price", ErrInvalidOrder)
	}
	price := *req.Price

	s.mu.Lock()
	defer s.mu.Unlock()

	var res OrderResult
	switch req.Side {
	case market.Buy:
		cost := price*float64(req.Qty) + req.Fees
		if cost > s.cash {
			return OrderResult{}, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCash, cost, s.cash)
		}

		prev := s.positions[symbol]
		newQty := prev.Qty + req.Qty
		newAvg := (float64(prev.Qty)*prev.AvgPrice + price*float64(req.Qty)) / float64(newQty)
		s.positions[symbol] = market.Position{Symbol: symbol, Qty: newQty, AvgPrice: newAvg}
		s.cash -= cost

		res = OrderResult{
			Symbol:         symbol,
			Side:           market.Buy,
			RequestedQty:   req.Qty,
			FilledQty:      req.Qty,
			FilledAvgPrice: price,
			Status:         "filled",
		}

	case market.Sell:
		prev, held := s.positions[symbol]
		if !held || prev.Qty <= 0 {
			return OrderResult{}, fmt.Errorf("%w: no %s position", ErrInsufficientShares, symbol)
		}

		sellQty := req.Qty
		if sellQty > prev.Qty {
			sellQty = prev.Qty
		}

		if sellQty == prev.Qty {
			delete(s.positions, symbol)
		} else {
			// Partial sell: average cost basis is unchanged.
			s.positions[symbol] = market.Position{Symbol: symbol, Qty: prev.Qty - sellQty, AvgPrice: prev.AvgPrice}
		}
		s.cash += price*float64(sellQty) - req.Fees

		res = OrderResult{
			Symbol:         symbol,
			Side:           market.Sell,
			RequestedQty:   req.Qty,
			FilledQty:      sellQty,
			FilledAvgPrice: price,
			Status:         "filled",
		}
	}

	recordTrade(s.journal, res, "limit", req.Fees)
	return res, nil
}

func (s *Sim) Close() error { return nil }

// recordTrade appends a fill to the journal. Persistence is best-effort:
// a failure is logged and never propagated to the order flow.
func recordTrade(jr journal.Journal, res OrderResult, orderType string, fees float64) {
	if jr == nil {
		return
	}

	err := jr.RecordTrade(journal.TradeRecord{
		Time:          time.Now().UTC(),
		Symbol:        res.Symbol,
		Side:          string(res.Side),
		Qty:           res.FilledQty,
		Price:         res.FilledAvgPrice,
		Fees:          fees,
		OrderType:     orderType,
		Status:        res.Status,
		BrokerOrderID: res.BrokerOrderID,
	})
	if err != nil {
		slog.Warn("journal write failed", "symbol", res.Symbol, "side", res.Side, "error", err)
	}
}
