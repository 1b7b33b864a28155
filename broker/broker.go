// Package broker executes orders against either an in-memory simulated
// ledger or the Alpaca paper-trading API. Both variants expose the same
// capability set: query account value, query a position, place an order,
// release resources.
package broker

import (
	"context"
	"errors"

	"github.com/rustyeddy/quantbot/market"
)

var (
	// ErrInvalidOrder covers a bad side, non-positive quantity, or a
	// missing price where one is required.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInsufficientCash rejects a BUY that would overdraw the
	// simulated ledger.
	ErrInsufficientCash = errors.New("insufficient cash")

	// ErrInsufficientShares rejects a SELL with no shares held.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrOrderRejected wraps an upstream rejection from the live API.
	ErrOrderRejected = errors.New("order rejected")
)

// OrderRequest describes one order. A nil Price means market; otherwise
// the order is a limit at that price. StopPrice/TakePrice attach bracket
// legs on the live broker and are ignored by the simulator.
type OrderRequest struct {
	Symbol    string
	Side      market.Side
	Qty       int
	Price     *float64
	Fees      float64
	StopPrice *float64
	TakePrice *float64
}

// OrderResult summarizes a placed order. FilledQty never exceeds the
// requested quantity.
type OrderResult struct {
	Symbol         string
	Side           market.Side
	RequestedQty   int
	FilledQty      int
	FilledAvgPrice float64
	Status         string
	BrokerOrderID  string
}

// Broker is the capability set shared by the simulated and live paper
// variants. AccountValue and GetPosition degrade to zero values instead
// of returning errors, so the polling loop never stalls on a flaky
// upstream query.
type Broker interface {
	// AccountValue returns total equity. The simulator marks open
	// positions at the supplied prices; the live broker ignores them.
	AccountValue(ctx context.Context, prices map[string]float64) float64

	// GetPosition returns the position for symbol, zero if none.
	GetPosition(ctx context.Context, symbol string) market.Position

	// PlaceOrder submits the order. Validation and ledger-invariant
	// violations fail the individual order; they are never fatal to a
	// run loop.
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error)

	// Close releases broker resources.
	Close() error
}
