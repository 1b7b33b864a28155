// Package market holds the shared domain types: price history, positions,
// order sides and trade signals.
package market

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Valid reports whether s is a known order side.
func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// Signal is the output of a strategy evaluation.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Position is a holding in a single symbol. Qty is whole shares;
// AvgPrice is the weighted-average entry price.
type Position struct {
	Symbol   string
	Qty      int
	AvgPrice float64
}

// MarketValue returns the position value at the given price.
func (p Position) MarketValue(price float64) float64 {
	return float64(p.Qty) * price
}

// UnrealizedPL returns the open profit/loss at the given price.
func (p Position) UnrealizedPL(price float64) float64 {
	return float64(p.Qty) * (price - p.AvgPrice)
}
