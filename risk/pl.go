package risk

// UnrealizedPL is the open profit/loss for a position of qty shares with
// the given average entry, marked at the current price.
func UnrealizedPL(qty int, avgPrice, currentPrice float64) float64 {
	return float64(qty) * (currentPrice - avgPrice)
}

// RealizedPL is the closed-trade profit/loss net of fees.
func RealizedPL(entryPrice, exitPrice float64, qty int, fees float64) float64 {
	return (exitPrice-entryPrice)*float64(qty) - fees
}

// PercentChange returns the percentage move from old to new, 0 when old
// is zero.
func PercentChange(newVal, oldVal float64) float64 {
	if oldVal == 0 {
		return 0
	}
	return (newVal - oldVal) / oldVal * 100
}
