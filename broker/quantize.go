package broker

import "github.com/shopspring/decimal"

// tickDecimals is the venue tick size expressed in decimal places.
// US equities accept two decimals above $1.
const tickDecimals = 2

// QuantizeTick rounds a price to the venue tick size, half-up, and
// returns it as a decimal so no float artifacts reach the wire.
// 258.065 quantizes to 258.07.
func QuantizeTick(price float64) decimal.Decimal {
	// Round is half away from zero, which is half-up for prices.
	return decimal.NewFromFloat(price).Round(tickDecimals)
}
