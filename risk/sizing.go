// Package risk converts account equity into whole-share order sizes.
//
// Two sizing modes are supported: a fixed allocation percentage of equity,
// and risk-based sizing where a stop-loss hit costs a fixed percentage of
// equity. Both clamp to zero on any degenerate input instead of failing.
package risk

import "math"

// AllocationInputs sizes an order as a percentage of total equity.
type AllocationInputs struct {
	Equity      float64
	Price       float64
	AllocPct    float64 // (0, 1]
	SlippagePct float64 // e.g. 0.0005
	Commission  float64
}

// RiskInputs sizes an order so a stop-loss hit loses RiskPct of equity.
type RiskInputs struct {
	Equity     float64
	EntryPrice float64
	StopPrice  float64
	RiskPct    float64
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AllocationSize returns the whole-share quantity for an allocation-based
// order: floor((equity*allocPct - commission) / (price*(1+slippagePct))),
// never negative. Non-finite or non-positive equity/price yields 0.
func AllocationSize(in AllocationInputs) int {
	if !finite(in.Equity, in.Price, in.AllocPct, in.SlippagePct, in.Commission) {
		return 0
	}
	if in.Equity <= 0 || in.Price <= 0 || in.AllocPct <= 0 {
		return 0
	}

	budget := in.Equity*in.AllocPct - in.Commission
	effective := in.Price * (1 + in.SlippagePct)
	if effective <= 0 {
		return 0
	}

	qty := int(math.Floor(budget / effective))
	if qty < 0 {
		return 0
	}
	return qty
}

// RiskBasedSize returns the whole-share quantity that risks RiskPct of
// equity between entry and stop: floor((equity*riskPct) / |entry-stop|).
// A zero stop distance or any degenerate input yields 0.
func RiskBasedSize(in RiskInputs) int {
	if !finite(in.Equity, in.EntryPrice, in.StopPrice, in.RiskPct) {
		return 0
	}
	if in.Equity <= 0 || in.EntryPrice <= 0 || in.RiskPct <= 0 {
		return 0
	}

	perShare := math.Abs(in.EntryPrice - in.StopPrice)
	if perShare <= 0 {
		return 0
	}

	qty := int(math.Floor(in.Equity * in.RiskPct / perShare))
	if qty < 0 {
		return 0
	}
	return qty
}
