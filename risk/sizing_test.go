package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocationSize(t *testing.T) {
	t.Parallel()

	// 10% of 100k = 10k budget / 250 = 40 shares
	got := AllocationSize(AllocationInputs{
		Equity:   100000,
		Price:    250,
		AllocPct: 0.10,
	})
	assert.Equal(t, 40, got)
}

func TestAllocationSizeWithCosts(t *testing.T) {
	t.Parallel()

	// budget = 10000 - 1 = 9999; effective price = 250*1.0005 = 250.125
	// 9999 / 250.125 = 39.97 -> 39
	got := AllocationSize(AllocationInputs{
		Equity:      100000,
		Price:       250,
		AllocPct:    0.10,
		SlippagePct: 0.0005,
		Commission:  1,
	})
	assert.Equal(t, 39, got)
}

func TestAllocationSizeDegenerateInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   AllocationInputs
	}{
		{"zero price", AllocationInputs{Equity: 100000, Price: 0, AllocPct: 0.1}},
		{"negative equity", AllocationInputs{Equity: -1, Price: 250, AllocPct: 0.1}},
		{"zero alloc", AllocationInputs{Equity: 100000, Price: 250, AllocPct: 0}},
		{"nan price", AllocationInputs{Equity: 100000, Price: math.NaN(), AllocPct: 0.1}},
		{"inf equity", AllocationInputs{Equity: math.Inf(1), Price: 250, AllocPct: 0.1}},
		{"commission exceeds budget", AllocationInputs{Equity: 100, Price: 250, AllocPct: 0.1, Commission: 50}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, 0, AllocationSize(tt.in))
		})
	}
}

func TestRiskBasedSize(t *testing.T) {
	t.Parallel()

	// risk 1% of 100k = 1000; per-share risk = |250-245| = 5 -> 200 shares
	got := RiskBasedSize(RiskInputs{
		Equity:     100000,
		EntryPrice: 250,
		StopPrice:  245,
		RiskPct:    0.01,
	})
	assert.Equal(t, 200, got)
}

func TestRiskBasedSizeStopAboveEntry(t *testing.T) {
	t.Parallel()

	// Short-style stop above entry uses the absolute distance.
	got := RiskBasedSize(RiskInputs{
		Equity:     100000,
		EntryPrice: 245,
		StopPrice:  250,
		RiskPct:    0.01,
	})
	assert.Equal(t, 200, got)
}

func TestRiskBasedSizeZeroDistance(t *testing.T) {
	t.Parallel()

	got := RiskBasedSize(RiskInputs{
		Equity:     100000,
		EntryPrice: 250,
		StopPrice:  250,
		RiskPct:    0.01,
	})
	assert.Equal(t, 0, got)
}

func TestUnrealizedPL(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 100.0, UnrealizedPL(10, 100, 110), 1e-9)
	assert.InDelta(t, -50.0, UnrealizedPL(10, 100, 95), 1e-9)
}

func TestRealizedPL(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 99.0, RealizedPL(100, 110, 10, 1), 1e-9)
}

func TestPercentChange(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 10.0, PercentChange(110, 100), 1e-9)
	assert.InDelta(t, 0.0, PercentChange(110, 0), 1e-9)
}
