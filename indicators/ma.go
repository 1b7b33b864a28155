// Package indicators provides the moving averages used for crossover
// signals. Values are computed from plain close-price slices so they can
// be evaluated over any window of a market.History.
package indicators

// SMA returns the simple moving average of the last period closes.
// ok is false when there are fewer than period points or period is
// not positive.
func SMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}

	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period), true
}

// EMA returns the exponential moving average with the given smoothing
// span over the full series: seeded at the first close and updated
// recursively with alpha = 2/(span+1). There is no look-back window;
// every point contributes. ok is false with fewer than two points or a
// non-positive span.
func EMA(closes []float64, span int) (float64, bool) {
	if span <= 0 || len(closes) < 2 {
		return 0, false
	}

	alpha := 2.0 / float64(span+1)
	ema := closes[0]
	for _, c := range closes[1:] {
		ema = alpha*c + (1-alpha)*ema
	}
	return ema, true
}
