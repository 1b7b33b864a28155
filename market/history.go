package market

import (
	"sort"
	"time"
)

// PricePoint is one close price for one period.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// History is an ordered close-price series for a single symbol.
// Points are unique per timestamp and the series is trimmed to a rolling
// window, so it never grows without bound.
type History struct {
	points  []PricePoint
	maxSize int
}

// HistoryWindow returns the rolling window size used for a long indicator
// period: twice the period, floored at 365 points so daily data always
// covers a year.
func HistoryWindow(longPeriod int) int {
	w := 2 * longPeriod
	if w < 365 {
		w = 365
	}
	return w
}

// NewHistory returns an empty history trimmed to maxSize points.
// maxSize <= 0 means unbounded.
func NewHistory(maxSize int) *History {
	return &History{maxSize: maxSize}
}

// Append adds a point, keeping the series sorted by time. A point with a
// timestamp already present replaces the existing one (last write wins).
func (h *History) Append(p PricePoint) {
	i := sort.Search(len(h.points), func(i int) bool {
		return !h.points[i].Time.Before(p.Time)
	})
	if i < len(h.points) && h.points[i].Time.Equal(p.Time) {
		h.points[i] = p
		return
	}

	h.points = append(h.points, PricePoint{})
	copy(h.points[i+1:], h.points[i:])
	h.points[i] = p
	h.trim()
}

// Merge appends a batch of points (dedup by timestamp, newest data wins).
func (h *History) Merge(points []PricePoint) {
	for _, p := range points {
		h.Append(p)
	}
}

func (h *History) trim() {
	if h.maxSize > 0 && len(h.points) > h.maxSize {
		h.points = h.points[len(h.points)-h.maxSize:]
	}
}

// Len returns the number of points.
func (h *History) Len() int { return len(h.points) }

// Closes returns a copy of the close prices in time order.
func (h *History) Closes() []float64 {
	out := make([]float64, len(h.points))
	for i, p := range h.points {
		out[i] = p.Close
	}
	return out
}

// Last returns the most recent point, or false when empty.
func (h *History) Last() (PricePoint, bool) {
	if len(h.points) == 0 {
		return PricePoint{}, false
	}
	return h.points[len(h.points)-1], true
}
