package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestHistoryAppendKeepsOrder(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	h.Append(PricePoint{Time: day(2), Close: 102})
	h.Append(PricePoint{Time: day(0), Close: 100})
	h.Append(PricePoint{Time: day(1), Close: 101})

	assert.Equal(t, []float64{100, 101, 102}, h.Closes())
}

func TestHistoryDedupByTimestamp(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	h.Append(PricePoint{Time: day(0), Close: 100})
	h.Append(PricePoint{Time: day(0), Close: 105})

	assert.Equal(t, 1, h.Len())
	last, ok := h.Last()
	assert.True(t, ok)
	assert.Equal(t, 105.0, last.Close)
}

func TestHistoryTrimsToWindow(t *testing.T) {
	t.Parallel()

	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Append(PricePoint{Time: day(i), Close: float64(100 + i)})
	}

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []float64{102, 103, 104}, h.Closes())
}

func TestHistoryWindow(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 400, HistoryWindow(200))
	assert.Equal(t, 365, HistoryWindow(50))
}

func TestHistoryMerge(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	h.Append(PricePoint{Time: day(1), Close: 101})
	h.Merge([]PricePoint{
		{Time: day(0), Close: 100},
		{Time: day(1), Close: 111},
		{Time: day(2), Close: 102},
	})

	assert.Equal(t, []float64{100, 111, 102}, h.Closes())
}

func TestHistoryLastEmpty(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	_, ok := h.Last()
	assert.False(t, ok)
}
