// Package feed fetches close-price history and latest prices for a
// symbol, normalizing provider-specific shapes to market.PricePoint.
//
// Providers are chained: the primary is attempted first, and an error or
// empty result falls through to the secondary.
package feed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rustyeddy/quantbot/market"
)

// ErrNoData means a provider responded but had no usable prices.
var ErrNoData = errors.New("feed: no data")

// Source is one price provider.
type Source interface {
	// History returns daily (date, close) points covering roughly the
	// last days calendar days, oldest first.
	History(ctx context.Context, symbol string, days int) ([]market.PricePoint, error)

	// LatestPrice returns the most recent trade or close price.
	LatestPrice(ctx context.Context, symbol string) (float64, error)
}

// Fallback tries the primary source and falls back to the secondary on
// any failure or empty result. A nil primary is allowed; the secondary
// is required.
type Fallback struct {
	Primary   Source
	Secondary Source
}

// NewFallback chains primary over secondary.
func NewFallback(primary, secondary Source) *Fallback {
	return &Fallback{Primary: primary, Secondary: secondary}
}

func (f *Fallback) History(ctx context.Context, symbol string, days int) ([]market.PricePoint, error) {
	if f.Primary != nil {
		points, err := f.Primary.History(ctx, symbol, days)
		if err == nil && len(points) > 0 {
			return points, nil
		}
		slog.Warn("primary feed failed, trying secondary", "symbol", symbol, "error", err)
	}
	return f.Secondary.History(ctx, symbol, days)
}

func (f *Fallback) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	if f.Primary != nil {
		price, err := f.Primary.LatestPrice(ctx, symbol)
		if err == nil {
			return price, nil
		}
		slog.Warn("primary feed failed, trying secondary", "symbol", symbol, "error", err)
	}
	return f.Secondary.LatestPrice(ctx, symbol)
}
