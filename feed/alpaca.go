package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/rustyeddy/quantbot/market"
)

// AlpacaSource reads daily bars and latest trades from the Alpaca market
// data API. It is the primary provider when live credentials are
// configured.
type AlpacaSource struct {
	client *marketdata.Client
}

// NewAlpacaSource builds a source from API credentials. baseURL is
// optional and overrides the default data endpoint.
func NewAlpacaSource(key, secret, baseURL string) *AlpacaSource {
	return &AlpacaSource{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    key,
			APISecret: secret,
			BaseURL:   baseURL,
		}),
	}
}

func (s *AlpacaSource) History(ctx context.Context, symbol string, days int) ([]market.PricePoint, error) {
	symbol = strings.ToUpper(symbol)
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	bars, err := s.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, ErrNoData)
	}

	points := make([]market.PricePoint, 0, len(bars))
	for _, b := range bars {
		points = append(points, market.PricePoint{Time: b.Timestamp, Close: b.Close})
	}
	return points, nil
}

func (s *AlpacaSource) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(symbol)

	trade, err := s.client.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
	if err != nil {
		return 0, fmt.Errorf("alpaca latest trade %s: %w", symbol, err)
	}
	if trade == nil || trade.Price <= 0 {
		return 0, fmt.Errorf("alpaca latest trade %s: %w", symbol, ErrNoData)
	}
	return trade.Price, nil
}
