package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rustyeddy/quantbot/market"
)

// YahooURL is the public Yahoo Finance chart endpoint.
const YahooURL = "https://query1.finance.yahoo.com"

const (
	defaultRetries = 3
	defaultPause   = time.Second
)

// YahooSource fetches daily closes from the Yahoo Finance chart API.
// It is the secondary provider: no credentials, bounded retries with a
// fixed pause between attempts.
type YahooSource struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	pause      time.Duration
}

// NewYahooSource returns a client for the public chart endpoint.
func NewYahooSource() *YahooSource {
	return &YahooSource{
		baseURL: YahooURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retries: defaultRetries,
		pause:   defaultPause,
	}
}

// chartResponse is the subset of the chart payload we read. Yahoo
// reports closes both as raw quote closes and adjusted closes; entries
// can be null on holidays or partial days.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (s *YahooSource) History(ctx context.Context, symbol string, days int) ([]market.PricePoint, error) {
	symbol = strings.ToUpper(symbol)

	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, s.pause); err != nil {
				return nil, err
			}
		}

		points, err := s.fetchChart(ctx, symbol, fmt.Sprintf("%dd", days))
		if err == nil && len(points) > 0 {
			return points, nil
		}
		if err == nil {
			err = fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoData)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("yahoo chart %s after %d attempts: %w", symbol, s.retries, lastErr)
}

func (s *YahooSource) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	points, err := s.fetchChart(ctx, strings.ToUpper(symbol), "5d")
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, fmt.Errorf("yahoo latest %s: %w", symbol, ErrNoData)
	}
	return points[len(points)-1].Close, nil
}

func (s *YahooSource) fetchChart(ctx context.Context, symbol, rng string) ([]market.PricePoint, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d", s.baseURL, symbol, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "quantbot/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yahoo chart %s: status %d: %s", symbol, resp.StatusCode, string(body))
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("decode yahoo chart %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %s", symbol, chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoData)
	}

	result := chart.Chart.Result[0]

	// Prefer adjusted closes, fall back to raw quote closes. Both are
	// aligned to the timestamp array with possible null holes.
	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	var points []market.PricePoint
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, market.PricePoint{
			Time:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}
	return points, nil
}

// sleepCtx pauses for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
