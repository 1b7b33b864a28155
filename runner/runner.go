// Package runner drives the polling loop: fetch the latest price, update
// history, evaluate the crossover strategy, and route any signal change
// through sizing and the broker. One runner owns one symbol.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/rustyeddy/quantbot/broker"
	"github.com/rustyeddy/quantbot/feed"
	"github.com/rustyeddy/quantbot/market"
	"github.com/rustyeddy/quantbot/risk"
	"github.com/rustyeddy/quantbot/strategies"
)

// State is the loop's lifecycle phase.
type State int32

const (
	StateIdle State = iota
	StatePolling
	StateErrorBackoff
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePolling:
		return "POLLING"
	case StateErrorBackoff:
		return "ERROR_BACKOFF"
	case StateStopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

const (
	baseBackoff    = 5 * time.Second
	maxBackoff     = 120 * time.Second
	errorsToDouble = 2
)

// Options configures a Runner. Feed, Broker, and Strategy are required.
type Options struct {
	Symbol       string
	Strategy     *strategies.SMAEMACross
	Feed         feed.Source
	Broker       broker.Broker
	PollInterval time.Duration
	AllocPct     float64
	SlippagePct  float64
	Commission   float64
}

// StepInfo reports the outcome of one tick.
type StepInfo struct {
	Time   time.Time
	Signal market.Signal
	Price  float64
	Equity float64
}

// Runner is the single-threaded orchestration loop. Step and Run must
// not be called concurrently; State is safe to read from other
// goroutines.
type Runner struct {
	opts       Options
	history    *market.History
	lastSignal market.Signal
	state      atomic.Int32
}

// New validates the options and fetches the warm-up history. A failed
// warm-up fetch is logged and leaves the history empty; Step refetches.
func New(ctx context.Context, opts Options) (*Runner, error) {
	if opts.Symbol == "" {
		return nil, fmt.Errorf("runner: symbol is required")
	}
	if opts.Strategy == nil {
		return nil, fmt.Errorf("runner: strategy is required")
	}
	if opts.Feed == nil {
		return nil, fmt.Errorf("runner: feed is required")
	}
	if opts.Broker == nil {
		return nil, fmt.Errorf("runner: broker is required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}

	r := &Runner{
		opts:       opts,
		history:    market.NewHistory(market.HistoryWindow(opts.Strategy.Long)),
		lastSignal: market.SignalHold,
	}

	days := opts.Strategy.Long + 10
	if days < 60 {
		days = 60
	}
	points, err := opts.Feed.History(ctx, opts.Symbol, days)
	if err != nil {
		slog.Warn("warm-up history fetch failed", "symbol", opts.Symbol, "error", err)
	} else {
		r.history.Merge(points)
	}

	return r, nil
}

// State returns the current lifecycle phase.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// LastSignal returns the most recently emitted signal.
func (r *Runner) LastSignal() market.Signal {
	return r.lastSignal
}

// HistoryLen returns how many price points are held.
func (r *Runner) HistoryLen() int {
	return r.history.Len()
}

// Step runs one tick. It returns an error only when no usable price
// could be obtained; an order failure is logged, not returned, and the
// last emitted signal advances either way.
func (r *Runner) Step(ctx context.Context) (StepInfo, error) {
	now := time.Now().UTC()

	price, err := r.opts.Feed.LatestPrice(ctx, r.opts.Symbol)
	if err == nil && priceUsable(price) {
		r.history.Append(market.PricePoint{Time: now, Close: price})
	} else {
		// Probe failed; refetch the full window and take its last close.
		if err != nil {
			slog.Warn("latest price probe failed, refetching history",
				"symbol", r.opts.Symbol, "error", err)
		}
		days := r.opts.Strategy.Long + 5
		if days < 60 {
			days = 60
		}
		points, ferr := r.opts.Feed.History(ctx, r.opts.Symbol, days)
		if ferr != nil {
			slog.Warn("history refetch failed", "symbol", r.opts.Symbol, "error", ferr)
		} else {
			r.history.Merge(points)
		}
		last, ok := r.history.Last()
		if !ok {
			return StepInfo{Time: now, Signal: market.SignalHold},
				fmt.Errorf("no price available for %s: %w", r.opts.Symbol, feed.ErrNoData)
		}
		price = last.Close
	}

	sig := r.opts.Strategy.Evaluate(r.history)

	prices := map[string]float64{}
	if priceUsable(price) {
		prices[r.opts.Symbol] = price
	}

	if sig != r.lastSignal && (sig == market.SignalBuy || sig == market.SignalSell) {
		r.trade(ctx, sig, price, prices)
		r.lastSignal = sig
	} else if r.lastSignal == market.SignalHold && sig != market.SignalHold {
		r.lastSignal = sig
	}

	return StepInfo{
		Time:   now,
		Signal: sig,
		Price:  price,
		Equity: r.opts.Broker.AccountValue(ctx, prices),
	}, nil
}

// trade sizes and submits one order for a fresh BUY or SELL signal.
func (r *Runner) trade(ctx context.Context, sig market.Signal, price float64, prices map[string]float64) {
	equity := r.opts.Broker.AccountValue(ctx, prices)

	qty := risk.AllocationSize(risk.AllocationInputs{
		Equity:      equity,
		Price:       price,
		AllocPct:    r.opts.AllocPct,
		SlippagePct: r.opts.SlippagePct,
		Commission:  r.opts.Commission,
	})
	if sig == market.SignalSell {
		// Never sell more than held; the broker clamps again anyway.
		if held := r.opts.Broker.GetPosition(ctx, r.opts.Symbol); held.Qty > 0 && qty > held.Qty {
			qty = held.Qty
		}
	}
	if qty <= 0 {
		slog.Info("computed qty is zero, skipping order", "symbol", r.opts.Symbol, "signal", sig)
		return
	}

	side := market.Buy
	if sig == market.SignalSell {
		side = market.Sell
	}

	res, err := r.opts.Broker.PlaceOrder(ctx, broker.OrderRequest{
		Symbol: r.opts.Symbol,
		Side:   side,
		Qty:    qty,
		Price:  &price,
		Fees:   r.opts.Commission,
	})
	if err != nil {
		slog.Warn("order failed", "symbol", r.opts.Symbol, "side", side, "qty", qty, "error", err)
		return
	}
	slog.Info("order executed",
		"symbol", res.Symbol, "side", res.Side, "qty", res.FilledQty,
		"price", res.FilledAvgPrice, "status", res.Status)
}

// Close releases the broker. Run calls it on exit; callers stepping
// manually must call it themselves.
func (r *Runner) Close() error {
	r.state.Store(int32(StateStopped))
	return r.opts.Broker.Close()
}

// Run polls until ctx is cancelled, backing off on tick errors. The
// broker is closed before Run returns.
func (r *Runner) Run(ctx context.Context) error {
	defer func() {
		if err := r.Close(); err != nil {
			slog.Warn("broker close failed", "error", err)
		}
	}()

	errorCount := 0
	for {
		r.state.Store(int32(StatePolling))

		info, err := r.Step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			errorCount++
			wait := Backoff(errorCount)
			slog.Error("tick failed", "error", err, "errors", errorCount, "backoff", wait)

			r.state.Store(int32(StateErrorBackoff))
			if !sleepCtx(ctx, wait) {
				return nil
			}
			continue
		}

		errorCount = 0
		slog.Info("tick",
			"signal", info.Signal, "price", info.Price, "equity", info.Equity,
			"points", r.history.Len())

		if !sleepCtx(ctx, r.opts.PollInterval) {
			return nil
		}
	}
}

// Backoff returns the wait before retrying after errorCount consecutive
// failures: base doubled every errorsToDouble failures, capped.
func Backoff(errorCount int) time.Duration {
	if errorCount <= 1 {
		return baseBackoff
	}
	d := baseBackoff * (1 << uint((errorCount-1)/errorsToDouble))
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}

// sleepCtx waits for d, in at most one-second slices so cancellation is
// observed promptly. It reports false when ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	for d > 0 {
		slice := d
		if slice > time.Second {
			slice = time.Second
		}
		timer := time.NewTimer(slice)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		d -= slice
	}
	return ctx.Err() == nil
}

func priceUsable(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}
