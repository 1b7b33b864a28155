package broker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/quantbot/id"
	"github.com/rustyeddy/quantbot/journal"
	"github.com/rustyeddy/quantbot/market"
)

// DefaultPaperBaseURL is Alpaca's paper-trading environment.
const DefaultPaperBaseURL = "https://paper-api.alpaca.markets"

// Alpaca places orders through the Alpaca paper-trading REST API.
//
// A nil request price submits a market order; a price submits a limit
// order with the price quantized to the venue tick size. When the API
// rejects a limit for a sub-tick price, the order falls back once to a
// market order for the same quantity.
type Alpaca struct {
	client  *alpaca.Client
	journal journal.Journal
}

// NewAlpaca builds the live paper broker and verifies the credentials
// with an account query, so a misconfigured environment fails here and
// not on the first order.
func NewAlpaca(key, secret, baseURL string, jr journal.Journal) (*Alpaca, error) {
	if key == "" || secret == "" {
		return nil, fmt.Errorf("alpaca: missing API credentials")
	}
	if baseURL == "" {
		baseURL = DefaultPaperBaseURL
	}

	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    key,
		APISecret: secret,
		BaseURL:   baseURL,
	})

	if _, err := client.GetAccount(); err != nil {
		return nil, fmt.Errorf("alpaca: account check failed: %w", err)
	}

	return &Alpaca{client: client, journal: jr}, nil
}

// AccountValue returns account equity, or 0 when the API is
// unreachable. The prices map is unused: Alpaca marks positions itself.
func (a *Alpaca) AccountValue(ctx context.Context, prices map[string]float64) float64 {
	acct, err := a.client.GetAccount()
	if err != nil {
		slog.Warn("alpaca account query failed", "error", err)
		return 0
	}
	equity, _ := acct.Equity.Float64()
	return equity
}

// GetPosition returns the held quantity and average entry for symbol.
// No position, or any upstream failure, yields the zero position.
func (a *Alpaca) GetPosition(ctx context.Context, symbol string) market.Position {
	symbol = strings.ToUpper(symbol)

	pos, err := a.client.GetPosition(symbol)
	if err != nil {
		return market.Position{Symbol: symbol}
	}

	qty := int(pos.Qty.IntPart())
	avg, _ := pos.AvgEntryPrice.Float64()
	return market.Position{Symbol: symbol, Qty: qty, AvgPrice: avg}
}

func (a *Alpaca) PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	symbol := strings.ToUpper(req.Symbol)

	if req.Qty <= 0 {
		return OrderResult{}, fmt.Errorf("%w: qty must be > 0, got %d", ErrInvalidOrder, req.Qty)
	}
	if !req.Side.Valid() {
		return OrderResult{}, fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, req.Side)
	}

	qty := decimal.NewFromInt(int64(req.Qty))
	base := alpaca.PlaceOrderRequest{
		Symbol:        symbol,
		Qty:           &qty,
		Side:          alpacaSide(req.Side),
		TimeInForce:   alpaca.Day,
		ClientOrderID: id.New(),
	}

	var order *alpaca.Order
	var err error
	orderType := "limit"

	if req.Price == nil {
		orderType = "market"
		base.Type = alpaca.Market
		order, err = a.client.PlaceOrder(base)
		if err != nil {
			return OrderResult{}, fmt.Errorf("%w: market order: %v", ErrOrderRejected, err)
		}
	} else {
		limit := QuantizeTick(*req.Price)
		limitReq := base
		limitReq.Type = alpaca.Limit
		limitReq.LimitPrice = &limit

		// Bracket legs, each quantized independently.
		if req.StopPrice != nil || req.TakePrice != nil {
			limitReq.OrderClass = alpaca.Bracket
			if req.TakePrice != nil {
				tp := QuantizeTick(*req.TakePrice)
				limitReq.TakeProfit = &alpaca.TakeProfit{LimitPrice: &tp}
			}
			if req.StopPrice != nil {
				sl := QuantizeTick(*req.StopPrice)
				limitReq.StopLoss = &alpaca.StopLoss{StopPrice: &sl}
			}
		}

		order, err = a.client.PlaceOrder(limitReq)
		if err != nil {
			if !isTickRejection(err) {
				return OrderResult{}, fmt.Errorf("%w: limit order: %v", ErrOrderRejected, err)
			}

			// Sub-tick rejection: fall back once to a market order.
			slog.Warn("limit price rejected, falling back to market",
				"symbol", symbol, "limit", limit.String(), "error", err)
			marketReq := base
			marketReq.Type = alpaca.Market
			order, err = a.client.PlaceOrder(marketReq)
			if err != nil {
				return OrderResult{}, fmt.Errorf("%w: limit rejected and market fallback failed: %v", ErrOrderRejected, err)
			}
			orderType = "market"
		}
	}

	res := orderResult(order, req)
	recordTrade(a.journal, journalRow(res, req), orderType, req.Fees)

	slog.Info("order submitted",
		"symbol", res.Symbol, "side", res.Side, "qty", req.Qty,
		"status", res.Status, "order_id", res.BrokerOrderID)
	return res, nil
}

func (a *Alpaca) Close() error { return nil }

func alpacaSide(s market.Side) alpaca.Side {
	if s == market.Sell {
		return alpaca.Sell
	}
	return alpaca.Buy
}

// isTickRejection matches the API's sub-tick / invalid limit price
// rejection. The SDK surfaces these as an opaque message, so this is a
// substring check on the error text.
func isTickRejection(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sub-penny") ||
		strings.Contains(msg, "invalid limit_price") ||
		strings.Contains(msg, "minimum pricing")
}

func orderResult(order *alpaca.Order, req OrderRequest) OrderResult {
	res := OrderResult{
		Symbol:        req.Symbol,
		Side:          req.Side,
		RequestedQty:  req.Qty,
		Status:        string(order.Status),
		BrokerOrderID: order.ID,
	}
	if order.Symbol != "" {
		res.Symbol = order.Symbol
	}

	res.FilledQty = int(order.FilledQty.IntPart())
	if res.FilledQty > req.Qty {
		res.FilledQty = req.Qty
	}
	if order.FilledAvgPrice != nil {
		res.FilledAvgPrice, _ = order.FilledAvgPrice.Float64()
	}
	return res
}

// journalRow substitutes the requested limit price when the order has
// not filled yet, so the record carries a meaningful price.
func journalRow(res OrderResult, req OrderRequest) OrderResult {
	row := res
	if row.FilledAvgPrice == 0 && req.Price != nil {
		row.FilledAvgPrice = *req.Price
	}
	if row.FilledQty == 0 {
		row.FilledQty = req.Qty
	}
	return row
}
