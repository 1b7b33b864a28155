// Package journal is the append-only record of executed trades plus a
// small name/value store for strategy parameters.
//
// Journal writes are best-effort by contract: brokers log a failed append
// and carry on, so an implementation must never be load-bearing for order
// flow.
package journal

import "time"

// TradeRecord is one executed order. Records are immutable once written.
type TradeRecord struct {
	ID            string
	Time          time.Time
	Symbol        string
	Side          string
	Qty           int
	Price         float64
	Fees          float64
	OrderType     string // "market" or "limit"
	Status        string
	BrokerOrderID string // empty for simulated fills
	Note          string
}

// Journal records executed trades and lists them most-recent-first.
type Journal interface {
	RecordTrade(TradeRecord) error
	Trades(limit int) ([]TradeRecord, error)
	Close() error
}

// Param is a persisted strategy parameter.
type Param struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}

// ParamStore persists strategy parameters with upsert semantics.
// Only the SQLite journal implements it.
type ParamStore interface {
	SaveParam(name, value string) error
	Params() (map[string]string, error)
}
