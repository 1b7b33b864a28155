package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/quantbot/id"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	if t.ID == "" {
		t.ID = id.New()
	}
	if t.Time.IsZero() {
		t.Time = time.Now().UTC()
	}

	_, err := j.db.Exec(`
		INSERT INTO trades
		(id, ts, symbol, side, qty, price, fees, order_type, status, broker_order_id, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Time, t.Symbol, t.Side, t.Qty, t.Price,
		t.Fees, t.OrderType, t.Status, t.BrokerOrderID, t.Note,
	)
	return err
}

// Trades returns up to limit records, most recent first.
func (j *SQLite) Trades(limit int) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, ts, symbol, side, qty, price, fees, order_type, status, broker_order_id, note
		FROM trades
		ORDER BY ts DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		var orderType, status, brokerID, note sql.NullString
		if err := rows.Scan(
			&rec.ID,
			&rec.Time,
			&rec.Symbol,
			&rec.Side,
			&rec.Qty,
			&rec.Price,
			&rec.Fees,
			&orderType,
			&status,
			&brokerID,
			&note,
		); err != nil {
			return nil, err
		}
		rec.OrderType = orderType.String
		rec.Status = status.String
		rec.BrokerOrderID = brokerID.String
		rec.Note = note.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveParam upserts a strategy parameter, refreshing updated_at.
func (j *SQLite) SaveParam(name, value string) error {
	_, err := j.db.Exec(`
		INSERT INTO strategy_params (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		name, value, time.Now().UTC(),
	)
	return err
}

func (j *SQLite) Params() (map[string]string, error) {
	rows, err := j.db.Query(`SELECT name, value FROM strategy_params`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
