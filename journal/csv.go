package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/quantbot/id"
)

// CSVJournal appends trades to a flat CSV file. It records trades only;
// strategy parameters need the SQLite journal.
type CSVJournal struct {
	w *csv.Writer
	f *os.File
}

// NewCSV opens the trade log at path, creating it with a header row
// when new. An existing file is appended to, never truncated.
func NewCSV(path string) (*CSVJournal, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write([]string{"id", "ts", "symbol", "side", "qty", "price", "fees", "order_type", "status", "broker_order_id", "note"}); err != nil {
			file.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &CSVJournal{w: w, f: file}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	if t.ID == "" {
		t.ID = id.New()
	}
	if t.Time.IsZero() {
		t.Time = time.Now().UTC()
	}

	err := j.w.Write([]string{
		t.ID,
		t.Time.Format(time.RFC3339),
		t.Symbol,
		t.Side,
		strconv.Itoa(t.Qty),
		formatFloat(t.Price),
		formatFloat(t.Fees),
		t.OrderType,
		t.Status,
		t.BrokerOrderID,
		t.Note,
	})
	if err != nil {
		return err
	}

	j.w.Flush()
	return j.w.Error()
}

// Trades reads the whole file back and returns up to limit records,
// most recent first.
func (j *CSVJournal) Trades(limit int) ([]TradeRecord, error) {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return nil, err
	}

	rf, err := os.Open(j.f.Name())
	if err != nil {
		return nil, err
	}
	defer rf.Close()

	rows, err := csv.NewReader(rf).ReadAll()
	if err != nil {
		return nil, err
	}

	var out []TradeRecord
	for i := len(rows) - 1; i >= 1 && len(out) < limit; i-- { // skip header
		row := rows[i]
		if len(row) < 11 {
			continue
		}
		ts, _ := time.Parse(time.RFC3339, row[1])
		qty, _ := strconv.Atoi(row[4])
		price, _ := strconv.ParseFloat(row[5], 64)
		fees, _ := strconv.ParseFloat(row[6], 64)
		out = append(out, TradeRecord{
			ID:            row[0],
			Time:          ts,
			Symbol:        row[2],
			Side:          row[3],
			Qty:           qty,
			Price:         price,
			Fees:          fees,
			OrderType:     row[7],
			Status:        row[8],
			BrokerOrderID: row[9],
			Note:          row[10],
		})
	}
	return out, nil
}

func (j *CSVJournal) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
