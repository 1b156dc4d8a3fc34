package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, side, entry_price, exit_price, quantity, entry_time, exit_time, pnl, pnl_pct, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Symbol, t.Side, t.EntryPrice, t.ExitPrice,
		t.Quantity, t.EntryTime, t.ExitTime, t.PnL, t.PnLPct, t.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, cash, equity, realized_today, open_positions)
		VALUES (?, ?, ?, ?, ?)`,
		e.Time, e.Cash, e.Equity, e.RealizedToday, e.OpenPositions,
	)
	return err
}

func (j *SQLiteJournal) RecordEvent(e Event) error {
	_, err := j.db.Exec(`
		INSERT INTO events
		(time, kind, symbol, action, reason, equity)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Time, e.Kind, e.Symbol, e.Action, e.Reason, e.Equity,
	)
	return err
}

// ListTradesClosedBetween returns trades with exit_time in [start, end),
// ordered by exit time. Used by result summaries.
func (j *SQLiteJournal) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, side, entry_price, exit_price, quantity, entry_time, exit_time, pnl, pnl_pct, reason
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time`,
		start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.TradeID, &t.Symbol, &t.Side, &t.EntryPrice, &t.ExitPrice,
			&t.Quantity, &t.EntryTime, &t.ExitTime, &t.PnL, &t.PnLPct, &t.Reason); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
