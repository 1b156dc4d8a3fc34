package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrCorruptSnapshot marks a persisted state that fails invariant checks.
// A driver must refuse to resume from it rather than silently repair it.
var ErrCorruptSnapshot = errors.New("corrupt ledger snapshot")

// Snapshot is the persisted form of the ledger, written after every bar
// cycle by the paper and live drivers and read once at startup to resume.
type Snapshot struct {
	SavedAt          time.Time            `json:"saved_at"`
	Cash             float64              `json:"cash"`
	Equity           float64              `json:"equity"`
	FeeRate          float64              `json:"fee_rate"`
	RealizedToday    float64              `json:"realized_pnl_today"`
	EquityAtDayStart float64              `json:"equity_at_day_start"`
	Day              time.Time            `json:"day"`
	Positions        map[string]Position  `json:"open_positions"`
	ClosedTrades     []ClosedTrade        `json:"closed_trades"`
	LastBar          map[string]time.Time `json:"last_bar"`
}

// Snapshot captures the full ledger state, field for field.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Snapshot{
		SavedAt:          time.Now().UTC(),
		Cash:             l.cash,
		Equity:           l.equity,
		FeeRate:          l.feeRate,
		RealizedToday:    l.realizedToday,
		EquityAtDayStart: l.equityAtDayStart,
		Day:              l.day,
		Positions:        make(map[string]Position, len(l.positions)),
		ClosedTrades:     make([]ClosedTrade, len(l.closed)),
		LastBar:          make(map[string]time.Time, len(l.lastBar)),
	}
	for sym, p := range l.positions {
		s.Positions[sym] = *p
	}
	copy(s.ClosedTrades, l.closed)
	for sym, t := range l.lastBar {
		s.LastBar[sym] = t
	}
	return s
}

func (s Snapshot) validate() error {
	if s.Cash < 0 {
		return fmt.Errorf("%w: cash %.2f < 0", ErrCorruptSnapshot, s.Cash)
	}
	for sym, p := range s.Positions {
		if p.Symbol != sym {
			return fmt.Errorf("%w: position keyed %q holds symbol %q", ErrCorruptSnapshot, sym, p.Symbol)
		}
		if p.Side != Long {
			return fmt.Errorf("%w: position %s has side %q", ErrCorruptSnapshot, sym, p.Side)
		}
		if p.Quantity <= 0 || p.EntryPrice <= 0 {
			return fmt.Errorf("%w: position %s quantity=%v entry=%v", ErrCorruptSnapshot, sym, p.Quantity, p.EntryPrice)
		}
		if p.StopLoss <= 0 || p.TakeProfit <= p.StopLoss {
			return fmt.Errorf("%w: position %s stop=%v take=%v", ErrCorruptSnapshot, sym, p.StopLoss, p.TakeProfit)
		}
	}
	return nil
}

// Restore rebuilds a ledger from a snapshot, refusing corrupt state.
func Restore(s Snapshot) (*Ledger, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	l := New(s.Cash, s.FeeRate)
	l.equity = s.Equity
	l.realizedToday = s.RealizedToday
	l.equityAtDayStart = s.EquityAtDayStart
	l.day = s.Day
	for sym, p := range s.Positions {
		cp := p
		l.positions[sym] = &cp
	}
	l.closed = append(l.closed, s.ClosedTrades...)
	for sym, t := range s.LastBar {
		l.lastBar[sym] = t
	}
	return l, nil
}

// Save writes the snapshot atomically (temp file + rename) so a crash mid
// write never leaves a truncated document behind.
func (l *Ledger) Save(path string) error {
	s := l.Snapshot()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Load reads and validates a snapshot file. A missing file is not an error
// for callers that treat it as a fresh start; they should check with
// os.IsNotExist.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return Restore(s)
}
