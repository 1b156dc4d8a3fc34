// Package market defines price bar data and feeds consumed by the engine.
package market

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrOutOfOrder = errors.New("bar out of order")
	ErrDuplicate  = errors.New("duplicate bar timestamp")
)

// Bar is one OHLCV candle for a symbol. Immutable once produced.
type Bar struct {
	Symbol string
	Time   time.Time // open time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series holds bars for a single symbol in strictly increasing open-time order.
type Series struct {
	Symbol string
	Bars   []Bar
}

func NewSeries(symbol string) *Series {
	return &Series{Symbol: symbol}
}

// Append adds a bar, enforcing per-symbol ordering. A bar older than the last
// accepted bar is ErrOutOfOrder; an equal timestamp is ErrDuplicate.
func (s *Series) Append(b Bar) error {
	if b.Symbol != s.Symbol {
		return fmt.Errorf("append: bar for %q into series %q", b.Symbol, s.Symbol)
	}
	if n := len(s.Bars); n > 0 {
		last := s.Bars[n-1].Time
		if b.Time.Before(last) {
			return fmt.Errorf("%w: %s at %s before %s", ErrOutOfOrder, b.Symbol, b.Time, last)
		}
		if b.Time.Equal(last) {
			return fmt.Errorf("%w: %s at %s", ErrDuplicate, b.Symbol, b.Time)
		}
	}
	s.Bars = append(s.Bars, b)
	return nil
}

func (s *Series) Len() int { return len(s.Bars) }

// Last returns the most recent bar and false if the series is empty.
func (s *Series) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
