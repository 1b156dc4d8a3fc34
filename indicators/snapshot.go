package indicators

import (
	"fmt"

	"github.com/quantish/trendbot/market"
)

// Snapshot carries the indicator values derived from one closed bar.
// Ready is false until every underlying indicator has completed warmup;
// consumers must never act on a snapshot that is not ready.
type Snapshot struct {
	FastMA    float64
	SlowMA    float64
	TrendMA   float64
	RSI       float64
	VolumeAvg float64
	ATR       float64
	Ready     bool
}

// Params selects the indicator periods for one tracker.
type Params struct {
	FastPeriod   int  `json:"fast_period" yaml:"fast_period"`
	SlowPeriod   int  `json:"slow_period" yaml:"slow_period"`
	TrendPeriod  int  `json:"trend_period" yaml:"trend_period"`
	RSIPeriod    int  `json:"rsi_period" yaml:"rsi_period"`
	VolumePeriod int  `json:"volume_period" yaml:"volume_period"`
	ATRPeriod    int  `json:"atr_period" yaml:"atr_period"`
	UseEMA       bool `json:"use_ema" yaml:"use_ema"`
}

func DefaultParams() Params {
	return Params{
		FastPeriod:   8,
		SlowPeriod:   21,
		TrendPeriod:  50,
		RSIPeriod:    14,
		VolumePeriod: 20,
		ATRPeriod:    14,
		UseEMA:       true,
	}
}

func (p Params) Validate() error {
	if p.FastPeriod <= 0 || p.SlowPeriod <= 0 || p.TrendPeriod <= 0 {
		return fmt.Errorf("ma periods must be positive")
	}
	if p.FastPeriod >= p.SlowPeriod {
		return fmt.Errorf("fast_period %d must be < slow_period %d", p.FastPeriod, p.SlowPeriod)
	}
	if p.SlowPeriod >= p.TrendPeriod {
		return fmt.Errorf("slow_period %d must be < trend_period %d", p.SlowPeriod, p.TrendPeriod)
	}
	if p.RSIPeriod <= 0 || p.VolumePeriod <= 0 || p.ATRPeriod <= 0 {
		return fmt.Errorf("filter periods must be positive")
	}
	return nil
}

// Tracker maintains the streaming indicator set for one symbol and exposes
// the current and previous bar's snapshots.
type Tracker struct {
	fast  Indicator
	slow  Indicator
	trend Indicator
	rsi   *RSI
	vol   *VolumeMA
	atr   *ATR

	curr    Snapshot
	prev    Snapshot
	hasCurr bool
	hasPrev bool
}

func NewTracker(p Params) *Tracker {
	newMA := func(period int) Indicator {
		if p.UseEMA {
			return NewEMA(period)
		}
		return NewSMA(period)
	}
	return &Tracker{
		fast:  newMA(p.FastPeriod),
		slow:  newMA(p.SlowPeriod),
		trend: newMA(p.TrendPeriod),
		rsi:   NewRSI(p.RSIPeriod),
		vol:   NewVolumeMA(p.VolumePeriod),
		atr:   NewATR(p.ATRPeriod),
	}
}

// Warmup returns the bar count required before snapshots become ready.
func (t *Tracker) Warmup() int {
	w := t.fast.Warmup()
	for _, ind := range []Indicator{t.slow, t.trend, t.rsi, t.vol, t.atr} {
		if ind.Warmup() > w {
			w = ind.Warmup()
		}
	}
	return w
}

func (t *Tracker) Reset() {
	for _, ind := range []Indicator{t.fast, t.slow, t.trend, t.rsi, t.vol, t.atr} {
		ind.Reset()
	}
	t.curr = Snapshot{}
	t.prev = Snapshot{}
	t.hasCurr = false
	t.hasPrev = false
}

// Update consumes the next closed bar and rolls the snapshot window forward.
func (t *Tracker) Update(b market.Bar) {
	if t.hasCurr {
		t.prev = t.curr
		t.hasPrev = true
	}

	for _, ind := range []Indicator{t.fast, t.slow, t.trend, t.rsi, t.vol, t.atr} {
		ind.Update(b)
	}

	ready := true
	for _, ind := range []Indicator{t.fast, t.slow, t.trend, t.rsi, t.vol, t.atr} {
		if !ind.Ready() {
			ready = false
			break
		}
	}

	t.curr = Snapshot{
		FastMA:    t.fast.Value(),
		SlowMA:    t.slow.Value(),
		TrendMA:   t.trend.Value(),
		RSI:       t.rsi.Value(),
		VolumeAvg: t.vol.Value(),
		ATR:       t.atr.Value(),
		Ready:     ready,
	}
	t.hasCurr = true
}

// Current returns the snapshot for the most recently consumed bar.
func (t *Tracker) Current() Snapshot { return t.curr }

// Previous returns the prior bar's snapshot; ok is false before two bars
// have been consumed.
func (t *Tracker) Previous() (Snapshot, bool) { return t.prev, t.hasPrev }
