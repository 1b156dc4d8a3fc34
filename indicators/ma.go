package indicators

import (
	"fmt"

	"github.com/quantish/trendbot/market"
)

// SimpleMA is a streaming Simple Moving Average over bar closes.
type SimpleMA struct {
	period int
	window []float64
	sum    float64
}

func NewSMA(period int) *SimpleMA {
	return &SimpleMA{
		period: period,
		window: make([]float64, 0, period),
	}
}

func (m *SimpleMA) Name() string { return fmt.Sprintf("SMA(%d)", m.period) }

func (m *SimpleMA) Warmup() int { return m.period }

func (m *SimpleMA) Reset() {
	m.window = m.window[:0]
	m.sum = 0
}

func (m *SimpleMA) Update(b market.Bar) { m.push(b.Close) }

func (m *SimpleMA) push(v float64) {
	m.window = append(m.window, v)
	m.sum += v
	if len(m.window) > m.period {
		m.sum -= m.window[0]
		m.window = m.window[1:]
	}
}

func (m *SimpleMA) Ready() bool { return len(m.window) >= m.period }

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.sum / float64(len(m.window))
}

// VolumeMA is a streaming simple mean over bar volumes, used as the
// denominator of the volume-confirmation ratio.
type VolumeMA struct {
	inner SimpleMA
}

func NewVolumeMA(period int) *VolumeMA {
	return &VolumeMA{inner: SimpleMA{period: period, window: make([]float64, 0, period)}}
}

func (m *VolumeMA) Name() string        { return fmt.Sprintf("VolMA(%d)", m.inner.period) }
func (m *VolumeMA) Warmup() int         { return m.inner.period }
func (m *VolumeMA) Reset()              { m.inner.Reset() }
func (m *VolumeMA) Update(b market.Bar) { m.inner.push(b.Volume) }
func (m *VolumeMA) Ready() bool         { return m.inner.Ready() }
func (m *VolumeMA) Value() float64      { return m.inner.Value() }

// ExponentialMA is a streaming Exponential Moving Average over bar closes,
// seeded with the SMA of the first period closes.
type ExponentialMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

func NewEMA(period int) *ExponentialMA {
	return &ExponentialMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *ExponentialMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }

func (e *ExponentialMA) Warmup() int { return e.period }

func (e *ExponentialMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *ExponentialMA) Update(b market.Bar) {
	if e.count < e.period {
		e.warmupSum += b.Close
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = (b.Close-e.ema)*e.multiplier + e.ema
}

func (e *ExponentialMA) Ready() bool { return e.count >= e.period }

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}
