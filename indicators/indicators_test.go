package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantish/trendbot/market"
)

func closeBar(c float64) market.Bar {
	return market.Bar{Symbol: "TST", Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 10}
}

func TestSMA(t *testing.T) {
	sma := NewSMA(3)
	assert.False(t, sma.Ready())
	assert.Equal(t, 0.0, sma.Value())

	for _, c := range []float64{1, 2, 3} {
		sma.Update(closeBar(c))
	}
	require.True(t, sma.Ready())
	assert.InDelta(t, 2.0, sma.Value(), 1e-12)

	sma.Update(closeBar(4))
	assert.InDelta(t, 3.0, sma.Value(), 1e-12)

	sma.Reset()
	assert.False(t, sma.Ready())
}

func TestEMASeededWithSMA(t *testing.T) {
	ema := NewEMA(3)
	for _, c := range []float64{2, 4, 6} {
		ema.Update(closeBar(c))
	}
	require.True(t, ema.Ready())
	assert.InDelta(t, 4.0, ema.Value(), 1e-12)

	// multiplier 2/(3+1) = 0.5
	ema.Update(closeBar(8))
	assert.InDelta(t, 6.0, ema.Value(), 1e-12)
}

func TestRSIZeroLossIsExactly100(t *testing.T) {
	rsi := NewRSI(3)
	for _, c := range []float64{1, 2, 3, 4} {
		rsi.Update(closeBar(c))
	}
	require.True(t, rsi.Ready())
	assert.Equal(t, 100.0, rsi.Value())
}

func TestRSIMixed(t *testing.T) {
	rsi := NewRSI(2)
	for _, c := range []float64{10, 11, 10.5} {
		rsi.Update(closeBar(c))
	}
	require.True(t, rsi.Ready())
	// avgGain 0.5, avgLoss 0.25, RS 2 -> 100 - 100/3
	assert.InDelta(t, 66.6666667, rsi.Value(), 1e-6)
}

func TestRSIWarmup(t *testing.T) {
	rsi := NewRSI(14)
	assert.Equal(t, 15, rsi.Warmup())
	for i := 0; i < 14; i++ {
		rsi.Update(closeBar(float64(100 + i)))
	}
	assert.False(t, rsi.Ready())
	rsi.Update(closeBar(115))
	assert.True(t, rsi.Ready())
}

func TestATRWilder(t *testing.T) {
	atr := NewATR(2)
	bars := []market.Bar{
		{High: 10, Low: 8, Close: 9},
		{High: 11, Low: 9, Close: 10},    // TR 2
		{High: 12, Low: 10, Close: 11},   // TR 3
		{High: 11, Low: 10, Close: 10.5}, // TR 1
	}

	atr.Update(bars[0])
	atr.Update(bars[1])
	assert.False(t, atr.Ready())

	atr.Update(bars[2])
	require.True(t, atr.Ready())
	assert.InDelta(t, 2.5, atr.Value(), 1e-12)

	atr.Update(bars[3])
	assert.InDelta(t, 1.75, atr.Value(), 1e-12)
}

func TestVolumeMA(t *testing.T) {
	vol := NewVolumeMA(2)
	vol.Update(market.Bar{Volume: 10})
	vol.Update(market.Bar{Volume: 20})
	require.True(t, vol.Ready())
	assert.InDelta(t, 15.0, vol.Value(), 1e-12)
}

func TestTrackerSnapshots(t *testing.T) {
	p := Params{
		FastPeriod:   2,
		SlowPeriod:   3,
		TrendPeriod:  4,
		RSIPeriod:    2,
		VolumePeriod: 2,
		ATRPeriod:    2,
		UseEMA:       false,
	}
	tr := NewTracker(p)
	assert.Equal(t, 4, tr.Warmup())

	tr.Update(closeBar(100))
	_, ok := tr.Previous()
	assert.False(t, ok)
	assert.False(t, tr.Current().Ready)

	for _, c := range []float64{101, 102, 103} {
		tr.Update(closeBar(c))
	}
	curr := tr.Current()
	prev, ok := tr.Previous()
	require.True(t, ok)
	assert.True(t, curr.Ready)
	assert.False(t, prev.Ready) // only three bars behind it
	assert.InDelta(t, 102.5, curr.FastMA, 1e-12)
	assert.InDelta(t, 102.0, curr.SlowMA, 1e-12)
	assert.InDelta(t, 101.5, curr.TrendMA, 1e-12)

	tr.Reset()
	assert.False(t, tr.Current().Ready)
	_, ok = tr.Previous()
	assert.False(t, ok)
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.FastPeriod = p.SlowPeriod
	assert.Error(t, p.Validate())

	p = DefaultParams()
	p.TrendPeriod = p.SlowPeriod
	assert.Error(t, p.Validate())
}
