package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBudget() Budget {
	return Budget{
		PositionSizePct:   0.02,
		StopLossPct:       0.02,
		TakeProfitPct:     0.04,
		DailyLossLimitPct: 0.05,
		MaxPositionUSD:    500,
		MaxOpenTrades:     3,
	}
}

func TestSizeFromEquityPct(t *testing.T) {
	b := testBudget()
	res, rej := b.Size(SizeRequest{Symbol: "TST", Price: 100, Equity: 10000, Cash: 10000, LotSize: 0.01})
	require.Nil(t, rej)
	// 2% of 10k = 200 notional
	assert.InDelta(t, 2.0, res.Quantity, 1e-12)
	assert.InDelta(t, 200.0, res.Notional, 1e-12)
	assert.InDelta(t, 200.0, res.Cost, 1e-12)
}

func TestSizeCappedByMaxPosition(t *testing.T) {
	b := testBudget()
	res, rej := b.Size(SizeRequest{Symbol: "TST", Price: 100, Equity: 100000, Cash: 100000, LotSize: 0.01})
	require.Nil(t, rej)
	// 2% of 100k = 2000, capped at 500
	assert.InDelta(t, 5.0, res.Quantity, 1e-12)
}

func TestSizeFloorsToLot(t *testing.T) {
	b := testBudget()
	res, rej := b.Size(SizeRequest{Symbol: "TST", Price: 3, Equity: 10000, Cash: 10000, LotSize: 1})
	require.Nil(t, rej)
	// 200/3 = 66.67, floored to whole units
	assert.Equal(t, 66.0, res.Quantity)
}

func TestSizeIncludesFeeInCost(t *testing.T) {
	b := testBudget()
	res, rej := b.Size(SizeRequest{Symbol: "TST", Price: 100, Equity: 10000, Cash: 10000, FeeRate: 0.001, LotSize: 0.01})
	require.Nil(t, rej)
	assert.InDelta(t, 200.2, res.Cost, 1e-9)
}

func TestSizeRejections(t *testing.T) {
	b := testBudget()

	_, rej := b.Size(SizeRequest{Symbol: "TST", Price: 0, Equity: 10000, Cash: 10000})
	require.NotNil(t, rej)
	assert.Equal(t, RejectBadPrice, rej.Code)

	_, rej = b.Size(SizeRequest{Symbol: "TST", Price: 1000, Equity: 10000, Cash: 10000, LotSize: 1})
	require.NotNil(t, rej)
	assert.Equal(t, RejectZeroQuantity, rej.Code)

	_, rej = b.Size(SizeRequest{Symbol: "TST", Price: 100, Equity: 10000, Cash: 50, LotSize: 0.01})
	require.NotNil(t, rej)
	assert.Equal(t, RejectInsufficientCash, rej.Code)
}

func TestCheckEntryMaxOpenTrades(t *testing.T) {
	b := testBudget()

	rej := b.CheckEntry(DayState{OpenPositions: 3, EquityAtDayStart: 10000})
	require.NotNil(t, rej)
	assert.Equal(t, RejectMaxOpenTrades, rej.Code)

	assert.Nil(t, b.CheckEntry(DayState{OpenPositions: 2, EquityAtDayStart: 10000}))
}

func TestCheckEntryDailyBreakerAtExactLimit(t *testing.T) {
	b := testBudget()

	// 5% of 10000: reaching exactly -500 trips the breaker
	rej := b.CheckEntry(DayState{RealizedToday: -500, EquityAtDayStart: 10000})
	require.NotNil(t, rej)
	assert.Equal(t, RejectDailyLossLimit, rej.Code)

	assert.Nil(t, b.CheckEntry(DayState{RealizedToday: -499.99, EquityAtDayStart: 10000}))
	assert.Nil(t, b.CheckEntry(DayState{RealizedToday: 100, EquityAtDayStart: 10000}))
}

func TestBudgetValidate(t *testing.T) {
	assert.NoError(t, DefaultBudget().Validate())

	b := DefaultBudget()
	b.PositionSizePct = 0
	assert.Error(t, b.Validate())

	b = DefaultBudget()
	b.DailyLossLimitPct = 1
	assert.Error(t, b.Validate())

	b = DefaultBudget()
	b.Trailing = Trailing{Enabled: true}
	assert.Error(t, b.Validate())

	b.Trailing = Trailing{Enabled: true, ActivationPct: 0.01, TrailPct: 0.01}
	assert.NoError(t, b.Validate())
}
