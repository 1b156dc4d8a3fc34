package broker

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantish/trendbot/market"
)

func TestSimExecutorFillsAtReferencePrice(t *testing.T) {
	res, err := SimExecutor{}.PlaceOrder(context.Background(), OrderRequest{
		Symbol: "TST", Side: Buy, Quantity: 2, Type: "MARKET", Price: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, Filled, res.Status)
	assert.Equal(t, 100.0, res.FillPrice)
	assert.Equal(t, 2.0, res.FillQuantity)
	assert.NotEmpty(t, res.OrderID)
}

func TestSimExecutorRejectsBadOrders(t *testing.T) {
	_, err := SimExecutor{}.PlaceOrder(context.Background(), OrderRequest{Symbol: "TST", Quantity: 0, Price: 100})
	assert.ErrorIs(t, err, ErrOrderRejected)

	_, err = SimExecutor{}.PlaceOrder(context.Background(), OrderRequest{Symbol: "TST", Quantity: 1, Price: 0})
	assert.ErrorIs(t, err, ErrOrderRejected)
}

func TestDryRunExecutorFillsSynthetically(t *testing.T) {
	d := DryRunExecutor{Log: zerolog.Nop()}
	res, err := d.PlaceOrder(context.Background(), OrderRequest{
		Symbol: "TST", Side: Sell, Quantity: 1.5, Type: "MARKET", Price: 98,
	})
	require.NoError(t, err)
	assert.Equal(t, Filled, res.Status)
	assert.Equal(t, 98.0, res.FillPrice)
	assert.Equal(t, 1.5, res.FillQuantity)
}

type stubFeed struct {
	bars []market.Bar
	i    int
}

func (f *stubFeed) Next() (market.Bar, bool, error) {
	if f.i >= len(f.bars) {
		return market.Bar{}, false, nil
	}
	b := f.bars[f.i]
	f.i++
	return b, true, nil
}

func (f *stubFeed) Close() error { return nil }

func TestFeedPriceSource(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feed := &stubFeed{bars: []market.Bar{
		{Symbol: "AAA", Time: t0, Close: 10},
		{Symbol: "BBB", Time: t0, Close: 20},
		{Symbol: "AAA", Time: t0.Add(time.Hour), Close: 11},
	}}
	src := NewFeedPriceSource(feed)

	q, err := src.GetPrice(context.Background(), "AAA")
	require.NoError(t, err)
	assert.Equal(t, 10.0, q.Price)

	q, err = src.GetPrice(context.Background(), "BBB")
	require.NoError(t, err)
	assert.Equal(t, 20.0, q.Price)

	q, err = src.GetPrice(context.Background(), "AAA")
	require.NoError(t, err)
	assert.Equal(t, 11.0, q.Price)

	// exhausted feed keeps serving the last quote
	q, err = src.GetPrice(context.Background(), "AAA")
	require.NoError(t, err)
	assert.Equal(t, 11.0, q.Price)

	_, err = src.GetPrice(context.Background(), "CCC")
	assert.Error(t, err)
}
