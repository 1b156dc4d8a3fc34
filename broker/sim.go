package broker

import (
	"context"
	"fmt"

	"github.com/quantish/trendbot/pkg/id"
	"github.com/rs/zerolog"
)

// SimExecutor fills every market order instantly at the request's reference
// price. Used by the backtest and paper drivers; no partial fills, no
// slippage beyond the fee rate applied by the ledger.
type SimExecutor struct{}

func (SimExecutor) PlaceOrder(_ context.Context, req OrderRequest) (OrderResult, error) {
	if req.Quantity <= 0 {
		return OrderResult{Status: Rejected}, fmt.Errorf("%w: non-positive quantity %v", ErrOrderRejected, req.Quantity)
	}
	if req.Price <= 0 {
		return OrderResult{Status: Rejected}, fmt.Errorf("%w: no reference price for %s", ErrOrderRejected, req.Symbol)
	}
	return OrderResult{
		OrderID:      id.New(),
		Status:       Filled,
		FillPrice:    req.Price,
		FillQuantity: req.Quantity,
	}, nil
}

// DryRunExecutor evaluates and logs the action but always returns a
// synthetic immediate fill without contacting any exchange.
type DryRunExecutor struct {
	Log zerolog.Logger
}

func (d DryRunExecutor) PlaceOrder(_ context.Context, req OrderRequest) (OrderResult, error) {
	if req.Quantity <= 0 || req.Price <= 0 {
		return OrderResult{Status: Rejected}, fmt.Errorf("%w: bad dry-run order %+v", ErrOrderRejected, req)
	}
	d.Log.Info().
		Str("symbol", req.Symbol).
		Str("side", string(req.Side)).
		Float64("quantity", req.Quantity).
		Float64("price", req.Price).
		Msg("dry-run order")
	return OrderResult{
		OrderID:      id.New(),
		Status:       Filled,
		FillPrice:    req.Price,
		FillQuantity: req.Quantity,
	}, nil
}
