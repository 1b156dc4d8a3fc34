package risk

import (
	"fmt"
	"math"
)

// SizeRequest carries everything a sizing decision needs. LotSize is the
// exchange's lot granularity, injected by the caller — not computed here.
type SizeRequest struct {
	Symbol  string
	Price   float64
	Equity  float64
	Cash    float64
	FeeRate float64
	LotSize float64
}

// SizeResult is a successful sizing decision.
type SizeResult struct {
	Quantity float64
	Notional float64 // quantity * price, before fees
	Cost     float64 // cash debit including the entry fee
}

// Size converts an entry intent into an order quantity:
// notional = min(equity * position_size_pct, max_position_usd), quantity
// rounded down to the lot granularity. A quantity that rounds to zero or a
// cost the cash cannot cover is a rejection, never a crash.
func (b Budget) Size(req SizeRequest) (SizeResult, *Rejection) {
	if req.Price <= 0 {
		return SizeResult{}, &Rejection{
			Code: RejectBadPrice,
			Msg:  fmt.Sprintf("non-positive price %v for %s", req.Price, req.Symbol),
		}
	}

	notional := req.Equity * b.PositionSizePct
	if notional > b.MaxPositionUSD {
		notional = b.MaxPositionUSD
	}

	qty := notional / req.Price
	if req.LotSize > 0 {
		qty = math.Floor(qty/req.LotSize) * req.LotSize
	}
	if qty <= 0 {
		return SizeResult{}, &Rejection{
			Code: RejectZeroQuantity,
			Msg:  fmt.Sprintf("quantity rounds to zero for %s at %v", req.Symbol, req.Price),
		}
	}

	cost := qty * req.Price * (1 + req.FeeRate)
	if cost > req.Cash {
		return SizeResult{}, &Rejection{
			Code: RejectInsufficientCash,
			Msg:  fmt.Sprintf("cost %.2f exceeds cash %.2f for %s", cost, req.Cash, req.Symbol),
		}
	}

	return SizeResult{
		Quantity: qty,
		Notional: qty * req.Price,
		Cost:     cost,
	}, nil
}
