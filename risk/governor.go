package risk

import "fmt"

// Rejection codes.
const (
	RejectMaxOpenTrades    = "MAX_OPEN_TRADES"
	RejectDailyLossLimit   = "DAILY_LOSS_LIMIT"
	RejectZeroQuantity     = "ZERO_QUANTITY"
	RejectInsufficientCash = "INSUFFICIENT_CASH"
	RejectBadPrice         = "BAD_PRICE"
)

// Rejection reports why an entry was blocked. It is a normal outcome of
// guard evaluation, not an error: no trade happens and the run continues.
type Rejection struct {
	Code string
	Msg  string
}

func (r *Rejection) Error() string { return r.Code + ": " + r.Msg }

// DayState is the governor's view of the ledger's day-scoped counters.
type DayState struct {
	OpenPositions    int
	RealizedToday    float64
	EquityAtDayStart float64
}

// CheckEntry runs the entry guards in order; the first failing guard blocks
// the action. The daily circuit breaker trips at exactly the limit and only
// blocks new entries — existing positions keep their protective exits.
func (b Budget) CheckEntry(day DayState) *Rejection {
	if day.OpenPositions >= b.MaxOpenTrades {
		return &Rejection{
			Code: RejectMaxOpenTrades,
			Msg:  fmt.Sprintf("open positions %d >= max %d", day.OpenPositions, b.MaxOpenTrades),
		}
	}

	if day.EquityAtDayStart > 0 {
		limit := -b.DailyLossLimitPct * day.EquityAtDayStart
		if day.RealizedToday <= limit {
			return &Rejection{
				Code: RejectDailyLossLimit,
				Msg: fmt.Sprintf("day realized %.2f <= limit %.2f (%.2f%% of day-start equity)",
					day.RealizedToday, limit, 100*b.DailyLossLimitPct),
			}
		}
	}

	return nil
}
