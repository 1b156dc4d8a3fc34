// Package stats reduces a closed-trade log and a per-bar equity curve into
// performance metrics. Pure functions; historical-replay only.
package stats

import (
	"math"

	"github.com/quantish/trendbot/ledger"
)

type Report struct {
	TotalTrades int
	Wins        int
	Losses      int
	WinRate     float64 // percent

	TotalPnL       float64
	TotalReturnPct float64
	AvgWin         float64
	AvgLoss        float64

	// ProfitFactor is +Inf when there are winners and no losing trades,
	// and 0 when there are no trades at all.
	ProfitFactor   float64
	MaxDrawdownPct float64
	Sharpe         float64
}

// Compute builds a report. equityCurve must be sampled once per bar (not
// only at trade closes); periodsPerYear annualizes the Sharpe ratio for the
// bar granularity in use (e.g. 365*24 for 1h crypto bars).
func Compute(trades []ledger.ClosedTrade, equityCurve []float64, periodsPerYear float64) Report {
	var r Report

	r.MaxDrawdownPct = maxDrawdown(equityCurve)
	r.Sharpe = sharpe(equityCurve, periodsPerYear)
	if len(equityCurve) > 1 && equityCurve[0] > 0 {
		first, last := equityCurve[0], equityCurve[len(equityCurve)-1]
		r.TotalReturnPct = (last - first) / first * 100
	}

	if len(trades) == 0 {
		return r
	}

	grossProfit, grossLoss := 0.0, 0.0
	for _, t := range trades {
		r.TotalPnL += t.PnL
		if t.PnL > 0 {
			r.Wins++
			grossProfit += t.PnL
		} else {
			r.Losses++
			grossLoss += -t.PnL
		}
	}

	r.TotalTrades = len(trades)
	r.WinRate = float64(r.Wins) / float64(r.TotalTrades) * 100

	switch {
	case grossLoss > 0:
		r.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		r.ProfitFactor = math.Inf(1)
	}

	if r.Wins > 0 {
		r.AvgWin = grossProfit / float64(r.Wins)
	}
	if r.Losses > 0 {
		r.AvgLoss = grossLoss / float64(r.Losses)
	}

	return r
}

// maxDrawdown returns the largest peak-to-trough decline of the equity
// curve, in percent.
func maxDrawdown(curve []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, e := range curve {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			if dd := (peak - e) / peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst * 100
}

// sharpe annualizes the mean/stdev of per-bar returns. Defined as 0 when
// the return series is flat or too short.
func sharpe(curve []float64, periodsPerYear float64) float64 {
	if len(curve) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		if curve[i-1] == 0 {
			continue
		}
		returns = append(returns, (curve[i]-curve[i-1])/curve[i-1])
	}
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, x := range returns {
		mean += x
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, x := range returns {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(periodsPerYear)
}
