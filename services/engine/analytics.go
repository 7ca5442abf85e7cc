package engine

import (
	"math"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// EquityPoint is the portfolio value (cash + marked positions) after
// one bar of the merged clock.
type EquityPoint struct {
	Timestamp int64           `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
}

// Summary aggregates a completed run. Sharpe is nil when undefined
// (fewer than two equity points or zero return variance).
type Summary struct {
	Sharpe         *float64        `json:"sharpe"`
	MaxDrawdownPct float64         `json:"max_drawdown_pct"`
	DrawdownBars   int             `json:"drawdown_duration_bars"`
	TotalTrades    int             `json:"total_trades"`
	Wins           int             `json:"wins"`
	Losses         int             `json:"losses"`
	NetPnL         decimal.Decimal `json:"net_pnl"`
}

// Summarize computes Sharpe, max drawdown and trade statistics from a
// completed equity curve and trade ledger.
func Summarize(equity []EquityPoint, trades []Trade, tf Timeframe) Summary {
	sum := Summary{
		TotalTrades: len(trades),
		Wins:        lo.CountBy(trades, func(t Trade) bool { return t.PnL.GreaterThan(decimal.Zero) }),
		NetPnL: lo.Reduce(trades, func(acc decimal.Decimal, t Trade, _ int) decimal.Decimal {
			return acc.Add(t.PnL)
		}, decimal.Zero),
	}
	sum.Losses = sum.TotalTrades - sum.Wins
	sum.Sharpe = sharpe(equity, tf)
	sum.MaxDrawdownPct, sum.DrawdownBars = maxDrawdown(equity)
	return sum
}

func sharpe(equity []EquityPoint, tf Timeframe) *float64 {
	if len(equity) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Value.InexactFloat64()
		if prev == 0 {
			return nil
		}
		cur := equity[i].Value.InexactFloat64()
		returns = append(returns, (cur-prev)/prev)
	}
	mean := lo.Sum(returns) / float64(len(returns))
	if len(returns) < 2 {
		return nil
	}
	var ss float64
	for _, r := range returns {
		d := r - mean
		ss += d * d
	}
	variance := ss / float64(len(returns)-1)
	if variance == 0 {
		return nil
	}
	s := mean / math.Sqrt(variance) * math.Sqrt(tf.Annualization())
	return &s
}

// maxDrawdown returns the worst peak-to-trough decline as a percentage
// plus its length in bars (peak index to trough index).
func maxDrawdown(equity []EquityPoint) (float64, int) {
	if len(equity) == 0 {
		return 0, 0
	}
	peak := equity[0].Value.InexactFloat64()
	peakIdx := 0
	worst, worstLen := 0.0, 0
	for i, p := range equity {
		v := p.Value.InexactFloat64()
		if v > peak {
			peak = v
			peakIdx = i
			continue
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - v) / peak * 100
		if dd > worst {
			worst = dd
			worstLen = i - peakIdx
		}
	}
	return worst, worstLen
}
