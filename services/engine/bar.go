package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one OHLCV sample for one instrument. Timestamps are unix
// milliseconds and must be strictly increasing within a series.
type Bar struct {
	Symbol    string          `json:"symbol"`
	Timestamp int64           `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

func (b Bar) Time() time.Time {
	return time.UnixMilli(b.Timestamp).UTC()
}

// Timeframe classifies the bar cadence. It only affects Sharpe
// annualization; the engine itself is cadence-agnostic.
type Timeframe int

const (
	TimeframeDaily Timeframe = iota
	TimeframeHourly
	TimeframeMinute
)

func (tf Timeframe) String() string {
	switch tf {
	case TimeframeHourly:
		return "hourly"
	case TimeframeMinute:
		return "minute"
	default:
		return "daily"
	}
}

// Annualization returns the periods-per-year factor used by the Sharpe
// ratio. 252 trading days; intraday scales by 24h sessions.
func (tf Timeframe) Annualization() float64 {
	switch tf {
	case TimeframeHourly:
		return 252 * 24
	case TimeframeMinute:
		return 252 * 24 * 60
	default:
		return 252
	}
}

func ParseTimeframe(s string) (Timeframe, error) {
	switch s {
	case "daily", "Daily", "":
		return TimeframeDaily, nil
	case "hourly", "Hourly":
		return TimeframeHourly, nil
	case "minute", "Minute", "Minutes":
		return TimeframeMinute, nil
	}
	return TimeframeDaily, fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
}

// ValidateSeries rejects series the orchestrator cannot replay
// deterministically: empty input or out-of-order/duplicate timestamps.
func ValidateSeries(symbol string, bars []Bar) error {
	if len(bars) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptySeries, symbol)
	}
	for i := 1; i < len(bars); i++ {
		if bars[i].Timestamp <= bars[i-1].Timestamp {
			return fmt.Errorf("%w: %s at index %d (%d -> %d)",
				ErrUnorderedSeries, symbol, i, bars[i-1].Timestamp, bars[i].Timestamp)
		}
	}
	return nil
}
