package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Configuration errors. These are fatal: a run never starts and no
// state is mutated when Validate fails.
var (
	ErrEmptySeries      = errors.New("empty price series")
	ErrUnorderedSeries  = errors.New("price series timestamps not strictly increasing")
	ErrInvalidCash      = errors.New("initial cash must be positive")
	ErrInvalidCommission = errors.New("commission rate must be in [0, 1)")
	ErrInvalidSlippage  = errors.New("slippage must be non-negative")
	ErrInvalidTimeframe = errors.New("unknown timeframe")
	ErrRunConsumed      = errors.New("orchestrator already ran; create a new one per run")
)

// RunConfig holds broker and reporting settings for one run. Strategy
// selection lives outside the engine (see the strategies registry).
type RunConfig struct {
	InitialCash    decimal.Decimal `json:"initial_cash"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	SlippagePct    decimal.Decimal `json:"slippage_pct"`
	Timeframe      Timeframe       `json:"timeframe"`
}

// DefaultRunConfig mirrors the stock broker dialog: 10000 cash,
// 0.1% commission, no slippage, daily bars.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		InitialCash:    decimal.NewFromInt(10000),
		CommissionRate: decimal.NewFromFloat(0.001),
		SlippagePct:    decimal.Zero,
		Timeframe:      TimeframeDaily,
	}
}

func (c RunConfig) Validate() error {
	if c.InitialCash.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: got %s", ErrInvalidCash, c.InitialCash)
	}
	if c.CommissionRate.IsNegative() || c.CommissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: got %s", ErrInvalidCommission, c.CommissionRate)
	}
	if c.SlippagePct.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrInvalidSlippage, c.SlippagePct)
	}
	return nil
}
