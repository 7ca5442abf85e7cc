package engine

import "github.com/shopspring/decimal"

// Signal is a strategy's per-bar decision. At most one signal is
// produced per (instrument, bar) pair.
type Signal int

const (
	SignalHold Signal = iota
	SignalBuy
	SignalCloseLong
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalCloseLong:
		return "CLOSE_LONG"
	default:
		return "HOLD"
	}
}

// PositionView is the read-only position state handed to strategies
// and the broker. Exactly one of flat or long holds per instrument.
type PositionView struct {
	Quantity decimal.Decimal
	AvgEntry decimal.Decimal
}

func (p PositionView) Flat() bool {
	return p.Quantity.IsZero()
}

// Strategy turns the current bar (through whatever indicator streams
// the variant owns) and position state into a signal. Implementations
// must be forward-only: Next sees bars strictly in order and never the
// future. One instance serves exactly one instrument.
type Strategy interface {
	Name() string
	Next(bar Bar, pos PositionView) Signal
}
