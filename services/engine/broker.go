package engine

import "github.com/shopspring/decimal"

type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Fill is the realized execution of a signal: slippage-adjusted price
// plus commission on notional.
type Fill struct {
	Symbol     string          `json:"symbol"`
	Side       TradeSide       `json:"side"`
	Timestamp  int64           `json:"timestamp"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Commission decimal.Decimal `json:"commission"`
}

// Broker simulates execution against a single cash balance. Buys pay
// price up by the slippage fraction, sells receive price down by it;
// commission is charged on notional on both legs. Signals whose
// preconditions fail (already long, flat close, unaffordable buy) are
// rejected by returning nil — that is normal strategy-market
// interaction, not an error.
type Broker struct {
	cash           decimal.Decimal
	commissionRate decimal.Decimal
	slippagePct    decimal.Decimal
	events         *EventLog
}

func NewBroker(cfg RunConfig, events *EventLog) *Broker {
	return &Broker{
		cash:           cfg.InitialCash,
		commissionRate: cfg.CommissionRate,
		slippagePct:    cfg.SlippagePct,
		events:         events,
	}
}

func (b *Broker) Cash() decimal.Decimal { return b.cash }

// Submit converts an accepted signal into a fill at the bar's close
// and mutates cash. Sizing is whole-unit: the largest quantity whose
// notional plus commission fits in available cash.
func (b *Broker) Submit(sig Signal, bar Bar, pos PositionView) *Fill {
	switch sig {
	case SignalBuy:
		return b.buy(bar, pos)
	case SignalCloseLong:
		return b.closeLong(bar, pos)
	}
	return nil
}

func (b *Broker) buy(bar Bar, pos PositionView) *Fill {
	if !pos.Flat() {
		return nil
	}
	one := decimal.NewFromInt(1)
	exec := bar.Close.Mul(one.Add(b.slippagePct))
	if exec.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	perUnit := exec.Mul(one.Add(b.commissionRate))
	qty := b.cash.Div(perUnit).Floor()
	if qty.LessThan(one) {
		return nil
	}
	commission := exec.Mul(qty).Mul(b.commissionRate)
	total := exec.Mul(qty).Add(commission)
	// Div rounds at fixed precision; step down if that rounded past cash.
	for qty.GreaterThanOrEqual(one) && total.GreaterThan(b.cash) {
		qty = qty.Sub(one)
		commission = exec.Mul(qty).Mul(b.commissionRate)
		total = exec.Mul(qty).Add(commission)
	}
	if qty.LessThan(one) {
		return nil
	}
	b.cash = b.cash.Sub(total)
	fill := &Fill{
		Symbol:     bar.Symbol,
		Side:       TradeSideBuy,
		Timestamp:  bar.Timestamp,
		Quantity:   qty,
		Price:      exec,
		Commission: commission,
	}
	b.events.Append(Event{
		Ts:     bar.Timestamp,
		Type:   EventOrderFilled,
		Symbol: bar.Symbol,
		Details: map[string]string{
			"side":       string(TradeSideBuy),
			"price":      exec.String(),
			"quantity":   qty.String(),
			"commission": commission.String(),
		},
	})
	return fill
}

func (b *Broker) closeLong(bar Bar, pos PositionView) *Fill {
	if pos.Flat() {
		return nil
	}
	one := decimal.NewFromInt(1)
	exec := bar.Close.Mul(one.Sub(b.slippagePct))
	notional := exec.Mul(pos.Quantity)
	commission := notional.Mul(b.commissionRate)
	b.cash = b.cash.Add(notional.Sub(commission))
	fill := &Fill{
		Symbol:     bar.Symbol,
		Side:       TradeSideSell,
		Timestamp:  bar.Timestamp,
		Quantity:   pos.Quantity,
		Price:      exec,
		Commission: commission,
	}
	b.events.Append(Event{
		Ts:     bar.Timestamp,
		Type:   EventOrderFilled,
		Symbol: bar.Symbol,
		Details: map[string]string{
			"side":       string(TradeSideSell),
			"price":      exec.String(),
			"quantity":   pos.Quantity.String(),
			"commission": commission.String(),
		},
	})
	return fill
}
