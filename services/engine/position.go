package engine

import "github.com/shopspring/decimal"

// Trade is one completed (or still open) round trip. Closed trades are
// never mutated again; pnl nets out commission on both legs.
type Trade struct {
	Symbol          string          `json:"symbol"`
	Quantity        decimal.Decimal `json:"quantity"`
	EntryPrice      decimal.Decimal `json:"entry_price"`
	ExitPrice       decimal.Decimal `json:"exit_price"`
	EntryTime       int64           `json:"entry_time"`
	ExitTime        int64           `json:"exit_time"`
	EntryCommission decimal.Decimal `json:"entry_commission"`
	ExitCommission  decimal.Decimal `json:"exit_commission"`
	PnL             decimal.Decimal `json:"pnl"`
	Closed          bool            `json:"closed"`
}

// Tracker owns per-instrument position state and the append-only trade
// ledger. Positions change only through broker fills.
type Tracker struct {
	positions map[string]PositionView
	open      map[string]*Trade
	closed    []Trade
	events    *EventLog
}

func NewTracker(events *EventLog) *Tracker {
	return &Tracker{
		positions: make(map[string]PositionView),
		open:      make(map[string]*Trade),
		events:    events,
	}
}

func (t *Tracker) Position(symbol string) PositionView {
	return t.positions[symbol]
}

// Apply folds a fill into position state. A buy opens a trade; a sell
// closes it, computes pnl and appends it to the ledger.
func (t *Tracker) Apply(f *Fill) {
	switch f.Side {
	case TradeSideBuy:
		t.positions[f.Symbol] = PositionView{Quantity: f.Quantity, AvgEntry: f.Price}
		t.open[f.Symbol] = &Trade{
			Symbol:          f.Symbol,
			Quantity:        f.Quantity,
			EntryPrice:      f.Price,
			EntryTime:       f.Timestamp,
			EntryCommission: f.Commission,
		}
	case TradeSideSell:
		tr := t.open[f.Symbol]
		if tr == nil {
			return
		}
		tr.ExitPrice = f.Price
		tr.ExitTime = f.Timestamp
		tr.ExitCommission = f.Commission
		tr.PnL = f.Price.Sub(tr.EntryPrice).Mul(tr.Quantity).
			Sub(tr.EntryCommission).Sub(tr.ExitCommission)
		tr.Closed = true
		t.closed = append(t.closed, *tr)
		delete(t.open, f.Symbol)
		t.positions[f.Symbol] = PositionView{}
		t.events.Append(Event{
			Ts:     f.Timestamp,
			Type:   EventTradeClosed,
			Symbol: f.Symbol,
			Details: map[string]string{
				"entry_price": tr.EntryPrice.String(),
				"exit_price":  tr.ExitPrice.String(),
				"quantity":    tr.Quantity.String(),
				"pnl":         tr.PnL.String(),
			},
		})
	}
}

// Ledger returns the closed trades in close order.
func (t *Tracker) Ledger() []Trade { return t.closed }

// OpenCount reports instruments with a live position.
func (t *Tracker) OpenCount() int { return len(t.open) }
