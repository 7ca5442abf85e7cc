package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTrackerRoundTrip(t *testing.T) {
	events := &EventLog{}
	tr := NewTracker(events)

	if !tr.Position("TEST").Flat() {
		t.Fatal("fresh tracker not flat")
	}

	tr.Apply(&Fill{
		Symbol:     "TEST",
		Side:       TradeSideBuy,
		Timestamp:  1000,
		Quantity:   decimal.NewFromInt(10),
		Price:      decimal.NewFromInt(100),
		Commission: decimal.NewFromInt(1),
	})
	pos := tr.Position("TEST")
	if pos.Flat() || !pos.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("position after buy = %+v", pos)
	}
	if tr.OpenCount() != 1 || len(tr.Ledger()) != 0 {
		t.Fatalf("open=%d closed=%d after buy", tr.OpenCount(), len(tr.Ledger()))
	}

	tr.Apply(&Fill{
		Symbol:     "TEST",
		Side:       TradeSideSell,
		Timestamp:  2000,
		Quantity:   decimal.NewFromInt(10),
		Price:      decimal.NewFromInt(110),
		Commission: decimal.NewFromInt(2),
	})
	if !tr.Position("TEST").Flat() {
		t.Fatal("position not flat after close")
	}
	ledger := tr.Ledger()
	if len(ledger) != 1 {
		t.Fatalf("ledger length = %d, want 1", len(ledger))
	}
	trade := ledger[0]
	if !trade.Closed {
		t.Fatal("ledger trade not marked closed")
	}
	if trade.EntryTime >= trade.ExitTime {
		t.Fatalf("entry_time %d not before exit_time %d", trade.EntryTime, trade.ExitTime)
	}
	// (110-100)*10 - 1 - 2
	if !trade.PnL.Equal(decimal.NewFromInt(97)) {
		t.Fatalf("pnl = %s, want 97", trade.PnL)
	}

	var closedEvents int
	for _, e := range events.Events() {
		if e.Type == EventTradeClosed {
			closedEvents++
		}
	}
	if closedEvents != 1 {
		t.Fatalf("trade-closed events = %d, want 1", closedEvents)
	}
}

func TestTrackerLedgerAppendOnly(t *testing.T) {
	tr := NewTracker(&EventLog{})
	for i := int64(0); i < 3; i++ {
		tr.Apply(&Fill{
			Symbol:    "TEST",
			Side:      TradeSideBuy,
			Timestamp: i * 10,
			Quantity:  decimal.NewFromInt(1),
			Price:     decimal.NewFromInt(100),
		})
		tr.Apply(&Fill{
			Symbol:    "TEST",
			Side:      TradeSideSell,
			Timestamp: i*10 + 5,
			Quantity:  decimal.NewFromInt(1),
			Price:     decimal.NewFromInt(101),
		})
	}
	ledger := tr.Ledger()
	if len(ledger) != 3 {
		t.Fatalf("ledger length = %d, want 3", len(ledger))
	}
	for i, trade := range ledger {
		if !trade.Closed || trade.EntryTime != int64(i*10) {
			t.Fatalf("trade %d out of order: %+v", i, trade)
		}
	}
}

func TestTrackerIgnoresUnmatchedSell(t *testing.T) {
	tr := NewTracker(&EventLog{})
	tr.Apply(&Fill{
		Symbol:    "TEST",
		Side:      TradeSideSell,
		Timestamp: 1000,
		Quantity:  decimal.NewFromInt(1),
		Price:     decimal.NewFromInt(100),
	})
	if len(tr.Ledger()) != 0 || !tr.Position("TEST").Flat() {
		t.Fatal("sell without open trade must be a no-op")
	}
}
