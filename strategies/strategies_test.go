package strategies

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"tradegeek/services/engine"
)

func closeBar(ts int64, close float64) engine.Bar {
	px := decimal.NewFromFloat(close)
	return engine.Bar{Symbol: "TEST", Timestamp: ts, Open: px, High: px, Low: px, Close: px}
}

func ohlcBar(ts int64, high, low, close float64) engine.Bar {
	return engine.Bar{
		Symbol:    "TEST",
		Timestamp: ts,
		Open:      decimal.NewFromFloat(close),
		High:      decimal.NewFromFloat(high),
		Low:       decimal.NewFromFloat(low),
		Close:     decimal.NewFromFloat(close),
	}
}

func mustBuild(t *testing.T, name string, p Params) engine.Strategy {
	t.Helper()
	factory, err := Build(name, p)
	if err != nil {
		t.Fatal(err)
	}
	return factory()
}

func TestRegistry(t *testing.T) {
	want := []string{"Bollinger", "Macd", "Rsi", "SmaCross", "SmaRsiCombo", "StochasticSma"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}

	if _, err := Build("nope", nil); err == nil {
		t.Fatal("unknown name accepted")
	}
	if _, err := Build("Rsi", Params{"rsi_period": 0}); err == nil {
		t.Fatal("zero period accepted")
	}

	for _, name := range want {
		s := mustBuild(t, name, nil)
		if s.Name() != name {
			t.Fatalf("built %q, Name() = %q", name, s.Name())
		}
	}
}

func TestFactoryInstancesAreIndependent(t *testing.T) {
	factory, err := Build("SmaCross", Params{"fast_period": 1, "slow_period": 2})
	if err != nil {
		t.Fatal(err)
	}
	a, b := factory(), factory()
	a.Next(closeBar(1, 10), engine.PositionView{})
	a.Next(closeBar(2, 12), engine.PositionView{})
	// b saw nothing; identical pointers would leak a's indicator state.
	if a == b {
		t.Fatal("factory returned a shared instance")
	}
}

func TestSmaCrossNoTradeBeforeCrossover(t *testing.T) {
	s := mustBuild(t, "SmaCross", Params{"fast_period": 1, "slow_period": 2})
	for i, c := range []float64{10, 12, 11} {
		sig := s.Next(closeBar(int64(i+1), c), engine.PositionView{})
		if sig != engine.SignalHold {
			t.Fatalf("bar %d: signal = %v, want hold (no upward crossover yet)", i+1, sig)
		}
	}
}

func TestSmaCrossBuyAndClose(t *testing.T) {
	s := mustBuild(t, "SmaCross", Params{"fast_period": 1, "slow_period": 3})
	closes := []float64{5, 4, 3, 2, 10, 1}
	want := []engine.Signal{
		engine.SignalHold, engine.SignalHold, engine.SignalHold,
		engine.SignalHold, engine.SignalBuy, engine.SignalCloseLong,
	}
	pos := engine.PositionView{}
	for i, c := range closes {
		sig := s.Next(closeBar(int64(i+1), c), pos)
		if sig != want[i] {
			t.Fatalf("bar %d: signal = %v, want %v", i+1, sig, want[i])
		}
		if sig == engine.SignalBuy {
			pos = engine.PositionView{Quantity: decimal.NewFromInt(1), AvgEntry: closeBar(0, c).Close}
		}
	}
}

func TestRsiOversoldEntryOverboughtExit(t *testing.T) {
	s := mustBuild(t, "Rsi", Params{"rsi_period": 2})
	flat := engine.PositionView{}
	long := engine.PositionView{Quantity: decimal.NewFromInt(1), AvgEntry: decimal.NewFromInt(8)}

	// Two down moves define RSI at 0.
	for _, c := range []float64{10, 9} {
		if sig := s.Next(closeBar(1, c), flat); sig != engine.SignalHold {
			t.Fatalf("warmup signal = %v", sig)
		}
	}
	if sig := s.Next(closeBar(3, 8), flat); sig != engine.SignalBuy {
		t.Fatalf("oversold signal = %v, want buy", sig)
	}
	// +4 move lifts Wilder RSI to 80.
	if sig := s.Next(closeBar(4, 12), long); sig != engine.SignalCloseLong {
		t.Fatalf("overbought signal = %v, want close", sig)
	}
}

func TestSmaRsiComboBlocksOverboughtEntry(t *testing.T) {
	s := mustBuild(t, "SmaRsiCombo", Params{"fast_period": 1, "slow_period": 2, "rsi_period": 2})
	// Bar 5 has an upward SMA crossover but RSI near 89; the gate holds.
	for i, c := range []float64{5, 4, 3, 2, 10} {
		sig := s.Next(closeBar(int64(i+1), c), engine.PositionView{})
		if sig != engine.SignalHold {
			t.Fatalf("bar %d: signal = %v, want hold", i+1, sig)
		}
	}
}

func TestBollingerBandTouches(t *testing.T) {
	s := mustBuild(t, "Bollinger", Params{"period": 2, "devfactor": 0.5})
	flat := engine.PositionView{}
	long := engine.PositionView{Quantity: decimal.NewFromInt(1), AvgEntry: decimal.NewFromInt(8)}

	if sig := s.Next(closeBar(1, 10), flat); sig != engine.SignalHold {
		t.Fatalf("warmup signal = %v", sig)
	}
	if sig := s.Next(closeBar(2, 10), flat); sig != engine.SignalHold {
		t.Fatalf("flat-band signal = %v, want hold (close not below lower)", sig)
	}
	// Window [10,8]: lower band 8.5, close 8 pierces it.
	if sig := s.Next(closeBar(3, 8), flat); sig != engine.SignalBuy {
		t.Fatalf("lower-band signal = %v, want buy", sig)
	}
	// Window [8,12]: upper band 11, close 12 pierces it.
	if sig := s.Next(closeBar(4, 12), long); sig != engine.SignalCloseLong {
		t.Fatalf("upper-band signal = %v, want close", sig)
	}
}

func TestMacdSignalCrossover(t *testing.T) {
	s := mustBuild(t, "Macd", Params{"fast_period": 1, "slow_period": 2, "signal_period": 2})
	closes := []float64{10, 8, 6, 12, 14}
	want := []engine.Signal{
		engine.SignalHold, engine.SignalHold, engine.SignalHold,
		engine.SignalBuy, engine.SignalHold,
	}
	for i, c := range closes {
		sig := s.Next(closeBar(int64(i+1), c), engine.PositionView{})
		if sig != want[i] {
			t.Fatalf("bar %d: signal = %v, want %v", i+1, sig, want[i])
		}
	}
}

func TestStochasticSmaEntryAndTrendExit(t *testing.T) {
	s := mustBuild(t, "StochasticSma", Params{"stoch_period": 2, "stoch_d_period": 2, "sma_period": 2})
	flat := engine.PositionView{}
	long := engine.PositionView{Quantity: decimal.NewFromInt(1), AvgEntry: decimal.NewFromInt(12)}

	bars := []engine.Bar{
		ohlcBar(1, 10, 8, 9),
		ohlcBar(2, 11, 9, 10),
		ohlcBar(3, 12, 10, 11),
		ohlcBar(4, 13, 11, 12.9),
	}
	want := []engine.Signal{
		engine.SignalHold, engine.SignalHold, engine.SignalHold, engine.SignalBuy,
	}
	for i, bar := range bars {
		sig := s.Next(bar, flat)
		if sig != want[i] {
			t.Fatalf("bar %d: signal = %v, want %v", i+1, sig, want[i])
		}
	}
	// Close under the trend SMA forces the exit even without a %K/%D cross.
	if sig := s.Next(ohlcBar(5, 13, 5, 6), long); sig != engine.SignalCloseLong {
		t.Fatalf("trend-break signal = %v, want close", sig)
	}
}
