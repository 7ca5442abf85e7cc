package engine

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMAWarmupAndValues(t *testing.T) {
	sma := NewSMA(3)
	inputs := []float64{1, 2, 3, 4}
	want := []struct {
		v  float64
		ok bool
	}{{0, false}, {0, false}, {2, true}, {3, true}}

	for i, in := range inputs {
		sma.Update(in)
		v, ok := sma.Value()
		if ok != want[i].ok {
			t.Fatalf("bar %d: ok = %v, want %v", i, ok, want[i].ok)
		}
		if ok && !almostEqual(v, want[i].v) {
			t.Fatalf("bar %d: SMA = %v, want %v", i, v, want[i].v)
		}
	}
}

func TestEMASeedAndRecurrence(t *testing.T) {
	ema := NewEMA(2)
	ema.Update(2)
	if _, ok := ema.Value(); ok {
		t.Fatal("EMA defined before period values observed")
	}
	ema.Update(4)
	v, ok := ema.Value()
	if !ok || !almostEqual(v, 3) {
		t.Fatalf("EMA seed = %v (%v), want 3", v, ok)
	}
	ema.Update(8)
	v, _ = ema.Value()
	// alpha = 2/3: 8*2/3 + 3*1/3
	if !almostEqual(v, 8*2.0/3.0+3*1.0/3.0) {
		t.Fatalf("EMA = %v, want %v", v, 8*2.0/3.0+3*1.0/3.0)
	}
}

func TestRSIWarmup(t *testing.T) {
	rsi := NewRSI(14)
	for i := 0; i < 14; i++ {
		rsi.Update(float64(100 + i))
		if _, ok := rsi.Value(); ok {
			t.Fatalf("RSI defined after %d closes, needs %d", i+1, 15)
		}
	}
	rsi.Update(114)
	if _, ok := rsi.Value(); !ok {
		t.Fatal("RSI undefined after period+1 closes")
	}
}

func TestRSIBoundsAndConventions(t *testing.T) {
	up := NewRSI(14)
	for i := 0; i < 30; i++ {
		up.Update(float64(100 + i))
	}
	if v, ok := up.Value(); !ok || v != 100 {
		t.Fatalf("all-gain RSI = %v (%v), want 100", v, ok)
	}

	down := NewRSI(14)
	for i := 0; i < 30; i++ {
		down.Update(float64(100 - i))
	}
	if v, ok := down.Value(); !ok || !almostEqual(v, 0) {
		t.Fatalf("all-loss RSI = %v (%v), want 0", v, ok)
	}

	mixed := NewRSI(14)
	prices := []float64{44, 44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10,
		45.42, 45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03,
		46.41, 46.22, 45.64}
	for _, p := range prices {
		mixed.Update(p)
		if v, ok := mixed.Value(); ok && (v < 0 || v > 100) {
			t.Fatalf("RSI %v out of [0,100]", v)
		}
	}
}

func TestBollingerBands(t *testing.T) {
	b := NewBollinger(3, 2)
	for _, v := range []float64{2, 2} {
		b.Update(v)
	}
	if _, _, _, ok := b.Bands(); ok {
		t.Fatal("bands defined before window filled")
	}
	b.Update(2)
	mid, upper, lower, ok := b.Bands()
	if !ok || mid != 2 || upper != 2 || lower != 2 {
		t.Fatalf("flat bands = %v/%v/%v (%v), want 2/2/2", mid, upper, lower, ok)
	}

	b2 := NewBollinger(3, 2)
	for _, v := range []float64{1, 2, 3} {
		b2.Update(v)
	}
	mid, upper, lower, _ = b2.Bands()
	sd := math.Sqrt(2.0 / 3.0)
	if !almostEqual(mid, 2) || !almostEqual(upper, 2+2*sd) || !almostEqual(lower, 2-2*sd) {
		t.Fatalf("bands = %v/%v/%v, want 2/%v/%v", mid, upper, lower, 2+2*sd, 2-2*sd)
	}
}

func TestMACDWarmup(t *testing.T) {
	m := NewMACD(2, 3, 2)
	closes := []float64{10, 11, 12, 13, 14}
	var lineDefined, signalDefined int
	for i, c := range closes {
		m.Update(c)
		if _, ok := m.Line(); ok && lineDefined == 0 {
			lineDefined = i + 1
		}
		if _, ok := m.Signal(); ok && signalDefined == 0 {
			signalDefined = i + 1
		}
	}
	if lineDefined != 3 {
		t.Fatalf("MACD line first defined at bar %d, want 3", lineDefined)
	}
	if signalDefined != 4 {
		t.Fatalf("signal line first defined at bar %d, want 4", signalDefined)
	}
}

func TestStochasticRangeAndFlatWindow(t *testing.T) {
	st := NewStochastic(3, 2)
	st.Update(5, 5, 5)
	st.Update(5, 5, 5)
	if _, ok := st.K(); ok {
		t.Fatal("%K defined before window filled")
	}
	st.Update(5, 5, 5)
	if k, ok := st.K(); !ok || k != 50 {
		t.Fatalf("flat-window %%K = %v (%v), want 50", k, ok)
	}

	st2 := NewStochastic(3, 2)
	highs := []float64{10, 12, 14, 15}
	lows := []float64{8, 9, 10, 11}
	closes := []float64{9, 11, 13, 14}
	for i := range highs {
		st2.Update(highs[i], lows[i], closes[i])
		if k, ok := st2.K(); ok && (k < 0 || k > 100) {
			t.Fatalf("%%K %v out of [0,100]", k)
		}
		if d, ok := st2.D(); ok && (d < 0 || d > 100) {
			t.Fatalf("%%D %v out of [0,100]", d)
		}
	}
	// window [12,14,15]/[9,10,11] close 14: 100*(14-9)/(15-9)
	k, ok := st2.K()
	if !ok || !almostEqual(k, 100*5.0/6.0) {
		t.Fatalf("%%K = %v (%v), want %v", k, ok, 100*5.0/6.0)
	}
}

func TestCrossoverSingleSignalPerTransition(t *testing.T) {
	var c Crossover
	a := []float64{0, 1, 2, 3, 2, 1, 0}
	ups, downs := 0, 0
	for _, av := range a {
		switch c.Update(av, 1.5, true) {
		case 1:
			ups++
		case -1:
			downs++
		}
	}
	if ups != 1 || downs != 1 {
		t.Fatalf("crossings = +%d/-%d, want +1/-1 exactly once each", ups, downs)
	}
}

func TestCrossoverNeedsPriorBar(t *testing.T) {
	var c Crossover
	if got := c.Update(5, 1, true); got != 0 {
		t.Fatalf("first defined bar signalled %d", got)
	}
	// Undefined input resets the prior-bar state.
	if got := c.Update(0, 0, false); got != 0 {
		t.Fatalf("undefined bar signalled %d", got)
	}
	if got := c.Update(0, 1, true); got != 0 {
		t.Fatalf("bar after undefined gap signalled %d", got)
	}
	if got := c.Update(2, 1, true); got != 1 {
		t.Fatalf("upward transition = %d, want 1", got)
	}
}
