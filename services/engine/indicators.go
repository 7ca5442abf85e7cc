package engine

import "math"

// Streaming indicator recurrences. Every indicator consumes one value
// per bar and reports (value, ok); ok is false during warm-up. Updates
// are O(1) amortized — only the Bollinger deviation walks its window.

// SMA is an arithmetic mean over a fixed window of closes.
type SMA struct {
	period int
	buf    []float64
	head   int
	count  int
	sum    float64
}

func NewSMA(period int) *SMA {
	return &SMA{period: period, buf: make([]float64, period)}
}

func (s *SMA) Update(v float64) {
	if s.count == s.period {
		s.sum -= s.buf[s.head]
	} else {
		s.count++
	}
	s.buf[s.head] = v
	s.head = (s.head + 1) % s.period
	s.sum += v
}

func (s *SMA) Value() (float64, bool) {
	if s.count < s.period {
		return 0, false
	}
	return s.sum / float64(s.period), true
}

// EMA uses the standard smoothing constant 2/(n+1), seeded with the
// SMA of the first n values (TradingView-style seeding).
type EMA struct {
	period int
	count  int
	seed   float64
	v      float64
	alpha  float64
}

func NewEMA(period int) *EMA {
	return &EMA{period: period, alpha: 2.0 / float64(period+1)}
}

func (e *EMA) Update(v float64) {
	e.count++
	switch {
	case e.count < e.period:
		e.seed += v
	case e.count == e.period:
		e.seed += v
		e.v = e.seed / float64(e.period)
	default:
		e.v = v*e.alpha + e.v*(1-e.alpha)
	}
}

func (e *EMA) Value() (float64, bool) {
	if e.count < e.period {
		return 0, false
	}
	return e.v, true
}

// RSI implements Wilder's smoothed relative strength. The first value
// appears after period+1 closes (period deltas). A zero average loss
// reports RSI 100.
type RSI struct {
	period  int
	count   int
	prev    float64
	avgGain float64
	avgLoss float64
}

func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Update(close float64) {
	r.count++
	if r.count == 1 {
		r.prev = close
		return
	}
	gain, loss := 0.0, 0.0
	if d := close - r.prev; d > 0 {
		gain = d
	} else {
		loss = -d
	}
	r.prev = close

	deltas := r.count - 1
	switch {
	case deltas < r.period:
		r.avgGain += gain
		r.avgLoss += loss
	case deltas == r.period:
		r.avgGain = (r.avgGain + gain) / float64(r.period)
		r.avgLoss = (r.avgLoss + loss) / float64(r.period)
	default:
		n := float64(r.period)
		r.avgGain = (r.avgGain*(n-1) + gain) / n
		r.avgLoss = (r.avgLoss*(n-1) + loss) / n
	}
}

func (r *RSI) Value() (float64, bool) {
	if r.count < r.period+1 {
		return 0, false
	}
	if r.avgLoss == 0 {
		return 100, true
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs), true
}

// Bollinger wraps an SMA midline with bands at devfactor population
// standard deviations over the same window.
type Bollinger struct {
	period int
	dev    float64
	buf    []float64
	head   int
	count  int
	sum    float64
}

func NewBollinger(period int, devfactor float64) *Bollinger {
	return &Bollinger{period: period, dev: devfactor, buf: make([]float64, period)}
}

func (b *Bollinger) Update(v float64) {
	if b.count == b.period {
		b.sum -= b.buf[b.head]
	} else {
		b.count++
	}
	b.buf[b.head] = v
	b.head = (b.head + 1) % b.period
	b.sum += v
}

// Bands returns (mid, upper, lower, ok).
func (b *Bollinger) Bands() (float64, float64, float64, bool) {
	if b.count < b.period {
		return 0, 0, 0, false
	}
	mid := b.sum / float64(b.period)
	var ss float64
	for _, v := range b.buf {
		d := v - mid
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(b.period))
	return mid, mid + b.dev*sd, mid - b.dev*sd, true
}

// MACD is EMA(fast) − EMA(slow) with a signal EMA over the MACD line.
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA
}

func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{fast: NewEMA(fast), slow: NewEMA(slow), signal: NewEMA(signal)}
}

func (m *MACD) Update(close float64) {
	m.fast.Update(close)
	m.slow.Update(close)
	f, fok := m.fast.Value()
	s, sok := m.slow.Value()
	if fok && sok {
		m.signal.Update(f - s)
	}
}

func (m *MACD) Line() (float64, bool) {
	f, fok := m.fast.Value()
	s, sok := m.slow.Value()
	if !fok || !sok {
		return 0, false
	}
	return f - s, true
}

func (m *MACD) Signal() (float64, bool) {
	return m.signal.Value()
}

// Stochastic computes %K over a rolling high/low window and %D as an
// SMA of %K. Rolling extremes use monotonic deques so updates stay
// O(1) amortized. A flat window (high == low) reports %K = 50.
type Stochastic struct {
	period int
	idx    int
	highs  []extreme
	lows   []extreme
	k      float64
	kOK    bool
	d      *SMA
}

type extreme struct {
	idx int
	v   float64
}

func NewStochastic(period, dPeriod int) *Stochastic {
	return &Stochastic{period: period, d: NewSMA(dPeriod)}
}

func (st *Stochastic) Update(high, low, close float64) {
	i := st.idx
	st.idx++

	for len(st.highs) > 0 && st.highs[len(st.highs)-1].v <= high {
		st.highs = st.highs[:len(st.highs)-1]
	}
	st.highs = append(st.highs, extreme{i, high})
	for len(st.lows) > 0 && st.lows[len(st.lows)-1].v >= low {
		st.lows = st.lows[:len(st.lows)-1]
	}
	st.lows = append(st.lows, extreme{i, low})

	cut := i - st.period + 1
	for st.highs[0].idx < cut {
		st.highs = st.highs[1:]
	}
	for st.lows[0].idx < cut {
		st.lows = st.lows[1:]
	}

	if st.idx < st.period {
		return
	}
	hh, ll := st.highs[0].v, st.lows[0].v
	if hh == ll {
		st.k = 50
	} else {
		st.k = 100 * (close - ll) / (hh - ll)
	}
	st.kOK = true
	st.d.Update(st.k)
}

func (st *Stochastic) K() (float64, bool) {
	if !st.kOK {
		return 0, false
	}
	return st.k, true
}

func (st *Stochastic) D() (float64, bool) {
	return st.d.Value()
}

// Crossover tracks two series and reports +1 on the bar where A moves
// from at-or-below B to above it, −1 on the reverse, 0 otherwise. Both
// series must be defined on the current and prior bar to signal.
type Crossover struct {
	prevA  float64
	prevB  float64
	prevOK bool
}

func (c *Crossover) Update(a, b float64, ok bool) int {
	if !ok {
		c.prevOK = false
		return 0
	}
	if !c.prevOK {
		c.prevA, c.prevB = a, b
		c.prevOK = true
		return 0
	}
	cross := 0
	switch {
	case c.prevA <= c.prevB && a > b:
		cross = 1
	case c.prevA >= c.prevB && a < b:
		cross = -1
	}
	c.prevA, c.prevB = a, b
	return cross
}
