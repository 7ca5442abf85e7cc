package strategies

import "tradegeek/services/engine"

// SmaCross buys on a fast/slow SMA upward crossover and closes on the
// downward one.
type SmaCross struct {
	fast  *engine.SMA
	slow  *engine.SMA
	cross engine.Crossover
}

func buildSmaCross(p Params) (Factory, error) {
	fast, err := p.period("fast_period", 10)
	if err != nil {
		return nil, err
	}
	slow, err := p.period("slow_period", 30)
	if err != nil {
		return nil, err
	}
	return func() engine.Strategy {
		return &SmaCross{fast: engine.NewSMA(fast), slow: engine.NewSMA(slow)}
	}, nil
}

func (s *SmaCross) Name() string { return "SmaCross" }

func (s *SmaCross) Next(bar engine.Bar, pos engine.PositionView) engine.Signal {
	close := bar.Close.InexactFloat64()
	s.fast.Update(close)
	s.slow.Update(close)
	f, fok := s.fast.Value()
	sl, sok := s.slow.Value()
	cross := s.cross.Update(f, sl, fok && sok)

	if pos.Flat() {
		if cross > 0 {
			return engine.SignalBuy
		}
	} else if cross < 0 {
		return engine.SignalCloseLong
	}
	return engine.SignalHold
}

// Rsi buys oversold and closes overbought.
type Rsi struct {
	rsi   *engine.RSI
	lower float64
	upper float64
}

func buildRsi(p Params) (Factory, error) {
	period, err := p.period("rsi_period", 14)
	if err != nil {
		return nil, err
	}
	lower := p.get("rsi_lower", 30)
	upper := p.get("rsi_upper", 70)
	return func() engine.Strategy {
		return &Rsi{rsi: engine.NewRSI(period), lower: lower, upper: upper}
	}, nil
}

func (s *Rsi) Name() string { return "Rsi" }

func (s *Rsi) Next(bar engine.Bar, pos engine.PositionView) engine.Signal {
	s.rsi.Update(bar.Close.InexactFloat64())
	v, ok := s.rsi.Value()
	if !ok {
		return engine.SignalHold
	}
	if pos.Flat() {
		if v < s.lower {
			return engine.SignalBuy
		}
	} else if v > s.upper {
		return engine.SignalCloseLong
	}
	return engine.SignalHold
}

// SmaRsiCombo gates the SMA crossover entry on RSI not being
// overbought, and exits on either a downward crossover or overbought.
type SmaRsiCombo struct {
	fast  *engine.SMA
	slow  *engine.SMA
	rsi   *engine.RSI
	cross engine.Crossover
	upper float64
}

func buildSmaRsiCombo(p Params) (Factory, error) {
	fast, err := p.period("fast_period", 10)
	if err != nil {
		return nil, err
	}
	slow, err := p.period("slow_period", 30)
	if err != nil {
		return nil, err
	}
	rsiPeriod, err := p.period("rsi_period", 14)
	if err != nil {
		return nil, err
	}
	upper := p.get("rsi_upper", 70)
	return func() engine.Strategy {
		return &SmaRsiCombo{
			fast:  engine.NewSMA(fast),
			slow:  engine.NewSMA(slow),
			rsi:   engine.NewRSI(rsiPeriod),
			upper: upper,
		}
	}, nil
}

func (s *SmaRsiCombo) Name() string { return "SmaRsiCombo" }

func (s *SmaRsiCombo) Next(bar engine.Bar, pos engine.PositionView) engine.Signal {
	close := bar.Close.InexactFloat64()
	s.fast.Update(close)
	s.slow.Update(close)
	s.rsi.Update(close)
	f, fok := s.fast.Value()
	sl, sok := s.slow.Value()
	cross := s.cross.Update(f, sl, fok && sok)
	rsi, rok := s.rsi.Value()
	if !rok {
		return engine.SignalHold
	}

	if pos.Flat() {
		if cross > 0 && rsi < s.upper {
			return engine.SignalBuy
		}
	} else if cross < 0 || rsi > s.upper {
		return engine.SignalCloseLong
	}
	return engine.SignalHold
}

// Bollinger buys a close below the lower band and closes above the
// upper band.
type Bollinger struct {
	bands *engine.Bollinger
}

func buildBollinger(p Params) (Factory, error) {
	period, err := p.period("period", 20)
	if err != nil {
		return nil, err
	}
	dev := p.get("devfactor", 2.0)
	return func() engine.Strategy {
		return &Bollinger{bands: engine.NewBollinger(period, dev)}
	}, nil
}

func (s *Bollinger) Name() string { return "Bollinger" }

func (s *Bollinger) Next(bar engine.Bar, pos engine.PositionView) engine.Signal {
	close := bar.Close.InexactFloat64()
	s.bands.Update(close)
	_, upper, lower, ok := s.bands.Bands()
	if !ok {
		return engine.SignalHold
	}
	if pos.Flat() {
		if close < lower {
			return engine.SignalBuy
		}
	} else if close > upper {
		return engine.SignalCloseLong
	}
	return engine.SignalHold
}

// Macd trades crossovers of the MACD line against its signal line.
type Macd struct {
	macd  *engine.MACD
	cross engine.Crossover
}

func buildMacd(p Params) (Factory, error) {
	fast, err := p.period("fast_period", 12)
	if err != nil {
		return nil, err
	}
	slow, err := p.period("slow_period", 26)
	if err != nil {
		return nil, err
	}
	signal, err := p.period("signal_period", 9)
	if err != nil {
		return nil, err
	}
	return func() engine.Strategy {
		return &Macd{macd: engine.NewMACD(fast, slow, signal)}
	}, nil
}

func (s *Macd) Name() string { return "Macd" }

func (s *Macd) Next(bar engine.Bar, pos engine.PositionView) engine.Signal {
	s.macd.Update(bar.Close.InexactFloat64())
	line, lok := s.macd.Line()
	sig, sok := s.macd.Signal()
	cross := s.cross.Update(line, sig, lok && sok)

	if pos.Flat() {
		if cross > 0 {
			return engine.SignalBuy
		}
	} else if cross < 0 {
		return engine.SignalCloseLong
	}
	return engine.SignalHold
}

// StochasticSma buys a %K/%D upward crossover above the trend SMA and
// closes on the downward crossover or a close below the SMA.
type StochasticSma struct {
	stoch *engine.Stochastic
	sma   *engine.SMA
	cross engine.Crossover
}

func buildStochasticSma(p Params) (Factory, error) {
	stochPeriod, err := p.period("stoch_period", 14)
	if err != nil {
		return nil, err
	}
	dPeriod, err := p.period("stoch_d_period", 3)
	if err != nil {
		return nil, err
	}
	smaPeriod, err := p.period("sma_period", 50)
	if err != nil {
		return nil, err
	}
	return func() engine.Strategy {
		return &StochasticSma{
			stoch: engine.NewStochastic(stochPeriod, dPeriod),
			sma:   engine.NewSMA(smaPeriod),
		}
	}, nil
}

func (s *StochasticSma) Name() string { return "StochasticSma" }

func (s *StochasticSma) Next(bar engine.Bar, pos engine.PositionView) engine.Signal {
	close := bar.Close.InexactFloat64()
	s.stoch.Update(bar.High.InexactFloat64(), bar.Low.InexactFloat64(), close)
	s.sma.Update(close)
	k, kok := s.stoch.K()
	d, dok := s.stoch.D()
	cross := s.cross.Update(k, d, kok && dok)
	sma, sok := s.sma.Value()
	if !sok {
		return engine.SignalHold
	}

	if pos.Flat() {
		if cross > 0 && close > sma {
			return engine.SignalBuy
		}
	} else if cross < 0 || close < sma {
		return engine.SignalCloseLong
	}
	return engine.SignalHold
}
