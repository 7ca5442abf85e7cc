package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type RunState int

const (
	RunStateIdle RunState = iota
	RunStateRunning
	RunStateCompleted
	RunStateFailed
)

func (s RunState) String() string {
	switch s {
	case RunStateRunning:
		return "running"
	case RunStateCompleted:
		return "completed"
	case RunStateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// RunResult is everything one simulation produces. It is owned by the
// caller once Run returns; no state is shared across runs.
type RunResult struct {
	RunID     string          `json:"run_id"`
	FinalCash decimal.Decimal `json:"final_cash"`
	Trades    []Trade         `json:"trades"`
	Equity    []EquityPoint   `json:"equity_curve"`
	Events    []Event         `json:"events"`
	Summary   Summary         `json:"summary"`
}

// Orchestrator drives one bar-by-bar run: indicator update via the
// strategy, signal, fill, ledger and equity mark, in that order, for
// every timestamp across all instruments. Instruments sharing a
// timestamp are processed in name order so replays are deterministic.
// One orchestrator serves exactly one run.
type Orchestrator struct {
	cfg    RunConfig
	logger *zap.Logger
	state  RunState
}

func NewOrchestrator(cfg RunConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{cfg: cfg, logger: logger}
}

func (o *Orchestrator) State() RunState { return o.state }

type instrument struct {
	symbol    string
	bars      []Bar
	cursor    int
	strategy  Strategy
	lastClose decimal.Decimal
}

// Run replays every series through a fresh strategy instance per
// instrument. newStrategy is called once per instrument; the factory
// keeps strategy selection (and its parameter parsing) outside the
// engine. On configuration error the run fails atomically: no partial
// equity curve or ledger is exposed.
func (o *Orchestrator) Run(series map[string][]Bar, newStrategy func() Strategy) (*RunResult, error) {
	if o.state != RunStateIdle {
		return nil, ErrRunConsumed
	}
	if err := o.cfg.Validate(); err != nil {
		o.state = RunStateFailed
		return nil, err
	}
	if len(series) == 0 {
		o.state = RunStateFailed
		return nil, ErrEmptySeries
	}

	symbols := make([]string, 0, len(series))
	for sym := range series {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	instruments := make([]*instrument, 0, len(symbols))
	for _, sym := range symbols {
		bars := series[sym]
		if err := ValidateSeries(sym, bars); err != nil {
			o.state = RunStateFailed
			return nil, err
		}
		instruments = append(instruments, &instrument{
			symbol:   sym,
			bars:     bars,
			strategy: newStrategy(),
		})
	}

	runID := uuid.New().String()
	o.state = RunStateRunning
	o.logger.Info("run started",
		zap.String("run_id", runID),
		zap.Strings("symbols", symbols),
		zap.String("timeframe", o.cfg.Timeframe.String()),
		zap.String("initial_cash", o.cfg.InitialCash.String()),
	)

	events := &EventLog{}
	broker := NewBroker(o.cfg, events)
	tracker := NewTracker(events)
	var equity []EquityPoint

	for {
		ts, ok := nextTimestamp(instruments)
		if !ok {
			break
		}
		for _, ins := range instruments {
			if ins.cursor >= len(ins.bars) || ins.bars[ins.cursor].Timestamp != ts {
				continue
			}
			bar := ins.bars[ins.cursor]
			ins.cursor++
			ins.lastClose = bar.Close

			pos := tracker.Position(ins.symbol)
			sig := ins.strategy.Next(bar, pos)
			if fill := broker.Submit(sig, bar, pos); fill != nil {
				tracker.Apply(fill)
				o.logger.Debug("order filled",
					zap.String("run_id", runID),
					zap.String("symbol", fill.Symbol),
					zap.String("side", string(fill.Side)),
					zap.String("price", fill.Price.String()),
					zap.String("quantity", fill.Quantity.String()),
				)
			}
		}
		equity = append(equity, EquityPoint{Timestamp: ts, Value: o.markToMarket(broker, tracker, instruments)})
	}

	o.state = RunStateCompleted
	result := &RunResult{
		RunID:     runID,
		FinalCash: broker.Cash(),
		Trades:    tracker.Ledger(),
		Equity:    equity,
		Events:    events.Events(),
		Summary:   Summarize(equity, tracker.Ledger(), o.cfg.Timeframe),
	}
	o.logger.Info("run completed",
		zap.String("run_id", runID),
		zap.Int("bars", len(equity)),
		zap.Int("trades", len(result.Trades)),
		zap.Int("open_positions", tracker.OpenCount()),
		zap.String("final_cash", result.FinalCash.String()),
	)
	return result, nil
}

// markToMarket values open positions at each instrument's most recent
// close on top of cash.
func (o *Orchestrator) markToMarket(broker *Broker, tracker *Tracker, instruments []*instrument) decimal.Decimal {
	value := broker.Cash()
	for _, ins := range instruments {
		pos := tracker.Position(ins.symbol)
		if pos.Flat() {
			continue
		}
		value = value.Add(pos.Quantity.Mul(ins.lastClose))
	}
	return value
}

// nextTimestamp finds the earliest unprocessed timestamp across all
// instruments; the loop never looks past it.
func nextTimestamp(instruments []*instrument) (int64, bool) {
	var ts int64
	found := false
	for _, ins := range instruments {
		if ins.cursor >= len(ins.bars) {
			continue
		}
		t := ins.bars[ins.cursor].Timestamp
		if !found || t < ts {
			ts = t
			found = true
		}
	}
	return ts, found
}

// RunOnce is a convenience wrapper for single-shot callers: validate,
// run, summarize.
func RunOnce(cfg RunConfig, series map[string][]Bar, newStrategy func() Strategy, logger *zap.Logger) (*RunResult, error) {
	result, err := NewOrchestrator(cfg, logger).Run(series, newStrategy)
	if err != nil {
		return nil, fmt.Errorf("backtest run: %w", err)
	}
	return result, nil
}
