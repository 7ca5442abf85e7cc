package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradegeek/services/arrowexport"
	"tradegeek/services/engine"
	"tradegeek/services/feed"
	"tradegeek/strategies"
)

func main() {
	csvPaths := flag.String("csv", "", "Comma-separated CSV paths; instrument name is taken from the file name")
	strategyName := flag.String("strategy", "SmaCross", fmt.Sprintf("Strategy variant %v", strategies.Names()))
	paramSpec := flag.String("params", "", "Strategy parameters as k=v,k=v (e.g. fast_period=10,slow_period=30)")
	cash := flag.Float64("cash", 10000, "Initial cash")
	commission := flag.Float64("commission", 0.1, "Commission per leg, percent of notional")
	slippage := flag.Float64("slippage", 0.0, "Slippage, percent of price")
	timeframe := flag.String("timeframe", "daily", "Bar timeframe: daily, hourly or minute")
	equityOut := flag.String("equity-arrow", "", "Optional path for the equity curve as an Arrow IPC stream")
	tradesOut := flag.String("trades-arrow", "", "Optional path for the trade ledger as an Arrow IPC stream")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *csvPaths == "" {
		fmt.Fprintln(os.Stderr, "at least one -csv path is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}
	defer logger.Sync()

	tf, err := engine.ParseTimeframe(*timeframe)
	if err != nil {
		fatal(err)
	}
	params, err := parseParams(*paramSpec)
	if err != nil {
		fatal(err)
	}
	factory, err := strategies.Build(*strategyName, params)
	if err != nil {
		fatal(err)
	}

	series := make(map[string][]engine.Bar)
	for _, path := range strings.Split(*csvPaths, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		symbol := feed.SymbolFromPath(path)
		bars, err := feed.LoadCSV(path, symbol)
		if err != nil {
			fatal(err)
		}
		series[symbol] = bars
		fmt.Printf("Loaded %s with %d rows\n", symbol, len(bars))
	}

	cfg := engine.RunConfig{
		InitialCash:    decimal.NewFromFloat(*cash),
		CommissionRate: decimal.NewFromFloat(*commission / 100.0),
		SlippagePct:    decimal.NewFromFloat(*slippage / 100.0),
		Timeframe:      tf,
	}

	fmt.Printf("Running backtest with %s...\n", *strategyName)
	result, err := engine.RunOnce(cfg, series, factory, logger)
	if err != nil {
		fatal(err)
	}

	printReport(result)

	if *equityOut != "" {
		data, err := arrowexport.EquityCurve(result.Equity)
		if err != nil {
			fatal(err)
		}
		if err := os.WriteFile(*equityOut, data, 0o644); err != nil {
			fatal(err)
		}
	}
	if *tradesOut != "" && len(result.Trades) > 0 {
		data, err := arrowexport.TradeLedger(result.Trades)
		if err != nil {
			fatal(err)
		}
		if err := os.WriteFile(*tradesOut, data, 0o644); err != nil {
			fatal(err)
		}
	}
}

func printReport(result *engine.RunResult) {
	final := result.FinalCash
	if n := len(result.Equity); n > 0 {
		final = result.Equity[n-1].Value
	}
	fmt.Printf("Final Portfolio Value: %s\n", final.StringFixed(2))
	if result.Summary.Sharpe != nil {
		fmt.Printf("Sharpe Ratio: %.2f\n", *result.Summary.Sharpe)
	}
	fmt.Printf("Max DrawDown: %.2f%%\n", result.Summary.MaxDrawdownPct)
	fmt.Printf("DrawDown Duration: %d\n", result.Summary.DrawdownBars)
	if result.Summary.TotalTrades > 0 {
		fmt.Printf("Total Trades: %d\n", result.Summary.TotalTrades)
		fmt.Printf("Wins: %d, Losses: %d\n", result.Summary.Wins, result.Summary.Losses)
		fmt.Printf("Net PnL: %s\n", result.Summary.NetPnL.StringFixed(2))
	} else {
		fmt.Println("No trades were made.")
	}
}

func parseParams(spec string) (strategies.Params, error) {
	params := strategies.Params{}
	if spec == "" {
		return params, nil
	}
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed parameter %q, want k=v", pair)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", k, err)
		}
		params[strings.TrimSpace(k)] = f
	}
	return params, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
