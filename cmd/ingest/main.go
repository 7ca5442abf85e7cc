package main

import (
	"context"
	"flag"
	"log"
	"time"

	"tradegeek/services/clickhouse"
	"tradegeek/services/feed"
)

func main() {
	csvPath := flag.String("csv", "", "CSV file to ingest")
	symbol := flag.String("symbol", "", "Instrument name; defaults to the file name")
	chAddr := flag.String("ch-addr", "localhost:9000", "ClickHouse native address")
	db := flag.String("db", "backtest", "ClickHouse database")
	user := flag.String("ch-user", "backtest", "ClickHouse user")
	pass := flag.String("ch-pass", "backtest123", "ClickHouse password")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("-csv is required")
	}
	sym := *symbol
	if sym == "" {
		sym = feed.SymbolFromPath(*csvPath)
	}

	bars, err := feed.LoadCSV(*csvPath, sym)
	if err != nil {
		log.Fatalf("load CSV: %v", err)
	}
	log.Printf("Loaded %d bars for %s from %s", len(bars), sym, *csvPath)

	client, err := clickhouse.NewClient(clickhouse.Config{
		Addr:     *chAddr,
		Database: *db,
		Username: *user,
		Password: *pass,
	})
	if err != nil {
		log.Fatalf("clickhouse: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := client.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	start := time.Now()
	if err := client.InsertBars(ctx, bars); err != nil {
		log.Fatalf("insert: %v", err)
	}
	log.Printf("Ingested %d bars for %s in %s", len(bars), sym, time.Since(start))
}
