// Package clickhouse stores and serves OHLCV bars. The engine never
// queries storage; cmds load a range here and hand the slice over.
package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/shopspring/decimal"

	"tradegeek/services/engine"
)

type Config struct {
	Addr     string
	Database string
	Username string
	Password string
}

type Client struct {
	conn driver.Conn
	db   string
}

func NewClient(cfg Config) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to ClickHouse: %w", err)
	}
	return &Client{conn: conn, db: cfg.Database}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// EnsureSchema creates the bars table. Prices are Decimal128 so the
// round trip through storage stays exact.
func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.bars (
			symbol LowCardinality(String),
			ts     Int64,
			open   Decimal128(18),
			high   Decimal128(18),
			low    Decimal128(18),
			close  Decimal128(18),
			volume Decimal128(18)
		)
		ENGINE = ReplacingMergeTree
		ORDER BY (symbol, ts)
	`, c.db)
	if err := c.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create bars table: %w", err)
	}
	return nil
}

// InsertBars writes a batch of bars.
func (c *Client) InsertBars(ctx context.Context, bars []engine.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	batch, err := c.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s.bars", c.db))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, b := range bars {
		if err := batch.Append(b.Symbol, b.Timestamp, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("append bar %s@%d: %w", b.Symbol, b.Timestamp, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// LoadBars reads one symbol's series for [fromMs, toMs) in timestamp
// order.
func (c *Client) LoadBars(ctx context.Context, symbol string, fromMs, toMs int64) ([]engine.Bar, error) {
	query := fmt.Sprintf(`
		SELECT ts, open, high, low, close, volume
		FROM %s.bars FINAL
		WHERE symbol = ? AND ts >= ? AND ts < ?
		ORDER BY ts
	`, c.db)
	rows, err := c.conn.Query(ctx, query, symbol, fromMs, toMs)
	if err != nil {
		return nil, fmt.Errorf("query bars for %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []engine.Bar
	for rows.Next() {
		var (
			ts                            int64
			open, high, low, closePx, vol decimal.Decimal
		)
		if err := rows.Scan(&ts, &open, &high, &low, &closePx, &vol); err != nil {
			return nil, fmt.Errorf("scan bar for %s: %w", symbol, err)
		}
		bars = append(bars, engine.Bar{
			Symbol:    symbol,
			Timestamp: ts,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePx,
			Volume:    vol,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars for %s: %w", symbol, err)
	}
	return bars, nil
}
