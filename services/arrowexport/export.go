// Package arrowexport serializes run output as Arrow IPC streams so
// charting shells can consume equity curves and trade ledgers without
// re-marshalling row by row.
package arrowexport

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"tradegeek/services/engine"
)

var equitySchema = arrow.NewSchema([]arrow.Field{
	{Name: "timestamp", Type: arrow.PrimitiveTypes.Int64},
	{Name: "equity", Type: arrow.PrimitiveTypes.Float64},
}, nil)

var tradeSchema = arrow.NewSchema([]arrow.Field{
	{Name: "symbol", Type: arrow.BinaryTypes.String},
	{Name: "entry_time", Type: arrow.PrimitiveTypes.Int64},
	{Name: "exit_time", Type: arrow.PrimitiveTypes.Int64},
	{Name: "quantity", Type: arrow.PrimitiveTypes.Float64},
	{Name: "entry_price", Type: arrow.PrimitiveTypes.Float64},
	{Name: "exit_price", Type: arrow.PrimitiveTypes.Float64},
	{Name: "pnl", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// EquityCurve encodes the equity points as one record batch.
func EquityCurve(points []engine.EquityPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no equity points to encode")
	}
	pool := memory.NewGoAllocator()

	timestamps := make([]int64, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		timestamps[i] = p.Timestamp
		values[i] = p.Value.InexactFloat64()
	}

	tsBuilder := array.NewInt64Builder(pool)
	tsBuilder.AppendValues(timestamps, nil)
	tsArray := tsBuilder.NewInt64Array()

	valBuilder := array.NewFloat64Builder(pool)
	valBuilder.AppendValues(values, nil)
	valArray := valBuilder.NewFloat64Array()

	record := array.NewRecord(equitySchema, []arrow.Array{tsArray, valArray}, int64(len(points)))
	defer record.Release()

	return writeIPC(equitySchema, record)
}

// TradeLedger encodes the closed-trade ledger as one record batch.
func TradeLedger(trades []engine.Trade) ([]byte, error) {
	if len(trades) == 0 {
		return nil, fmt.Errorf("no trades to encode")
	}
	pool := memory.NewGoAllocator()

	symbols := make([]string, len(trades))
	entryTimes := make([]int64, len(trades))
	exitTimes := make([]int64, len(trades))
	quantities := make([]float64, len(trades))
	entryPrices := make([]float64, len(trades))
	exitPrices := make([]float64, len(trades))
	pnls := make([]float64, len(trades))
	for i, t := range trades {
		symbols[i] = t.Symbol
		entryTimes[i] = t.EntryTime
		exitTimes[i] = t.ExitTime
		quantities[i] = t.Quantity.InexactFloat64()
		entryPrices[i] = t.EntryPrice.InexactFloat64()
		exitPrices[i] = t.ExitPrice.InexactFloat64()
		pnls[i] = t.PnL.InexactFloat64()
	}

	symBuilder := array.NewStringBuilder(pool)
	symBuilder.AppendValues(symbols, nil)
	symArray := symBuilder.NewStringArray()

	entryTsBuilder := array.NewInt64Builder(pool)
	entryTsBuilder.AppendValues(entryTimes, nil)
	entryTsArray := entryTsBuilder.NewInt64Array()

	exitTsBuilder := array.NewInt64Builder(pool)
	exitTsBuilder.AppendValues(exitTimes, nil)
	exitTsArray := exitTsBuilder.NewInt64Array()

	qtyBuilder := array.NewFloat64Builder(pool)
	qtyBuilder.AppendValues(quantities, nil)
	qtyArray := qtyBuilder.NewFloat64Array()

	entryPxBuilder := array.NewFloat64Builder(pool)
	entryPxBuilder.AppendValues(entryPrices, nil)
	entryPxArray := entryPxBuilder.NewFloat64Array()

	exitPxBuilder := array.NewFloat64Builder(pool)
	exitPxBuilder.AppendValues(exitPrices, nil)
	exitPxArray := exitPxBuilder.NewFloat64Array()

	pnlBuilder := array.NewFloat64Builder(pool)
	pnlBuilder.AppendValues(pnls, nil)
	pnlArray := pnlBuilder.NewFloat64Array()

	record := array.NewRecord(tradeSchema, []arrow.Array{
		symArray, entryTsArray, exitTsArray, qtyArray, entryPxArray, exitPxArray, pnlArray,
	}, int64(len(trades)))
	defer record.Release()

	return writeIPC(tradeSchema, record)
}

func writeIPC(schema *arrow.Schema, record arrow.Record) ([]byte, error) {
	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	if err := writer.Write(record); err != nil {
		writer.Close()
		return nil, fmt.Errorf("write Arrow record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close Arrow writer: %w", err)
	}
	return buf.Bytes(), nil
}
