// Package feed loads instrument price series from CSV files. The
// engine never touches files; this is the boundary with the data the
// shell supplies.
package feed

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"tradegeek/services/engine"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

// LoadCSV reads one instrument's series. Expected columns are
// timestamp,open,high,low,close,volume where timestamp is unix
// milliseconds, unix seconds or a date/datetime string (the usual
// Date/Datetime export columns). A header row is skipped, UTF-16 files
// with a BOM are transcoded, rows are sorted by timestamp and
// duplicate timestamps are rejected.
func LoadCSV(path, symbol string) ([]engine.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader, err := decodedReader(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var bars []engine.Bar
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %w", path, line+1, err)
		}
		line++
		if len(rec) < 5 {
			continue
		}
		if line == 1 && isHeader(rec[0]) {
			continue
		}

		ts, err := parseTimestamp(strings.TrimSpace(strings.TrimPrefix(rec[0], "\ufeff")))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		open, err1 := decimal.NewFromString(strings.TrimSpace(rec[1]))
		high, err2 := decimal.NewFromString(strings.TrimSpace(rec[2]))
		low, err3 := decimal.NewFromString(strings.TrimSpace(rec[3]))
		closePx, err4 := decimal.NewFromString(strings.TrimSpace(rec[4]))
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, fmt.Errorf("%s line %d: malformed OHLC", path, line)
		}
		vol := decimal.Zero
		if len(rec) > 5 {
			if v, err := decimal.NewFromString(strings.TrimSpace(rec[5])); err == nil {
				vol = v
			}
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
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", path, engine.ErrEmptySeries)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	for i := 1; i < len(bars); i++ {
		if bars[i].Timestamp == bars[i-1].Timestamp {
			return nil, fmt.Errorf("%s: duplicate timestamp %d", path, bars[i].Timestamp)
		}
	}
	return bars, nil
}

// SymbolFromPath derives the instrument name from the file name, the
// way the original data dialog labels loaded files.
func SymbolFromPath(path string) string {
	base := path
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}

// decodedReader wraps f with a UTF-16 decoder when a BOM is present.
func decodedReader(f *os.File) (io.Reader, error) {
	br := bufio.NewReader(f)
	head, _ := br.Peek(2)
	if len(head) >= 2 && ((head[0] == 0xFF && head[1] == 0xFE) || (head[0] == 0xFE && head[1] == 0xFF)) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return transform.NewReader(f, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()), nil
	}
	return br, nil
}

func isHeader(field string) bool {
	switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(field, "\ufeff"))) {
	case "timestamp", "timestamp_ms", "date", "datetime", "time":
		return true
	}
	return false
}

func parseTimestamp(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		// Heuristic: values below ~Nov 2286 in seconds are seconds.
		if n < 1e12 {
			return n * 1000, nil
		}
		return n, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("unparseable timestamp %q", s)
}
