// Package normalize converts loosely-typed imported rows into canonical trades.
package normalize

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// Row is one loosely-typed record as read from a CSV export or the store.
// Keys are snake_case column names.
type Row map[string]any

// UnknownSymbol replaces a missing symbol.
const UnknownSymbol = "UNKNOWN"

// netTolerance absorbs paise rounding in exported net P&L columns.
const netTolerance = 0.01

// excelEpoch is day zero of spreadsheet serial dates.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// dateLayouts are tried in order for string dates.
var dateLayouts = []string{
	models.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02-01-2006",
	"02/01/2006",
	"02-Jan-2006",
	"02 Jan 2006",
	"2006/01/02",
}

var (
	dateKeys     = []string{"trade_date", "date"}
	exitKeys     = []string{"exit_date", "sell_date"}
	grossKeys    = []string{"gross_pnl", "realized_pnl"}
	currencyJunk = strings.NewReplacer("₹", "", "Rs.", "", "INR", "", "$", "", ",", "", " ", "", "\u00a0", "")
)

// Options controls normalization policy.
type Options struct {
	// SkipZeroGross marks rows whose gross P&L is exactly 0 as skipped.
	SkipZeroGross bool
	// Account is applied to rows that carry no account column.
	Account string
	// Now supplies the fallback date for rows without a usable date.
	Now func() time.Time
}

// Result is the outcome of normalizing one row.
type Result struct {
	Row     int
	Trade   models.Trade
	Issues  []*errors.ParseError
	Skipped bool
}

// OK reports whether the row normalized without issues.
func (r Result) OK() bool {
	return len(r.Issues) == 0
}

// Normalize converts rows into trades in input order. Data problems never
// fail the call; they are recorded on the result and the field falls back to
// its zero value.
func Normalize(rows []Row, opts Options) []Result {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	results := make([]Result, len(rows))
	for i, row := range rows {
		results[i] = normalizeRow(i+1, row, opts)
	}
	return results
}

// Trades returns the trades of every non-skipped result.
func Trades(results []Result) []models.Trade {
	trades := make([]models.Trade, 0, len(results))
	for _, r := range results {
		if !r.Skipped {
			trades = append(trades, r.Trade)
		}
	}
	return trades
}

// Issues flattens the issues of all results.
func Issues(results []Result) []*errors.ParseError {
	var out []*errors.ParseError
	for _, r := range results {
		out = append(out, r.Issues...)
	}
	return out
}

type rowParser struct {
	index  int
	row    Row
	issues []*errors.ParseError
}

func (p *rowParser) issue(field string, value any, err error) {
	p.issues = append(p.issues, errors.NewParseError(p.index, field, value, err))
}

func normalizeRow(index int, row Row, opts Options) Result {
	p := &rowParser{index: index, row: row}

	date, ok := p.date(dateKeys, true)
	if !ok {
		date = models.TruncateDay(opts.Now())
	}

	symbol := strings.TrimSpace(cast.ToString(lookup(row, "symbol")))
	if symbol == "" {
		p.issue("symbol", nil, errors.ErrMissingField)
		symbol = UnknownSymbol
	}

	gross := p.number(grossKeys, true)
	charges := math.Abs(p.number([]string{"charges"}, false))
	trade := models.NewTrade(
		date,
		strings.ToUpper(symbol),
		p.number([]string{"quantity"}, false),
		p.number([]string{"buy_value"}, false),
		p.number([]string{"sell_value"}, false),
		gross,
		charges,
	)

	if exit, ok := p.date(exitKeys, false); ok {
		if exit.Before(trade.Date) {
			raw, _ := p.raw(exitKeys)
			p.issue(exitKeys[0], raw, errors.ErrExitBeforeEntry)
		} else {
			trade.ExitDate = exit
		}
	}

	trade.Account = strings.TrimSpace(cast.ToString(lookup(row, "account")))
	if trade.Account == "" {
		trade.Account = opts.Account
	}

	if raw, present := p.raw([]string{"net_pnl"}); present {
		if supplied, err := parseNumber(raw); err == nil && math.Abs(supplied-trade.NetPnL) > netTolerance {
			p.issue("net_pnl", raw, errors.ErrInconsistentNetPnL)
		}
	}

	return Result{
		Row:     index,
		Trade:   trade,
		Issues:  p.issues,
		Skipped: opts.SkipZeroGross && trade.GrossPnL == 0,
	}
}

// raw returns the first non-blank value among keys.
func (p *rowParser) raw(keys []string) (any, bool) {
	for _, k := range keys {
		v := lookup(p.row, k)
		if blank(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

func (p *rowParser) number(keys []string, required bool) float64 {
	v, ok := p.raw(keys)
	if !ok {
		if required {
			p.issue(keys[0], nil, errors.ErrMissingField)
		}
		return 0
	}
	n, err := parseNumber(v)
	if err != nil {
		p.issue(keys[0], v, errors.ErrUnparsableNumber)
		return 0
	}
	return n
}

func (p *rowParser) date(keys []string, required bool) (time.Time, bool) {
	v, ok := p.raw(keys)
	if !ok {
		if required {
			p.issue(keys[0], nil, errors.ErrMissingField)
		}
		return time.Time{}, false
	}
	d, err := parseDate(v)
	if err != nil {
		p.issue(keys[0], v, errors.ErrUnparsableDate)
		return time.Time{}, false
	}
	return d, true
}

func lookup(row Row, key string) any {
	if v, ok := row[key]; ok {
		return v
	}
	for k, v := range row {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return v
		}
	}
	return nil
}

func blank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		return s == "" || s == "-"
	}
	return false
}

// parseNumber coerces numeric cells, accepting currency symbols, thousands
// separators and accounting negatives such as "(1,250.50)".
func parseNumber(v any) (float64, error) {
	s, ok := v.(string)
	if !ok {
		n, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, err
		}
		return checkFinite(n)
	}

	s = currencyJunk.Replace(strings.TrimSpace(s))
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	n, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, err
	}
	if negative {
		n = -math.Abs(n)
	}
	return checkFinite(n)
}

func checkFinite(n float64) (float64, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errors.ErrUnparsableNumber
	}
	return n, nil
}

// parseDate accepts time values, the layouts in dateLayouts and spreadsheet
// serial day numbers.
func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return time.Time{}, errors.ErrUnparsableDate
		}
		return models.TruncateDay(d), nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return models.TruncateDay(t), nil
			}
		}
		// Short digit strings are years or day numbers typed into a text
		// cell, not spreadsheet serials (10000 is already 1927).
		if len(s) <= 4 && strings.Trim(s, "0123456789") == "" {
			return time.Time{}, errors.ErrUnparsableDate
		}
		if n, err := cast.ToFloat64E(s); err == nil {
			return serialDate(n)
		}
		return time.Time{}, errors.ErrUnparsableDate
	default:
		n, err := cast.ToFloat64E(v)
		if err != nil {
			return time.Time{}, errors.ErrUnparsableDate
		}
		return serialDate(n)
	}
}

// serialDate converts a spreadsheet serial day number. Values outside
// 1900-01-01 .. 9999-12-31 are rejected.
func serialDate(n float64) (time.Time, error) {
	if n < 2 || n > 2958465 || math.IsNaN(n) {
		return time.Time{}, errors.ErrUnparsableDate
	}
	return excelEpoch.AddDate(0, 0, int(n)), nil
}
