// Package models provides domain models for the trading journal.
package models

import "time"

// DateLayout is the canonical day-granularity layout used for keys and output.
const DateLayout = "2006-01-02"

// MonthLayout is the layout used for monthly bucket keys.
const MonthLayout = "2006-01"

// Trade represents a closed trade as imported from a P&L statement.
// NetPnL always equals GrossPnL - Charges; use NewTrade to construct one.
type Trade struct {
	Date      time.Time `json:"date" yaml:"date"`
	ExitDate  time.Time `json:"exit_date,omitempty" yaml:"exit_date,omitempty"`
	Symbol    string    `json:"symbol" yaml:"symbol"`
	Quantity  float64   `json:"quantity" yaml:"quantity"`
	BuyValue  float64   `json:"buy_value" yaml:"buy_value"`
	SellValue float64   `json:"sell_value" yaml:"sell_value"`
	GrossPnL  float64   `json:"gross_pnl" yaml:"gross_pnl"`
	Charges   float64   `json:"charges" yaml:"charges"`
	NetPnL    float64   `json:"net_pnl" yaml:"net_pnl"`
	Account   string    `json:"account,omitempty" yaml:"account,omitempty"`
}

// NewTrade builds a Trade with NetPnL derived from gross P&L and charges.
func NewTrade(date time.Time, symbol string, quantity, buyValue, sellValue, grossPnL, charges float64) Trade {
	return Trade{
		Date:      TruncateDay(date),
		Symbol:    symbol,
		Quantity:  quantity,
		BuyValue:  buyValue,
		SellValue: sellValue,
		GrossPnL:  grossPnL,
		Charges:   charges,
		NetPnL:    grossPnL - charges,
	}
}

// DateKey returns the trade date as YYYY-MM-DD.
func (t Trade) DateKey() string {
	return t.Date.Format(DateLayout)
}

// MonthKey returns the trade date as YYYY-MM.
func (t Trade) MonthKey() string {
	return t.Date.Format(MonthLayout)
}

// HasExit reports whether the trade carries an exit date.
func (t Trade) HasExit() bool {
	return !t.ExitDate.IsZero()
}

// IsWin reports whether the trade closed in profit. Flat trades count as losses.
func (t Trade) IsWin() bool {
	return t.NetPnL > 0
}

// HoldingDays returns the number of calendar days between entry and exit.
// The second value is false when the trade has no exit date or the exit
// precedes the entry.
func (t Trade) HoldingDays() (float64, bool) {
	if !t.HasExit() {
		return 0, false
	}
	days := TruncateDay(t.ExitDate).Sub(TruncateDay(t.Date)).Hours() / 24
	if days < 0 {
		return 0, false
	}
	return days, true
}

// TruncateDay drops the time-of-day component, keeping the calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD key into a UTC date.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
