package models

// EquityPoint is one point of the cumulative net P&L curve.
type EquityPoint struct {
	Index         int     `json:"index" yaml:"index"`
	Date          string  `json:"date" yaml:"date"`
	CumulativePnL float64 `json:"cumulative_pnl" yaml:"cumulative_pnl"`
	Peak          float64 `json:"peak" yaml:"peak"`
	Drawdown      float64 `json:"drawdown" yaml:"drawdown"`
}

// MonthlyPnL aggregates trades for one YYYY-MM month.
type MonthlyPnL struct {
	Month      string  `json:"month" yaml:"month"`
	GrossPnL   float64 `json:"gross_pnl" yaml:"gross_pnl"`
	NetPnL     float64 `json:"net_pnl" yaml:"net_pnl"`
	TradeCount int     `json:"trade_count" yaml:"trade_count"`
}

// CalendarCell is the net P&L of a single calendar date.
type CalendarCell struct {
	Date string  `json:"date" yaml:"date"`
	PnL  float64 `json:"pnl" yaml:"pnl"`
}

// DayPnL is a daily net P&L aggregate with its trade count.
type DayPnL struct {
	Date       string  `json:"date" yaml:"date"`
	PnL        float64 `json:"pnl" yaml:"pnl"`
	TradeCount int     `json:"trade_count" yaml:"trade_count"`
}

// DistributionBucket counts trades whose net P&L falls in [Min, Max).
type DistributionBucket struct {
	Label string  `json:"label" yaml:"label"`
	Min   float64 `json:"-" yaml:"-"`
	Max   float64 `json:"-" yaml:"-"`
	Count int     `json:"count" yaml:"count"`
}

// SymbolPerformance is the per-instrument rollup.
type SymbolPerformance struct {
	Symbol   string  `json:"symbol" yaml:"symbol"`
	Count    int     `json:"count" yaml:"count"`
	TotalPnL float64 `json:"total_pnl" yaml:"total_pnl"`
	AvgPnL   float64 `json:"avg_pnl" yaml:"avg_pnl"`
	WinRate  float64 `json:"win_rate" yaml:"win_rate"`
}

// WeekdayPerformance is the rollup of trades entered on one weekday.
type WeekdayPerformance struct {
	Weekday  string  `json:"weekday" yaml:"weekday"`
	Count    int     `json:"count" yaml:"count"`
	TotalPnL float64 `json:"total_pnl" yaml:"total_pnl"`
	WinRate  float64 `json:"win_rate" yaml:"win_rate"`
}

// ImportBatch describes one persisted import of a P&L statement.
type ImportBatch struct {
	ID         string `json:"id" yaml:"id"`
	Source     string `json:"source" yaml:"source"`
	Account    string `json:"account" yaml:"account"`
	TradeCount int    `json:"trade_count" yaml:"trade_count"`
	Skipped    int    `json:"skipped" yaml:"skipped"`
	Duplicates int    `json:"duplicates" yaml:"duplicates"`
	ImportedAt string `json:"imported_at" yaml:"imported_at"`
}

// AccountSummary describes the stored trades of one account.
type AccountSummary struct {
	Account   string  `json:"account" yaml:"account"`
	Trades    int     `json:"trades" yaml:"trades"`
	NetPnL    float64 `json:"net_pnl" yaml:"net_pnl"`
	FirstDate string  `json:"first_date" yaml:"first_date"`
	LastDate  string  `json:"last_date" yaml:"last_date"`
}
