package analytics

import "trade-journal/internal/models"

// Report bundles the metrics record with every derived series.
type Report struct {
	Account      string                      `json:"account,omitempty" yaml:"account,omitempty"`
	Metrics      models.AdvancedMetrics      `json:"metrics" yaml:"metrics"`
	EquityCurve  []models.EquityPoint        `json:"equity_curve" yaml:"equity_curve"`
	Monthly      []models.MonthlyPnL         `json:"monthly" yaml:"monthly"`
	Calendar     []models.CalendarCell       `json:"calendar" yaml:"calendar"`
	Distribution []models.DistributionBucket `json:"distribution" yaml:"distribution"`
	Symbols      []models.SymbolPerformance  `json:"symbols" yaml:"symbols"`
	Weekdays     []models.WeekdayPerformance `json:"weekdays" yaml:"weekdays"`
	TopWinners   []models.Trade              `json:"top_winners" yaml:"top_winners"`
	TopLosers    []models.Trade              `json:"top_losers" yaml:"top_losers"`
}

// ReportOptions controls report truncation on top of the metric options.
type ReportOptions struct {
	Metrics    Options
	TopSymbols int
	TopTrades  int
}

// BuildReport computes the metrics record and all series for trades.
func BuildReport(trades []models.Trade, opts ReportOptions) *Report {
	winners, losers := TopTrades(trades, opts.TopTrades)
	return &Report{
		Metrics:      Calculate(trades, opts.Metrics),
		EquityCurve:  EquityCurve(trades),
		Monthly:      MonthlyPnL(trades),
		Calendar:     CalendarCells(trades),
		Distribution: Distribution(trades),
		Symbols:      SymbolPerformance(trades, opts.TopSymbols),
		Weekdays:     WeekdayPerformance(trades),
		TopWinners:   winners,
		TopLosers:    losers,
	}
}
