package models

// AdvancedMetrics is the summary record derived from a trade list.
// Rates and percentages are stored already multiplied by 100.
type AdvancedMetrics struct {
	// Core performance
	TotalGrossPnL float64 `json:"total_gross_pnl" yaml:"total_gross_pnl"`
	TotalCharges  float64 `json:"total_charges" yaml:"total_charges"`
	TotalNetPnL   float64 `json:"total_net_pnl" yaml:"total_net_pnl"`
	TotalTrades   int     `json:"total_trades" yaml:"total_trades"`
	WinningTrades int     `json:"winning_trades" yaml:"winning_trades"`
	LosingTrades  int     `json:"losing_trades" yaml:"losing_trades"`
	WinRate       float64 `json:"win_rate" yaml:"win_rate"`

	// Risk-adjusted returns
	ProfitFactor     float64 `json:"profit_factor" yaml:"profit_factor"`
	Expectancy       float64 `json:"expectancy" yaml:"expectancy"`
	SharpeRatio      float64 `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio" yaml:"sortino_ratio"`
	CalmarRatio      float64 `json:"calmar_ratio" yaml:"calmar_ratio"`
	OmegaRatio       float64 `json:"omega_ratio" yaml:"omega_ratio"`
	RecoveryFactor   float64 `json:"recovery_factor" yaml:"recovery_factor"`
	AnnualizedReturn float64 `json:"annualized_return" yaml:"annualized_return"`

	// Drawdown
	MaxDrawdown         float64 `json:"max_drawdown" yaml:"max_drawdown"`
	MaxDrawdownPercent  float64 `json:"max_drawdown_percent" yaml:"max_drawdown_percent"`
	CurrentDrawdown     float64 `json:"current_drawdown" yaml:"current_drawdown"`
	MaxDrawdownDuration int     `json:"max_drawdown_duration" yaml:"max_drawdown_duration"` // calendar days

	// Win/loss shape
	AvgWin      float64 `json:"avg_win" yaml:"avg_win"`
	AvgLoss     float64 `json:"avg_loss" yaml:"avg_loss"`         // magnitude
	LargestWin  float64 `json:"largest_win" yaml:"largest_win"`
	LargestLoss float64 `json:"largest_loss" yaml:"largest_loss"` // signed
	PayoffRatio float64 `json:"payoff_ratio" yaml:"payoff_ratio"`

	// Streaks
	CurrentStreak     int `json:"current_streak" yaml:"current_streak"`
	LongestWinStreak  int `json:"longest_win_streak" yaml:"longest_win_streak"`
	LongestLossStreak int `json:"longest_loss_streak" yaml:"longest_loss_streak"`

	// Best/worst
	BestDay    *DayPnL `json:"best_day" yaml:"best_day"`
	WorstDay   *DayPnL `json:"worst_day" yaml:"worst_day"`
	BestTrade  *Trade  `json:"best_trade" yaml:"best_trade"`
	WorstTrade *Trade  `json:"worst_trade" yaml:"worst_trade"`

	// Duration, in days
	AvgTradeDuration float64 `json:"avg_trade_duration" yaml:"avg_trade_duration"`
	LongestTrade     float64 `json:"longest_trade" yaml:"longest_trade"`
	IntradayPercent  float64 `json:"intraday_percent" yaml:"intraday_percent"`

	KellyCriterion float64 `json:"kelly_criterion" yaml:"kelly_criterion"`

	// Range
	StartDate   string `json:"start_date" yaml:"start_date"`
	EndDate     string `json:"end_date" yaml:"end_date"`
	TradingDays int    `json:"trading_days" yaml:"trading_days"`
}
