package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal/internal/models"
)

func day(s string) time.Time {
	d, err := models.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// makeTrade builds a trade with no charges so net equals gross.
func makeTrade(date, symbol string, net float64) models.Trade {
	return models.NewTrade(day(date), symbol, 1, 0, 0, net, 0)
}

func scenarioTrades() []models.Trade {
	return []models.Trade{
		makeTrade("2024-01-01", "INFY", 100),
		makeTrade("2024-01-02", "TCS", -50),
		makeTrade("2024-01-03", "INFY", 200),
		makeTrade("2024-01-04", "SBIN", -50),
	}
}

func TestCalculate_Scenario(t *testing.T) {
	m := Calculate(scenarioTrades(), DefaultOptions())

	assert.Equal(t, 4, m.TotalTrades)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 2, m.LosingTrades)
	assert.Equal(t, 50.0, m.WinRate)
	assert.Equal(t, 200.0, m.TotalNetPnL)
	assert.Equal(t, 150.0, m.AvgWin)
	assert.Equal(t, 50.0, m.AvgLoss)
	assert.Equal(t, 3.0, m.PayoffRatio)
	assert.Equal(t, 3.0, m.ProfitFactor)
	assert.Equal(t, 50.0, m.Expectancy)
	assert.Equal(t, 200.0, m.LargestWin)
	assert.Equal(t, -50.0, m.LargestLoss)
}

func TestCalculate_DrawdownAndRatios(t *testing.T) {
	m := Calculate(scenarioTrades(), DefaultOptions())

	// cumulative 100, 50, 250, 200
	assert.Equal(t, 50.0, m.MaxDrawdown)
	assert.Equal(t, 50.0, m.MaxDrawdownPercent)
	assert.Equal(t, 50.0, m.CurrentDrawdown)
	assert.Equal(t, 2, m.MaxDrawdownDuration)
	assert.Equal(t, 4.0, m.RecoveryFactor)
	assert.Equal(t, 3.0, m.OmegaRatio)

	assert.InDelta(t, 50/math.Sqrt(15000)*math.Sqrt(252), m.SharpeRatio, 1e-9)
	assert.InDelta(t, 50/math.Sqrt(1250)*math.Sqrt(252), m.SortinoRatio, 1e-9)

	// base is the highest peak (250) over four trading days
	assert.InDelta(t, 5040.0, m.AnnualizedReturn, 1e-9)
	assert.InDelta(t, 100.8, m.CalmarRatio, 1e-9)
	assert.InDelta(t, 100.0/3, m.KellyCriterion, 1e-9)
}

func TestCalculate_BestWorstAndRange(t *testing.T) {
	m := Calculate(scenarioTrades(), DefaultOptions())

	require.NotNil(t, m.BestTrade)
	require.NotNil(t, m.WorstTrade)
	assert.Equal(t, 200.0, m.BestTrade.NetPnL)
	assert.Equal(t, "TCS", m.WorstTrade.Symbol)

	require.NotNil(t, m.BestDay)
	require.NotNil(t, m.WorstDay)
	assert.Equal(t, "2024-01-03", m.BestDay.Date)
	assert.Equal(t, "2024-01-02", m.WorstDay.Date)

	assert.Equal(t, "2024-01-01", m.StartDate)
	assert.Equal(t, "2024-01-04", m.EndDate)
	assert.Equal(t, 4, m.TradingDays)
}

func TestCalculate_EmptyList(t *testing.T) {
	var m models.AdvancedMetrics
	require.NotPanics(t, func() { m = Calculate(nil, DefaultOptions()) })

	assert.Equal(t, models.AdvancedMetrics{}, m)
	assert.Nil(t, m.BestTrade)
	assert.Nil(t, m.WorstTrade)
	assert.Nil(t, m.BestDay)
	assert.Empty(t, m.StartDate)
}

func TestCalculate_AllWinning(t *testing.T) {
	trades := []models.Trade{
		makeTrade("2024-03-01", "INFY", 100),
		makeTrade("2024-03-02", "INFY", 200),
	}
	m := Calculate(trades, DefaultOptions())

	assert.Equal(t, 100.0, m.WinRate)
	assert.Equal(t, 0.0, m.AvgLoss)
	assert.Equal(t, 300.0, m.ProfitFactor, "no losses falls back to gross profit")
	assert.Equal(t, 150.0, m.PayoffRatio, "no losses falls back to average win")
	assert.Equal(t, 300.0, m.OmegaRatio)
	assert.Equal(t, 0.0, m.MaxDrawdown)
	assert.Equal(t, 300.0, m.RecoveryFactor)
	assert.Equal(t, 0.0, m.SortinoRatio)
	assert.Equal(t, m.AnnualizedReturn, m.CalmarRatio)
	assert.Equal(t, 100.0, m.KellyCriterion)
	assert.Equal(t, 2, m.CurrentStreak)
	assertFinite(t, m)
}

func TestCalculate_AllLosing(t *testing.T) {
	trades := []models.Trade{
		makeTrade("2024-03-01", "INFY", -100),
		makeTrade("2024-03-02", "INFY", -50),
	}
	m := Calculate(trades, DefaultOptions())

	assert.Equal(t, 0.0, m.WinRate)
	assert.Equal(t, 0.0, m.ProfitFactor)
	assert.Equal(t, 0.0, m.PayoffRatio)
	assert.Equal(t, 0.0, m.KellyCriterion)
	assert.Equal(t, 150.0, m.MaxDrawdown)
	assert.Equal(t, 0.0, m.MaxDrawdownPercent, "peak never rose above zero")
	assert.Equal(t, -1.0, m.RecoveryFactor)
	assert.Equal(t, 0.0, m.CalmarRatio)
	assert.Equal(t, -2, m.CurrentStreak)
	assert.Equal(t, 1, m.MaxDrawdownDuration)
	assertFinite(t, m)
}

func TestCalculate_ZeroPnLIsLoss(t *testing.T) {
	trades := []models.Trade{
		makeTrade("2024-03-01", "INFY", 10),
		makeTrade("2024-03-02", "INFY", 0),
	}
	m := Calculate(trades, DefaultOptions())

	assert.Equal(t, 1, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.Equal(t, -1, m.CurrentStreak)
}

func TestCalculate_Streaks(t *testing.T) {
	trades := []models.Trade{
		makeTrade("2024-02-01", "A", 10),
		makeTrade("2024-02-02", "A", 20),
		makeTrade("2024-02-03", "A", 30),
		makeTrade("2024-02-04", "A", -10),
		makeTrade("2024-02-05", "A", -20),
	}
	m := Calculate(trades, DefaultOptions())

	assert.Equal(t, 3, m.LongestWinStreak)
	assert.Equal(t, 2, m.LongestLossStreak)
	assert.Equal(t, -2, m.CurrentStreak)
}

func TestCalculate_SortsByDate(t *testing.T) {
	trades := []models.Trade{
		makeTrade("2024-02-05", "A", -20),
		makeTrade("2024-02-01", "A", 10),
		makeTrade("2024-02-04", "A", -10),
		makeTrade("2024-02-02", "A", 20),
		makeTrade("2024-02-03", "A", 30),
	}
	original := make([]models.Trade, len(trades))
	copy(original, trades)

	m := Calculate(trades, DefaultOptions())

	assert.Equal(t, -2, m.CurrentStreak)
	assert.Equal(t, 3, m.LongestWinStreak)
	assert.Equal(t, original, trades, "input must not be reordered")
}

func TestCalculate_Durations(t *testing.T) {
	intraday := makeTrade("2024-04-01", "A", 10)
	intraday.ExitDate = day("2024-04-01")
	swing := makeTrade("2024-04-02", "B", 20)
	swing.ExitDate = day("2024-04-05")
	open := makeTrade("2024-04-03", "C", 30)

	m := Calculate([]models.Trade{intraday, swing, open}, DefaultOptions())

	assert.Equal(t, 1.5, m.AvgTradeDuration)
	assert.Equal(t, 3.0, m.LongestTrade)
	assert.Equal(t, 50.0, m.IntradayPercent)
}

func TestCalculate_ExitBeforeEntryIgnored(t *testing.T) {
	intraday := makeTrade("2024-04-01", "A", 10)
	intraday.ExitDate = day("2024-04-01")
	swing := makeTrade("2024-04-02", "B", 20)
	swing.ExitDate = day("2024-04-05")
	backwards := makeTrade("2024-04-10", "C", 30)
	backwards.ExitDate = day("2024-04-03")

	m := Calculate([]models.Trade{intraday, swing, backwards}, DefaultOptions())

	assert.Equal(t, 1.5, m.AvgTradeDuration)
	assert.Equal(t, 3.0, m.LongestTrade)
	assert.Equal(t, 50.0, m.IntradayPercent)
}

func TestCalculate_NoExitDates(t *testing.T) {
	m := Calculate(scenarioTrades(), DefaultOptions())

	assert.Equal(t, 0.0, m.AvgTradeDuration)
	assert.Equal(t, 0.0, m.LongestTrade)
	assert.Equal(t, 0.0, m.IntradayPercent)
}

func TestCalculate_KellyClamped(t *testing.T) {
	trades := []models.Trade{makeTrade("2024-05-01", "A", 1)}
	for i := 0; i < 9; i++ {
		trades = append(trades, makeTrade("2024-05-02", "A", -1000))
	}
	m := Calculate(trades, DefaultOptions())

	assert.Equal(t, -100.0, m.KellyCriterion)
}

func TestCalculate_InitialCapital(t *testing.T) {
	opts := DefaultOptions()
	opts.InitialCapital = 10000

	m := Calculate(scenarioTrades(), opts)

	// drawdown of 50 from an equity peak of 10100
	assert.InDelta(t, 50.0/10100*100, m.MaxDrawdownPercent, 1e-9)
	assert.InDelta(t, 200.0/10000*100*252/4, m.AnnualizedReturn, 1e-9)
	// Sharpe is scale invariant without a risk-free rate
	assert.InDelta(t, 50/math.Sqrt(15000)*math.Sqrt(252), m.SharpeRatio, 1e-9)
}

func TestCalculate_RiskFreeLowersSharpe(t *testing.T) {
	opts := DefaultOptions()
	opts.InitialCapital = 10000
	base := Calculate(scenarioTrades(), opts)

	opts.RiskFreeRate = 0.065
	withRF := Calculate(scenarioTrades(), opts)

	assert.Less(t, withRF.SharpeRatio, base.SharpeRatio)
}

func TestCalculate_Idempotent(t *testing.T) {
	trades := scenarioTrades()
	first := Calculate(trades, DefaultOptions())
	second := Calculate(trades, DefaultOptions())

	assert.Equal(t, first, second)
}

func TestCalculate_TotalsUseCharges(t *testing.T) {
	trades := []models.Trade{
		models.NewTrade(day("2024-01-01"), "INFY", 10, 1000, 1100, 100, 20),
		models.NewTrade(day("2024-01-02"), "INFY", 10, 1000, 990, -10, 15),
	}
	m := Calculate(trades, DefaultOptions())

	assert.Equal(t, 90.0, m.TotalGrossPnL)
	assert.Equal(t, 35.0, m.TotalCharges)
	assert.Equal(t, 55.0, m.TotalNetPnL)
}

func assertFinite(t *testing.T, m models.AdvancedMetrics) {
	t.Helper()
	values := map[string]float64{
		"win_rate":       m.WinRate,
		"profit_factor":  m.ProfitFactor,
		"expectancy":     m.Expectancy,
		"sharpe":         m.SharpeRatio,
		"sortino":        m.SortinoRatio,
		"calmar":         m.CalmarRatio,
		"omega":          m.OmegaRatio,
		"recovery":       m.RecoveryFactor,
		"annualized":     m.AnnualizedReturn,
		"max_dd_percent": m.MaxDrawdownPercent,
		"payoff":         m.PayoffRatio,
		"kelly":          m.KellyCriterion,
		"avg_duration":   m.AvgTradeDuration,
		"intraday":       m.IntradayPercent,
		"avg_win":        m.AvgWin,
		"avg_loss":       m.AvgLoss,
		"current_dd":     m.CurrentDrawdown,
		"max_dd":         m.MaxDrawdown,
		"total_net":      m.TotalNetPnL,
		"largest_loss":   m.LargestLoss,
		"largest_win":    m.LargestWin,
		"total_gross":    m.TotalGrossPnL,
		"total_charges":  m.TotalCharges,
		"longest_trade":  m.LongestTrade,
	}
	for name, v := range values {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s is not finite: %v", name, v)
	}
}
