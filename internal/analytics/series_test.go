package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal/internal/models"
)

func TestMonthlyPnL_SortedAscending(t *testing.T) {
	trades := []models.Trade{
		makeTrade("2024-02-01", "INFY", 50),
		makeTrade("2024-01-05", "INFY", 100),
		makeTrade("2024-01-20", "TCS", -30),
	}

	monthly := MonthlyPnL(trades)

	require.Len(t, monthly, 2)
	assert.Equal(t, "2024-01", monthly[0].Month)
	assert.Equal(t, 70.0, monthly[0].NetPnL)
	assert.Equal(t, 2, monthly[0].TradeCount)
	assert.Equal(t, "2024-02", monthly[1].Month)
	assert.Equal(t, 50.0, monthly[1].NetPnL)
}

func TestMonthlyPnL_GrossAndNetSeparate(t *testing.T) {
	trades := []models.Trade{
		models.NewTrade(day("2024-01-05"), "INFY", 1, 0, 0, 120, 20),
		models.NewTrade(day("2024-01-06"), "INFY", 1, 0, 0, -10, 5),
	}

	monthly := MonthlyPnL(trades)

	require.Len(t, monthly, 1)
	assert.Equal(t, 110.0, monthly[0].GrossPnL)
	assert.Equal(t, 85.0, monthly[0].NetPnL)
}

func TestDistribution_Buckets(t *testing.T) {
	trades := []models.Trade{
		makeTrade("2024-01-01", "A", -6000),
		makeTrade("2024-01-02", "A", 0),
		makeTrade("2024-01-03", "A", -5000),
		makeTrade("2024-01-04", "A", 499.99),
		makeTrade("2024-01-05", "A", 5000),
		makeTrade("2024-01-06", "A", -0.01),
	}

	buckets := Distribution(trades)

	require.Len(t, buckets, 8)
	counts := map[string]int{}
	for _, b := range buckets {
		counts[b.Label] = b.Count
	}
	assert.Equal(t, 1, counts["< -5000"])
	assert.Equal(t, 1, counts["-5000 to -1000"], "lower bound is inclusive")
	assert.Equal(t, 2, counts["0 to 500"])
	assert.Equal(t, 1, counts["-500 to 0"])
	assert.Equal(t, 1, counts["> 5000"])

	// bucket definition order, not count order
	assert.Equal(t, "< -5000", buckets[0].Label)
	assert.Equal(t, "> 5000", buckets[7].Label)
}

func TestEquityCurve(t *testing.T) {
	curve := EquityCurve(scenarioTrades())

	require.Len(t, curve, 4)
	want := []struct{ cum, peak, dd float64 }{
		{100, 100, 0},
		{50, 100, 50},
		{250, 250, 0},
		{200, 250, 50},
	}
	for i, w := range want {
		assert.Equal(t, i, curve[i].Index)
		assert.Equal(t, w.cum, curve[i].CumulativePnL, "point %d", i)
		assert.Equal(t, w.peak, curve[i].Peak, "point %d", i)
		assert.Equal(t, w.dd, curve[i].Drawdown, "point %d", i)
	}
	assert.Equal(t, "2024-01-04", curve[3].Date)
}

func TestEquityCurve_OpeningLoss(t *testing.T) {
	curve := EquityCurve([]models.Trade{makeTrade("2024-01-01", "A", -40)})

	require.Len(t, curve, 1)
	assert.Equal(t, 0.0, curve[0].Peak)
	assert.Equal(t, 40.0, curve[0].Drawdown)
}

func TestCalendarData(t *testing.T) {
	trades := []models.Trade{
		makeTrade("2024-01-01", "A", 10),
		makeTrade("2024-01-01", "B", -4),
		makeTrade("2024-01-03", "A", 7),
	}

	data := CalendarData(trades)
	assert.Equal(t, map[string]float64{"2024-01-01": 6, "2024-01-03": 7}, data)

	cells := CalendarCells(trades)
	require.Len(t, cells, 2)
	assert.Equal(t, "2024-01-01", cells[0].Date)

	windowed := WindowCalendar(cells, day("2024-01-02"), day("2024-01-31"))
	require.Len(t, windowed, 1)
	assert.Equal(t, "2024-01-03", windowed[0].Date)
}

func TestSymbolPerformance(t *testing.T) {
	trades := []models.Trade{
		makeTrade("2024-01-01", "INFY", 100),
		makeTrade("2024-01-02", "TCS", 300),
		makeTrade("2024-01-03", "INFY", -40),
		makeTrade("2024-01-04", "SBIN", -10),
	}

	perf := SymbolPerformance(trades, 0)

	require.Len(t, perf, 3)
	assert.Equal(t, "TCS", perf[0].Symbol)
	assert.Equal(t, "INFY", perf[1].Symbol)
	assert.Equal(t, 2, perf[1].Count)
	assert.Equal(t, 60.0, perf[1].TotalPnL)
	assert.Equal(t, 30.0, perf[1].AvgPnL)
	assert.Equal(t, 50.0, perf[1].WinRate)
	assert.Equal(t, "SBIN", perf[2].Symbol)

	top := SymbolPerformance(trades, 2)
	assert.Len(t, top, 2)
}

func TestTopTrades(t *testing.T) {
	trades := []models.Trade{
		makeTrade("2024-01-01", "A", 10),
		makeTrade("2024-01-02", "B", -300),
		makeTrade("2024-01-03", "C", 500),
		makeTrade("2024-01-04", "D", -20),
		makeTrade("2024-01-05", "E", 40),
	}

	winners, losers := TopTrades(trades, 2)

	require.Len(t, winners, 2)
	require.Len(t, losers, 2)
	assert.Equal(t, "C", winners[0].Symbol)
	assert.Equal(t, "E", winners[1].Symbol)
	assert.Equal(t, "B", losers[0].Symbol, "losers are worst first")
	assert.Equal(t, "D", losers[1].Symbol)

	w, l := TopTrades(nil, 5)
	assert.Nil(t, w)
	assert.Nil(t, l)
}

func TestWeekdayPerformance(t *testing.T) {
	trades := []models.Trade{
		makeTrade("2024-01-01", "A", 10),  // Monday
		makeTrade("2024-01-08", "A", -10), // Monday
		makeTrade("2024-01-03", "A", 5),   // Wednesday
	}

	perf := WeekdayPerformance(trades)

	require.Len(t, perf, 2)
	assert.Equal(t, "Monday", perf[0].Weekday)
	assert.Equal(t, 2, perf[0].Count)
	assert.Equal(t, 50.0, perf[0].WinRate)
	assert.Equal(t, "Wednesday", perf[1].Weekday)
}

func TestBuildReport(t *testing.T) {
	report := BuildReport(scenarioTrades(), ReportOptions{Metrics: DefaultOptions(), TopSymbols: 2, TopTrades: 1})

	assert.Equal(t, 4, report.Metrics.TotalTrades)
	assert.Len(t, report.EquityCurve, 4)
	assert.Len(t, report.Monthly, 1)
	assert.Len(t, report.Distribution, 8)
	assert.Len(t, report.Symbols, 2)
	assert.Len(t, report.TopWinners, 1)
	assert.Len(t, report.TopLosers, 1)
}
