package analytics

import (
	"sort"
	"time"

	"trade-journal/internal/models"
)

// EquityCurve returns the running cumulative net P&L in date order, with
// the running peak and the drawdown from it at every trade.
func EquityCurve(trades []models.Trade) []models.EquityPoint {
	sorted := sortedByDate(trades)
	points := Drawdowns(CumulativeSum(netValues(sorted)))

	curve := make([]models.EquityPoint, len(sorted))
	for i, p := range points {
		curve[i] = models.EquityPoint{
			Index:         i,
			Date:          sorted[i].DateKey(),
			CumulativePnL: p.Value,
			Peak:          p.Peak,
			Drawdown:      p.Drawdown,
		}
	}
	return curve
}

// MonthlyPnL sums gross and net P&L per YYYY-MM, ascending by month.
func MonthlyPnL(trades []models.Trade) []models.MonthlyPnL {
	month := func(t models.Trade) string { return t.MonthKey() }
	net := GroupSum(trades, month, func(t models.Trade) float64 { return t.NetPnL })
	gross := GroupSum(trades, month, func(t models.Trade) float64 { return t.GrossPnL })

	keys := net.SortedKeys(func(a, b string) bool { return a < b })
	out := make([]models.MonthlyPnL, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.MonthlyPnL{
			Month:      k,
			GrossPnL:   gross.Get(k),
			NetPnL:     net.Get(k),
			TradeCount: net.Count(k),
		})
	}
	return out
}

// CalendarData sums net P&L by exact trade date (YYYY-MM-DD).
// Windowing is left to the caller; see WindowCalendar.
func CalendarData(trades []models.Trade) map[string]float64 {
	return GroupSum(trades, models.Trade.DateKey, func(t models.Trade) float64 { return t.NetPnL }).Map()
}

// CalendarCells returns CalendarData as cells sorted by date.
func CalendarCells(trades []models.Trade) []models.CalendarCell {
	data := CalendarData(trades)
	out := make([]models.CalendarCell, 0, len(data))
	for date, pnl := range data {
		out = append(out, models.CalendarCell{Date: date, PnL: pnl})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// WindowCalendar keeps the cells whose date lies in [from, to]. A zero
// bound is open.
func WindowCalendar(cells []models.CalendarCell, from, to time.Time) []models.CalendarCell {
	lo, hi := "", ""
	if !from.IsZero() {
		lo = from.Format(models.DateLayout)
	}
	if !to.IsZero() {
		hi = to.Format(models.DateLayout)
	}
	var out []models.CalendarCell
	for _, c := range cells {
		if lo != "" && c.Date < lo {
			continue
		}
		if hi != "" && c.Date > hi {
			continue
		}
		out = append(out, c)
	}
	return out
}

// DailyPnL returns per-date net P&L aggregates in ascending date order.
func DailyPnL(trades []models.Trade) []models.DayPnL {
	g := GroupSum(trades, models.Trade.DateKey, func(t models.Trade) float64 { return t.NetPnL })
	keys := g.SortedKeys(func(a, b string) bool { return a < b })
	out := make([]models.DayPnL, len(keys))
	for i, k := range keys {
		out[i] = models.DayPnL{Date: k, PnL: g.Get(k), TradeCount: g.Count(k)}
	}
	return out
}

// Distribution buckets trades by net P&L using DefaultBuckets, in bucket
// definition order.
func Distribution(trades []models.Trade) []models.DistributionBucket {
	return Histogram(netValues(trades), DefaultBuckets)
}

// SymbolPerformance rolls trades up per symbol, sorted by total P&L
// descending. topN <= 0 returns every symbol.
func SymbolPerformance(trades []models.Trade, topN int) []models.SymbolPerformance {
	symbol := func(t models.Trade) string { return t.Symbol }
	totals := GroupSum(trades, symbol, func(t models.Trade) float64 { return t.NetPnL })
	wins := GroupSum(trades, symbol, func(t models.Trade) float64 {
		if t.IsWin() {
			return 1
		}
		return 0
	})

	out := make([]models.SymbolPerformance, 0, totals.Len())
	for _, s := range totals.Keys() {
		count := totals.Count(s)
		total := totals.Get(s)
		out = append(out, models.SymbolPerformance{
			Symbol:   s,
			Count:    count,
			TotalPnL: total,
			AvgPnL:   safeDiv(total, float64(count), 0),
			WinRate:  safeDiv(wins.Get(s), float64(count), 0) * 100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalPnL > out[j].TotalPnL })

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// TopTrades returns the n best trades by net P&L and the n worst, the
// latter ordered worst first.
func TopTrades(trades []models.Trade, n int) (winners, losers []models.Trade) {
	if n <= 0 || len(trades) == 0 {
		return nil, nil
	}
	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].NetPnL > sorted[j].NetPnL })

	if n > len(sorted) {
		n = len(sorted)
	}
	winners = append(winners, sorted[:n]...)
	for i := len(sorted) - 1; i >= len(sorted)-n; i-- {
		losers = append(losers, sorted[i])
	}
	return winners, losers
}

// WeekdayPerformance rolls trades up by the weekday of their entry date,
// Monday first. Weekdays without trades are omitted.
func WeekdayPerformance(trades []models.Trade) []models.WeekdayPerformance {
	day := func(t models.Trade) time.Weekday { return t.Date.Weekday() }
	totals := GroupSum(trades, day, func(t models.Trade) float64 { return t.NetPnL })
	wins := GroupSum(trades, day, func(t models.Trade) float64 {
		if t.IsWin() {
			return 1
		}
		return 0
	})

	order := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}
	var out []models.WeekdayPerformance
	for _, d := range order {
		count := totals.Count(d)
		if count == 0 {
			continue
		}
		out = append(out, models.WeekdayPerformance{
			Weekday:  d.String(),
			Count:    count,
			TotalPnL: totals.Get(d),
			WinRate:  wins.Get(d) / float64(count) * 100,
		})
	}
	return out
}
