package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"trade-journal/internal/models"
)

// Options tunes the risk-adjusted ratios.
type Options struct {
	// AnnualizationFactor is the number of trading days per year.
	AnnualizationFactor float64
	// RiskFreeRate is an annual rate as a fraction (0.065 for 6.5%). It is
	// only applied when InitialCapital is set, since daily returns are
	// otherwise expressed in currency.
	RiskFreeRate float64
	// OmegaThreshold is the daily net P&L above which a day counts as a gain.
	OmegaThreshold float64
	// InitialCapital offsets the equity curve for percentage measures.
	// Zero means percentages are taken against the running peak alone.
	InitialCapital float64
	// KellyClamp bounds the Kelly percentage to [-KellyClamp, KellyClamp].
	KellyClamp float64
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		AnnualizationFactor: 252,
		KellyClamp:          100,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.AnnualizationFactor <= 0 {
		o.AnnualizationFactor = d.AnnualizationFactor
	}
	if o.KellyClamp <= 0 {
		o.KellyClamp = d.KellyClamp
	}
	if o.InitialCapital < 0 {
		o.InitialCapital = 0
	}
	return o
}

// Calculate derives the full metrics record from trades. It never fails:
// an empty list yields zero counts and ratios, and every ratio with a zero
// denominator falls back to a fixed sentinel instead of NaN or Inf.
func Calculate(trades []models.Trade, opts Options) models.AdvancedMetrics {
	opts = opts.withDefaults()
	var m models.AdvancedMetrics

	m.TotalTrades = len(trades)
	if m.TotalTrades == 0 {
		return m
	}

	sorted := sortedByDate(trades)
	calculateTotals(&m, sorted)
	calculateShape(&m, sorted)

	streaks := Streaks(netValues(sorted))
	m.CurrentStreak = streaks.Current
	m.LongestWinStreak = streaks.LongestWin
	m.LongestLossStreak = streaks.LongestLoss

	points := Drawdowns(CumulativeSum(netValues(sorted)))
	dd := SummarizeDrawdowns(points, opts.InitialCapital)
	m.MaxDrawdown = dd.Max
	m.MaxDrawdownPercent = finite(dd.MaxPercent)
	m.CurrentDrawdown = dd.Current
	m.MaxDrawdownDuration = drawdownDuration(sorted, points)

	daily := DailyPnL(sorted)
	m.TradingDays = len(daily)
	calculateDays(&m, daily)
	calculateRiskRatios(&m, daily, points, opts)
	calculateDurations(&m, sorted)

	m.KellyCriterion = kelly(m.WinRate, m.PayoffRatio, opts.KellyClamp)

	m.StartDate = sorted[0].DateKey()
	m.EndDate = sorted[len(sorted)-1].DateKey()

	return m
}

func calculateTotals(m *models.AdvancedMetrics, trades []models.Trade) {
	for _, t := range trades {
		m.TotalGrossPnL += t.GrossPnL
		m.TotalCharges += t.Charges
		m.TotalNetPnL += t.NetPnL
		if t.IsWin() {
			m.WinningTrades++
		} else {
			m.LosingTrades++
		}
	}
	m.WinRate = safeDiv(float64(m.WinningTrades), float64(m.TotalTrades), 0) * 100
	m.Expectancy = safeDiv(m.TotalNetPnL, float64(m.TotalTrades), 0)
}

func calculateShape(m *models.AdvancedMetrics, trades []models.Trade) {
	var grossWin, grossLoss float64
	best, worst := 0, 0

	for i, t := range trades {
		if t.IsWin() {
			grossWin += t.NetPnL
			if t.NetPnL > m.LargestWin {
				m.LargestWin = t.NetPnL
			}
		} else {
			grossLoss += t.NetPnL
			if t.NetPnL < m.LargestLoss {
				m.LargestLoss = t.NetPnL
			}
		}
		if t.NetPnL > trades[best].NetPnL {
			best = i
		}
		if t.NetPnL < trades[worst].NetPnL {
			worst = i
		}
	}

	m.AvgWin = safeDiv(grossWin, float64(m.WinningTrades), 0)
	m.AvgLoss = math.Abs(safeDiv(grossLoss, float64(m.LosingTrades), 0))

	// Ratios of reward to loss fall back to the reward when nothing was lost.
	m.ProfitFactor = safeDiv(grossWin, math.Abs(grossLoss), grossWin)
	m.PayoffRatio = safeDiv(m.AvgWin, m.AvgLoss, m.AvgWin)

	bestTrade, worstTrade := trades[best], trades[worst]
	m.BestTrade = &bestTrade
	m.WorstTrade = &worstTrade
}

func calculateDays(m *models.AdvancedMetrics, daily []models.DayPnL) {
	if len(daily) == 0 {
		return
	}
	best, worst := daily[0], daily[0]
	for _, d := range daily[1:] {
		if d.PnL > best.PnL {
			best = d
		}
		if d.PnL < worst.PnL {
			worst = d
		}
	}
	m.BestDay = &best
	m.WorstDay = &worst
}

func calculateRiskRatios(m *models.AdvancedMetrics, daily []models.DayPnL, points []DrawdownPoint, opts Options) {
	returns := make([]float64, len(daily))
	pnl := make([]float64, len(daily))
	rf := 0.0
	for i, d := range daily {
		pnl[i] = d.PnL
		returns[i] = d.PnL
		if opts.InitialCapital > 0 {
			returns[i] = d.PnL / opts.InitialCapital
		}
	}
	if opts.InitialCapital > 0 {
		rf = opts.RiskFreeRate / opts.AnnualizationFactor
	}

	m.SharpeRatio = sharpe(returns, rf, opts.AnnualizationFactor)
	m.SortinoRatio = sortino(returns, rf, opts.AnnualizationFactor)
	m.OmegaRatio = omega(pnl, opts.OmegaThreshold)

	m.RecoveryFactor = safeDiv(m.TotalNetPnL, m.MaxDrawdown, m.TotalNetPnL)

	base := opts.InitialCapital
	if base == 0 {
		for _, p := range points {
			if p.Peak > base {
				base = p.Peak
			}
		}
	}
	if base > 0 && m.TradingDays > 0 {
		m.AnnualizedReturn = finite(m.TotalNetPnL / base * 100 * opts.AnnualizationFactor / float64(m.TradingDays))
	}
	m.CalmarRatio = safeDiv(m.AnnualizedReturn, m.MaxDrawdownPercent, m.AnnualizedReturn)
}

// sharpe uses the sample standard deviation (N-1) of daily returns.
func sharpe(returns []float64, rf, annualization float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(returns, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return finite((mean - rf) / std * math.Sqrt(annualization))
}

// sortino divides by the downside deviation against a zero target, taken
// over every day so that gain days dilute it.
func sortino(returns []float64, rf, annualization float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	var sumSq float64
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
		}
	}
	downside := math.Sqrt(sumSq / float64(len(returns)))
	if downside == 0 {
		return 0
	}
	mean := stat.Mean(returns, nil)
	return finite((mean - rf) / downside * math.Sqrt(annualization))
}

func omega(values []float64, threshold float64) float64 {
	var gains, losses float64
	for _, v := range values {
		excess := v - threshold
		if excess > 0 {
			gains += excess
		} else {
			losses += excess
		}
	}
	return safeDiv(gains, math.Abs(losses), gains)
}

// kelly returns the Kelly fraction as a percentage. Without a positive
// payoff there is no edge to size, so it reports 0.
func kelly(winRate, payoff, clamp float64) float64 {
	if payoff <= 0 {
		return 0
	}
	w := winRate / 100
	k := (w - (1-w)/payoff) * 100
	return finite(math.Max(-clamp, math.Min(clamp, k)))
}

// drawdownDuration is the longest span in calendar days from a peak to the
// trade that regains it, or to the last trade while still under water.
func drawdownDuration(trades []models.Trade, points []DrawdownPoint) int {
	if len(trades) == 0 {
		return 0
	}
	longest := 0
	peak := 0.0
	peakDate := trades[0].Date
	underwater := false

	span := func(to models.Trade) int {
		return int(to.Date.Sub(peakDate).Hours() / 24)
	}

	for i, p := range points {
		if p.Value >= peak {
			if underwater {
				if d := span(trades[i]); d > longest {
					longest = d
				}
				underwater = false
			}
			peak = p.Value
			peakDate = trades[i].Date
			continue
		}
		underwater = true
	}
	if underwater {
		if d := span(trades[len(trades)-1]); d > longest {
			longest = d
		}
	}
	return longest
}

func calculateDurations(m *models.AdvancedMetrics, trades []models.Trade) {
	var total float64
	var withExit, intraday int
	for _, t := range trades {
		days, ok := t.HoldingDays()
		if !ok {
			continue
		}
		withExit++
		total += days
		if days > m.LongestTrade {
			m.LongestTrade = days
		}
		if days == 0 {
			intraday++
		}
	}
	m.AvgTradeDuration = safeDiv(total, float64(withExit), 0)
	m.IntradayPercent = safeDiv(float64(intraday), float64(withExit), 0) * 100
}
